// Package progress computes the completion percentage shown by the progress
// indicator.
package progress

import (
	"math"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultExponentialBase is used when the config leaves the base unset.
const DefaultExponentialBase = 2

// Compute returns a percentage in [0, 100] for the step at current.
//
// linear and step_based are identical; weighted sums per-step weights
// (default 1) up to and including current; exponential uses
// (B^(current+1) - 1) / (B^total - 1); question_based counts truthy answers
// over all questions. An empty form reports 0. Unknown modes and unusable
// exponential bases fall back to linear.
func Compute(mode model.ProgressMode, current int, steps []model.Step, answers model.Answers, cfg model.ProgressConfig) float64 {
	total := len(steps)
	if total == 0 {
		return 0
	}
	switch mode {
	case model.ProgressWeighted:
		return clamp(weighted(current, steps, cfg.StepWeights))
	case model.ProgressExponential:
		return clamp(exponential(current, total, cfg.ExponentialBase))
	case model.ProgressQuestionBased:
		return clamp(questionBased(steps, answers))
	default:
		return clamp(linear(current, total))
	}
}

// ForForm computes progress with the form's own configuration.
func ForForm(form model.Form, current int, answers model.Answers) float64 {
	return Compute(form.Progress.Mode, current, form.Steps, answers, form.Progress)
}

func linear(current, total int) float64 {
	return float64(current+1) / float64(total) * 100
}

func weighted(current int, steps []model.Step, weights map[string]float64) float64 {
	var done, all float64
	for i, step := range steps {
		w := 1.0
		if v, ok := weights[step.ID]; ok {
			w = v
		}
		all += w
		if i <= current {
			done += w
		}
	}
	if all == 0 {
		return 0
	}
	return done / all * 100
}

func exponential(current, total int, base float64) float64 {
	if base == 0 {
		base = DefaultExponentialBase
	}
	if base < 0 || base == 1 {
		return linear(current, total)
	}
	denominator := math.Pow(base, float64(total)) - 1
	if denominator == 0 || math.IsInf(denominator, 0) {
		return linear(current, total)
	}
	return (math.Pow(base, float64(current+1)) - 1) / denominator * 100
}

func questionBased(steps []model.Step, answers model.Answers) float64 {
	questions := 0
	for _, step := range steps {
		questions += len(step.Questions)
	}
	if questions == 0 {
		return 0
	}
	answered := 0
	for _, value := range answers {
		if condition.Truthy(value) {
			answered++
		}
	}
	return float64(answered) / float64(questions) * 100
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
