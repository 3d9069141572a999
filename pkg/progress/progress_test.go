package progress

import (
	"math"
	"testing"

	"github.com/goliatone/go-formflow/pkg/model"
)

func fourSteps() []model.Step {
	return []model.Step{
		{ID: "s1", Questions: []model.Question{{ID: "a"}, {ID: "b"}}},
		{ID: "s2", Questions: []model.Question{{ID: "c"}}},
		{ID: "s3", Questions: []model.Question{{ID: "d"}}},
		{ID: "s4"},
	}
}

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Fatalf("got %.4f, want %.4f", got, want)
	}
}

func TestLinearAndStepBased(t *testing.T) {
	t.Parallel()

	steps := fourSteps()
	for _, mode := range []model.ProgressMode{model.ProgressLinear, model.ProgressStepBased} {
		approx(t, Compute(mode, 0, steps, nil, model.ProgressConfig{}), 25)
		approx(t, Compute(mode, 3, steps, nil, model.ProgressConfig{}), 100)
	}
	approx(t, Compute("unknown", 1, steps, nil, model.ProgressConfig{}), 50)
}

func TestWeighted(t *testing.T) {
	t.Parallel()

	cfg := model.ProgressConfig{StepWeights: map[string]float64{"s1": 3, "s4": 0}}
	// weights: 3, 1, 1, 0 -> total 5
	approx(t, Compute(model.ProgressWeighted, 0, fourSteps(), nil, cfg), 60)
	approx(t, Compute(model.ProgressWeighted, 2, fourSteps(), nil, cfg), 100)
	approx(t, Compute(model.ProgressWeighted, 1, fourSteps(), nil, model.ProgressConfig{}), 50)
}

func TestExponential(t *testing.T) {
	t.Parallel()

	steps := fourSteps()
	approx(t, Compute(model.ProgressExponential, 0, steps, nil, model.ProgressConfig{}), 6.67)
	approx(t, Compute(model.ProgressExponential, 3, steps, nil, model.ProgressConfig{ExponentialBase: 2}), 100)
	approx(t, Compute(model.ProgressExponential, 1, steps, nil, model.ProgressConfig{ExponentialBase: 3}), 10)
	approx(t, Compute(model.ProgressExponential, 1, steps, nil, model.ProgressConfig{ExponentialBase: 1}), 50)
}

func TestQuestionBased(t *testing.T) {
	t.Parallel()

	answers := model.Answers{"a": "x", "b": "", "c": []string{"y"}, "d": false}
	approx(t, Compute(model.ProgressQuestionBased, 0, fourSteps(), answers, model.ProgressConfig{}), 50)
	approx(t, Compute(model.ProgressQuestionBased, 0, []model.Step{{ID: "empty"}}, answers, model.ProgressConfig{}), 0)
}

func TestEmptyForm(t *testing.T) {
	t.Parallel()

	for _, mode := range []model.ProgressMode{model.ProgressLinear, model.ProgressWeighted, model.ProgressExponential, model.ProgressQuestionBased} {
		if got := Compute(mode, 0, nil, nil, model.ProgressConfig{}); got != 0 {
			t.Fatalf("mode %s: got %v, want 0", mode, got)
		}
	}
}

func TestForForm(t *testing.T) {
	t.Parallel()

	form := model.Form{Steps: fourSteps(), Progress: model.ProgressConfig{Mode: model.ProgressLinear}}
	approx(t, ForForm(form, 1, nil), 50)
}
