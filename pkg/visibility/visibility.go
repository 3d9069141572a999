// Package visibility decides which questions of a step are shown for the
// current answers, based on each question's conditionalDisplay condition.
package visibility

import (
	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/model"
)

// Evaluator determines whether a question should be visible for the given
// answers.
type Evaluator interface {
	Visible(question model.Question, answers model.Answers) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(question model.Question, answers model.Answers) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(question model.Question, answers model.Answers) bool {
	return fn(question, answers)
}

// Default evaluates conditionalDisplay with the condition package.
var Default Evaluator = EvaluatorFunc(Visible)

// Visible reports whether question is shown. Questions without a
// conditionalDisplay are always visible.
func Visible(question model.Question, answers model.Answers) bool {
	if question.ConditionalDisplay == nil {
		return true
	}
	return condition.Evaluate(*question.ConditionalDisplay, answers)
}

// Questions returns the visible questions of step in document order.
func Questions(step model.Step, answers model.Answers) []model.Question {
	out := make([]model.Question, 0, len(step.Questions))
	for _, question := range step.Questions {
		if Visible(question, answers) {
			out = append(out, question)
		}
	}
	return out
}

// Inputs returns the visible questions of step that collect an answer.
func Inputs(step model.Step, answers model.Answers) []model.Question {
	out := make([]model.Question, 0, len(step.Questions))
	for _, question := range step.Questions {
		if question.Type.IsInput() && Visible(question, answers) {
			out = append(out, question)
		}
	}
	return out
}
