// Package navigation decides where a step leads. Conditional navigation
// rules are evaluated by descending priority (ties keep document order); the
// first matching rule with a resolvable target wins, then the step's
// defaultNextStep, then the following step. Moving past the last step means
// submitting the form.
package navigation

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/model"
)

// Kind distinguishes step targets from submission.
type Kind int

const (
	KindStep Kind = iota
	KindSubmit
)

// Target is the outcome of a navigation decision.
type Target struct {
	Kind   Kind
	Index  int
	RuleID string
}

// StepTarget returns a target pointing at step index.
func StepTarget(index int) Target {
	return Target{Kind: KindStep, Index: index}
}

// SubmitTarget returns a target that submits the form.
func SubmitTarget() Target {
	return Target{Kind: KindSubmit, Index: -1}
}

// IsSubmit reports whether the target submits the form.
func (t Target) IsSubmit() bool {
	return t.Kind == KindSubmit
}

func (t Target) String() string {
	if t.IsSubmit() {
		return "submit"
	}
	return fmt.Sprintf("step %d", t.Index)
}

// normalize turns an index past the last step into a submission.
func normalize(t Target, total int) Target {
	if t.Kind == KindStep && t.Index >= total {
		return Target{Kind: KindSubmit, Index: -1, RuleID: t.RuleID}
	}
	return t
}

// SortedRules returns the step's conditional navigation rules ordered by
// descending priority. The sort is stable so equal priorities keep document
// order. The step itself is not modified.
func SortedRules(step model.Step) []model.ConditionalNavigation {
	rules := append([]model.ConditionalNavigation(nil), step.ConditionalNavigation...)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules
}

// MatchRule scans the conditional navigation rules of steps[current] and
// returns the target of the first rule that holds and resolves. Rules whose
// target cannot be resolved (unknown stepId, previous, url) are skipped.
func MatchRule(current int, steps []model.Step, answers model.Answers) (Target, bool) {
	if current < 0 || current >= len(steps) {
		return Target{}, false
	}
	for _, rule := range SortedRules(steps[current]) {
		if !condition.Evaluate(rule.Condition, answers) {
			continue
		}
		target, ok := resolveRuleTarget(rule, current, steps)
		if !ok {
			continue
		}
		return normalize(target, len(steps)), true
	}
	return Target{}, false
}

func resolveRuleTarget(rule model.ConditionalNavigation, current int, steps []model.Step) (Target, bool) {
	switch rule.Target.Type {
	case model.TargetSubmit:
		return Target{Kind: KindSubmit, Index: -1, RuleID: rule.ID}, true
	case model.TargetSpecific:
		idx := model.StepIndex(steps, rule.Target.StepID)
		if idx < 0 {
			return Target{}, false
		}
		return Target{Kind: KindStep, Index: idx, RuleID: rule.ID}, true
	case model.TargetNext:
		return Target{Kind: KindStep, Index: current + 1, RuleID: rule.ID}, true
	default:
		return Target{}, false
	}
}

// AnyRuleMatches reports whether any conditional navigation rule of step
// holds, regardless of whether its target resolves. Continue skips step
// validation when it does.
func AnyRuleMatches(step model.Step, answers model.Answers) bool {
	for _, rule := range step.ConditionalNavigation {
		if condition.Evaluate(rule.Condition, answers) {
			return true
		}
	}
	return false
}

// ResolveNext decides where Continue leads from steps[current].
func ResolveNext(current int, steps []model.Step, answers model.Answers) Target {
	if current < 0 || current >= len(steps) {
		return normalize(StepTarget(current+1), len(steps))
	}
	if target, ok := MatchRule(current, steps, answers); ok {
		return target
	}
	if idx := model.StepIndex(steps, steps[current].DefaultNextStep); idx >= 0 {
		return StepTarget(idx)
	}
	return normalize(StepTarget(current+1), len(steps))
}

// ResolvePrev decides where Back leads from steps[current]: the step's
// defaultPrevStep when it resolves, otherwise the previous step, never
// before the first one.
func ResolvePrev(current int, steps []model.Step) int {
	if current >= 0 && current < len(steps) {
		if idx := model.StepIndex(steps, steps[current].DefaultPrevStep); idx >= 0 {
			return idx
		}
	}
	if current-1 < 0 {
		return 0
	}
	return current - 1
}
