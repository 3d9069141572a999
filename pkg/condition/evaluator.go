// Package condition evaluates the flat AND/OR rule expressions used for
// question visibility and conditional navigation. Evaluation is pure: the
// same condition and answers always produce the same result, and malformed
// input never errors. Missing answers read as the empty string and unknown
// operators evaluate true.
package condition

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Evaluate reports whether cond holds for answers. AND requires every rule to
// hold and OR at least one; an AND with no rules holds, an OR with no rules
// does not. Any logic other than OR is treated as AND.
func Evaluate(cond model.Condition, answers model.Answers) bool {
	if isOr(cond.Logic) {
		for _, rule := range cond.Rules {
			if EvaluateRule(rule, answers) {
				return true
			}
		}
		return false
	}
	for _, rule := range cond.Rules {
		if !EvaluateRule(rule, answers) {
			return false
		}
	}
	return true
}

func isOr(logic model.Logic) bool {
	return strings.EqualFold(strings.TrimSpace(string(logic)), string(model.LogicOr))
}

// EvaluateRule reports whether a single rule holds for answers.
func EvaluateRule(rule model.ConditionRule, answers model.Answers) bool {
	value, ok := answers.Get(rule.QuestionID)
	if !ok || value == nil {
		value = ""
	}
	if list, isList := model.AsList(value); isList {
		return evalList(rule.Operator, list, rule.Value)
	}
	return evalScalar(rule.Operator, value, rule.Value)
}

func evalList(op model.Operator, list []string, compare any) bool {
	want := ToString(compare)
	switch op {
	case model.OpEquals:
		return listIncludes(list, compare)
	case model.OpNotEquals:
		return !listIncludes(list, compare)
	case model.OpContains:
		return anyElement(list, func(s string) bool { return strings.Contains(s, want) })
	case model.OpNotContains:
		// None of the elements may contain the value.
		return !anyElement(list, func(s string) bool { return strings.Contains(s, want) })
	case model.OpStartsWith:
		return anyElement(list, func(s string) bool { return strings.HasPrefix(s, want) })
	case model.OpEndsWith:
		return anyElement(list, func(s string) bool { return strings.HasSuffix(s, want) })
	case model.OpIsEmpty:
		return len(list) == 0
	case model.OpIsNotEmpty:
		return len(list) > 0
	case model.OpGreaterThan, model.OpLessThan:
		return false
	default:
		return true
	}
}

func listIncludes(list []string, compare any) bool {
	s, ok := compare.(string)
	if !ok {
		return false
	}
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func anyElement(list []string, fn func(string) bool) bool {
	for _, item := range list {
		if fn(item) {
			return true
		}
	}
	return false
}

func evalScalar(op model.Operator, value, compare any) bool {
	switch op {
	case model.OpEquals:
		return strictEqual(value, compare)
	case model.OpNotEquals:
		return !strictEqual(value, compare)
	case model.OpContains:
		return strings.Contains(ToString(value), ToString(compare))
	case model.OpNotContains:
		return !strings.Contains(ToString(value), ToString(compare))
	case model.OpGreaterThan:
		return ToNumber(value) > ToNumber(compare)
	case model.OpLessThan:
		return ToNumber(value) < ToNumber(compare)
	case model.OpIsEmpty:
		return falsy(value)
	case model.OpIsNotEmpty:
		return !falsy(value)
	case model.OpStartsWith:
		return strings.HasPrefix(ToString(value), ToString(compare))
	case model.OpEndsWith:
		return strings.HasSuffix(ToString(value), ToString(compare))
	default:
		return true
	}
}
