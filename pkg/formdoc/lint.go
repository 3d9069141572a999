package formdoc

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Severity grades a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes reported by Lint and LintSchema.
const (
	CodeSchema            = "schema"
	CodeNoSteps           = "no-steps"
	CodeMissingID         = "missing-id"
	CodeDuplicateStep     = "duplicate-step"
	CodeDuplicateField    = "duplicate-field"
	CodeUnknownType       = "unknown-type"
	CodeDanglingTarget    = "dangling-target"
	CodeUnknownQuestion   = "unknown-question"
	CodeUnknownOperator   = "unknown-operator"
	CodeInvalidPattern    = "invalid-pattern"
	CodeAutoAdvanceShape  = "auto-advance-shape"
	CodeMissingOptions    = "missing-options"
	CodeRangeOrder        = "range-order"
	CodeUnsupportedTarget = "unsupported-target"
)

// Issue is a single finding. Path uses dotted notation rooted at the form,
// for example "steps.1.questions.0.validation.pattern".
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("%s [%s] %s", i.Severity, i.Code, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", i.Severity, i.Code, i.Path, i.Message)
}

// Issues is an ordered list of findings.
type Issues []Issue

// HasErrors reports whether any issue has error severity.
func (is Issues) HasErrors() bool {
	for _, issue := range is {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err returns nil when no issue is an error, otherwise an error wrapping
// ErrLint that lists the error issues.
func (is Issues) Err() error {
	var lines []string
	for _, issue := range is {
		if issue.Severity == SeverityError {
			lines = append(lines, issue.String())
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  %s", ErrLint, strings.Join(lines, "\n  "))
}

type linter struct {
	form   model.Form
	index  *model.Index
	issues Issues
}

func (l *linter) add(sev Severity, code, path, format string, args ...any) {
	l.issues = append(l.issues, Issue{
		Severity: sev,
		Code:     code,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Lint checks the structure of a decoded form: step and field identity,
// navigation targets, condition references, patterns and auto-advance
// steps. Issues are returned in document order.
func Lint(form model.Form) Issues {
	l := &linter{form: form, index: model.NewIndex(&form)}
	if len(form.Steps) == 0 {
		l.add(SeverityError, CodeNoSteps, "steps", "form has no steps")
		return l.issues
	}

	stepIDs := make(map[string]int, len(form.Steps))
	fieldKeys := make(map[string]string)
	for si, step := range form.Steps {
		base := fmt.Sprintf("steps.%d", si)
		switch prev, seen := stepIDs[step.ID]; {
		case step.ID == "":
			l.add(SeverityError, CodeMissingID, base+".id", "step has no id")
		case seen:
			l.add(SeverityError, CodeDuplicateStep, base+".id", "step id %q already used by steps.%d", step.ID, prev)
		default:
			stepIDs[step.ID] = si
		}

		for qi, question := range step.Questions {
			qpath := fmt.Sprintf("%s.questions.%d", base, qi)
			l.question(question, qpath, fieldKeys)
		}
		l.step(step, base)
	}
	return l.issues
}

func (l *linter) question(q model.Question, path string, keys map[string]string) {
	if q.ID == "" {
		l.add(SeverityError, CodeMissingID, path+".id", "question has no id")
	}
	if !knownType(q.Type) {
		l.add(SeverityError, CodeUnknownType, path+".type", "unknown question type %q", q.Type)
	}

	if key := q.Key(); key != "" {
		if prev, seen := keys[key]; seen {
			l.add(SeverityError, CodeDuplicateField, path, "answer key %q already used by %s", key, prev)
		} else {
			keys[key] = path
		}
	}

	switch q.Type {
	case model.QuestionRadio, model.QuestionSelect, model.QuestionMultiselect:
		if len(q.Options) == 0 {
			l.add(SeverityWarning, CodeMissingOptions, path+".options", "%s question has no options", q.Type)
		}
	}

	v := q.Validation
	if v.Pattern != "" {
		if err := validation.CompilePattern(v.Pattern); err != nil {
			l.add(SeverityError, CodeInvalidPattern, path+".validation.pattern", "%v", err)
		}
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
		l.add(SeverityWarning, CodeRangeOrder, path+".validation", "minLength %d exceeds maxLength %d", *v.MinLength, *v.MaxLength)
	}
	if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
		l.add(SeverityWarning, CodeRangeOrder, path+".validation", "min %g exceeds max %g", *v.Min, *v.Max)
	}

	if q.ConditionalDisplay != nil {
		l.condition(*q.ConditionalDisplay, path+".conditionalDisplay")
	}
}

func (l *linter) step(step model.Step, base string) {
	if step.DefaultNextStep != "" && l.form.StepIndex(step.DefaultNextStep) < 0 {
		l.add(SeverityError, CodeDanglingTarget, base+".defaultNextStep", "unknown step %q", step.DefaultNextStep)
	}
	if step.DefaultPrevStep != "" && l.form.StepIndex(step.DefaultPrevStep) < 0 {
		l.add(SeverityError, CodeDanglingTarget, base+".defaultPrevStep", "unknown step %q", step.DefaultPrevStep)
	}

	for ri, rule := range step.ConditionalNavigation {
		rpath := fmt.Sprintf("%s.conditionalNavigation.%d", base, ri)
		l.condition(rule.Condition, rpath+".condition")
		switch rule.Target.Type {
		case model.TargetSpecific:
			if l.form.StepIndex(rule.Target.StepID) < 0 {
				l.add(SeverityError, CodeDanglingTarget, rpath+".target.stepId", "unknown step %q", rule.Target.StepID)
			}
		case model.TargetPrevious, model.TargetURL:
			l.add(SeverityWarning, CodeUnsupportedTarget, rpath+".target.type", "%s targets are skipped at runtime", rule.Target.Type)
		case model.TargetNext, model.TargetSubmit:
		default:
			l.add(SeverityError, CodeUnsupportedTarget, rpath+".target.type", "unknown target type %q", rule.Target.Type)
		}
	}

	if step.AutoAdvance && len(step.Questions) != 1 {
		l.add(SeverityWarning, CodeAutoAdvanceShape, base+".autoAdvance",
			"autoAdvance needs exactly one question, step has %d", len(step.Questions))
	}
}

func (l *linter) condition(cond model.Condition, path string) {
	for ri, rule := range cond.Rules {
		rpath := fmt.Sprintf("%s.rules.%d", path, ri)
		if !l.knownField(rule.QuestionID) {
			l.add(SeverityWarning, CodeUnknownQuestion, rpath+".questionId",
				"no question answers to %q; the rule reads an empty value", rule.QuestionID)
		}
		if !knownOperator(rule.Operator) {
			l.add(SeverityWarning, CodeUnknownOperator, rpath+".operator",
				"unknown operator %q always evaluates true", rule.Operator)
		}
	}
}

func (l *linter) knownField(key string) bool {
	if _, ok := l.index.Field(key); ok {
		return true
	}
	_, ok := l.index.ByID(key)
	return ok
}

func knownType(t model.QuestionType) bool {
	for _, known := range model.QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

func knownOperator(op model.Operator) bool {
	for _, known := range model.Operators {
		if op == known {
			return true
		}
	}
	return false
}
