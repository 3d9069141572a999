// Package validation checks answers against question types and validation
// blocks. Failures are data: ValidateStep returns an Errors map keyed by
// answer key with at most one message per field, and a step is valid when
// the map is empty.
//
// Checks run in a fixed order (required, type format, minLength, maxLength,
// min, max, pattern) and share one message slot per field, so when several
// format checks fail the last one reported wins. Format checks only run when
// a value is present.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Default messages surfaced to the user.
const (
	MsgRequired       = "This field is required"
	MsgEmail          = "Please enter a valid email address"
	MsgPhone          = "Please enter a valid phone number"
	MsgEircode        = "Please enter a valid Eircode"
	MsgNumberplate    = "Please enter a valid number plate (e.g. 231-D-12345)"
	MsgDate           = "Please enter a valid date (DD/MM/YYYY)"
	MsgDateTime       = "Please enter a valid date and time (DD/MM/YYYY HH:MM)"
	MsgPatternDefault = "Invalid format"
)

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern       = regexp.MustCompile(`^[\d\s\-+()]{7,}$`)
	numberplatePattern = regexp.MustCompile(`^\d{2,3}-[A-Z]{1,2}-\d{1,6}$`)
)

// Validator checks answers. It caches compiled user patterns and is safe for
// concurrent use.
type Validator struct {
	visibility visibility.Evaluator
	patterns   sync.Map // pattern -> *regexp.Regexp (nil when invalid)
}

// Option configures a Validator.
type Option func(*Validator)

// WithVisibility overrides how conditionally displayed questions are
// detected.
func WithVisibility(eval visibility.Evaluator) Option {
	return func(v *Validator) {
		if eval != nil {
			v.visibility = eval
		}
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{visibility: visibility.Default}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

var std = New()

// ValidateStep validates step with the package default Validator.
func ValidateStep(step model.Step, answers model.Answers) model.Errors {
	return std.ValidateStep(step, answers)
}

// ValidateQuestion validates a single value with the package default
// Validator. It returns the failure message, or "" when value is valid.
func ValidateQuestion(question model.Question, value any) string {
	return std.ValidateQuestion(question, value)
}

// ValidateForm validates every step with the package default Validator.
func ValidateForm(form model.Form, answers model.Answers) map[string]model.Errors {
	return std.ValidateForm(form, answers)
}

// ValidateStep returns the errors for the visible input questions of step.
func (v *Validator) ValidateStep(step model.Step, answers model.Answers) model.Errors {
	errs := make(model.Errors)
	for _, question := range step.Questions {
		if !question.Type.IsInput() {
			continue
		}
		if !v.visibility.Visible(question, answers) {
			continue
		}
		key := question.Key()
		value, _ := answers.Get(key)
		if msg := v.ValidateQuestion(question, value); msg != "" {
			errs[key] = msg
		}
	}
	return errs
}

// ValidateForm validates every step and returns the non-empty error maps
// keyed by step id.
func (v *Validator) ValidateForm(form model.Form, answers model.Answers) map[string]model.Errors {
	out := make(map[string]model.Errors)
	for _, step := range form.Steps {
		if errs := v.ValidateStep(step, answers); !errs.Valid() {
			out[step.ID] = errs
		}
	}
	return out
}

// ValidateQuestion returns the failure message for value, or "".
func (v *Validator) ValidateQuestion(question model.Question, value any) string {
	rules := question.Validation
	list, isList := model.AsList(value)

	if !present(value, list, isList) {
		if rules.Required {
			return MsgRequired
		}
		return ""
	}

	msg := ""
	text := ""
	length := len(list)
	if !isList {
		text = condition.ToString(value)
		length = utf8.RuneCountInString(text)
		if m := checkFormat(question, text); m != "" {
			msg = m
		}
	}

	if rules.MinLength != nil && length < *rules.MinLength {
		msg = fmt.Sprintf("Must be at least %d characters", *rules.MinLength)
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		msg = fmt.Sprintf("Must be no more than %d characters", *rules.MaxLength)
	}

	number := condition.ToNumber(value)
	if isList {
		number = condition.ToNumber(nil)
	}
	if rules.Min != nil && number < *rules.Min {
		msg = fmt.Sprintf("Must be at least %s", condition.ToString(*rules.Min))
	}
	if rules.Max != nil && number > *rules.Max {
		msg = fmt.Sprintf("Must be no more than %s", condition.ToString(*rules.Max))
	}

	if rules.Pattern != "" && !isList {
		if re := v.compile(rules.Pattern); re != nil && !re.MatchString(text) {
			msg = rules.PatternMessage
			if msg == "" {
				msg = MsgPatternDefault
			}
		}
	}
	return msg
}

func present(value any, list []string, isList bool) bool {
	if isList {
		return len(list) > 0
	}
	if value == nil {
		return false
	}
	switch typed := value.(type) {
	case string:
		return typed != ""
	case bool:
		// An unticked consent box is not an answer.
		return typed
	default:
		return true
	}
}

func checkFormat(question model.Question, text string) string {
	switch question.Type {
	case model.QuestionEmail:
		if !emailPattern.MatchString(text) {
			return MsgEmail
		}
	case model.QuestionPhone:
		if !phonePattern.MatchString(text) {
			return MsgPhone
		}
	case model.QuestionEircode:
		if !ValidEircode(text) {
			return MsgEircode
		}
	case model.QuestionNumberplate:
		if !numberplatePattern.MatchString(strings.ToUpper(text)) {
			return MsgNumberplate
		}
	case model.QuestionDate:
		if question.UseDateInputMask && !ValidMaskedDate(text) {
			return MsgDate
		}
	case model.QuestionDatetime:
		if question.UseDateInputMask && !ValidMaskedDateTime(text) {
			return MsgDateTime
		}
	}
	return ""
}

// compile returns the compiled user pattern, or nil when it does not compile.
// Invalid patterns skip the pattern check instead of failing validation.
func (v *Validator) compile(pattern string) *regexp.Regexp {
	if cached, ok := v.patterns.Load(pattern); ok {
		re, _ := cached.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	v.patterns.Store(pattern, re)
	return re
}

// CompilePattern reports whether a user supplied pattern compiles, so
// authoring tools can reject it before the runtime silently skips it.
func CompilePattern(pattern string) error {
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Errorf("validation: invalid pattern %q: %w", pattern, err)
	}
	return nil
}
