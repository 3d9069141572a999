package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Extension keys carried by generated schemas.
const (
	ExtensionNamespace = "x-formflow"
	// ExtensionRequired lists required answer keys that cannot be enforced by
	// the schema because the question is conditionally shown or its step can
	// be skipped.
	ExtensionRequired = "x-formflow-required"
	// ExtensionQuestionType records the question type of a property.
	ExtensionQuestionType = "x-formflow-type"
)

// AnswerSchema returns an object schema with one property per input
// question, keyed by answer key. Helper text is omitted. Required is only
// enforced for unconditional questions of forms whose steps are always all
// visited; the remaining required keys are listed under ExtensionRequired.
func AnswerSchema(form model.Form) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = form.Title
	schema.Extensions = map[string]any{}
	if form.ID != "" {
		schema.Extensions[ExtensionNamespace] = map[string]any{"formId": form.ID}
	}

	linear := isLinear(form)
	var required, deferred []string
	seen := make(map[string]bool)
	for _, step := range form.Steps {
		for _, question := range step.Questions {
			if question.Type == model.QuestionHelperText {
				continue
			}
			key := question.Key()
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			schema.WithProperty(key, questionSchema(question))

			if !question.Validation.Required || !question.Type.IsInput() {
				continue
			}
			if linear && question.ConditionalDisplay == nil {
				required = append(required, key)
			} else {
				deferred = append(deferred, key)
			}
		}
	}
	if len(required) > 0 {
		schema.Required = required
	}
	if len(deferred) > 0 {
		schema.Extensions[ExtensionRequired] = deferred
	}
	if len(schema.Extensions) == 0 {
		schema.Extensions = nil
	}
	return schema
}

// isLinear reports whether every step is always visited: no conditional
// navigation and no default jumps.
func isLinear(form model.Form) bool {
	for _, step := range form.Steps {
		if len(step.ConditionalNavigation) > 0 || step.DefaultNextStep != "" {
			return false
		}
	}
	return true
}

func questionSchema(q model.Question) *openapi3.Schema {
	var schema *openapi3.Schema
	v := q.Validation

	switch {
	case q.Type == model.QuestionHidden:
		schema = openapi3.NewSchema()
		if q.DefaultValue != nil {
			schema.Default = q.DefaultValue
		}
	case q.Type == model.QuestionPrivacyPolicy:
		schema = openapi3.NewBoolSchema()
		if v.Required {
			schema.WithEnum(true)
		}
	case q.Type.IsNumeric():
		schema = openapi3.NewFloat64Schema()
		if v.Min != nil {
			schema.WithMin(*v.Min)
		}
		if v.Max != nil {
			schema.WithMax(*v.Max)
		}
	case q.Type.IsMultiValue():
		items := openapi3.NewStringSchema()
		if values := optionValues(q); len(values) > 0 {
			items.WithEnum(values...)
		}
		schema = openapi3.NewArraySchema().WithItems(items)
		if v.Required {
			schema.WithMinItems(1)
		}
		if v.MinLength != nil && *v.MinLength > 0 {
			schema.WithMinItems(int64(*v.MinLength))
		}
		if v.MaxLength != nil {
			schema.WithMaxItems(int64(*v.MaxLength))
		}
	default:
		schema = openapi3.NewStringSchema()
		if values := optionValues(q); len(values) > 0 {
			schema.WithEnum(values...)
		}
		if q.Type == model.QuestionEmail {
			schema.WithFormat("email")
		}
		if v.MinLength != nil {
			schema.WithMinLength(int64(*v.MinLength))
		}
		if v.MaxLength != nil {
			schema.WithMaxLength(int64(*v.MaxLength))
		}
		if v.Pattern != "" && validation.CompilePattern(v.Pattern) == nil {
			schema.WithPattern(v.Pattern)
		}
	}

	schema.Title = q.Label
	schema.Description = q.HelpText
	schema.Extensions = map[string]any{ExtensionQuestionType: string(q.Type)}
	return schema
}

func optionValues(q model.Question) []any {
	if len(q.Options) == 0 {
		return nil
	}
	values := make([]any, len(q.Options))
	for i, option := range q.Options {
		values[i] = option.Value
	}
	return values
}
