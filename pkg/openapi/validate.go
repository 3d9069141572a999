package openapi

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/model"
)

// ValidateAnswers checks answers against the form's answer schema and
// returns one message per failing answer key. Keys absent from the result
// passed. Failures that cannot be attributed to a key are reported under "".
//
// Answers are normalised first: empty strings, nil values and empty lists
// count as unanswered, and numeric strings given to numeric questions are
// converted to numbers.
func ValidateAnswers(form model.Form, answers model.Answers) (model.Errors, error) {
	schema := AnswerSchema(form)
	payload, err := normalize(form, answers)
	if err != nil {
		return nil, err
	}

	out := model.Errors{}
	verr := schema.VisitJSON(payload, openapi3.MultiErrors())
	if verr == nil {
		return out, nil
	}
	for _, e := range flatten(verr) {
		key, msg := describe(e)
		if _, exists := out[key]; !exists {
			out[key] = msg
		}
	}
	return out, nil
}

func normalize(form model.Form, answers model.Answers) (map[string]any, error) {
	idx := model.NewIndex(&form)
	cleaned := make(map[string]any, len(answers))
	for key, value := range answers {
		if list, ok := model.AsList(value); ok {
			if len(list) == 0 {
				continue
			}
			cleaned[key] = list
			continue
		}
		switch typed := value.(type) {
		case nil:
			continue
		case string:
			if typed == "" {
				continue
			}
			if ref, ok := idx.Field(key); ok && ref.Question.Type.IsNumeric() {
				if n := condition.ToNumber(typed); !math.IsNaN(n) {
					cleaned[key] = n
					continue
				}
			}
		}
		cleaned[key] = value
	}

	// Round trip through JSON so every number is a float64 and every list a
	// []any, the shapes kin-openapi validates.
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func flatten(err error) []error {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []error
		for _, e := range multi {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func describe(err error) (string, string) {
	var serr *openapi3.SchemaError
	if !errors.As(err, &serr) {
		return "", err.Error()
	}
	pointer := serr.JSONPointer()
	key := ""
	if len(pointer) > 0 {
		key = pointer[0]
	}
	reason := serr.Reason
	if reason == "" {
		reason = err.Error()
	}
	return key, strings.TrimSpace(reason)
}
