package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/formdoc"
	"github.com/goliatone/go-formflow/pkg/model"
)

// loadForm reads and parses a form document, returning the raw bytes for
// schema linting.
func loadForm(path string) (model.Form, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Form{}, nil, WrapExitError(ExitCommandError, "read form", err)
	}
	form, err := formdoc.Parse(data, path)
	if err != nil {
		return model.Form{}, data, WrapExitError(ExitCommandError, "parse form", err)
	}
	if len(form.Steps) == 0 {
		return model.Form{}, data, NewExitError(ExitCommandError, fmt.Sprintf("%s: form has no steps", path))
	}
	return form, data, nil
}

// loadAnswers merges an answers file (JSON or YAML object) with key=value
// assignments. Assigned values are decoded as JSON when possible, so
// score=7 is a number and tags=["a","b"] a list; anything else is a string.
func loadAnswers(path string, sets []string) (model.Answers, error) {
	answers := model.Answers{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read answers", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			if yerr := yaml.Unmarshal(data, &decoded); yerr != nil {
				return nil, WrapExitError(ExitCommandError, "parse answers", err)
			}
		}
		for k, v := range decoded {
			answers[k] = normalizeValue(v)
		}
	}
	for _, assignment := range sets {
		key, raw, ok := strings.Cut(assignment, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --set %q: want key=value", assignment))
		}
		answers[key] = parseValue(raw)
	}
	return answers, nil
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return normalizeValue(v)
	}
	return raw
}

// normalizeValue turns decoded lists of strings into []string, the shape the
// runtime stores for multi-value answers.
func normalizeValue(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return v
		}
		out = append(out, s)
	}
	return out
}

// stepIndex resolves a step id, defaulting to the first step.
func stepIndex(form model.Form, id string) (int, error) {
	if id == "" {
		return 0, nil
	}
	idx := form.StepIndex(id)
	if idx < 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("unknown step %q", id))
	}
	return idx, nil
}
