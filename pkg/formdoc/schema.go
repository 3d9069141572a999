package formdoc

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema/form.cue
var formSchema string

// Schema returns the CUE definition document forms are checked against.
func Schema() string {
	return formSchema
}

// LintSchema checks a raw JSON or YAML document against the #Form CUE
// definition. It catches problems that decoding into model.Form hides, such
// as misspelled enum values. The returned error is reserved for documents
// that cannot be read at all.
func LintSchema(data []byte, source string) (Issues, error) {
	raw, err := toJSON(data, source)
	if err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(formSchema, cue.Filename("form.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("formdoc: compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Form"))
	if !def.Exists() {
		return nil, fmt.Errorf("formdoc: schema has no #Form definition")
	}

	doc := ctx.CompileBytes(raw, cue.Filename(source))
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, source, err)
	}

	unified := def.Unify(doc)
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil, nil
	}

	// CUE reports a failed disjunction once as a summary and once per
	// rejected alternative. Keep one issue per path, preferring the summary.
	var issues Issues
	byPath := make(map[string]int)
	for _, cerr := range cueerrors.Errors(err) {
		format, args := cerr.Msg()
		path := issuePath(cerr.Path())
		msg := strings.TrimSuffix(strings.TrimSpace(fmt.Sprintf(format, args...)), ":")
		if i, ok := byPath[path]; ok {
			if isDisjunction(msg) && !isDisjunction(issues[i].Message) {
				issues[i].Message = msg
			}
			continue
		}
		byPath[path] = len(issues)
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeSchema,
			Path:     path,
			Message:  msg,
		})
	}
	return issues, nil
}

// issuePath drops the definition selectors CUE prefixes to value paths, so
// "#Form.steps.0.type" becomes "steps.0.type".
func issuePath(elems []string) string {
	for len(elems) > 0 && strings.HasPrefix(elems[0], "#") {
		elems = elems[1:]
	}
	return strings.Join(elems, ".")
}

func isDisjunction(msg string) bool {
	return strings.Contains(msg, "empty disjunction")
}

// toJSON returns data unchanged when it is JSON and converts YAML otherwise.
func toJSON(data []byte, source string) ([]byte, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}
	if json.Valid(data) {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, source, err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, source, err)
	}
	return out, nil
}
