package openapi

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// DocumentOptions tunes the generated document.
type DocumentOptions struct {
	// Version is the info.version of the document. Defaults to "1.0.0".
	Version string
	// BasePath prefixes the submission path. Defaults to "/forms".
	BasePath string
}

// Document wraps the answer schema in a minimal OpenAPI 3 document with a
// single submission operation, POST {BasePath}/{formId}/submissions.
func Document(form model.Form, opts DocumentOptions) *openapi3.T {
	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}
	base := strings.TrimRight(opts.BasePath, "/")
	if base == "" {
		base = "/forms"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	formID := form.ID
	if formID == "" {
		formID = "form"
	}
	title := form.Title
	if title == "" {
		title = formID
	}

	name := SchemaName(form)
	ref := openapi3.NewSchemaRef("#/components/schemas/"+name, AnswerSchema(form))

	op := openapi3.NewOperation()
	op.OperationID = "submit" + exportName(formID)
	op.Summary = "Submit " + title
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusCreated, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Submission stored"),
		}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription("Answers failed validation"),
		}),
	)

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{name: openapi3.NewSchemaRef("", ref.Value)}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   title,
			Version: version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(base+"/"+formID+"/submissions", &openapi3.PathItem{Post: op}),
		),
		Components: &components,
	}
}

// SchemaName returns the component name of the form's answer schema, for
// example "ContactAnswers" for the form id "contact".
func SchemaName(form model.Form) string {
	id := form.ID
	if id == "" {
		id = "form"
	}
	return exportName(id) + "Answers"
}

func exportName(id string) string {
	var b strings.Builder
	upper := true
	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Form"
	}
	return b.String()
}
