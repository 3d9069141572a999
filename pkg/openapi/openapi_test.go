package openapi_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func linearForm() model.Form {
	return model.Form{
		ID:    "sign-up",
		Title: "Sign up",
		Steps: []model.Step{
			{ID: "one", Questions: []model.Question{
				{ID: "name", Type: model.QuestionText, Validation: model.QuestionValidation{Required: true, MinLength: intPtr(2)}},
				{ID: "age", Type: model.QuestionNumber, Validation: model.QuestionValidation{Min: floatPtr(18), Max: floatPtr(120)}},
				{ID: "plan", Type: model.QuestionSelect, Options: []model.Option{{Label: "Free", Value: "free"}, {Label: "Pro", Value: "pro"}}},
			}},
			{ID: "two", Questions: []model.Question{
				{ID: "tags", Type: model.QuestionMultiselect, Validation: model.QuestionValidation{Required: true}},
				{ID: "intro", Type: model.QuestionHelperText, Content: "<b>hi</b>"},
				{ID: "terms", Type: model.QuestionPrivacyPolicy, Validation: model.QuestionValidation{Required: true}},
				{ID: "nick", Type: model.QuestionText, Validation: model.QuestionValidation{Required: true},
					ConditionalDisplay: &model.Condition{Rules: []model.ConditionRule{{QuestionID: "plan", Operator: model.OpEquals, Value: "pro"}}}},
			}},
		},
	}
}

func TestAnswerSchemaLinearForm(t *testing.T) {
	schema := openapi.AnswerSchema(linearForm())

	if diff := cmp.Diff([]string{"name", "tags", "terms"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if got := schema.Extensions[openapi.ExtensionRequired]; !cmp.Equal(got, []string{"nick"}) {
		t.Fatalf("deferred required mismatch: %#v", got)
	}
	if _, ok := schema.Properties["intro"]; ok {
		t.Fatalf("helper text must not appear in the answer schema")
	}

	age := schema.Properties["age"].Value
	if age.Min == nil || *age.Min != 18 || age.Max == nil || *age.Max != 120 {
		t.Fatalf("age bounds not mapped: %#v", age)
	}
	plan := schema.Properties["plan"].Value
	if diff := cmp.Diff([]any{"free", "pro"}, plan.Enum); diff != "" {
		t.Fatalf("plan enum mismatch (-want +got):\n%s", diff)
	}
	if tags := schema.Properties["tags"].Value; tags.MinItems != 1 {
		t.Fatalf("required multiselect should need one item, got %d", tags.MinItems)
	}
}

func TestAnswerSchemaBranchingFormDefersRequired(t *testing.T) {
	form := testsupport.MustLoadForm(t, "contact.json")
	schema := openapi.AnswerSchema(form)

	if len(schema.Required) != 0 {
		t.Fatalf("branching forms cannot enforce required keys: %v", schema.Required)
	}
	want := []string{"name", "email", "topic", "budget", "eircode", "consent"}
	if diff := cmp.Diff(want, schema.Extensions[openapi.ExtensionRequired]); diff != "" {
		t.Fatalf("deferred required mismatch (-want +got):\n%s", diff)
	}
	if email := schema.Properties["email"].Value; email.Format != "email" {
		t.Fatalf("email format missing: %#v", email)
	}
	if source := schema.Properties["source"].Value; source.Default != "website" {
		t.Fatalf("hidden default missing: %#v", source.Default)
	}
}

func TestDocumentValidates(t *testing.T) {
	for _, name := range []string{"contact.json", "survey.yaml"} {
		form := testsupport.MustLoadForm(t, name)
		doc := openapi.Document(form, openapi.DocumentOptions{})
		if err := doc.Validate(context.Background()); err != nil {
			t.Fatalf("%s: document invalid: %v", name, err)
		}
		if doc.Paths.Value("/forms/"+form.ID+"/submissions") == nil {
			t.Fatalf("%s: submission path missing", name)
		}
		if _, err := json.Marshal(doc); err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
	}
}

func TestSchemaName(t *testing.T) {
	cases := map[string]string{
		"contact":      "ContactAnswers",
		"sign-up_form": "SignUpFormAnswers",
		"":             "FormAnswers",
	}
	for id, want := range cases {
		if got := openapi.SchemaName(model.Form{ID: id}); got != want {
			t.Fatalf("SchemaName(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestValidateAnswers(t *testing.T) {
	form := linearForm()

	errs, err := openapi.ValidateAnswers(form, model.Answers{
		"name":  "Ada",
		"age":   "42",
		"plan":  "pro",
		"tags":  []string{"go"},
		"terms": true,
	})
	if err != nil {
		t.Fatalf("ValidateAnswers: %v", err)
	}
	if !errs.Valid() {
		t.Fatalf("expected valid answers, got %v", errs)
	}

	errs, err = openapi.ValidateAnswers(form, model.Answers{
		"name":  "A",
		"age":   7,
		"plan":  "enterprise",
		"tags":  []any{},
		"terms": false,
	})
	if err != nil {
		t.Fatalf("ValidateAnswers: %v", err)
	}
	for _, key := range []string{"name", "age", "plan", "tags", "terms"} {
		if errs[key] == "" {
			t.Errorf("expected an error for %s, got %v", key, errs)
		}
	}
	if !strings.Contains(errs["tags"], "missing") {
		t.Fatalf("empty list should count as unanswered: %q", errs["tags"])
	}
}
