package formdoc_test

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/formdoc"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func codes(issues formdoc.Issues) map[string]string {
	out := make(map[string]string, len(issues))
	for _, issue := range issues {
		out[issue.Path] = issue.Code
	}
	return out
}

func TestLintFixturesAreClean(t *testing.T) {
	for _, name := range []string{"contact.json", "survey.yaml"} {
		form := testsupport.MustLoadForm(t, name)
		if issues := formdoc.Lint(form); len(issues) > 0 {
			t.Fatalf("%s: unexpected issues: %v", name, issues)
		}
	}
}

func TestLintNoSteps(t *testing.T) {
	issues := formdoc.Lint(model.Form{ID: "empty"})
	if len(issues) != 1 || issues[0].Code != formdoc.CodeNoSteps {
		t.Fatalf("expected no-steps issue, got %v", issues)
	}
	if err := issues.Err(); !errors.Is(err, formdoc.ErrLint) {
		t.Fatalf("expected ErrLint, got %v", err)
	}
}

func TestLintStructuralIssues(t *testing.T) {
	form := model.Form{Steps: []model.Step{
		{
			ID:              "a",
			DefaultNextStep: "missing",
			AutoAdvance:     true,
			Questions: []model.Question{
				{ID: "q1", Type: model.QuestionText, Validation: model.QuestionValidation{Pattern: "(["}},
				{ID: "q2", FieldName: "q1", Type: "colour"},
			},
			ConditionalNavigation: []model.ConditionalNavigation{
				{
					ID: "r1",
					Condition: model.Condition{Rules: []model.ConditionRule{
						{QuestionID: "ghost", Operator: "matches"},
					}},
					Target: model.NavigationTarget{Type: model.TargetSpecific, StepID: "nowhere"},
				},
				{ID: "r2", Target: model.NavigationTarget{Type: model.TargetURL, URL: "https://example.com"}},
			},
		},
		{ID: "a"},
		{ID: "c", Questions: []model.Question{{ID: "pick", Type: model.QuestionSelect}}},
	}}

	issues := formdoc.Lint(form)
	want := []struct {
		path string
		code string
	}{
		{"steps.0.questions.0.validation.pattern", formdoc.CodeInvalidPattern},
		{"steps.0.questions.1.type", formdoc.CodeUnknownType},
		{"steps.0.questions.1", formdoc.CodeDuplicateField},
		{"steps.0.defaultNextStep", formdoc.CodeDanglingTarget},
		{"steps.0.conditionalNavigation.0.condition.rules.0.questionId", formdoc.CodeUnknownQuestion},
		{"steps.0.conditionalNavigation.0.condition.rules.0.operator", formdoc.CodeUnknownOperator},
		{"steps.0.conditionalNavigation.0.target.stepId", formdoc.CodeDanglingTarget},
		{"steps.0.conditionalNavigation.1.target.type", formdoc.CodeUnsupportedTarget},
		{"steps.0.autoAdvance", formdoc.CodeAutoAdvanceShape},
		{"steps.1.id", formdoc.CodeDuplicateStep},
		{"steps.2.questions.0.options", formdoc.CodeMissingOptions},
	}
	got := codes(issues)
	for _, tc := range want {
		if got[tc.path] != tc.code {
			t.Errorf("%s: expected %s, got %q", tc.path, tc.code, got[tc.path])
		}
	}
	if len(issues) != len(want) {
		t.Fatalf("expected %d issues, got %d: %v", len(want), len(issues), issues)
	}
	if !issues.HasErrors() {
		t.Fatalf("expected error severity issues")
	}
}

func TestLintWarningsOnlyPass(t *testing.T) {
	form := model.Form{Steps: []model.Step{{
		ID:        "s",
		Questions: []model.Question{{ID: "choice", Type: model.QuestionRadio}},
	}}}
	issues := formdoc.Lint(form)
	if len(issues) != 1 || issues.HasErrors() || issues.Err() != nil {
		t.Fatalf("expected a single warning, got %v", issues)
	}
}

func TestLintSchemaFixtures(t *testing.T) {
	for _, name := range []string{"contact.json", "survey.yaml"} {
		issues, err := formdoc.LintSchema(testsupport.MustReadFile(t, name), name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(issues) > 0 {
			t.Fatalf("%s: unexpected schema issues: %v", name, issues)
		}
	}
}

func TestLintSchemaReportsViolations(t *testing.T) {
	doc := []byte(`{
  "id": "bad",
  "progress": {"mode": "linaer"},
  "steps": [
    {"id": "s1", "questions": [{"id": "q", "type": "textbox"}]}
  ]
}`)
	issues, err := formdoc.LintSchema(doc, "bad.json")
	if err != nil {
		t.Fatalf("LintSchema: %v", err)
	}
	if !issues.HasErrors() {
		t.Fatalf("expected schema errors")
	}
	var paths []string
	for _, issue := range issues {
		if issue.Code != formdoc.CodeSchema || issue.Severity != formdoc.SeverityError {
			t.Fatalf("unexpected issue %v", issue)
		}
		if !strings.Contains(issue.Message, "empty disjunction") {
			t.Fatalf("expected the disjunction summary for %s, got %q", issue.Path, issue.Message)
		}
		paths = append(paths, issue.Path)
	}
	sort.Strings(paths)
	want := []string{"progress.mode", "steps.0.questions.0.type"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("expected one issue per invalid field (-want +got):\n%s", diff)
	}
}

func TestLintSchemaRequiresSteps(t *testing.T) {
	issues, err := formdoc.LintSchema([]byte("id: nothing\nsteps: []\n"), "nothing.yaml")
	if err != nil {
		t.Fatalf("LintSchema: %v", err)
	}
	if !issues.HasErrors() {
		t.Fatalf("empty steps should violate the schema")
	}
}

func TestLintSchemaUnreadable(t *testing.T) {
	if _, err := formdoc.LintSchema([]byte(""), "empty.json"); !errors.Is(err, formdoc.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}
