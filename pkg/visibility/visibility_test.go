package visibility

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

func TestQuestionsFiltersConditionalDisplay(t *testing.T) {
	t.Parallel()

	step := model.Step{
		ID: "details",
		Questions: []model.Question{
			{ID: "has_car", Type: model.QuestionRadio},
			{
				ID:   "plate",
				Type: model.QuestionNumberplate,
				ConditionalDisplay: &model.Condition{
					Logic: model.LogicAnd,
					Rules: []model.ConditionRule{{QuestionID: "has_car", Operator: model.OpEquals, Value: "yes"}},
				},
			},
			{ID: "note", Type: model.QuestionHelperText},
		},
	}

	ids := func(questions []model.Question) []string {
		out := make([]string, 0, len(questions))
		for _, q := range questions {
			out = append(out, q.ID)
		}
		return out
	}

	if diff := cmp.Diff([]string{"has_car", "note"}, ids(Questions(step, model.Answers{"has_car": "no"}))); diff != "" {
		t.Fatalf("hidden plate mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"has_car", "plate", "note"}, ids(Questions(step, model.Answers{"has_car": "yes"}))); diff != "" {
		t.Fatalf("visible plate mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"has_car", "plate"}, ids(Inputs(step, model.Answers{"has_car": "yes"}))); diff != "" {
		t.Fatalf("inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluatorFunc(t *testing.T) {
	t.Parallel()

	hidden := EvaluatorFunc(func(model.Question, model.Answers) bool { return false })
	if hidden.Visible(model.Question{ID: "x"}, nil) {
		t.Fatalf("expected custom evaluator to hide question")
	}
	if !Default.Visible(model.Question{ID: "x"}, nil) {
		t.Fatalf("expected question without condition to be visible")
	}
}
