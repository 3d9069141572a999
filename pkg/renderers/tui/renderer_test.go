package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	messages     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(substr string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

type recorder struct {
	subs []submission.Submission
	errs []error
}

func (r *recorder) Submit(_ context.Context, sub submission.Submission) error {
	r.subs = append(r.subs, sub)
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return err
	}
	return nil
}

func TestRender_SupportPath(t *testing.T) {
	form := testsupport.MustLoadForm(t, "contact.json")
	driver := &stubDriver{
		inputs:    []string{"Ada Lovelace", "ada@example.com", "", "D02 X285"},
		selectIdx: []int{1, 0, 0},
		textAreas: []string{"Printer on fire\n"},
		confirm:   []bool{true},
	}
	sink := &recorder{}
	r, err := New(WithPromptDriver(driver), WithSessionOptions(session.WithSubmitter(sink)))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), form)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := map[string]any{
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"phone":   "",
		"source":  "website",
		"topic":   "support",
		"eircode": "D02 X285",
		"details": "Printer on fire",
		"consent": true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("answers mismatch (-want +got):\n%s", diff)
	}

	if len(sink.subs) != 1 || sink.subs[0].FormID != "contact" {
		t.Fatalf("expected one contact submission, got %+v", sink.subs)
	}
	if driver.selectPos != 3 || driver.textPos != 1 || driver.confirmPos != 1 {
		t.Fatalf("prompts not consumed as expected: select=%d text=%d confirm=%d",
			driver.selectPos, driver.textPos, driver.confirmPos)
	}
	if !driver.sawInfo("We reply within two working days.") {
		t.Fatalf("expected sanitized helper text, got %q", driver.infoMessages)
	}
	if driver.sawInfo("<strong>") {
		t.Fatalf("helper text markup leaked: %q", driver.infoMessages)
	}
	if !driver.sawInfo("Thanks, we will be in touch.") {
		t.Fatalf("expected success message, got %q", driver.infoMessages)
	}
	if !driver.sawInfo("Support request") {
		t.Fatalf("expected step header for support, got %q", driver.infoMessages)
	}
	if driver.sawInfo("Sales enquiry") {
		t.Fatalf("sales step should have been skipped: %q", driver.infoMessages)
	}
}

func TestRender_ValidationReprompts(t *testing.T) {
	form := testsupport.MustLoadForm(t, "contact.json")
	driver := &stubDriver{
		inputs: []string{
			"A", "ada@example.com", "",
			"Ada", "ada@example.com", "",
			"50", "250",
		},
		selectIdx: []int{0, 0, 0, 0},
		confirm:   []bool{true},
	}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if r.ContentType() != "text/plain" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}

	out, err := r.Render(context.Background(), form)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"budget: 250",
		"consent: true",
		"email: ada@example.com",
		"name: Ada",
		"phone: ",
		"source: website",
		"topic: sales",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if !driver.sawInfo("! name: Must be at least 2 characters") {
		t.Fatalf("expected name error, got %q", driver.infoMessages)
	}
	if !driver.sawInfo("! budget: Must be at least 100") {
		t.Fatalf("expected budget error, got %q", driver.infoMessages)
	}
	if driver.inputPos != len(driver.inputs) {
		t.Fatalf("expected all inputs consumed, used %d", driver.inputPos)
	}
}

func singleStepForm() model.Form {
	return model.Form{
		ID:    "ping",
		Title: "Ping",
		Steps: []model.Step{{
			ID:             "only",
			Title:          "Only step",
			ContinueButton: model.ButtonConfig{Enabled: true},
			Questions: []model.Question{{
				ID:    "message",
				Type:  model.QuestionText,
				Label: "Message",
			}},
		}},
	}
}

func TestRender_SubmitFailureDeclined(t *testing.T) {
	driver := &stubDriver{inputs: []string{"hello"}, confirm: []bool{false}}
	sink := &recorder{errs: []error{errors.New("endpoint down")}}
	r, err := New(WithPromptDriver(driver), WithSessionOptions(session.WithSubmitter(sink)))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = r.Render(context.Background(), singleStepForm())
	if !errors.Is(err, ErrSubmitFailed) {
		t.Fatalf("expected ErrSubmitFailed, got %v", err)
	}
	if !driver.sawInfo("! submission failed: endpoint down") {
		t.Fatalf("expected failure message, got %q", driver.infoMessages)
	}
}

func TestRender_SubmitFailureRetried(t *testing.T) {
	driver := &stubDriver{inputs: []string{"hello"}, confirm: []bool{true}}
	sink := &recorder{errs: []error{errors.New("endpoint down")}}
	r, err := New(WithPromptDriver(driver), WithSessionOptions(session.WithSubmitter(sink)))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	state, err := r.Run(context.Background(), singleStepForm())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if state.Status != session.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", state.Status)
	}
	if len(sink.subs) != 2 {
		t.Fatalf("expected two attempts, got %d", len(sink.subs))
	}
	if !driver.sawInfo("Form submitted.") {
		t.Fatalf("expected default success message, got %q", driver.infoMessages)
	}
}

func TestRender_MultiValueAndNumbers(t *testing.T) {
	driver := &stubDriver{}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	question := model.Question{
		ID:   "tags",
		Type: model.QuestionCheckbox,
		Options: []model.Option{
			{Label: "Red", Value: "red"},
			{Label: "Blue", Value: "blue"},
			{Value: "green"},
		},
	}
	driver.multiIdx = [][]int{{0, 2}}
	got, err := r.promptQuestion(context.Background(), question, session.State{})
	if err != nil {
		t.Fatalf("prompt checkbox: %v", err)
	}
	if diff := cmp.Diff([]string{"red", "green"}, got); diff != "" {
		t.Fatalf("checkbox mismatch (-want +got):\n%s", diff)
	}

	driver.inputs = []string{"7.5", ""}
	number := model.Question{ID: "score", Type: model.QuestionRating, Label: "Score"}
	got, err = r.promptQuestion(context.Background(), number, session.State{})
	if err != nil {
		t.Fatalf("prompt number: %v", err)
	}
	if got != 7.5 {
		t.Fatalf("expected 7.5, got %v", got)
	}
	got, err = r.promptQuestion(context.Background(), number, session.State{})
	if err != nil {
		t.Fatalf("prompt empty number: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty number, got %v", got)
	}
}

func TestValidators(t *testing.T) {
	minLen := 3
	text := model.Question{ID: "code", Type: model.QuestionText, Validation: model.QuestionValidation{Required: true, MinLength: &minLen}}
	check := formatValidator(text)
	if err := check(""); err != nil {
		t.Fatalf("empty input should defer to the session, got %v", err)
	}
	if err := check("ab"); err == nil {
		t.Fatalf("expected length error")
	}
	if err := check("abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maxVal := 10.0
	number := numberValidator(model.Question{ID: "n", Type: model.QuestionNumber, Validation: model.QuestionValidation{Max: &maxVal}})
	if err := number("abc"); err == nil || err.Error() != "Must be a number" {
		t.Fatalf("expected number error, got %v", err)
	}
	if err := number("11"); err == nil {
		t.Fatalf("expected max error")
	}
	if err := number("9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}
