// Package tui runs a form session in the terminal. Questions are prompted
// through a PromptDriver, answers flow into a session.Session and the
// collected answers are serialized once the form is submitted.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Renderer drives a session from terminal prompts.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	policy       *bluemonday.Policy
	sessionOpts  []session.Option
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme(),
		policy:       bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render walks form step by step until it is submitted and returns the
// serialized answers.
func (r *Renderer) Render(ctx context.Context, form model.Form) ([]byte, error) {
	state, err := r.Run(ctx, form)
	if err != nil {
		return nil, err
	}
	return r.serialize(state.Answers)
}

// Run walks form step by step until it is submitted and returns the final
// session state. Scheduled delays and fades complete immediately.
func (r *Renderer) Run(ctx context.Context, form model.Form) (session.State, error) {
	if ctx == nil {
		return session.State{}, errors.New("tui: context is required")
	}
	sched := session.NewManualScheduler()
	opts := append(append([]session.Option{}, r.sessionOpts...),
		session.WithContext(ctx), session.WithScheduler(sched))
	sess, err := session.New(form, opts...)
	if err != nil {
		return session.State{}, err
	}

	lastStep := -1
	for {
		if err := ctx.Err(); err != nil {
			return session.State{}, err
		}
		state := sess.State()
		if state.Status == session.StatusSubmitted {
			r.info(ctx, successMessage(form))
			return state, nil
		}

		if state.StepIndex != lastStep {
			lastStep = state.StepIndex
			r.stepHeader(ctx, sess)
		}

		moved, err := r.promptStep(ctx, sess, sched)
		if err != nil {
			return session.State{}, err
		}
		if moved {
			if err := r.afterSubmit(ctx, sess, sched); err != nil {
				return session.State{}, err
			}
			continue
		}

		if err := r.navigate(ctx, sess, sched); err != nil {
			return session.State{}, err
		}
	}
}

func (r *Renderer) stepHeader(ctx context.Context, sess *session.Session) {
	step := sess.CurrentStep()
	title := strings.TrimSpace(step.Title)
	if title == "" {
		title = step.ID
	}
	if cfg := sess.Form().Progress; cfg.Enabled {
		title = fmt.Sprintf("%s (%s%%)", title, strconv.FormatFloat(sess.Progress(), 'f', 0, 64))
	}
	r.info(ctx, strings.TrimSpace(r.theme.StepPrefix+" "+title))
	if desc := r.sanitize(step.Description); desc != "" {
		r.info(ctx, desc)
	}
}

// promptStep asks every visible question of the current step once. The
// visible set is recomputed after each answer so conditional questions
// appear as soon as they apply. It reports true when an answer moved the
// session or attempted a submission.
func (r *Renderer) promptStep(ctx context.Context, sess *session.Session, sched *session.ManualScheduler) (bool, error) {
	start := sess.State()
	asked := make(map[string]struct{})
	for {
		question, ok := nextQuestion(sess.VisibleQuestions(), asked)
		if !ok {
			return false, nil
		}
		asked[question.ID] = struct{}{}

		if question.Type == model.QuestionHelperText {
			r.info(ctx, r.sanitize(question.Content))
			continue
		}

		value, err := r.promptQuestion(ctx, question, sess.State())
		if err != nil {
			return false, err
		}
		if err := sess.SetAnswer(question.Key(), value); err != nil {
			return false, err
		}
		if sess.State().Pending.Idle() {
			continue
		}
		sched.RunAll()
		after := sess.State()
		if after.StepIndex != start.StepIndex || after.Status != session.StatusViewing || after.SubmitError != "" {
			return true, nil
		}
	}
}

func nextQuestion(questions []model.Question, asked map[string]struct{}) (model.Question, bool) {
	for _, q := range questions {
		if q.Type == model.QuestionHidden {
			continue
		}
		if _, done := asked[q.ID]; done {
			continue
		}
		return q, true
	}
	return model.Question{}, false
}

// navigate offers the step buttons and applies the choice. Validation errors
// are printed and leave the session on the step.
func (r *Renderer) navigate(ctx context.Context, sess *session.Session, sched *session.ManualScheduler) error {
	step := sess.CurrentStep()
	forward := buttonLabel(step.ContinueButton, "Continue")
	if sess.WillSubmit() {
		forward = buttonLabel(step.ContinueButton, "Submit")
	}
	choices := []string{forward}
	if step.BackButton.Enabled && sess.CanGoBack() {
		choices = append(choices, buttonLabel(step.BackButton, "Back"))
	}

	choice := 0
	if len(choices) > 1 {
		idx, err := r.driver.Select(ctx, SelectConfig{Message: "Next", Options: choices})
		if err != nil {
			return err
		}
		choice = idx
	}

	var err error
	if choice == 1 {
		err = sess.Back()
	} else {
		err = sess.Continue(ctx)
	}
	sched.RunAll()

	switch {
	case errors.Is(err, session.ErrInvalidStep):
		state := sess.State()
		for _, key := range state.Errors.Keys() {
			r.errorf(ctx, "%s: %s", key, state.Errors[key])
		}
		return nil
	case err != nil:
		return err
	}
	return r.afterSubmit(ctx, sess, sched)
}

// afterSubmit offers a retry while the last submission attempt failed.
func (r *Renderer) afterSubmit(ctx context.Context, sess *session.Session, sched *session.ManualScheduler) error {
	for {
		state := sess.State()
		if state.SubmitError == "" || state.Status != session.StatusViewing {
			return nil
		}
		r.errorf(ctx, "submission failed: %s", state.SubmitError)
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Retry submission?", Default: true})
		if err != nil {
			return err
		}
		if !retry {
			return fmt.Errorf("%w: %s", ErrSubmitFailed, state.SubmitError)
		}
		if err := sess.Submit(ctx); err != nil {
			return err
		}
		sched.RunAll()
	}
}

func (r *Renderer) promptQuestion(ctx context.Context, q model.Question, state session.State) (any, error) {
	label := displayLabel(q)
	help := r.sanitize(q.HelpText)
	current, _ := state.Answers.Get(q.Key())

	switch {
	case q.Type == model.QuestionPrivacyPolicy:
		accepted, _ := current.(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: accepted, Help: help})

	case q.Type.IsMultiValue():
		labels, values := optionLists(q.Options)
		selected, _ := model.AsList(current)
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  labels,
			Defaults: indicesOf(values, selected),
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(values) {
				out = append(out, values[idx])
			}
		}
		return out, nil

	case q.Type == model.QuestionRadio || q.Type == model.QuestionSelect:
		labels, values := optionLists(q.Options)
		if len(labels) == 0 {
			return nil, nil
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: indexOf(values, condition.ToString(current)),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			return nil, nil
		}
		return values[idx], nil

	case q.Type.IsNumeric():
		text, err := r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   defaultText(current),
			Help:      help,
			Validator: numberValidator(q),
		})
		if err != nil {
			return nil, err
		}
		return parseNumber(text), nil
	}

	validator := formatValidator(q)
	if q.Textarea {
		text, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message:   label,
			Default:   defaultText(current),
			Help:      help,
			Validator: validator,
		})
		return strings.TrimRight(text, "\n"), err
	}
	return r.driver.Input(ctx, InputConfig{
		Message:   label,
		Default:   defaultText(current),
		Help:      help,
		Validator: validator,
	})
}

// formatValidator checks non-empty input against the question's rules as the
// user types. Required fields are left to the session so an empty answer can
// still be submitted and reported with the rest of the step.
func formatValidator(q model.Question) func(string) error {
	return func(text string) error {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if msg := validation.ValidateQuestion(q, text); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

func numberValidator(q model.Question) func(string) error {
	return func(text string) error {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		value := parseNumber(text)
		if value == nil {
			return errors.New("Must be a number")
		}
		if msg := validation.ValidateQuestion(q, value); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

// parseNumber returns nil for empty or unparsable input.
func parseNumber(text string) any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return f
}

func defaultText(value any) string {
	if value == nil {
		return ""
	}
	return condition.ToString(value)
}

func optionLists(options []model.Option) (labels, values []string) {
	for _, opt := range options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		labels = append(labels, label)
		values = append(values, opt.Value)
	}
	return labels, values
}

func displayLabel(q model.Question) string {
	label := strings.TrimSpace(q.Label)
	if label == "" {
		label = q.Key()
	}
	if q.Validation.Required {
		label += " *"
	}
	return label
}

func buttonLabel(cfg model.ButtonConfig, fallback string) string {
	if label := strings.TrimSpace(cfg.Label); label != "" {
		return label
	}
	return fallback
}

func successMessage(form model.Form) string {
	if msg := strings.TrimSpace(form.Submission.SuccessMessage); msg != "" {
		return msg
	}
	return "Form submitted."
}

// sanitize strips markup from author supplied text and decodes the entities
// the policy leaves behind.
func (r *Renderer) sanitize(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(r.policy.Sanitize(text)))
}

func (r *Renderer) info(ctx context.Context, msg string) {
	if msg == "" {
		return
	}
	if r.theme.InfoPrefix != "" {
		msg = r.theme.InfoPrefix + " " + msg
	}
	_ = r.driver.Info(ctx, msg)
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if r.theme.ErrorPrefix != "" {
		msg = r.theme.ErrorPrefix + " " + msg
	}
	_ = r.driver.Info(ctx, msg)
}

func (r *Renderer) serialize(answers model.Answers) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		var b strings.Builder
		for _, key := range answers.Keys() {
			fmt.Fprintf(&b, "%s: %s\n", key, prettyValue(answers[key]))
		}
		return []byte(b.String()), nil
	}
	payload, err := json.MarshalIndent(answers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode answers: %w", err)
	}
	return append(payload, '\n'), nil
}

func prettyValue(value any) string {
	if list, ok := model.AsList(value); ok {
		return strings.Join(list, ", ")
	}
	return condition.ToString(value)
}
