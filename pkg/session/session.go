// Package session runs a form: it owns the answer and error maps, the current
// step and the staged transitions between steps.
//
// State changes go through Reduce, a pure function over immutable snapshots.
// Delayed work (auto-advance, auto-navigation, the two fade phases and the
// submission delay) occupies a single cancellable task slot, so at most one
// transition is ever in flight. Reset stops that task and bumps the state
// epoch; callbacks armed under an older epoch are discarded when they fire.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/progress"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Listener receives a snapshot after every event that changed the state.
type Listener func(State)

type listenerEntry struct {
	id int
	fn Listener
}

// Session is safe for concurrent use; events are serialised.
type Session struct {
	mu sync.Mutex

	form      model.Form
	index     *model.Index
	validator *validation.Validator
	scheduler Scheduler
	submitter submission.Submitter
	timing    Timing
	logger    *slog.Logger
	ctx       context.Context
	now       func() time.Time

	initial   model.Answers
	state     State
	version   uint64
	task      Task
	ticket    uint64
	listeners []listenerEntry
	nextID    int
}

// New starts a session on the first step of form. Hidden question defaults
// seed the answer map.
func New(form model.Form, opts ...Option) (*Session, error) {
	if len(form.Steps) == 0 {
		return nil, ErrNoSteps
	}
	s := &Session{
		form:      form,
		validator: validation.New(),
		scheduler: TimerScheduler(),
		timing:    DefaultTiming(),
		logger:    slog.Default(),
		ctx:       context.Background(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.index = model.NewIndex(&s.form)
	s.initial = s.index.Defaults()
	s.state = State{
		Answers: s.initial.Clone(),
		Errors:  model.Errors{},
		Status:  StatusViewing,
	}
	return s, nil
}

// Form returns the form being run.
func (s *Session) Form() model.Form {
	return s.form
}

// Index returns the field key index of the form.
func (s *Session) Index() *model.Index {
	return s.index
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// CurrentStep returns the step being viewed.
func (s *Session) CurrentStep() model.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStep()
}

// VisibleQuestions returns the questions of the current step whose display
// condition holds for the current answers.
func (s *Session) VisibleQuestions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return visibility.Questions(s.currentStep(), s.state.Answers)
}

// Progress returns the completion percentage using the form's progress
// configuration.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.ForForm(s.form, s.state.StepIndex, s.state.Answers)
}

// CanGoBack reports whether Back would change the step.
func (s *Session) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return navigation.ResolvePrev(s.state.StepIndex, s.form.Steps) != s.state.StepIndex
}

// WillSubmit reports whether Continue from the current step would submit the
// form with the current answers.
func (s *Session) WillSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return navigation.ResolveNext(s.state.StepIndex, s.form.Steps, s.state.Answers).IsSubmit()
}

// Subscribe registers fn for state changes and returns a function that
// removes it. Listeners run outside the session lock.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.listeners {
			if entry.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// SetAnswer stores value under key (an answer key or a question id) and runs
// the auto-navigation and auto-advance checks against the updated answers.
func (s *Session) SetAnswer(key string, value any) error {
	return s.do(func() error {
		ref, ok := s.resolveField(key)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, key)
		}
		if err := s.guardInput(); err != nil {
			return err
		}
		s.dispatch(Action{Type: ActionSetAnswer, Key: ref.Key, Value: value})
		s.afterAnswer(ref.Key)
		return nil
	})
}

// Continue validates the current step when required and moves to the
// resolved next step, or submits. Validation is skipped when any conditional
// navigation rule of the step holds. A pending auto-advance or
// auto-navigation delay is superseded.
func (s *Session) Continue(ctx context.Context) error {
	return s.do(func() error {
		return s.continueLocked(ctx)
	})
}

// Back moves to the step's defaultPrevStep or the previous step. On the first
// step it does nothing.
func (s *Session) Back() error {
	return s.do(func() error {
		if err := s.guardNavigation(); err != nil {
			return err
		}
		prev := navigation.ResolvePrev(s.state.StepIndex, s.form.Steps)
		if prev == s.state.StepIndex {
			return nil
		}
		s.cancelDelay()
		s.transition(navigation.StepTarget(prev), ReasonBack)
		return nil
	})
}

// Submit submits the form immediately, without validating the current step.
func (s *Session) Submit(ctx context.Context) error {
	return s.do(func() error {
		if err := s.guardNavigation(); err != nil {
			return err
		}
		s.cancelDelay()
		s.beginSubmit(ctx)
		return nil
	})
}

// PressEnter handles the Enter key. Unless the focused control is multiline,
// a step with enterKeyAdvance continues as if Continue was pressed. The
// boolean reports whether the key was handled.
func (s *Session) PressEnter(ctx context.Context, multiline bool) (bool, error) {
	var handled bool
	err := s.do(func() error {
		if multiline || !s.currentStep().EnterKeyAdvance {
			return nil
		}
		handled = true
		return s.continueLocked(ctx)
	})
	return handled, err
}

// Reset returns to the first step with the initial answers and no errors.
// Any pending transition or submission is abandoned.
func (s *Session) Reset() {
	_ = s.do(func() error {
		s.stopTask()
		s.ticket++
		s.dispatch(Action{Type: ActionReset, Initial: s.initial})
		return nil
	})
}

func (s *Session) continueLocked(ctx context.Context) error {
	if err := s.guardNavigation(); err != nil {
		return err
	}
	s.cancelDelay()

	step := s.currentStep()
	answers := s.state.Answers
	if step.ValidateOnContinue && !navigation.AnyRuleMatches(step, answers) {
		errs := s.validator.ValidateStep(step, answers)
		s.dispatch(Action{Type: ActionSetErrors, Errors: errs})
		if !errs.Valid() {
			s.logger.Debug("continue blocked by validation",
				"form", s.form.ID, "step", step.ID, "errors", len(errs))
			return ErrInvalidStep
		}
	}

	target := navigation.ResolveNext(s.state.StepIndex, s.form.Steps, answers)
	if target.IsSubmit() {
		s.beginSubmit(ctx)
		return nil
	}
	s.transition(target, ReasonContinue)
	return nil
}

// afterAnswer re-runs the auto-navigation and auto-advance checks. A pending
// delay is dropped first so the checks always see the latest answers.
func (s *Session) afterAnswer(key string) {
	switch s.state.Pending.Phase {
	case PhaseIdle:
	case PhaseDelay:
		s.cancelDelay()
	default:
		return
	}
	if target, ok := navigation.MatchRule(s.state.StepIndex, s.form.Steps, s.state.Answers); ok {
		s.schedule(ReasonAutoNavigate, target, s.timing.AutoNavigate)
		return
	}
	if s.autoAdvanceKey() == key && filled(s.state.Answers[key]) {
		target := navigation.ResolveNext(s.state.StepIndex, s.form.Steps, s.state.Answers)
		s.schedule(ReasonAutoAdvance, target, s.timing.AutoAdvance)
	}
}

// autoAdvanceKey returns the answer key that advances the current step, or
// "" when the step does not auto-advance.
func (s *Session) autoAdvanceKey() string {
	step := s.currentStep()
	if !step.AutoAdvance || len(step.Questions) != 1 {
		return ""
	}
	return step.Questions[0].Key()
}

// schedule occupies the task slot with a delayed transition. The target is
// resolved again when the delay elapses so later answer changes are honoured.
func (s *Session) schedule(reason Reason, target navigation.Target, delay time.Duration) {
	s.dispatch(Action{Type: ActionSchedule, Target: target, Reason: reason})
	s.logger.Debug("transition scheduled",
		"form", s.form.ID, "reason", string(reason), "target", target.String(), "delay", delay)
	s.arm(delay, func() func() {
		next, ok := s.rescan(reason)
		if !ok {
			s.dispatch(Action{Type: ActionCancel})
			return nil
		}
		if next.IsSubmit() {
			s.beginSubmit(s.ctx)
			return nil
		}
		s.transition(next, reason)
		return nil
	})
}

func (s *Session) rescan(reason Reason) (navigation.Target, bool) {
	switch reason {
	case ReasonAutoNavigate:
		return navigation.MatchRule(s.state.StepIndex, s.form.Steps, s.state.Answers)
	case ReasonAutoAdvance:
		key := s.autoAdvanceKey()
		if key == "" || !filled(s.state.Answers[key]) {
			return navigation.Target{}, false
		}
		return navigation.ResolveNext(s.state.StepIndex, s.form.Steps, s.state.Answers), true
	default:
		return navigation.Target{}, false
	}
}

// transition runs the two phase step change: fade out, commit the new index,
// fade in.
func (s *Session) transition(target navigation.Target, reason Reason) {
	s.dispatch(Action{Type: ActionBeginTransition, Target: target, Reason: reason})
	s.arm(s.timing.FadeOut, func() func() {
		s.dispatch(Action{Type: ActionCommitStep, Target: target})
		s.logger.Debug("step committed",
			"form", s.form.ID, "step", s.currentStep().ID, "reason", string(reason))
		s.arm(s.timing.FadeIn, func() func() {
			s.dispatch(Action{Type: ActionEndTransition})
			return nil
		})
		return nil
	})
}

func (s *Session) beginSubmit(ctx context.Context) {
	if ctx == nil {
		ctx = s.ctx
	}
	s.dispatch(Action{Type: ActionBeginSubmit})
	s.arm(s.timing.Submit, func() func() {
		sub := submission.NewSubmission(s.form.ID, s.state.Answers, s.now())
		epoch := s.state.Epoch
		submitter := s.submitter
		return func() {
			var err error
			if submitter != nil {
				err = submitter.Submit(ctx, sub)
			}
			s.finishSubmit(epoch, sub, err)
		}
	})
}

func (s *Session) finishSubmit(epoch uint64, sub submission.Submission, err error) {
	_ = s.do(func() error {
		if epoch != s.state.Epoch || s.state.Status != StatusSubmitting {
			s.logger.Debug("discarding stale submission result", "submission", sub.ID)
			return nil
		}
		if err != nil {
			s.logger.Error("form submission failed",
				"form", s.form.ID, "submission", sub.ID, "error", err)
			s.dispatch(Action{Type: ActionSubmitFailed, Err: err.Error()})
			return nil
		}
		s.logger.Info("form submitted", "form", s.form.ID, "submission", sub.ID)
		s.dispatch(Action{Type: ActionSubmitSucceeded})
		return nil
	})
}

func (s *Session) guardInput() error {
	switch s.state.Status {
	case StatusSubmitted:
		return ErrSubmitted
	case StatusViewing:
		return nil
	default:
		return ErrBusy
	}
}

// guardNavigation rejects user navigation while a transition or submission
// is in flight. A pending delay does not block; the caller supersedes it.
func (s *Session) guardNavigation() error {
	if err := s.guardInput(); err != nil {
		return err
	}
	switch s.state.Pending.Phase {
	case PhaseFadeOut, PhaseFadeIn:
		return ErrBusy
	}
	return nil
}

func (s *Session) cancelDelay() {
	if s.state.Pending.Phase != PhaseDelay {
		return
	}
	s.stopTask()
	s.ticket++
	s.dispatch(Action{Type: ActionCancel})
}

// arm replaces the task slot with fn scheduled after delay. fn runs under the
// session lock and may return a function to run after the lock is released.
func (s *Session) arm(delay time.Duration, fn func() func()) {
	s.stopTask()
	s.ticket++
	ticket, epoch := s.ticket, s.state.Epoch
	s.task = s.scheduler.After(delay, func() {
		s.fire(ticket, epoch, fn)
	})
}

func (s *Session) fire(ticket, epoch uint64, fn func() func()) {
	s.mu.Lock()
	if ticket != s.ticket || epoch != s.state.Epoch {
		s.mu.Unlock()
		s.logger.Debug("discarding stale task", "form", s.form.ID)
		return
	}
	s.task = nil
	before := s.version
	after := fn()
	if s.version != before {
		s.unlockAndNotify()
	} else {
		s.mu.Unlock()
	}
	if after != nil {
		after()
	}
}

func (s *Session) stopTask() {
	if s.task != nil {
		s.task.Stop()
		s.task = nil
	}
}

// do runs fn under the lock and notifies listeners when fn changed the state.
func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	before := s.version
	err := fn()
	if s.version == before {
		s.mu.Unlock()
		return err
	}
	s.unlockAndNotify()
	return err
}

func (s *Session) dispatch(action Action) {
	s.state = Reduce(s.state, action)
	s.version++
	s.logger.Debug("session action",
		"action", action.Type.String(),
		"step", s.state.StepIndex,
		"status", s.state.Status.String(),
		"phase", s.state.Pending.Phase.String())
}

func (s *Session) unlockAndNotify() {
	snapshot := s.state.clone()
	listeners := make([]Listener, len(s.listeners))
	for i, entry := range s.listeners {
		listeners[i] = entry.fn
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (s *Session) currentStep() model.Step {
	return s.form.Steps[s.state.StepIndex]
}

func (s *Session) resolveField(key string) (model.FieldRef, bool) {
	if ref, ok := s.index.Field(key); ok {
		return ref, true
	}
	return s.index.ByID(key)
}

// filled reports whether value looks like a usable answer: a non-empty string
// or list, or any other non-nil value.
func filled(value any) bool {
	if list, ok := model.AsList(value); ok {
		return len(list) > 0
	}
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	default:
		return true
	}
}
