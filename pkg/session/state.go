package session

import (
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// Status is the coarse lifecycle position of a session.
type Status int

const (
	StatusViewing Status = iota
	StatusTransitioning
	StatusSubmitting
	StatusSubmitted
)

func (s Status) String() string {
	switch s {
	case StatusViewing:
		return "viewing"
	case StatusTransitioning:
		return "transitioning"
	case StatusSubmitting:
		return "submitting"
	case StatusSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Phase is the stage of the single pending transition.
type Phase int

const (
	PhaseIdle Phase = iota
	// PhaseDelay waits before starting a scheduled transition (auto-advance,
	// auto-navigation).
	PhaseDelay
	PhaseFadeOut
	PhaseFadeIn
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDelay:
		return "delay"
	case PhaseFadeOut:
		return "fade-out"
	case PhaseFadeIn:
		return "fade-in"
	default:
		return "unknown"
	}
}

// Reason records what triggered a transition.
type Reason string

const (
	ReasonAutoNavigate Reason = "auto-navigate"
	ReasonAutoAdvance  Reason = "auto-advance"
	ReasonContinue     Reason = "continue"
	ReasonBack         Reason = "back"
)

// Pending describes the transition in flight, if any.
type Pending struct {
	Target navigation.Target
	Phase  Phase
	Reason Reason
}

// Idle reports whether nothing is scheduled.
func (p Pending) Idle() bool {
	return p.Phase == PhaseIdle
}

// State is an immutable snapshot of a session. Reduce never modifies the
// maps of its input; callers must treat them as read-only.
type State struct {
	StepIndex   int
	Answers     model.Answers
	Errors      model.Errors
	Status      Status
	Pending     Pending
	SubmitError string
	// Epoch increases on every reset. Scheduled callbacks from an older
	// epoch are discarded.
	Epoch uint64
}

// Busy reports whether user navigation is currently blocked.
func (s State) Busy() bool {
	return s.Status != StatusViewing || !s.Pending.Idle()
}

func (s State) clone() State {
	out := s
	out.Answers = s.Answers.Clone()
	out.Errors = make(model.Errors, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	return out
}

// ActionType enumerates the state changes a session can apply.
type ActionType int

const (
	ActionSetAnswer ActionType = iota
	ActionSetErrors
	ActionSchedule
	ActionCancel
	ActionBeginTransition
	ActionCommitStep
	ActionEndTransition
	ActionBeginSubmit
	ActionSubmitSucceeded
	ActionSubmitFailed
	ActionReset
)

func (t ActionType) String() string {
	switch t {
	case ActionSetAnswer:
		return "set-answer"
	case ActionSetErrors:
		return "set-errors"
	case ActionSchedule:
		return "schedule"
	case ActionCancel:
		return "cancel"
	case ActionBeginTransition:
		return "begin-transition"
	case ActionCommitStep:
		return "commit-step"
	case ActionEndTransition:
		return "end-transition"
	case ActionBeginSubmit:
		return "begin-submit"
	case ActionSubmitSucceeded:
		return "submit-succeeded"
	case ActionSubmitFailed:
		return "submit-failed"
	case ActionReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Action is a single command applied by Reduce. Only the fields relevant to
// Type are read.
type Action struct {
	Type    ActionType
	Key     string
	Value   any
	Errors  model.Errors
	Target  navigation.Target
	Reason  Reason
	Err     string
	Initial model.Answers
}

// Reduce applies action to state and returns the next snapshot.
func Reduce(state State, action Action) State {
	next := state
	switch action.Type {
	case ActionSetAnswer:
		next.Answers = state.Answers.With(action.Key, action.Value)
		next.Errors = state.Errors.Without(action.Key)
	case ActionSetErrors:
		next.Errors = make(model.Errors, len(action.Errors))
		for k, v := range action.Errors {
			next.Errors[k] = v
		}
	case ActionSchedule:
		next.Pending = Pending{Target: action.Target, Phase: PhaseDelay, Reason: action.Reason}
	case ActionCancel:
		next.Pending = Pending{}
	case ActionBeginTransition:
		next.Status = StatusTransitioning
		next.Pending = Pending{Target: action.Target, Phase: PhaseFadeOut, Reason: action.Reason}
	case ActionCommitStep:
		next.StepIndex = action.Target.Index
		next.Errors = model.Errors{}
		next.Pending.Phase = PhaseFadeIn
	case ActionEndTransition:
		next.Status = StatusViewing
		next.Pending = Pending{}
	case ActionBeginSubmit:
		next.Status = StatusSubmitting
		next.Pending = Pending{}
		next.SubmitError = ""
	case ActionSubmitSucceeded:
		next.Status = StatusSubmitted
	case ActionSubmitFailed:
		next.Status = StatusViewing
		next.SubmitError = action.Err
	case ActionReset:
		next = State{
			StepIndex: 0,
			Answers:   action.Initial.Clone(),
			Errors:    model.Errors{},
			Status:    StatusViewing,
			Epoch:     state.Epoch + 1,
		}
	}
	return next
}
