package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Timing holds the fixed delays of the staged transitions. Any value >= 0 is
// valid; zero delays still go through the scheduler.
type Timing struct {
	FadeOut      time.Duration `json:"fadeOut" yaml:"fade_out"`
	FadeIn       time.Duration `json:"fadeIn" yaml:"fade_in"`
	AutoAdvance  time.Duration `json:"autoAdvance" yaml:"auto_advance"`
	AutoNavigate time.Duration `json:"autoNavigate" yaml:"auto_navigate"`
	Submit       time.Duration `json:"submit" yaml:"submit"`
}

// DefaultTiming mirrors the preview's presentation delays.
func DefaultTiming() Timing {
	return Timing{
		FadeOut:      200 * time.Millisecond,
		FadeIn:       200 * time.Millisecond,
		AutoAdvance:  400 * time.Millisecond,
		AutoNavigate: 300 * time.Millisecond,
		Submit:       time.Second,
	}
}

func (t Timing) normalized() Timing {
	clampZero := func(d time.Duration) time.Duration {
		if d < 0 {
			return 0
		}
		return d
	}
	return Timing{
		FadeOut:      clampZero(t.FadeOut),
		FadeIn:       clampZero(t.FadeIn),
		AutoAdvance:  clampZero(t.AutoAdvance),
		AutoNavigate: clampZero(t.AutoNavigate),
		Submit:       clampZero(t.Submit),
	}
}

// Option configures a Session.
type Option func(*Session)

// WithScheduler overrides the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(sess *Session) {
		if s != nil {
			sess.scheduler = s
		}
	}
}

// WithSubmitter sets the sink called when the form is submitted. Without
// one, submission always succeeds.
func WithSubmitter(s submission.Submitter) Option {
	return func(sess *Session) {
		sess.submitter = s
	}
}

// WithTiming overrides DefaultTiming.
func WithTiming(t Timing) Option {
	return func(sess *Session) {
		sess.timing = t.normalized()
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sess *Session) {
		if logger != nil {
			sess.logger = logger
		}
	}
}

// WithValidator overrides the default validator.
func WithValidator(v *validation.Validator) Option {
	return func(sess *Session) {
		if v != nil {
			sess.validator = v
		}
	}
}

// WithContext sets the context used for submissions triggered without a
// caller context (auto-advance or auto-navigation onto submit).
func WithContext(ctx context.Context) Option {
	return func(sess *Session) {
		if ctx != nil {
			sess.ctx = ctx
		}
	}
}

// WithClock overrides the time source used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(sess *Session) {
		if now != nil {
			sess.now = now
		}
	}
}
