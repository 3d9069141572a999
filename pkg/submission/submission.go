// Package submission delivers completed answer maps. The session calls a
// Submitter once the form navigates past its last step; implementations
// post to a webhook or persist into a SQL store.
package submission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ErrNotConfigured is returned when a form's submission config cannot be
// served by the available sinks.
var ErrNotConfigured = errors.New("submission: not configured")

// Submission is one completed run of a form.
type Submission struct {
	ID          string        `json:"id"`
	FormID      string        `json:"formId"`
	Answers     model.Answers `json:"answers"`
	SubmittedAt time.Time     `json:"submittedAt"`
}

// NewSubmission stamps answers with a time ordered identifier.
func NewSubmission(formID string, answers model.Answers, now time.Time) Submission {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return Submission{
		ID:          id.String(),
		FormID:      formID,
		Answers:     answers.Clone(),
		SubmittedAt: now.UTC(),
	}
}

// Submitter delivers a submission.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, sub Submission) error

// Submit calls fn.
func (fn SubmitterFunc) Submit(ctx context.Context, sub Submission) error {
	return fn(ctx, sub)
}

// Discard accepts every submission without side effects.
var Discard Submitter = SubmitterFunc(func(context.Context, Submission) error { return nil })

// Multi fans a submission out to every submitter in order, stopping at the
// first error.
func Multi(submitters ...Submitter) Submitter {
	return SubmitterFunc(func(ctx context.Context, sub Submission) error {
		for _, s := range submitters {
			if s == nil {
				continue
			}
			if err := s.Submit(ctx, sub); err != nil {
				return err
			}
		}
		return nil
	})
}
