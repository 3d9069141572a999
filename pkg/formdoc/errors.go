package formdoc

import "errors"

var (
	// ErrEmptyDocument is returned for documents with no content.
	ErrEmptyDocument = errors.New("formdoc: empty document")
	// ErrInvalidDocument is returned when a document is neither JSON nor YAML
	// describing a form.
	ErrInvalidDocument = errors.New("formdoc: invalid JSON or YAML")
	// ErrDuplicateForm is returned when two documents share a form id.
	ErrDuplicateForm = errors.New("formdoc: duplicate form id")
	// ErrLint is wrapped by Issues.Err when a lint run found errors.
	ErrLint = errors.New("formdoc: lint failed")
)
