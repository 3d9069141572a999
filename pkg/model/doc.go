// Package model defines the Form document interpreted by the runtime: steps,
// questions, validation blocks, conditions and conditional navigation rules,
// plus the transient Answers and Errors maps the runtime owns. Documents are
// produced by external editors and decoded from JSON or YAML; every type here
// is treated as read-only once loaded.
//
// Answer keys are resolved once per question (fieldName, falling back to the
// question id) through Index so callers never repeat the fallback logic.
package model
