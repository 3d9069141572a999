package model

import (
	"fmt"
	"sort"
)

// Answers maps answer keys to the values entered by the user. Values are
// strings, numbers, booleans or string lists ([]string or []any holding
// strings) for multi-value questions.
type Answers map[string]any

// Get returns the value stored under key.
func (a Answers) Get(key string) (any, bool) {
	if a == nil {
		return nil, false
	}
	value, ok := a[key]
	return value, ok
}

// Clone returns a copy that shares no list storage with the receiver.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for key, value := range a {
		out[key] = cloneValue(value)
	}
	return out
}

// With returns a copy of the receiver with key set to value.
func (a Answers) With(key string, value any) Answers {
	out := a.Clone()
	out[key] = cloneValue(value)
	return out
}

// Keys returns the answer keys sorted for deterministic output.
func (a Answers) Keys() []string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		return append([]any(nil), typed...)
	default:
		return value
	}
}

// AsList reports whether value is a multi-value answer and returns its
// elements as strings.
func AsList(value any) ([]string, bool) {
	switch typed := value.(type) {
	case []string:
		return typed, true
	case []any:
		out := make([]string, len(typed))
		for i, item := range typed {
			if s, ok := item.(string); ok {
				out[i] = s
				continue
			}
			out[i] = fmt.Sprint(item)
		}
		return out, true
	default:
		return nil, false
	}
}

// Errors maps answer keys to a single human readable validation message.
type Errors map[string]string

// Valid reports whether no field carries an error.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Without returns a copy of the receiver with key removed.
func (e Errors) Without(key string) Errors {
	if _, ok := e[key]; !ok {
		return e
	}
	out := make(Errors, len(e))
	for k, v := range e {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// Keys returns the field keys sorted for deterministic output.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
