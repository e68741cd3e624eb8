package reminder

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching.
var (
	ErrValidation  = errors.New("invalid reminder")
	ErrNotFound    = errors.New("reminder not found")
	ErrPersistence = errors.New("reminder storage failure")
)

// ValidationError reports a rejected description or due time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError reports an id that matches no stored reminder.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("reminder %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PersistenceError wraps a failure reading, parsing or writing the reminders file.
type PersistenceError struct {
	Op   string // "read", "parse" or "write"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// Malformed reports whether the file exists but could not be parsed.
func (e *PersistenceError) Malformed() bool { return e.Op == "parse" }
