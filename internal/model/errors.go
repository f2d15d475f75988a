package model

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across packages.
var (
	ErrValidation          = errors.New("validation error")
	ErrFormat              = errors.New("format error")
	ErrPersistence         = errors.New("persistence error")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNotFound            = errors.New("not found")
)

// ValidationError reports a field value that could not be parsed.
type ValidationError struct {
	Row   int // 1-based line in the source, 0 if not applicable
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: invalid %s %q: %v", e.Row, e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error        { return e.Err }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FormatError reports a structurally invalid persisted representation.
type FormatError struct {
	Target string
	Row    int
	Err    error
}

func (e *FormatError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("malformed %s: row %d: %v", e.Target, e.Row, e.Err)
	}
	return fmt.Sprintf("malformed %s: %v", e.Target, e.Err)
}

func (e *FormatError) Unwrap() error        { return e.Err }
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// PersistenceError wraps an I/O or storage backend failure.
type PersistenceError struct {
	Op     string // "save", "load", "open", "close"
	Target string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() error        { return e.Err }
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
