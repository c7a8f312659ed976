package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDependencyUnavailable indicates the record source failed or timed out
	ErrDependencyUnavailable = errors.New("record source unavailable")
	// ErrActivityExists indicates a client-supplied activity ID was already recorded
	ErrActivityExists = errors.New("activity already exists")
	// ErrInvalidActivity indicates an activity record failed validation
	ErrInvalidActivity = errors.New("invalid activity")
	// ErrInvalidWellness indicates a wellness log failed validation
	ErrInvalidWellness = errors.New("invalid wellness log")
)

// FieldError describes one invalid request field
type FieldError struct {
	Field   string
	Message string
	Code    string
}

// ValidationError collects every field error of a rejected request.
// It unwraps to the kind sentinel (ErrInvalidActivity or ErrInvalidWellness).
type ValidationError struct {
	Kind   error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%v: %s", e.Kind, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

type fieldErrors []FieldError

func (f *fieldErrors) add(field, message, code string) {
	*f = append(*f, FieldError{Field: field, Message: message, Code: code})
}

func (f fieldErrors) err(kind error) error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Fields: f}
}

func dependencyError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrDependencyUnavailable, err)
}
