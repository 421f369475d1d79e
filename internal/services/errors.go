package services

import (
	"errors"
	"fmt"

	"notesapp/internal/repositories"
	"notesapp/internal/validation"
)

var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("unauthorized")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrExpired    = errors.New("expired")
	ErrMismatch   = errors.New("mismatch")
	ErrDuplicate  = errors.New("already exists")
	ErrNoOTP      = fmt.Errorf("%w: no otp pending", ErrAuth)
)

// ValidationError lists the offending fields. errors.Is(err, ErrValidation)
// holds for every ValidationError; Cause narrows it further (ErrDuplicate,
// ErrMismatch).
type ValidationError struct {
	Fields []validation.FieldError
	Msg    string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if len(e.Fields) > 0 {
		return validation.Summary(e.Fields)
	}
	return ErrValidation.Error()
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrValidation, e.Cause}
	}
	return []error{ErrValidation}
}

func invalid(msg string, fields ...validation.FieldError) *ValidationError {
	return &ValidationError{Msg: msg, Fields: fields}
}

func validate(req any) error {
	if fields := validation.Struct(req); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// storeErr turns repository sentinels into service ones.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}
