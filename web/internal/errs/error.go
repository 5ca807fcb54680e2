package errs

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrCopyNotFound  = errors.New("copy not found")
	ErrDefault       = errors.New("some error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrValidation    = errors.New("validation failed")
	ErrNotConfirmed  = errors.New("action is not confirmed")
	ErrNoSelection   = errors.New("no book selected")
	ErrCompanyLocked = errors.New("company is fixed to the signed-in tenant")
	ErrBusy          = errors.New("another action is in progress")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrDefault.Error()
}

// Is lets errors.Is(err, ErrNotFound) match a 404 answer.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == 404 ||
		target == ErrUnauthorized && (e.Code == 401 || e.Code == 403)
}

// ValidationError carries field -> message key pairs for inline display.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
