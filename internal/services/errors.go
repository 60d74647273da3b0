package services

import (
	"errors"
	"fmt"

	"bubblebliss/internal/hubtel"
	"bubblebliss/internal/repos"
)

// ValidationError is a client mistake: a bad, missing, hidden or sold out
// reference, or a malformed request. It is reported as-is and never retried.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrGateway      = hubtel.ErrGateway
	ErrNotFound     = repos.ErrNotFound
	ErrUnauthorized = errors.New("invalid credentials")
)

// IsValidation reports whether err should be answered with a 400.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
