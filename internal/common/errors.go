// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Gateway errors.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
	ErrUnauthorized       = errors.New("unauthorized")

	// Onboarding errors.
	ErrNoSelection     = errors.New("no focus areas selected")
	ErrRequestInFlight = errors.New("request already in flight")
	ErrWrongStep       = errors.New("operation not valid in current step")
	ErrMachineFinished = errors.New("onboarding already complete")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
