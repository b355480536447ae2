// Package domain holds the contracts shared by the booking core: typed
// errors, repository interfaces and the injected clock.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by repository implementations.
var (
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrSlotTaken              = errors.New("slot already taken")
)

// ValidationError reports a business-rule violation. Callers can recover;
// note that a missed attendance window returns one of these after the
// no-show transition has already been committed.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// IsValidation checks if err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports an unknown booking, user or facility id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IsNotFound checks if err is a NotFoundError or the repository sentinel.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe) || errors.Is(err, ErrNotFound)
}

// AuthorizationError reports that the actor may not perform the operation.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

// Authorizationf builds an AuthorizationError with a formatted message.
func Authorizationf(format string, args ...interface{}) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// IsAuthorization checks if err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
