package services

import "errors"

// ErrNoRecipients is returned when an alert matches no registered users.
// It is a null-result state, not a failure.
var ErrNoRecipients = errors.New("no users found for location")

// ValidationError marks a rejected request precondition. Handlers map
// it to a 400 response carrying the reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(reason string) error {
	return &ValidationError{Reason: reason}
}
