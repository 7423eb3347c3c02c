package bot

import (
	"errors"

	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

var (
	ErrUnauthorized  = errors.New("user is not allowed to do that")
	ErrNotRegistered = errors.New("user is not registered")
	ErrUserRemoved   = errors.New("user has been removed")
)

// ValidationError is malformed user input. The user may retry the same step.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return "validation failed: " + e.Err.Error()
	}
	return "validation failed: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(message string, err error) error {
	return &ValidationError{Message: message, Err: err}
}

// NotFoundError is a referenced meeting, user, invitation or question that is gone
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.Message
}

func (e *NotFoundError) Unwrap() error {
	return storage.ErrNotFound
}

// notFound turns storage.ErrNotFound into a NotFoundError with a user facing message
func notFound(err error, message string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Message: message}
	}
	return err
}
