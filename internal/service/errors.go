package service

import (
	"errors"
)

var (
	ErrNotAuthorized = errors.New("user is not authorized")
	ErrNoSamples     = errors.New("no samples given")
	ErrInvalidRecord = errors.New("invalid sample record")
	ErrUnknownSample = errors.New("sample is not in the tracking list")
)

// Error pairs an internal error with a message safe to put in front of the user.
type Error struct {
	Err   error
	UIMsg string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.UIMsg
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage returns the user-facing text for err. Errors without a UI
// message fall back to their plain text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) && se.UIMsg != "" {
		return se.UIMsg
	}
	return err.Error()
}
