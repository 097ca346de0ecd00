// Package apperr defines the coded errors shared by the chat layer, the
// backend client and the reservation service.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies an error kind.
type Code string

const (
	// Chat layer
	CodeMissingRequiredEntity Code = "MISSING_REQUIRED_ENTITY"
	CodeBackendUnavailable    Code = "BACKEND_UNAVAILABLE"
	CodeBackendRejected       Code = "BACKEND_REJECTED"
	CodeUnclassifiedIntent    Code = "UNCLASSIFIED_INTENT"

	// Reservation backend
	CodeInvalidRequest      Code = "INVALID_REQUEST"
	CodeCourtNotFound       Code = "COURT_NOT_FOUND"
	CodeSlotTaken           Code = "SLOT_TAKEN"
	CodeReservationNotFound Code = "RESERVATION_NOT_FOUND"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error around a cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// BackendUnavailable marks a transport or decode failure talking to the backend.
func BackendUnavailable(operation string, err error) *Error {
	return Wrap(CodeBackendUnavailable, operation+" failed", err)
}

// BackendRejected marks a backend that answered but declined the operation.
// message is the backend's own text and may be empty.
func BackendRejected(message string) *Error {
	return New(CodeBackendRejected, message)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns the message of the first *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// IsRejection reports whether err is a decision by the backend rather than a
// failure to reach it.
func IsRejection(err error) bool {
	switch CodeOf(err) {
	case CodeBackendRejected, CodeInvalidRequest, CodeCourtNotFound, CodeSlotTaken, CodeReservationNotFound:
		return true
	}
	return false
}
