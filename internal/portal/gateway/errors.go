package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkMessage is reported when no HTTP response was received.
const NetworkMessage = "Network error: unable to reach the LMS server"

// Error is the uniform failure returned by every Client call.
// Status is 0 when the request never produced a response.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Network reports whether the failure happened before any response arrived.
func (e *Error) Network() bool { return e.Status == 0 }

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Status
	}
	return 0
}

// MessageOf returns the server supplied message, or fallback when err is not
// a gateway error or carries no message.
func MessageOf(err error, fallback string) string {
	var ge *Error
	if errors.As(err, &ge) && ge.Message != "" {
		return ge.Message
	}
	return fallback
}

func networkError(err error) *Error {
	return &Error{Message: NetworkMessage, Err: err}
}

// statusError picks the body's message, then its error field, then the
// standard status text.
func statusError(status int, message, errField string) *Error {
	msg := message
	if msg == "" {
		msg = errField
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Message: msg}
}
