package api

import (
	"errors"
	"fmt"
)

// ErrBadCredentials is returned when the backend rejects a login
// attempt outright.
var ErrBadCredentials = errors.New("api: invalid credentials")

// ServerError is an application-level rejection: the backend answered
// and said no. Reason carries the backend's own text (for example
// "This issue has been forgiven") for surfacing to the user on writes.
type ServerError struct {
	StatusCode int
	Reason     string
}

func (e *ServerError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("api: backend rejected request (%d): %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("api: backend rejected request (%d)", e.StatusCode)
}

// TransportError means the request never completed: no usable response
// arrived.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ReasonOf extracts the backend-provided reason text from an error, if
// any, for user-visible failure messages.
func ReasonOf(err error) string {
	var srv *ServerError
	if errors.As(err, &srv) {
		return srv.Reason
	}
	return ""
}
