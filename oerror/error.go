package oerror

import (
	"errors"
	"fmt"
)

// OomphError is an error raised by the simulation. It carries a formatted message and, when it was built
// from another error, the cause so that errors.Is and errors.As keep working.
type OomphError struct {
	Err   string
	cause error
}

// NewOomphError returns an OomphError with the message passed.
func NewOomphError(err string) *OomphError {
	return &OomphError{Err: err}
}

// New formats a new OomphError. If one of the arguments is an error, it is kept as the cause.
func New(format string, args ...any) *OomphError {
	e := &OomphError{Err: fmt.Sprintf(format, args...)}
	for _, a := range args {
		if err, ok := a.(error); ok {
			e.cause = err
			break
		}
	}
	return e
}

// Recovered converts a value returned by recover() into an error.
func Recovered(v any) error {
	switch v := v.(type) {
	case nil:
		return nil
	case error:
		var oe *OomphError
		if errors.As(v, &oe) {
			return v
		}
		return New("recovered panic: %v", v)
	default:
		return New("recovered panic: %v", v)
	}
}

func (e *OomphError) Error() string {
	return e.Err
}

func (e *OomphError) Unwrap() error {
	return e.cause
}
