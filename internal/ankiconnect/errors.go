package ankiconnect

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAddress    = errors.New("anki connect address is empty")
	ErrMalformedResult = errors.New("malformed result")
)

// ConnectionError means AnkiConnect could not be reached at all.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to AnkiConnect at %s (is Anki running with the AnkiConnect add-on installed?): %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RequestError covers everything after the connection was established:
// timeouts, bad HTTP status, undecodable bodies and errors reported by
// AnkiConnect itself (Message).
type RequestError struct {
	Action  string
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("anki connect action %q failed: %s", e.Action, e.Message)
	}
	return fmt.Sprintf("anki connect action %q failed: %v", e.Action, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is, or wraps, a *ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}
