package flexit

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection covers network level failures, timeouts included.
	ErrConnection = errors.New("flexit: connection failure")
	// ErrTimeout is always reported together with ErrConnection.
	ErrTimeout = errors.New("flexit: request timed out")
	// ErrProtocol covers unexpected statuses, content types and payloads.
	ErrProtocol = errors.New("flexit: protocol failure")
	// ErrSetup is returned when the initial auth or fetches fail.
	ErrSetup = errors.New("flexit: setup failure")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed with status code: %d, details: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrProtocol
}

func protocolError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtocol, fmt.Sprintf(format, args...))
}
