package fetch

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an HTTP 404. The resource definitively does not exist;
// callers must not retry.
var ErrNotFound = errors.New("resource not found")

// NotFoundError carries the URL that returned 404.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ExhaustedError reports a download that failed after its full retry budget.
// It keeps the URL, attempt count, and (for POST) the request body so the
// failure can be reproduced.
type ExhaustedError struct {
	URL        string
	Attempts   int
	LastStatus int
	Body       string
	Err        error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("failed to download %s after %d attempts", e.URL, e.Attempts)
	if e.LastStatus != 0 {
		msg += fmt.Sprintf(" (last status %d)", e.LastStatus)
	}
	if e.Body != "" {
		msg += fmt.Sprintf(" (body %s)", e.Body)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// IsExhausted reports whether err is a retry-budget exhaustion.
func IsExhausted(err error) bool {
	var exhausted *ExhaustedError
	return errors.As(err, &exhausted)
}
