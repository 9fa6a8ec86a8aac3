package errors

import (
	stdErrors "errors"
	"fmt"
)

// TransientFetchError represents a search that failed before a response
// arrived (network failure, timeout, unreadable body). Re-invoking the
// search may succeed.
type TransientFetchError struct {
	Term string
	Err  error
}

func (e *TransientFetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetching books for %q failed", e.Term)
	}
	return fmt.Sprintf("fetching books for %q failed: %v", e.Term, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// NewTransientFetchError wraps err as a transient failure for term.
func NewTransientFetchError(term string, err error) *TransientFetchError {
	return &TransientFetchError{Term: term, Err: err}
}

// IsTransientFetchError checks if err is a TransientFetchError
func IsTransientFetchError(err error) bool {
	var fetchErr *TransientFetchError
	return stdErrors.As(err, &fetchErr)
}

// RemoteError represents a non-2xx answer from the book search API.
type RemoteError struct {
	Message    string
	StatusCode int
	Term       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (HTTP %d) for %q", e.Message, e.StatusCode, e.Term)
}

// NewRemoteError creates a RemoteError with a message derived from the status code
func NewRemoteError(statusCode int, term string) *RemoteError {
	var message string

	switch statusCode {
	case 429:
		message = "Book search API rate limit exceeded"
	case 403:
		message = "Book search API refused the request - check API key and quota"
	case 400:
		message = "Book search API rejected the query"
	default:
		if statusCode >= 500 {
			message = "Book search API is unavailable"
		} else {
			message = "Book search API error"
		}
	}

	return &RemoteError{
		Message:    message,
		StatusCode: statusCode,
		Term:       term,
	}
}

// IsRemoteError checks if err is a RemoteError
func IsRemoteError(err error) bool {
	var remoteErr *RemoteError
	return stdErrors.As(err, &remoteErr)
}

// AsRemoteError returns the RemoteError in err's chain, if any.
func AsRemoteError(err error) (*RemoteError, bool) {
	var remoteErr *RemoteError
	if stdErrors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}
