package domain

import (
	"errors"
	"fmt"
)

// Client-side validation failures. None of these ever reach the network.
var (
	ErrNoFile           = errors.New("please choose a file")
	ErrTitleRequired    = errors.New("title is required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidVersion   = errors.New("version must be a positive integer")
	ErrNotPermitted     = errors.New("action not permitted for this document")
	ErrBusy             = errors.New("another change is still in progress")
	ErrNotLoaded        = errors.New("document is not loaded")
	ErrInvalidRole      = errors.New("role must be employee or manager")
)

// APIError is the typed failure of a single API call.
type APIError struct {
	Kind   ErrorKind
	Status int
	// Message is the server-supplied human-readable detail, if any.
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindServer:
		if e.Message != "" {
			return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
		}
		return fmt.Sprintf("request failed with status code %d", e.Status)
	case KindDecode:
		return fmt.Sprintf("decoding response: %v", e.Err)
	default:
		return fmt.Sprintf("network error: %v", e.Err)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is one of the client-side validation
// failures.
func IsValidation(err error) bool {
	for _, v := range []error{ErrNoFile, ErrTitleRequired, ErrPasswordMismatch, ErrInvalidVersion, ErrInvalidRole} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// UserMessage picks the single message shown for a failed operation: the
// server's detail first, then a transport/status summary, then fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if msg := apiErr.Error(); msg != "" {
			return msg
		}
		return fallback
	}
	if IsValidation(err) || errors.Is(err, ErrNotPermitted) || errors.Is(err, ErrBusy) {
		return err.Error()
	}
	return fallback
}
