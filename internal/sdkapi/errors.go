package sdkapi

import (
	"errors"
	"fmt"
)

// ErrMissingBackendURL is returned before any network attempt when the client
// has no backend address.
var ErrMissingBackendURL = errors.New("backend URL is not configured")

// GenerateErrorPrefix starts every user-facing transport failure.
const GenerateErrorPrefix = "Failed to generate SDK: "

// BackendError is a non-2xx answer from the backend.
type BackendError struct {
	StatusCode int
	StatusText string
	// Details is the indented JSON error body, or the unknown-error placeholder.
	Details string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("Backend error: %d %s\nDetails: %s", e.StatusCode, e.StatusText, e.Details)
}

// GenerateError wraps any failure of a generate call into the single
// user-facing message.
type GenerateError struct {
	Err error
}

func (e *GenerateError) Error() string {
	return GenerateErrorPrefix + e.Err.Error()
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}
