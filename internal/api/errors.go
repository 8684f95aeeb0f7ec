package api

import (
	"errors"
	"fmt"
)

// ErrAccessDenied marks a 403 on a seat-protected endpoint: the admission
// credential is missing, invalid or expired. Callers decide whether that is
// fatal (foreground action) or retryable (background poll).
var ErrAccessDenied = errors.New("access key rejected")

// APIError is any non-2xx platform reply that is not an access rejection.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("platform returned status %d: %s", e.StatusCode, e.Message)
}

// IsAccessDenied reports whether err stems from a rejected access credential.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}
