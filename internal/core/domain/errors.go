package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccess means credentials were accepted upstream but the user's role
	// is not on the dashboard allow-list.
	ErrNoAccess = errors.New("no access")

	// ErrSessionNotFound means no valid dashboard session exists for the request.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUpstream wraps transport-level failures talking to the booking API.
	ErrUpstream = errors.New("upstream request failed")

	// ErrForbidden means the session's role is not allowed for the route.
	ErrForbidden = errors.New("access forbidden")
)

// ValidationError carries the booking API's 422 response: a headline message
// plus per-field errors, rendered back to the dashboard as-is.
type ValidationError struct {
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// DeniedError carries a 401/403 from the booking API with its server-provided
// message, surfaced verbatim to the user.
type DeniedError struct {
	Status  int
	Message string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("login denied (%d): %s", e.Status, e.Message)
}
