package clientcli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Local errors, raised before any request is sent.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrTokenRequired     = errors.New("token is required")
	ErrNameRequired      = errors.New("name is required")
	ErrEmptyID           = errors.New("record id is required")
	ErrNoIDs             = errors.New("no record ids provided")
	ErrWorkspaceRequired = errors.New("workspace is required for non-note records")

	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

// Server errors. Match them with errors.Is; any *APIError with the same status matches.
var (
	ErrBadRequest   = &APIError{StatusCode: http.StatusBadRequest}
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound}
)

// APIError is a non-2xx response. Code and Message come from the server's
// {"error","message"} body when it has one; Body keeps the raw text either way.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error: %d - %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("server error: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	var t *APIError
	return errors.As(target, &t) && t.StatusCode == e.StatusCode
}

func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var se serverError
	if json.Unmarshal(body, &se) == nil {
		apiErr.Code, apiErr.Message = se.Error, se.Message
	}
	return apiErr
}
