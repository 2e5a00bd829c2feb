package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured error returned by the backend. Detail carries the
// human-readable message from the response body, surfaced to the user
// verbatim when present.
type Error struct {
	StatusCode int
	Detail     string
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// newError builds an Error from a non-2xx response body.
func newError(status int, body []byte) *Error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return &Error{StatusCode: status, Detail: eb.Detail}
	}
	return &Error{StatusCode: status}
}

// IsAuthError reports whether err is a 401 from the backend, meaning the
// credentials or token were rejected.
func IsAuthError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}
