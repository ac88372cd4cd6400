package platform

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("platform: not found")
	ErrUnauthorized = errors.New("platform: unauthorized")
)

// APIError carries the HTTP status and message of a failed platform call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("platform: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("platform: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}
