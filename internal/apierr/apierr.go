// Package apierr defines the error taxonomy shared by all handlers and the
// single translator that maps errors onto HTTP responses.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Error is a categorized failure with an HTTP status.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// MissingFields signals an incomplete request body.
func MissingFields(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized covers bad credentials and invalid, expired or missing
// tokens. The message is deliberately generic so callers cannot tell which
// part of the credential check failed.
func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}
}

// Forbidden signals an authenticated user lacking the required role.
func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden, Message: "Forbidden"}
}

// EmailAlreadyRegistered signals a registration attempt for a taken email.
func EmailAlreadyRegistered() *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: "Email is already registered"}
}

// UpstreamUnavailable wraps a third-party API error, keeping the upstream
// description when one was provided.
func UpstreamUnavailable(description string, cause error) *Error {
	if description == "" {
		description = "Upstream service unavailable"
	}
	return &Error{Status: http.StatusUnprocessableEntity, Message: description, cause: cause}
}

// StoreFailure wraps a persistence-layer error.
func StoreFailure(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", cause: cause}
}

// Internal wraps an uncategorized error.
func Internal(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", cause: cause}
}

// Write translates err into a status code and JSON body. 4xx failures
// surface their specific message; 5xx failures get a generic message so
// internal detail never reaches the client.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}

	message := apiErr.Message
	if apiErr.Status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", apiErr.Status).Msg("Request failed")
		message = "Internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  apiErr.Status,
		"message": message,
	})
}
