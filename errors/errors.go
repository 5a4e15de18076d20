package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func E(op string, err error, message string, code int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return E(op, err, message, http.StatusBadRequest)
}

func NotFound(op string, err error, message string) *AppError {
	return E(op, err, message, http.StatusNotFound)
}

func Internal(op string, err error, message string) *AppError {
	return E(op, err, message, http.StatusInternalServerError)
}

// InvalidURL reports a URL no video identifier could be extracted from.
func InvalidURL(op string, err error) *AppError {
	return InvalidInput(op, err, "Invalid YouTube URL")
}

// MissingInput reports a required request field that was absent or empty.
func MissingInput(op string, field string) *AppError {
	return InvalidInput(op, nil, field+" is required")
}

// UpstreamUnavailable marks a provider failure. Resolvers recover from it by
// falling back, so it should not reach a client.
func UpstreamUnavailable(op string, err error, provider string) *AppError {
	return E(op, err, provider+" unavailable", http.StatusBadGateway)
}

// GenerationFailure carries the upstream message of a failed text or speech
// generation call back to the client.
func GenerationFailure(op string, err error) *AppError {
	msg := "generation failed"
	if err != nil {
		msg = err.Error()
	}
	return Internal(op, err, msg)
}

func RateLimitExceeded(op string) *AppError {
	return E(op, nil, "Rate limit exceeded", http.StatusTooManyRequests)
}

// CodeOf returns the HTTP status attached to err, or 500 for foreign errors.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// As is errors.As, re-exported so callers need only this package.
func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusNotFound
}

func IsInvalidInput(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == http.StatusBadRequest
}
