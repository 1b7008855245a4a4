package newsapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError reports input that was rejected before any request was made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ErrNoAPIKey is returned when a request is attempted without an API key.
var ErrNoAPIKey = &ValidationError{Msg: "API key not configured"}

// TransportError wraps connectivity failures (DNS, refused, timeouts).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError is returned for HTTP 401.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string {
	return "API request failed: 401 Unauthorized"
}

// RateLimitError is returned for HTTP 429.
type RateLimitError struct {
	Body string
}

func (e *RateLimitError) Error() string {
	return "API request failed: 429 Too Many Requests"
}

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("API request failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ". Details: " + body
	}
	return msg
}

// classifyStatus maps a non-2xx response to its error kind.
func classifyStatus(status int, body string) error {
	switch status {
	case http.StatusUnauthorized:
		return &AuthError{Body: body}
	case http.StatusTooManyRequests:
		return &RateLimitError{Body: body}
	default:
		return &APIError{StatusCode: status, Body: body}
	}
}

// UserMessage turns an error from this package into the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		validation *ValidationError
		transport  *TransportError
		auth       *AuthError
		rate       *RateLimitError
	)
	switch {
	case errors.As(err, &validation):
		return validation.Msg
	case errors.As(err, &transport):
		return "Network error - please check your internet connection"
	case errors.As(err, &auth):
		return "Invalid API key - please check your settings"
	case errors.As(err, &rate):
		return "Rate limit exceeded - please try again later"
	default:
		return err.Error()
	}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
