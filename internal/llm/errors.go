package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// AuthError means the provider rejected the credential.
type AuthError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm auth error (status %d): %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm auth error (status %d): %s", e.StatusCode, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// RateLimitError means the provider asked us to slow down.
type RateLimitError struct {
	Message string
	Cause   error
}

func (e *RateLimitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm rate limited: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm rate limited: %s", e.Message)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// TimeoutError means an attempt did not complete within the call timeout.
type TimeoutError struct {
	Message string
	Cause   error
}

func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm timeout: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm timeout: %s", e.Message)
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError means the provider answered but the answer has no
// usable generated text.
type MalformedResponseError struct {
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm malformed response: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm malformed response: %s", e.Message)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// APICallError covers every other provider or transport failure.
// StatusCode is zero when no HTTP response was received.
type APICallError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm call failed (status %d): %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("llm call failed (status %d): %s", e.StatusCode, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether a failed attempt may be tried again. Only
// timeouts and provider rate limits qualify.
func IsRetryable(err error) bool {
	var timeoutErr *TimeoutError
	var rateErr *RateLimitError
	return errors.As(err, &timeoutErr) || errors.As(err, &rateErr)
}

// fromStatus maps an HTTP status returned by a provider onto an error type.
func fromStatus(status int, message string, cause error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{StatusCode: status, Message: message, Cause: cause}
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Message: message, Cause: cause}
	case status == http.StatusRequestTimeout:
		return &TimeoutError{Message: message, Cause: cause}
	default:
		return &APICallError{StatusCode: status, Message: message, Cause: cause}
	}
}

// fromTransport classifies an error that carries no provider status.
func fromTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Message: "request exceeded timeout", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Message: "network timeout", Cause: err}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &MalformedResponseError{Message: "response body is not a completion", Cause: err}
	}
	return &APICallError{Message: "request failed", Cause: err}
}
