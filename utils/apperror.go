package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrConflict is returned by conversation stores when a save loses a race
// against another turn for the same user.
var ErrConflict = errors.New("conversation was modified concurrently")

// ClientInputError reports a request the core refuses before touching any state.
type ClientInputError struct {
	Message string
}

func (e *ClientInputError) Error() string {
	return e.Message
}

// DownstreamResponseError means a dependency answered, but with an error.
// Payload is the decoded error body (JSON value or raw text).
type DownstreamResponseError struct {
	Service    string
	StatusCode int
	Payload    any
}

func (e *DownstreamResponseError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Service, e.StatusCode)
}

// DownstreamUnavailableError means no response was received from a dependency.
type DownstreamUnavailableError struct {
	Service string
	Err     error
}

func (e *DownstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
}

func (e *DownstreamUnavailableError) Unwrap() error {
	return e.Err
}

// NewDownstreamResponseError builds a DownstreamResponseError, falling back to
// 502 when the dependency did not report a usable HTTP status.
func NewDownstreamResponseError(service string, status int, payload any) *DownstreamResponseError {
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &DownstreamResponseError{Service: service, StatusCode: status, Payload: payload}
}

// IsNetworkError reports whether err is a transport failure where no
// response was received.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// ErrorStatus maps an error onto the HTTP status and "error" body value
// exposed to clients.
func ErrorStatus(err error) (int, any) {
	var (
		inputErr    *ClientInputError
		responseErr *DownstreamResponseError
		unavailErr  *DownstreamUnavailableError
	)

	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Message
	case errors.As(err, &responseErr):
		return responseErr.StatusCode, responseErr.Payload
	case errors.As(err, &unavailErr):
		return http.StatusServiceUnavailable, "Service unavailable"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "Conversation was modified concurrently"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
