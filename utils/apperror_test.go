package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   any
	}{
		{
			name:       "client input",
			err:        &ClientInputError{Message: "Missing required fields"},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing required fields",
		},
		{
			name:       "downstream response keeps status and payload",
			err:        fmt.Errorf("book room: %w", NewDownstreamResponseError("booking", http.StatusUnprocessableEntity, map[string]any{"msg": "taken"})),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]any{"msg": "taken"},
		},
		{
			name:       "downstream unavailable",
			err:        &DownstreamUnavailableError{Service: "rooms", Err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "Service unavailable",
		},
		{
			name:       "conflict",
			err:        fmt.Errorf("save: %w", ErrConflict),
			wantStatus: http.StatusConflict,
			wantBody:   "Conversation was modified concurrently",
		},
		{
			name:       "anything else",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := ErrorStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestNewDownstreamResponseErrorFallsBackToBadGateway(t *testing.T) {
	err := NewDownstreamResponseError("llm", 0, "no status")
	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
}

func TestIsNetworkError(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	assert.True(t, IsNetworkError(fmt.Errorf("wrapped: %w", opErr)))
	assert.False(t, IsNetworkError(errors.New("plain")))
	assert.False(t, IsNetworkError(context.Canceled))
	assert.False(t, IsNetworkError(nil))
}
