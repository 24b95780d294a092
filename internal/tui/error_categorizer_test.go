package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/studiowebux/dfspanel/internal/orchestrator"
	"github.com/studiowebux/dfspanel/internal/types"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantText string
	}{
		{
			name:     "nil error",
			err:      nil,
			wantText: "",
		},
		{
			name:     "not configured",
			err:      fmt.Errorf("generate: %w", types.ErrNotConfigured),
			wantText: "No database connection - press C to configure",
		},
		{
			name:     "nothing selected",
			err:      orchestrator.ErrNothingSelected,
			wantText: "No tables selected - press space on a table first",
		},
		{
			name:     "validation",
			err:      &types.ValidationError{Fields: []string{"db"}},
			wantText: `Invalid connection: connection field "db" is required`,
		},
		{
			name:     "breaker open",
			err:      &types.RemoteError{Endpoint: "/codegen", Err: gobreaker.ErrOpenState},
			wantText: "Service unavailable - too many failures, requests paused for a moment",
		},
		{
			name:     "breaker half open",
			err:      fmt.Errorf("codegen: %w", gobreaker.ErrTooManyRequests),
			wantText: "Service unavailable - too many failures, requests paused for a moment",
		},
		{
			name:     "deadline",
			err:      &types.RemoteError{Endpoint: "/tables", Err: context.DeadlineExceeded},
			wantText: "Request timeout - the service took too long, try increasing timeoutSeconds in settings",
		},
		{
			name:     "canceled",
			err:      context.Canceled,
			wantText: "Request cancelled",
		},
		{
			name:     "service message",
			err:      &types.RemoteError{Endpoint: "/codegen", Message: "SELECT command denied"},
			wantText: "Service error: SELECT command denied",
		},
		{
			name:     "service sentinel without message",
			err:      &types.RemoteError{Endpoint: "/conf"},
			wantText: "Service error on /conf",
		},
		{
			name: "connection refused errno",
			err: &types.RemoteError{Endpoint: "/con", Err: &net.OpError{
				Op:  "dial",
				Net: "tcp",
				Err: syscall.ECONNREFUSED,
			}},
			wantText: "Connection refused - check the service is running and baseURL is correct",
		},
		{
			name: "network unreachable errno",
			err: &net.OpError{
				Op:  "dial",
				Net: "tcp",
				Err: syscall.ENETUNREACH,
			},
			wantText: "Service unreachable - check network connection",
		},
		{
			name:     "decode failure",
			err:      &types.RemoteError{Endpoint: "/tables", Err: errors.New("failed to decode response: invalid character '<'")},
			wantText: "Unexpected response from service - is baseURL pointing at the generation service?",
		},
		{
			name:     "unknown",
			err:      errors.New("something odd"),
			wantText: "Request failed: something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeError(tt.err)
			if got != tt.wantText {
				t.Errorf("categorizeError() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestCategorizeErrorString(t *testing.T) {
	tests := []struct {
		name     string
		errStr   string
		wantText string
	}{
		{
			name:     "empty error",
			errStr:   "",
			wantText: "",
		},
		{
			name:     "connection refused",
			errStr:   "dial tcp 127.0.0.1:9999: connect: connection refused",
			wantText: "Connection refused - check the service is running and baseURL is correct",
		},
		{
			name:     "DNS lookup failure",
			errStr:   "dial tcp: lookup codegen.internal: no such host",
			wantText: "DNS resolution failed - verify the service hostname",
		},
		{
			name:     "connection reset",
			errStr:   "read tcp 127.0.0.1:8080->127.0.0.1:54321: read: connection reset by peer",
			wantText: "Connection reset by service",
		},
		{
			name:     "no route",
			errStr:   "dial tcp 10.0.0.1:80: connect: no route to host",
			wantText: "Service unreachable - check network connection",
		},
		{
			name:     "unexpected status",
			errStr:   "unexpected status 502 Bad Gateway",
			wantText: "Service returned an error status: unexpected status 502 Bad Gateway",
		},
		{
			name:     "eof",
			errStr:   "Get \"http://localhost:8080/tables\": EOF",
			wantText: "Connection closed unexpectedly by service",
		},
		{
			name:     "timeout",
			errStr:   "i/o timeout",
			wantText: "Connection timeout - service took too long to respond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeErrorString(tt.errStr)
			if got != tt.wantText {
				t.Errorf("categorizeErrorString() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestCategorizeTransportError_URLTimeout(t *testing.T) {
	err := &url.Error{Op: "Get", URL: "http://localhost/tables", Err: timeoutError{}}

	got := categorizeTransportError(err)
	if !strings.HasPrefix(got, "Request timeout") {
		t.Errorf("categorizeTransportError() = %q, want request timeout", got)
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "timeout awaiting response headers" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
