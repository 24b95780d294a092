package tui

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/sony/gobreaker"
	"github.com/studiowebux/dfspanel/internal/orchestrator"
	"github.com/studiowebux/dfspanel/internal/types"
)

// categorizeError turns session and service errors into short, actionable
// footer messages
func categorizeError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, types.ErrNotConfigured) {
		return "No database connection - press C to configure"
	}
	if errors.Is(err, orchestrator.ErrNothingSelected) {
		return "No tables selected - press space on a table first"
	}
	if verr, ok := types.AsValidation(err); ok {
		return "Invalid connection: " + verr.Error()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "Service unavailable - too many failures, requests paused for a moment"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - the service took too long, try increasing timeoutSeconds in settings"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}

	if rerr, ok := types.AsRemote(err); ok {
		if !rerr.IsTransport() {
			if rerr.Message == "" {
				return "Service error on " + rerr.Endpoint
			}
			return "Service error: " + rerr.Message
		}
		return categorizeTransportError(rerr.Err)
	}

	return categorizeTransportError(err)
}

// categorizeTransportError handles failures that never reached the service
func categorizeTransportError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "Request timeout - the service took too long, try increasing timeoutSeconds in settings"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "Connection timeout - service took too long to respond"
		}
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED:
				return "Connection refused - check the service is running and baseURL is correct"
			case syscall.ECONNRESET:
				return "Connection reset by service"
			case syscall.ENETUNREACH, syscall.EHOSTUNREACH:
				return "Service unreachable - check network connection"
			}
		}
	}

	return categorizeErrorString(err.Error())
}

// categorizeErrorString is the fallback when the error chain carries no
// usable type
func categorizeErrorString(errStr string) string {
	if errStr == "" {
		return ""
	}

	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check the service is running and baseURL is correct"
	case strings.Contains(errLower, "no such host"),
		strings.Contains(errLower, "dial tcp: lookup"):
		return "DNS resolution failed - verify the service hostname"
	case strings.Contains(errLower, "connection reset"):
		return "Connection reset by service"
	case strings.Contains(errLower, "network is unreachable"),
		strings.Contains(errLower, "no route to host"):
		return "Service unreachable - check network connection"
	case strings.Contains(errLower, "failed to decode"):
		return "Unexpected response from service - is baseURL pointing at the generation service?"
	case strings.Contains(errLower, "unexpected status"):
		return "Service returned an error status: " + errStr
	case strings.Contains(errLower, "eof"):
		return "Connection closed unexpectedly by service"
	case strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "timed out"):
		return "Connection timeout - service took too long to respond"
	}

	return "Request failed: " + errStr
}
