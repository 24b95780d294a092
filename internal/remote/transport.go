package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// errServerStatus marks a 5xx answer as a breaker failure
var errServerStatus = errors.New("server error status")

// retryTransport implements http.RoundTripper with retry and circuit breaker
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
	cb         *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func newRetryTransport(options Options, logger *slog.Logger) *retryTransport {
	base := options.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var cb *gobreaker.CircuitBreaker
	if options.EnableCircuit {
		threshold := options.CircuitThreshold
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "dfs-generate",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			// Requests dropped by the caller say nothing about the service
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return &retryTransport{
		base:       base,
		maxRetries: options.MaxRetries,
		backoff:    options.RetryBackoff,
		cb:         cb,
		logger:     logger,
	}
}

// RoundTrip implements http.RoundTripper
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.cb == nil {
		return t.roundTripWithRetry(req)
	}

	result, err := t.cb.Execute(func() (interface{}, error) {
		resp, err := t.roundTripWithRetry(req)
		if err == nil && resp.StatusCode >= 500 {
			return resp, errServerStatus
		}
		return resp, err
	})
	if errors.Is(err, errServerStatus) {
		return result.(*http.Response), nil
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("service unavailable: %w", err)
		}
		return nil, err
	}
	return result.(*http.Response), nil
}

func (t *retryTransport) roundTripWithRetry(req *http.Request) (*http.Response, error) {
	retries := t.maxRetries
	if !replayable(req) {
		retries = 0
	}

	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		attemptReq := req
		if attempt > 0 {
			attemptReq = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("failed to replay request body: %w", err)
				}
				attemptReq.Body = body
			}
		}

		resp, err := t.base.RoundTrip(attemptReq)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		lastResp = resp
		lastErr = err

		if attempt == retries || req.Context().Err() != nil {
			break
		}

		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}

		backoff := t.backoff * time.Duration(1<<uint(attempt))
		t.logger.Debug("retrying request", "url", req.URL.Redacted(), "attempt", attempt+1, "backoff", backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}

	return lastResp, lastErr
}

// replayable reports whether req may be sent more than once
func replayable(req *http.Request) bool {
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return false
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return req.Header.Get(IdempotencyHeader) != ""
}
