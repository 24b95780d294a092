package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/types"
)

// Service endpoints, relative to the base URL
const (
	EndpointConnection = "/con"
	EndpointConfigure  = "/conf"
	EndpointTables     = "/tables"
	EndpointCodegen    = "/codegen"
)

// IdempotencyHeader marks a non-GET request as safe to replay
const IdempotencyHeader = "X-Idempotency-Key"

const meterName = "github.com/studiowebux/dfspanel/internal/remote"

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 32 << 20

// Options configures the client
type Options struct {
	Timeout          time.Duration     // Whole-call timeout including retries (default: 30s)
	MaxRetries       int               // Retry attempts after the first (default: 2)
	RetryBackoff     time.Duration     // Initial backoff, doubled per attempt (default: 100ms)
	EnableCircuit    bool              // Wrap the transport in a circuit breaker (default: true)
	CircuitThreshold uint32            // Consecutive failures before the breaker opens (default: 5)
	Transport        http.RoundTripper // Base transport (default: http.DefaultTransport)
	Logger           *slog.Logger
	Meter            metric.Meter
}

// Option is a functional option for New
type Option func(*Options)

// WithTimeout sets the whole-call timeout
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithRetry sets the number of retries after the first attempt
func WithRetry(maxRetries int) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
	}
}

// WithRetryBackoff sets the initial backoff between attempts
func WithRetryBackoff(d time.Duration) Option {
	return func(o *Options) {
		o.RetryBackoff = d
	}
}

// WithCircuitBreaker enables or disables the circuit breaker
func WithCircuitBreaker(enabled bool, threshold uint32) Option {
	return func(o *Options) {
		o.EnableCircuit = enabled
		if threshold > 0 {
			o.CircuitThreshold = threshold
		}
	}
}

// WithTransport replaces the base round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *Options) {
		o.Transport = rt
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMeter sets the meter used for request metrics
func WithMeter(m metric.Meter) Option {
	return func(o *Options) {
		o.Meter = m
	}
}

// Client is a dfs-generate service client. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	metrics *metrics
}

// New creates a client for the service at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	options := Options{
		Timeout:          30 * time.Second,
		MaxRetries:       2,
		RetryBackoff:     100 * time.Millisecond,
		EnableCircuit:    true,
		CircuitThreshold: 5,
	}
	for _, opt := range opts {
		opt(&options)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing host", baseURL)
	}

	meter := options.Meter
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	m, err := newMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote metrics: %w", err)
	}

	logger := logging.OrDiscard(options.Logger)

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   options.Timeout,
			Transport: newRetryTransport(options, logger),
		},
		logger:  logger,
		metrics: m,
	}, nil
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Probe asks the service whether it already holds a connection. The
// sentinel answer means "not configured" and is not an error.
func (c *Client) Probe(ctx context.Context) (types.ConnectionConfig, bool, error) {
	var cfg *types.ConnectionConfig
	err := c.do(ctx, http.MethodGet, EndpointConnection, nil, nil, &cfg)
	if err != nil {
		if re, ok := types.AsRemote(err); ok && !re.IsTransport() {
			return types.ConnectionConfig{}, false, nil
		}
		return types.ConnectionConfig{}, false, err
	}
	if cfg == nil {
		return types.ConnectionConfig{}, false, nil
	}
	return cfg.WithDefaults(), true, nil
}

// ApplyConnection posts cfg to the service
func (c *Client) ApplyConnection(ctx context.Context, cfg types.ConnectionConfig) error {
	return c.do(ctx, http.MethodPost, EndpointConfigure, nil, cfg, nil)
}

// Tables lists the tables whose name contains filter, in service order
func (c *Client) Tables(ctx context.Context, filter string) ([]types.TableDescriptor, error) {
	query := url.Values{}
	query.Set("tableName", filter)

	var tables []types.TableDescriptor
	if err := c.do(ctx, http.MethodGet, EndpointTables, query, nil, &tables); err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []types.TableDescriptor{}
	}
	return tables, nil
}

// Generate fetches the artifacts for one table in one mode
func (c *Client) Generate(ctx context.Context, table string, mode types.GenerationMode) ([]types.GeneratedArtifact, error) {
	query := url.Values{}
	query.Set("tableName", table)
	query.Set("mode", string(mode))

	var artifacts []types.GeneratedArtifact
	if err := c.do(ctx, http.MethodGet, EndpointCodegen, query, nil, &artifacts); err != nil {
		return nil, err
	}
	for i := range artifacts {
		artifacts[i].Table = table
		if artifacts[i].Key == "" {
			artifacts[i].Key = artifacts[i].DisplayName
		}
	}
	return artifacts, nil
}

// envelope is the response shape shared by every endpoint
type envelope struct {
	Code *int            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.record(ctx, endpoint, outcomeOf(err), time.Since(start))
	}()

	u := c.baseURL.JoinPath(endpoint)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &types.RemoteError{Endpoint: endpoint, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return &types.RemoteError{Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		// Applying a connection is a full replace, safe to send twice
		req.Header.Set(IdempotencyHeader, "true")
	}

	c.logger.Debug("remote request", "method", method, "url", u.Redacted())

	resp, err := c.http.Do(req)
	if err != nil {
		return &types.RemoteError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &types.RemoteError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &types.RemoteError{Endpoint: endpoint, Err: fmt.Errorf("unexpected status %s", resp.Status)}
		}
		return &types.RemoteError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if env.Code != nil && *env.Code == types.ErrorSentinel {
		msg := env.Msg
		if msg == "" {
			msg = "service reported a failure"
		}
		return &types.RemoteError{Endpoint: endpoint, Message: msg}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &types.RemoteError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode response data: %w", err)}
		}
	}
	return nil
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if errors.Is(err, context.Canceled) {
		return outcomeCanceled
	}
	if re, ok := types.AsRemote(err); ok && !re.IsTransport() {
		return outcomeRemoteError
	}
	return outcomeTransportError
}
