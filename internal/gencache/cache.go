package gencache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/types"
)

const meterName = "github.com/studiowebux/dfspanel/internal/gencache"

// DefaultConcurrency bounds parallel fetches in Run
const DefaultConcurrency = 4

// Generator fetches artifacts for one table in one mode
type Generator interface {
	Generate(ctx context.Context, table string, mode types.GenerationMode) ([]types.GeneratedArtifact, error)
}

// Status describes a cache entry
type Status int

const (
	StatusAbsent Status = iota
	StatusPending
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "absent"
}

// Request is one planned fetch
type Request struct {
	Key   types.CacheKey
	Token uint64
	ctx   context.Context
}

// Context returns the context the request runs under. It is canceled when the
// pair drops out of interest.
func (r Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Batch is the outcome of Plan
type Batch struct {
	Generation uint64
	Mode       types.GenerationMode
	Tables     []string
	Requests   []Request        // Pairs that need a network request
	Cached     int              // Pairs already held
	waiting    []<-chan struct{} // Pairs already in flight from an earlier batch
}

// Result is the outcome of one fetch
type Result struct {
	Key       types.CacheKey
	Token     uint64
	Artifacts []types.GeneratedArtifact
	Err       error
	Duration  time.Duration
}

// Outcome summarizes an Ensure call
type Outcome struct {
	Requested int
	Cached    int
	Failures  []types.TableFailure
}

type flight struct {
	token  uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// Cache memoizes generated artifacts per (table, mode)
type Cache struct {
	mu          sync.Mutex
	gen         Generator
	entries     map[types.CacheKey][]types.GeneratedArtifact
	failures    map[types.CacheKey]error
	inflight    map[types.CacheKey]*flight
	interest    map[types.CacheKey]bool
	generation  uint64
	nextToken   uint64
	concurrency int
	logger      *slog.Logger
	metrics     *cacheMetrics
}

// Option configures a Cache
type Option func(*Cache)

// WithConcurrency bounds the number of parallel fetches in Run
func WithConcurrency(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logging.OrDiscard(l)
	}
}

// WithMeter sets the meter for hit/miss counters
func WithMeter(m metric.Meter) Option {
	return func(c *Cache) {
		c.metrics = newCacheMetrics(m)
	}
}

// New creates an empty cache fetching through gen
func New(gen Generator, opts ...Option) *Cache {
	c := &Cache{
		gen:         gen,
		entries:     make(map[types.CacheKey][]types.GeneratedArtifact),
		failures:    make(map[types.CacheKey]error),
		inflight:    make(map[types.CacheKey]*flight),
		interest:    make(map[types.CacheKey]bool),
		concurrency: DefaultConcurrency,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = newCacheMetrics(otel.Meter(meterName))
	}
	return c
}

// Plan makes tables in mode the current interest and returns the fetches
// needed to satisfy it. Cached pairs and pairs already in flight are not
// requested again. In-flight pairs outside the new interest are canceled.
// Failed pairs are requested again.
func (c *Cache) Plan(ctx context.Context, tables []string, mode types.GenerationMode) Batch {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	batch := Batch{Generation: c.generation, Mode: mode}

	interest := make(map[types.CacheKey]bool, len(tables))
	for _, table := range tables {
		key := types.CacheKey{Table: table, Mode: mode}
		if interest[key] {
			continue
		}
		interest[key] = true
		batch.Tables = append(batch.Tables, table)
	}
	c.interest = interest

	for key, f := range c.inflight {
		if !interest[key] {
			c.logger.Debug("canceling fetch no longer of interest", "key", key.String(), "token", f.token)
			f.cancel()
			close(f.done)
			delete(c.inflight, key)
		}
	}

	var hits, misses, pending int64
	for _, table := range batch.Tables {
		key := types.CacheKey{Table: table, Mode: mode}

		if _, ok := c.entries[key]; ok {
			batch.Cached++
			hits++
			continue
		}
		if f, ok := c.inflight[key]; ok {
			batch.waiting = append(batch.waiting, f.done)
			pending++
			continue
		}

		delete(c.failures, key)
		c.nextToken++
		reqCtx, cancel := context.WithCancel(ctx)
		f := &flight{token: c.nextToken, cancel: cancel, done: make(chan struct{})}
		c.inflight[key] = f
		batch.Requests = append(batch.Requests, Request{Key: key, Token: f.token, ctx: reqCtx})
		misses++
	}

	c.metrics.lookups(ctx, mode, hits, misses, pending)
	c.logger.Debug("generation planned",
		"generation", batch.Generation,
		"mode", string(mode),
		"tables", len(batch.Tables),
		"requests", len(batch.Requests),
		"cached", batch.Cached,
	)
	return batch
}

// FetchOne performs the request. It does not touch cache state and is safe
// to run from any goroutine.
func (c *Cache) FetchOne(req Request) Result {
	start := time.Now()
	artifacts, err := c.gen.Generate(req.Context(), req.Key.Table, req.Key.Mode)
	return Result{
		Key:       req.Key,
		Token:     req.Token,
		Artifacts: artifacts,
		Err:       err,
		Duration:  time.Since(start),
	}
}

// Commit applies result if it is still the live answer for a pair of
// interest and reports whether it was applied.
func (c *Cache) Commit(result Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.inflight[result.Key]
	if !ok || f.token != result.Token {
		c.metrics.stale(result.Key.Mode)
		c.logger.Debug("discarding stale result", "key", result.Key.String(), "token", result.Token)
		return false
	}

	delete(c.inflight, result.Key)
	f.cancel()
	close(f.done)

	if !c.interest[result.Key] {
		c.metrics.stale(result.Key.Mode)
		return false
	}

	if result.Err != nil {
		c.failures[result.Key] = result.Err
		c.logger.Warn("generation failed", "table", result.Key.Table, "mode", string(result.Key.Mode), "error", result.Err)
		return true
	}

	artifacts := make([]types.GeneratedArtifact, len(result.Artifacts))
	copy(artifacts, result.Artifacts)
	c.entries[result.Key] = artifacts
	delete(c.failures, result.Key)
	c.logger.Debug("generation cached", "table", result.Key.Table, "mode", string(result.Key.Mode), "artifacts", len(artifacts))
	return true
}

// Run fetches every request of batch concurrently and commits each result as
// it arrives. One failure does not stop the others. Results are returned in
// request order together with whether each was committed.
func (c *Cache) Run(ctx context.Context, batch Batch) ([]Result, []bool) {
	results := make([]Result, len(batch.Requests))
	committed := make([]bool, len(batch.Requests))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, req := range batch.Requests {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = Result{Key: req.Key, Token: req.Token, Err: ctx.Err()}
			} else {
				results[i] = c.FetchOne(req)
			}
			committed[i] = c.Commit(results[i])
			return nil
		})
	}
	g.Wait()

	return results, committed
}

// Ensure makes sure every table has an entry for mode, fetching the missing
// ones, and returns once all outstanding fetches for them have settled.
func (c *Cache) Ensure(ctx context.Context, tables []string, mode types.GenerationMode) (Outcome, error) {
	batch := c.Plan(ctx, tables, mode)
	c.Run(ctx, batch)
	err := c.Wait(ctx, batch)
	return c.Summarize(batch), err
}

// Wait blocks until the pairs of batch that were already in flight from an
// earlier Plan have settled
func (c *Cache) Wait(ctx context.Context, batch Batch) error {
	for _, done := range batch.waiting {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

// Summarize reports the failures among the tables of batch
func (c *Cache) Summarize(batch Batch) Outcome {
	out := Outcome{Requested: len(batch.Requests), Cached: batch.Cached}
	for _, table := range batch.Tables {
		status, _, err := c.Entry(table, batch.Mode)
		if status == StatusFailed {
			out.Failures = append(out.Failures, types.TableFailure{Table: table, Mode: batch.Mode, Err: err})
		}
	}
	return out
}

// Entry returns the state of one pair
func (c *Cache) Entry(table string, mode types.GenerationMode) (Status, []types.GeneratedArtifact, error) {
	key := types.CacheKey{Table: table, Mode: mode}

	c.mu.Lock()
	defer c.mu.Unlock()

	if artifacts, ok := c.entries[key]; ok {
		out := make([]types.GeneratedArtifact, len(artifacts))
		copy(out, artifacts)
		return StatusReady, out, nil
	}
	if _, ok := c.inflight[key]; ok {
		return StatusPending, nil, nil
	}
	if err, ok := c.failures[key]; ok {
		return StatusFailed, nil, err
	}
	return StatusAbsent, nil, nil
}

// Generation returns the counter of the latest Plan
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Stats reports entry counts
type Stats struct {
	Entries  int
	Failures int
	InFlight int
}

// Stats returns the current entry counts
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:  len(c.entries),
		Failures: len(c.failures),
		InFlight: len(c.inflight),
	}
}

// Invalidate drops every entry, failure and in-flight request. Used when
// the connection changes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, f := range c.inflight {
		f.cancel()
		close(f.done)
	}
	c.entries = make(map[types.CacheKey][]types.GeneratedArtifact)
	c.failures = make(map[types.CacheKey]error)
	c.inflight = make(map[types.CacheKey]*flight)
	c.interest = make(map[types.CacheKey]bool)
	c.generation++
	c.logger.Debug("generation cache invalidated", "generation", c.generation)
}

type cacheMetrics struct {
	lookupsTotal metric.Int64Counter
	staleTotal   metric.Int64Counter
}

func newCacheMetrics(meter metric.Meter) *cacheMetrics {
	lookupsTotal, _ := meter.Int64Counter(
		"dfspanel_cache_lookups_total",
		metric.WithDescription("Generation cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	staleTotal, _ := meter.Int64Counter(
		"dfspanel_cache_stale_results_total",
		metric.WithDescription("Fetch results discarded by the stale-response guard"),
		metric.WithUnit("{result}"),
	)
	return &cacheMetrics{lookupsTotal: lookupsTotal, staleTotal: staleTotal}
}

func (m *cacheMetrics) lookups(ctx context.Context, mode types.GenerationMode, hits, misses, pending int64) {
	ctx = context.WithoutCancel(ctx)
	modeAttr := attribute.String("mode", string(mode))
	if hits > 0 {
		m.lookupsTotal.Add(ctx, hits, metric.WithAttributes(modeAttr, attribute.String("result", "hit")))
	}
	if misses > 0 {
		m.lookupsTotal.Add(ctx, misses, metric.WithAttributes(modeAttr, attribute.String("result", "miss")))
	}
	if pending > 0 {
		m.lookupsTotal.Add(ctx, pending, metric.WithAttributes(modeAttr, attribute.String("result", "pending")))
	}
}

func (m *cacheMetrics) stale(mode types.GenerationMode) {
	m.staleTotal.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", string(mode))))
}
