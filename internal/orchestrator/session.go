// Package orchestrator wires the connection holder, catalog, selection and
// generation cache into one session object driven by user events.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/studiowebux/dfspanel/internal/catalog"
	"github.com/studiowebux/dfspanel/internal/connection"
	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/presenter"
	"github.com/studiowebux/dfspanel/internal/selection"
	"github.com/studiowebux/dfspanel/internal/types"
)

// ErrNothingSelected is returned by Generate with an empty selection
var ErrNothingSelected = errors.New("no tables selected")

// Service is the remote generation service
type Service interface {
	Probe(ctx context.Context) (types.ConnectionConfig, bool, error)
	ApplyConnection(ctx context.Context, cfg types.ConnectionConfig) error
	Tables(ctx context.Context, filter string) ([]types.TableDescriptor, error)
	Generate(ctx context.Context, table string, mode types.GenerationMode) ([]types.GeneratedArtifact, error)
}

// Recorder stores generation history
type Recorder interface {
	Record(entry types.HistoryEntry) error
}

// StartupState tells the caller what to show first
type StartupState int

const (
	StartupNeedsConfig StartupState = iota
	StartupConfigured
)

func (s StartupState) String() string {
	if s == StartupConfigured {
		return "configured"
	}
	return "needs-config"
}

// Options configures a Session
type Options struct {
	Service     Service
	Slots       connection.SlotStore // Nil keeps the connection in memory
	History     Recorder             // Nil disables history
	BaseURL     string               // Recorded with history entries
	Mode        types.GenerationMode
	Concurrency int
	Logger      *slog.Logger
	Meter       metric.Meter
}

// Session is the single orchestrating context of a dfspanel process
type Session struct {
	mu        sync.RWMutex
	service   Service
	holder    *connection.Holder
	catalog   *catalog.Fetcher
	selection *selection.Tracker
	cache     *gencache.Cache
	history   Recorder
	baseURL   string
	mode      types.GenerationMode
	logger    *slog.Logger
}

// NewSession builds a session around opts.Service
func NewSession(opts Options) *Session {
	logger := logging.OrDiscard(opts.Logger)

	mode := opts.Mode
	if !mode.Valid() {
		mode = types.DefaultMode
	}

	cacheOpts := []gencache.Option{
		gencache.WithConcurrency(opts.Concurrency),
		gencache.WithLogger(logger.With("component", "gencache")),
	}
	if opts.Meter != nil {
		cacheOpts = append(cacheOpts, gencache.WithMeter(opts.Meter))
	}

	holder := connection.NewHolder(opts.Slots, logger.With("component", "connection"))
	fetcher := catalog.NewFetcher(opts.Service, holder, logger.With("component", "catalog"))

	return &Session{
		service:   opts.Service,
		holder:    holder,
		catalog:   fetcher,
		selection: selection.NewTracker(fetcher),
		cache:     gencache.New(opts.Service, cacheOpts...),
		history:   opts.History,
		baseURL:   opts.BaseURL,
		mode:      mode,
		logger:    logger,
	}
}

// Start restores the local connection or adopts one the service already
// holds, then loads the catalog. A catalog error with a known connection
// still reports StartupConfigured.
func (s *Session) Start(ctx context.Context) (StartupState, error) {
	_, ok, err := s.holder.Load()
	if err != nil {
		return StartupNeedsConfig, err
	}

	if !ok {
		remoteCfg, configured, err := s.service.Probe(ctx)
		if err != nil {
			s.logger.Warn("connection probe failed", "error", err)
			return StartupNeedsConfig, err
		}
		if !configured {
			return StartupNeedsConfig, nil
		}
		if err := s.holder.Set(remoteCfg); err != nil {
			s.logger.Warn("service connection not adopted", "error", err)
			return StartupNeedsConfig, nil
		}
		s.logger.Info("adopted service connection", "address", remoteCfg.Address(), "db", remoteCfg.Database)
	}

	if _, err := s.Search(ctx, ""); err != nil {
		return StartupConfigured, err
	}
	return StartupConfigured, nil
}

// Configure validates cfg, applies it on the service and makes it the
// active connection. Everything derived from the previous connection is
// dropped before the new catalog is fetched.
func (s *Session) Configure(ctx context.Context, cfg types.ConnectionConfig) ([]types.TableDescriptor, error) {
	cfg = cfg.WithDefaults()
	if err := connection.Validate(cfg); err != nil {
		return nil, err
	}

	if err := s.service.ApplyConnection(ctx, cfg); err != nil {
		return nil, err
	}
	if err := s.holder.Set(cfg); err != nil {
		return nil, err
	}

	s.cache.Invalidate()
	s.selection.Clear()
	s.catalog.Reset()

	return s.Search(ctx, "")
}

// Search fetches the catalog for filter and prunes the selection against it
func (s *Session) Search(ctx context.Context, filter string) ([]types.TableDescriptor, error) {
	tables, err := s.catalog.Fetch(ctx, filter)
	if err != nil {
		return nil, err
	}
	if pruned := s.selection.Prune(tables); len(pruned) > 0 {
		s.logger.Debug("selection pruned", "tables", pruned)
	}
	return tables, nil
}

// Select replaces the selection
func (s *Session) Select(names []string) error {
	return s.selection.Select(names)
}

// Toggle flips one table in the selection
func (s *Session) Toggle(name string) error {
	return s.selection.Toggle(name)
}

// ClearSelection empties the selection
func (s *Session) ClearSelection() {
	s.selection.Clear()
}

// SetMode changes the active generation mode
func (s *Session) SetMode(mode types.GenerationMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown generation mode %q", mode)
	}
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	return nil
}

// Mode returns the active generation mode
func (s *Session) Mode() types.GenerationMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Generate fetches whatever the current selection lacks in the current mode
// and blocks until it settles
func (s *Session) Generate(ctx context.Context) (gencache.Outcome, error) {
	batch, err := s.PlanGeneration(ctx)
	if err != nil {
		return gencache.Outcome{}, err
	}

	results, committed := s.cache.Run(ctx, batch)
	for i, result := range results {
		if committed[i] {
			s.record(result)
		}
	}

	err = s.cache.Wait(ctx, batch)
	return s.cache.Summarize(batch), err
}

// PlanGeneration plans the fetches for the current selection and mode
// without running them
func (s *Session) PlanGeneration(ctx context.Context) (gencache.Batch, error) {
	if !s.holder.Configured() {
		return gencache.Batch{}, types.ErrNotConfigured
	}
	names := s.selection.Names()
	if len(names) == 0 {
		// Still drop interest so pending fetches are canceled
		s.cache.Plan(ctx, nil, s.Mode())
		return gencache.Batch{}, ErrNothingSelected
	}
	return s.cache.Plan(ctx, names, s.Mode()), nil
}

// FetchOne runs one planned request
func (s *Session) FetchOne(req gencache.Request) gencache.Result {
	return s.cache.FetchOne(req)
}

// CommitGeneration applies one fetch result and reports whether it was kept
func (s *Session) CommitGeneration(result gencache.Result) bool {
	if !s.cache.Commit(result) {
		return false
	}
	s.record(result)
	return true
}

// View returns the drawer content for the current selection and mode
func (s *Session) View() presenter.View {
	return presenter.Build(s.selection.Names(), s.cache, s.Mode())
}

// Restore loads the locally persisted connection without contacting the service
func (s *Session) Restore() (types.ConnectionConfig, bool, error) {
	return s.holder.Load()
}

// Connection returns the active connection
func (s *Session) Connection() (types.ConnectionConfig, bool) {
	return s.holder.Current()
}

// Catalog returns the latest catalog snapshot
func (s *Session) Catalog() []types.TableDescriptor {
	return s.catalog.Snapshot()
}

// CatalogFilter returns the filter of the latest successful catalog fetch
func (s *Session) CatalogFilter() string {
	return s.catalog.Filter()
}

// Selection returns the selected tables in order
func (s *Session) Selection() []string {
	return s.selection.Names()
}

// Selected reports whether name is selected
func (s *Session) Selected(name string) bool {
	return s.selection.Has(name)
}

// CacheStats returns the generation cache counters
func (s *Session) CacheStats() gencache.Stats {
	return s.cache.Stats()
}

func (s *Session) record(result gencache.Result) {
	if s.history == nil {
		return
	}

	entry := types.HistoryEntry{
		Table:         result.Key.Table,
		Mode:          string(result.Key.Mode),
		BaseURL:       s.baseURL,
		ArtifactCount: len(result.Artifacts),
		Duration:      result.Duration,
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
		entry.ArtifactCount = 0
	}

	if err := s.history.Record(entry); err != nil {
		s.logger.Warn("failed to record history", "table", entry.Table, "error", err)
	}
}
