// Package catalog fetches and keeps the table catalog of the active connection.
package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/types"
)

// Lister lists tables from the generation service
type Lister interface {
	Tables(ctx context.Context, filter string) ([]types.TableDescriptor, error)
}

// ConnectionSource reports whether a connection is active
type ConnectionSource interface {
	Configured() bool
}

// Fetcher owns the latest catalog snapshot
type Fetcher struct {
	mu       sync.RWMutex
	lister   Lister
	conn     ConnectionSource
	snapshot []types.TableDescriptor
	filter   string
	loaded   bool
	logger   *slog.Logger
}

// NewFetcher creates a fetcher with an empty snapshot
func NewFetcher(lister Lister, conn ConnectionSource, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		lister: lister,
		conn:   conn,
		logger: logging.OrDiscard(logger),
	}
}

// Fetch retrieves the tables whose name contains filter and replaces the
// snapshot. The result keeps the service order. On failure the previous
// snapshot stays in place.
func (f *Fetcher) Fetch(ctx context.Context, filter string) ([]types.TableDescriptor, error) {
	if !f.conn.Configured() {
		return nil, types.ErrNotConfigured
	}

	tables, err := f.lister.Tables(ctx, filter)
	if err != nil {
		f.logger.Warn("catalog fetch failed", "filter", filter, "error", err)
		return nil, err
	}

	snapshot := make([]types.TableDescriptor, len(tables))
	copy(snapshot, tables)

	f.mu.Lock()
	f.snapshot = snapshot
	f.filter = filter
	f.loaded = true
	f.mu.Unlock()

	f.logger.Debug("catalog loaded", "filter", filter, "tables", len(snapshot))
	return f.Snapshot(), nil
}

// Snapshot returns a copy of the latest catalog
func (f *Fetcher) Snapshot() []types.TableDescriptor {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]types.TableDescriptor, len(f.snapshot))
	copy(out, f.snapshot)
	return out
}

// Filter returns the filter of the latest successful fetch
func (f *Fetcher) Filter() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter
}

// Loaded reports whether any fetch has succeeded since the last Reset
func (f *Fetcher) Loaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loaded
}

// Contains reports whether name is in the latest snapshot
func (f *Fetcher) Contains(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.snapshot {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Names returns the table names of the latest snapshot, in order
func (f *Fetcher) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, len(f.snapshot))
	for i, t := range f.snapshot {
		names[i] = t.Name
	}
	return names
}

// Reset drops the snapshot. Used when the connection changes.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	f.snapshot = nil
	f.filter = ""
	f.loaded = false
	f.mu.Unlock()
}
