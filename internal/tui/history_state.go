package tui

import (
	"sync"

	"github.com/studiowebux/dfspanel/internal/analytics"
	"github.com/studiowebux/dfspanel/internal/types"
)

// HistoryState holds the rows of the generation history modal
type HistoryState struct {
	mu sync.RWMutex

	entries []types.HistoryEntry
	index   int

	stats     []analytics.Stats
	showStats bool // Per table totals instead of single fetches
}

// NewHistoryState creates an empty history state
func NewHistoryState() *HistoryState {
	return &HistoryState{
		entries: []types.HistoryEntry{},
	}
}

// GetEntries returns a copy of the entries slice
func (s *HistoryState) GetEntries() []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.HistoryEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// SetEntries replaces the entries and resets the cursor when it falls off the end
func (s *HistoryState) SetEntries(entries []types.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	if s.index >= s.rowCount() {
		s.index = 0
	}
}

// RowCount returns the number of rows in the active view
func (s *HistoryState) RowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowCount()
}

// GetStats returns a copy of the per table stats
func (s *HistoryState) GetStats() []analytics.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]analytics.Stats, len(s.stats))
	copy(result, s.stats)
	return result
}

// SetStats replaces the per table stats
func (s *HistoryState) SetStats(stats []analytics.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	if s.index >= s.rowCount() {
		s.index = 0
	}
}

// GetShowStats reports whether the stats view is active
func (s *HistoryState) GetShowStats() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showStats
}

// ToggleStats switches between single fetches and per table stats
func (s *HistoryState) ToggleStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showStats = !s.showStats
	s.index = 0
}

// rowCount returns the number of rows in the active view
func (s *HistoryState) rowCount() int {
	if s.showStats {
		return len(s.stats)
	}
	return len(s.entries)
}

// GetIndex returns the current index
func (s *HistoryState) GetIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// SetIndex sets the current index
func (s *HistoryState) SetIndex(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = index
}

// Navigate moves the selection by delta
func (s *HistoryState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.rowCount()
	if n == 0 {
		return
	}

	s.index += delta

	// Wrap around
	if s.index < 0 {
		s.index = n - 1
	} else if s.index >= n {
		s.index = 0
	}
}

// GetCurrentEntry returns the currently selected history entry
func (s *HistoryState) GetCurrentEntry() *types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || s.index < 0 || s.index >= len(s.entries) {
		return nil
	}

	entry := s.entries[s.index]
	return &entry
}
