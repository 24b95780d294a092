// Package selection tracks which catalog tables are selected.
package selection

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/studiowebux/dfspanel/internal/types"
)

// ErrUnknownTable is returned by Select for names missing from the catalog
var ErrUnknownTable = errors.New("table not in catalog")

// Catalog reports whether a table exists in the latest catalog snapshot
type Catalog interface {
	Contains(name string) bool
}

// Tracker holds the current selection in the order it was reported
type Tracker struct {
	mu      sync.RWMutex
	catalog Catalog
	names   []string
}

// NewTracker creates an empty tracker validating against catalog
func NewTracker(catalog Catalog) *Tracker {
	return &Tracker{catalog: catalog}
}

// Select replaces the selection with names. Duplicates collapse to their first
// position. If any name is not in the catalog nothing changes.
func (t *Tracker) Select(names []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.replace(names)
}

// Toggle adds name if absent or removes it if present
func (t *Tracker) Toggle(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make([]string, 0, len(t.names)+1)
	removed := false
	for _, n := range t.names {
		if n == name {
			removed = true
			continue
		}
		next = append(next, n)
	}
	if !removed {
		next = append(next, name)
	}
	return t.replace(next)
}

// replace validates names and stores them. The caller holds mu, so a
// concurrent Prune cannot run between the check and the write.
func (t *Tracker) replace(names []string) error {
	seen := make(map[string]bool, len(names))
	next := make([]string, 0, len(names))
	var unknown []string

	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if t.catalog != nil && !t.catalog.Contains(name) {
			unknown = append(unknown, name)
			continue
		}
		next = append(next, name)
	}

	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTable, strings.Join(unknown, ", "))
	}
	t.names = next
	return nil
}

// Clear empties the selection
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.names = nil
	t.mu.Unlock()
}

// Prune drops names absent from catalog and returns them
func (t *Tracker) Prune(catalog []types.TableDescriptor) []string {
	present := make(map[string]bool, len(catalog))
	for _, table := range catalog {
		present[table.Name] = true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var kept, pruned []string
	for _, name := range t.names {
		if present[name] {
			kept = append(kept, name)
		} else {
			pruned = append(pruned, name)
		}
	}
	t.names = kept
	return pruned
}

// Names returns the selection in order
func (t *Tracker) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether name is selected
func (t *Tracker) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, n := range t.names {
		if n == name {
			return true
		}
	}
	return false
}

// Len returns the number of selected tables
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Empty reports whether nothing is selected
func (t *Tracker) Empty() bool {
	return t.Len() == 0
}
