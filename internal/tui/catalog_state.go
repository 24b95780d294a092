package tui

import (
	"sync"

	"github.com/studiowebux/dfspanel/internal/types"
)

// CatalogState holds the cursor over the table list
type CatalogState struct {
	mu sync.RWMutex

	tables []types.TableDescriptor
	index  int
	offset int // First visible row
}

// NewCatalogState creates an empty catalog state
func NewCatalogState() *CatalogState {
	return &CatalogState{}
}

// SetTables replaces the list. The cursor stays on the same table when it
// is still present.
func (s *CatalogState) SetTables(tables []types.TableDescriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := ""
	if s.index >= 0 && s.index < len(s.tables) {
		current = s.tables[s.index].Name
	}

	s.tables = tables
	s.index = 0
	for i, t := range tables {
		if t.Name == current {
			s.index = i
			break
		}
	}
	if s.offset > s.index {
		s.offset = s.index
	}
}

// GetTables returns a copy of the list
func (s *CatalogState) GetTables() []types.TableDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.TableDescriptor, len(s.tables))
	copy(result, s.tables)
	return result
}

// Len returns the number of tables
func (s *CatalogState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}

// GetIndex returns the cursor position
func (s *CatalogState) GetIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// GetOffset returns the first visible row
func (s *CatalogState) GetOffset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}

// Current returns the table under the cursor
func (s *CatalogState) Current() (types.TableDescriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 || s.index >= len(s.tables) {
		return types.TableDescriptor{}, false
	}
	return s.tables[s.index], true
}

// Navigate moves the cursor by delta, clamped to the list
func (s *CatalogState) Navigate(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(s.index + delta)
}

// GoToTop moves the cursor to the first table
func (s *CatalogState) GoToTop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(0)
}

// GoToBottom moves the cursor to the last table
func (s *CatalogState) GoToBottom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(len(s.tables) - 1)
}

// EnsureVisible scrolls so the cursor is inside a window of pageSize rows
func (s *CatalogState) EnsureVisible(pageSize int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pageSize < 1 {
		pageSize = 1
	}
	if s.index < s.offset {
		s.offset = s.index
	} else if s.index >= s.offset+pageSize {
		s.offset = s.index - pageSize + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// moveTo must be called with the lock held
func (s *CatalogState) moveTo(index int) {
	if len(s.tables) == 0 {
		s.index = 0
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.tables) {
		index = len(s.tables) - 1
	}
	s.index = index
}
