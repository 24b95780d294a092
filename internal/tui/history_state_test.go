package tui

import (
	"sync"
	"testing"

	"github.com/studiowebux/dfspanel/internal/analytics"
	"github.com/studiowebux/dfspanel/internal/types"
)

func TestNewHistoryState(t *testing.T) {
	state := NewHistoryState()

	if state == nil {
		t.Fatal("NewHistoryState returned nil")
	}
	if state.GetIndex() != 0 {
		t.Errorf("Expected index 0, got %d", state.GetIndex())
	}
	if len(state.GetEntries()) != 0 {
		t.Errorf("Expected 0 entries, got %d", len(state.GetEntries()))
	}
	if state.GetCurrentEntry() != nil {
		t.Error("Expected nil entry for empty state")
	}
}

func TestHistoryState_EntriesOperations(t *testing.T) {
	state := NewHistoryState()

	entries := []types.HistoryEntry{
		{ID: 1, Table: "orders", Mode: "sqlmodel"},
		{ID: 2, Table: "users", Mode: "sqlmodel"},
		{ID: 3, Table: "orders", Mode: "tortoise"},
	}
	state.SetEntries(entries)

	if len(state.GetEntries()) != 3 {
		t.Errorf("Expected 3 entries, got %d", len(state.GetEntries()))
	}

	current := state.GetCurrentEntry()
	if current == nil || current.ID != 1 {
		t.Errorf("Expected first entry, got %+v", current)
	}

	// Navigation wraps around
	state.Navigate(-1)
	if state.GetIndex() != 2 {
		t.Errorf("Expected index 2 after wrap up, got %d", state.GetIndex())
	}
	state.Navigate(1)
	if state.GetIndex() != 0 {
		t.Errorf("Expected index 0 after wrap down, got %d", state.GetIndex())
	}

	// Shrinking the list resets an out of range cursor
	state.SetIndex(2)
	state.SetEntries(entries[:1])
	if state.GetIndex() != 0 {
		t.Errorf("Expected index reset to 0, got %d", state.GetIndex())
	}
}

func TestHistoryState_NavigateEmpty(t *testing.T) {
	state := NewHistoryState()
	state.Navigate(1)
	if state.GetIndex() != 0 {
		t.Errorf("Expected index 0, got %d", state.GetIndex())
	}
}

func TestHistoryState_ToggleStats(t *testing.T) {
	state := NewHistoryState()
	state.SetEntries([]types.HistoryEntry{{ID: 1}, {ID: 2}, {ID: 3}})
	state.SetStats([]analytics.Stats{{Table: "orders", Mode: "sqlmodel"}})
	state.SetIndex(2)

	if state.RowCount() != 3 {
		t.Errorf("Expected 3 rows, got %d", state.RowCount())
	}

	state.ToggleStats()
	if !state.GetShowStats() {
		t.Fatal("Expected stats view after toggle")
	}
	if state.GetIndex() != 0 {
		t.Errorf("Expected index reset on toggle, got %d", state.GetIndex())
	}
	if state.RowCount() != 1 {
		t.Errorf("Expected 1 stats row, got %d", state.RowCount())
	}

	// Navigation wraps within the stats rows
	state.Navigate(1)
	if state.GetIndex() != 0 {
		t.Errorf("Expected index 0 after wrap, got %d", state.GetIndex())
	}

	state.ToggleStats()
	if state.GetShowStats() {
		t.Error("Expected fetch view after second toggle")
	}
}

func TestHistoryState_ConcurrentAccess(t *testing.T) {
	state := NewHistoryState()
	state.SetEntries([]types.HistoryEntry{{ID: 1}, {ID: 2}})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			state.Navigate(1)
		}()
		go func() {
			defer wg.Done()
			_ = state.GetCurrentEntry()
			_ = state.GetEntries()
		}()
	}
	wg.Wait()
}
