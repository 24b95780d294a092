package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/studiowebux/dfspanel/internal/types"
)

type fakeLister struct {
	tables  []types.TableDescriptor
	err     error
	filters []string
}

func (f *fakeLister) Tables(ctx context.Context, filter string) ([]types.TableDescriptor, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	return f.tables, nil
}

type fakeConn bool

func (c fakeConn) Configured() bool { return bool(c) }

func TestFetch_NotConfigured(t *testing.T) {
	lister := &fakeLister{}
	f := NewFetcher(lister, fakeConn(false), nil)

	_, err := f.Fetch(context.Background(), "")
	if !errors.Is(err, types.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if len(lister.filters) != 0 {
		t.Error("No remote request should be made without a connection")
	}
}

func TestFetch_PreservesOrder(t *testing.T) {
	lister := &fakeLister{tables: []types.TableDescriptor{
		{Name: "zeta"}, {Name: "alpha"}, {Name: "mid"},
	}}
	f := NewFetcher(lister, fakeConn(true), nil)

	tables, err := f.Fetch(context.Background(), "a")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	for i, name := range want {
		if tables[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, tables[i].Name)
		}
	}
	if lister.filters[0] != "a" {
		t.Errorf("Filter should be passed through, got %q", lister.filters[0])
	}
	if f.Filter() != "a" || !f.Loaded() {
		t.Error("Fetcher should remember the successful filter")
	}
}

func TestFetch_ErrorKeepsPreviousSnapshot(t *testing.T) {
	lister := &fakeLister{tables: []types.TableDescriptor{{Name: "orders"}, {Name: "users"}}}
	f := NewFetcher(lister, fakeConn(true), nil)

	if _, err := f.Fetch(context.Background(), ""); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	lister.err = &types.RemoteError{Endpoint: "/tables", Message: "Access denied"}
	_, err := f.Fetch(context.Background(), "x")
	if _, ok := types.AsRemote(err); !ok {
		t.Fatalf("Expected RemoteError, got %v", err)
	}

	snapshot := f.Snapshot()
	if len(snapshot) != 2 || snapshot[0].Name != "orders" {
		t.Errorf("Previous snapshot should survive, got %+v", snapshot)
	}
	if f.Filter() != "" {
		t.Errorf("Filter should stay at the last successful value, got %q", f.Filter())
	}
}

func TestFetch_ReplacesWholesale(t *testing.T) {
	lister := &fakeLister{tables: []types.TableDescriptor{{Name: "a"}, {Name: "b"}}}
	f := NewFetcher(lister, fakeConn(true), nil)
	f.Fetch(context.Background(), "")

	lister.tables = []types.TableDescriptor{{Name: "c"}}
	f.Fetch(context.Background(), "")

	if f.Contains("a") || !f.Contains("c") {
		t.Errorf("Snapshot should be replaced, got %v", f.Names())
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	lister := &fakeLister{tables: []types.TableDescriptor{{Name: "orders"}}}
	f := NewFetcher(lister, fakeConn(true), nil)
	f.Fetch(context.Background(), "")

	snap := f.Snapshot()
	snap[0].Name = "mutated"
	lister.tables[0].Name = "mutated"

	if !f.Contains("orders") {
		t.Error("Snapshot must not alias internal state")
	}
}

func TestReset(t *testing.T) {
	lister := &fakeLister{tables: []types.TableDescriptor{{Name: "orders"}}}
	f := NewFetcher(lister, fakeConn(true), nil)
	f.Fetch(context.Background(), "ord")
	f.Reset()

	if f.Loaded() || len(f.Snapshot()) != 0 || f.Filter() != "" {
		t.Error("Reset should clear the snapshot")
	}
}
