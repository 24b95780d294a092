package connection

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/studiowebux/dfspanel/internal/store"
	"github.com/studiowebux/dfspanel/internal/types"
)

type memorySlots struct {
	values map[string][]byte
	puts   int
	err    error
}

func newMemorySlots() *memorySlots {
	return &memorySlots{values: make(map[string][]byte)}
}

func (m *memorySlots) GetSlot(name string, v any) (bool, error) {
	data, ok := m.values[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

func (m *memorySlots) PutSlot(name string, v any) error {
	if m.err != nil {
		return m.err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.values[name] = data
	m.puts++
	return nil
}

func validConfig() types.ConnectionConfig {
	return types.ConnectionConfig{
		Host:     "127.0.0.1",
		User:     "root",
		Password: "x",
		Database: "shop",
	}
}

func TestHolder_LoadAbsent(t *testing.T) {
	h := NewHolder(newMemorySlots(), nil)

	_, ok, err := h.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("Expected absent configuration")
	}
	if h.Configured() {
		t.Error("Holder should not be configured")
	}
}

func TestHolder_SetAppliesDefaults(t *testing.T) {
	slots := newMemorySlots()
	h := NewHolder(slots, nil)

	if err := h.Set(validConfig()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	cfg, ok := h.Current()
	if !ok {
		t.Fatal("Expected active configuration")
	}
	if cfg.Port != types.DefaultPort {
		t.Errorf("Expected default port %d, got %d", types.DefaultPort, cfg.Port)
	}
	if cfg.Charset != types.DefaultCharset {
		t.Errorf("Expected default charset %s, got %s", types.DefaultCharset, cfg.Charset)
	}
	if slots.puts != 1 {
		t.Errorf("Expected config persisted once, got %d", slots.puts)
	}

	// A second holder over the same slots restores it
	restored, ok, err := NewHolder(slots, nil).Load()
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if restored != cfg {
		t.Errorf("Expected %+v, got %+v", cfg, restored)
	}
}

func TestHolder_SetValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.ConnectionConfig)
		fields []string
	}{
		{"missing host", func(c *types.ConnectionConfig) { c.Host = "" }, []string{"host"}},
		{"blank user", func(c *types.ConnectionConfig) { c.User = "   " }, []string{"user"}},
		{"missing password", func(c *types.ConnectionConfig) { c.Password = "" }, []string{"password"}},
		{"missing db", func(c *types.ConnectionConfig) { c.Database = "" }, []string{"db"}},
		{"bad port", func(c *types.ConnectionConfig) { c.Port = 70000 }, []string{"port"}},
		{"everything", func(c *types.ConnectionConfig) { *c = types.ConnectionConfig{} }, []string{"host", "user", "password", "db"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := newMemorySlots()
			h := NewHolder(slots, nil)

			cfg := validConfig()
			tt.mutate(&cfg)

			err := h.Set(cfg)
			verr, ok := types.AsValidation(err)
			if !ok {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Fatalf("Expected fields %v, got %v", tt.fields, verr.Fields)
			}
			for _, f := range tt.fields {
				if !verr.Has(f) {
					t.Errorf("Expected field %q in %v", f, verr.Fields)
				}
			}

			if h.Configured() {
				t.Error("Failed Set must not activate a configuration")
			}
			if slots.puts != 0 {
				t.Error("Failed Set must not persist anything")
			}
		})
	}
}

func TestHolder_SetReplacesWholesale(t *testing.T) {
	h := NewHolder(newMemorySlots(), nil)

	first := validConfig()
	first.Charset = "utf8mb4"
	if err := h.Set(first); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second := validConfig()
	second.Database = "billing"
	if err := h.Set(second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	cfg, _ := h.Current()
	if cfg.Database != "billing" {
		t.Errorf("Expected db billing, got %s", cfg.Database)
	}
	if cfg.Charset != types.DefaultCharset {
		t.Errorf("Charset should not survive a replace, got %s", cfg.Charset)
	}
}

func TestHolder_PersistFailureKeepsPrevious(t *testing.T) {
	slots := newMemorySlots()
	h := NewHolder(slots, nil)
	if err := h.Set(validConfig()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	slots.err = errors.New("disk full")
	next := validConfig()
	next.Database = "other"
	if err := h.Set(next); err == nil {
		t.Fatal("Expected persist error")
	}

	cfg, _ := h.Current()
	if cfg.Database != "shop" {
		t.Errorf("Previous configuration should stay active, got %s", cfg.Database)
	}
}

func TestHolder_LoadIgnoresInvalidStoredConfig(t *testing.T) {
	slots := newMemorySlots()
	slots.values[store.ConnectionSlot] = []byte(`{"host":"db.local","user":""}`)

	_, ok, err := NewHolder(slots, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("Invalid stored configuration should be reported absent")
	}
}

func TestHolder_WithSQLiteStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "slots.db"))
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	defer s.Close()

	if err := NewHolder(s, nil).Set(validConfig()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	cfg, ok, err := NewHolder(s, nil).Load()
	if err != nil || !ok {
		t.Fatalf("Load failed: ok=%v err=%v", ok, err)
	}
	if cfg.Host != "127.0.0.1" || cfg.Database != "shop" {
		t.Errorf("Unexpected restored config: %+v", cfg)
	}
}

func TestHolder_NilSlots(t *testing.T) {
	h := NewHolder(nil, nil)
	if err := h.Set(validConfig()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := h.Load(); !ok {
		t.Error("In-memory holder should report its active configuration")
	}
}
