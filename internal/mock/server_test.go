package mock

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/studiowebux/dfspanel/internal/types"
)

type response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, fixture *Fixture) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(fixture, t.TempDir(), nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func get(t *testing.T, url string) response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return r
}

func postConf(t *testing.T, url string, cfg any) response {
	t.Helper()
	body, _ := json.Marshal(cfg)
	resp, err := http.Post(url+"/conf", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /conf failed: %v", err)
	}
	defer resp.Body.Close()
	var r response
	json.NewDecoder(resp.Body).Decode(&r)
	return r
}

func shopConfig() types.ConnectionConfig {
	return types.ConnectionConfig{Host: "127.0.0.1", User: "root", Password: "x", Database: "shop"}
}

func TestServer_ConBeforeConfigure(t *testing.T) {
	_, ts := newTestServer(t, DefaultFixture())

	r := get(t, ts.URL+"/con")
	if r.Code != types.ErrorSentinel {
		t.Errorf("Expected sentinel before configuration, got %d", r.Code)
	}
}

func TestServer_ConFromFixture(t *testing.T) {
	fixture := DefaultFixture()
	cfg := shopConfig()
	fixture.Connection = &cfg
	_, ts := newTestServer(t, fixture)

	r := get(t, ts.URL+"/con")
	if r.Code != codeOK {
		t.Fatalf("Expected configured, got %d", r.Code)
	}
	var got types.ConnectionConfig
	json.Unmarshal(r.Data, &got)
	if got.Database != "shop" || got.Port != types.DefaultPort {
		t.Errorf("Unexpected connection: %+v", got)
	}
}

func TestServer_ConfValidates(t *testing.T) {
	s, ts := newTestServer(t, DefaultFixture())

	r := postConf(t, ts.URL, map[string]any{"host": "127.0.0.1"})
	if r.Code != types.ErrorSentinel || r.Msg == "" {
		t.Errorf("Expected validation failure, got %+v", r)
	}
	if _, ok := s.Connection(); ok {
		t.Error("Invalid payload must not be applied")
	}

	r = postConf(t, ts.URL, shopConfig())
	if r.Code != codeOK {
		t.Fatalf("Expected success, got %+v", r)
	}
	if cfg, ok := s.Connection(); !ok || cfg.Database != "shop" {
		t.Errorf("Connection not applied: %+v", cfg)
	}
}

func TestServer_ConfUnknownDatabase(t *testing.T) {
	fixture := DefaultFixture()
	fixture.Databases = []string{"shop"}
	_, ts := newTestServer(t, fixture)

	cfg := shopConfig()
	cfg.Database = "billing"
	if r := postConf(t, ts.URL, cfg); r.Code != types.ErrorSentinel {
		t.Errorf("Expected unknown database failure, got %+v", r)
	}
}

func TestServer_TablesFilter(t *testing.T) {
	_, ts := newTestServer(t, DefaultFixture())

	if r := get(t, ts.URL+"/tables?tableName="); r.Code != types.ErrorSentinel {
		t.Errorf("Tables without a connection should fail, got %d", r.Code)
	}

	postConf(t, ts.URL, shopConfig())

	r := get(t, ts.URL+"/tables?tableName=er")
	var rows []tableRow
	json.Unmarshal(r.Data, &rows)
	if len(rows) != 2 || rows[0].Name != "orders" || rows[1].Name != "users" {
		t.Errorf("Expected orders and users in fixture order, got %+v", rows)
	}
}

func TestServer_Codegen(t *testing.T) {
	s, ts := newTestServer(t, DefaultFixture())
	postConf(t, ts.URL, shopConfig())

	r := get(t, ts.URL+"/codegen?tableName=orders&mode=tortoise")
	if r.Code != codeOK {
		t.Fatalf("Expected success, got %+v", r)
	}
	var rows []artifactRow
	json.Unmarshal(r.Data, &rows)
	if len(rows) != 2 || rows[0].Name != "orders.py" || rows[1].Key != "schema" {
		t.Errorf("Unexpected artifacts: %+v", rows)
	}

	if r := get(t, ts.URL+"/codegen?tableName=audit_log&mode=sqlmodel"); r.Code != types.ErrorSentinel {
		t.Errorf("Failing table should answer the sentinel, got %d", r.Code)
	}
	if r := get(t, ts.URL+"/codegen?tableName=ghost&mode=sqlmodel"); r.Code != types.ErrorSentinel {
		t.Errorf("Unknown table should answer the sentinel, got %d", r.Code)
	}

	if n := s.RequestCount("/codegen"); n != 3 {
		t.Errorf("Expected 3 codegen requests logged, got %d", n)
	}
}

func TestServer_CodeFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orders.py"), []byte("class Orders: ...\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fixture := &Fixture{Tables: []Table{{
		Name: "orders",
		Artifacts: map[string][]Artifact{
			"sqlmodel": {{Name: "orders.py", CodeFile: "orders.py"}},
		},
	}}}
	cfg := shopConfig()
	fixture.Connection = &cfg

	s := NewServer(fixture, dir, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	r := get(t, ts.URL+"/codegen?tableName=orders&mode=sqlmodel")
	var rows []artifactRow
	json.Unmarshal(r.Data, &rows)
	if len(rows) != 1 || rows[0].Code != "class Orders: ...\n" || rows[0].Key != "orders.py" {
		t.Errorf("Unexpected artifacts: %+v", rows)
	}
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	content := `
port: 9090
connection:
  host: 127.0.0.1
  user: root
  password: x
  db: shop
tables:
  - name: orders
    comment: customer orders
    delay: 50
    artifacts:
      sqlmodel:
        - name: orders.py
          code: "class Orders(SQLModel): ..."
  - name: broken
    fail: boom
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fixture, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
	if fixture.Port != 9090 || len(fixture.Tables) != 2 {
		t.Errorf("Unexpected fixture: %+v", fixture)
	}
	if fixture.Connection == nil || fixture.Connection.Database != "shop" {
		t.Errorf("Connection not loaded: %+v", fixture.Connection)
	}
	if fixture.Tables[0].Artifacts["sqlmodel"][0].Code != "class Orders(SQLModel): ..." {
		t.Errorf("Artifacts not loaded: %+v", fixture.Tables[0].Artifacts)
	}
}

func TestLoadFixture_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "tables:\n  - comment: x\n"},
		{"duplicate", "tables:\n  - name: a\n  - name: a\n"},
		{"unknown mode", "tables:\n  - name: a\n    artifacts:\n      django:\n        - name: a.py\n"},
		{"negative delay", "tables:\n  - name: a\n    delay: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "fixture.yml")
			os.WriteFile(path, []byte(tt.content), 0644)
			if _, err := LoadFixture(path); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestSaveFixture_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := SaveFixture(DefaultFixture(), path); err != nil {
		t.Fatalf("SaveFixture failed: %v", err)
	}
	loaded, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
	if len(loaded.Tables) != len(DefaultFixture().Tables) {
		t.Errorf("Expected %d tables, got %d", len(DefaultFixture().Tables), len(loaded.Tables))
	}
}

func TestServer_StartStop(t *testing.T) {
	fixture := DefaultFixture()
	fixture.Host = "127.0.0.1"
	s := NewServer(fixture, t.TempDir(), nil)

	// Let the OS pick a free port
	fixture.Port = 0
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	r := get(t, s.GetAddress()+"/con")
	if r.Code != types.ErrorSentinel {
		t.Errorf("Expected sentinel, got %d", r.Code)
	}
}
