package tui

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/dfspanel/internal/app"
	"github.com/studiowebux/dfspanel/internal/config"
	"github.com/studiowebux/dfspanel/internal/mock"
	"github.com/studiowebux/dfspanel/internal/types"
)

// testFixture serves three tables: orders has both modes, users only
// sqlmodel, and audit_log always fails
func testFixture() *mock.Fixture {
	return &mock.Fixture{
		Tables: []mock.Table{
			{
				Name:    "orders",
				Comment: "customer orders",
				Artifacts: map[string][]mock.Artifact{
					"sqlmodel": {{Name: "orders.py", Key: "orders", Code: "class Orders(SQLModel): ..."}},
					"tortoise": {
						{Name: "orders.py", Key: "orders", Code: "class Orders(Model): ..."},
						{Name: "schema.py", Key: "schema", Code: "OrdersSchema = ..."},
					},
				},
			},
			{
				Name:    "users",
				Comment: "accounts",
				Artifacts: map[string][]mock.Artifact{
					"sqlmodel": {{Name: "users.py", Key: "users", Code: "class Users(SQLModel): ..."}},
				},
			},
			{Name: "audit_log", Fail: "SELECT command denied"},
		},
	}
}

func testConfig() types.ConnectionConfig {
	return types.ConnectionConfig{Host: "127.0.0.1", Port: 3306, User: "root", Password: "x", Database: "shop"}
}

// testHarness bundles a model with the app and mock service behind it
type testHarness struct {
	m      *Model
	app    *app.App
	server *mock.Server
	copied []string
}

// CreateTestModel creates a Model against a mock service in a temporary
// config dir. With configure set, the connection is applied before the
// model starts. Init has already been drained.
func CreateTestModel(t *testing.T, fixture *mock.Fixture, configure bool) *testHarness {
	t.Helper()

	original := config.ConfigDir
	config.SetConfigDir(t.TempDir())
	t.Cleanup(func() { config.SetConfigDir(original) })

	server := mock.NewServer(fixture, t.TempDir(), nil)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	a, err := app.Open(app.Options{BaseURL: ts.URL, LogWriter: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("app.Open failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	if configure {
		if _, err := a.Session.Configure(context.Background(), testConfig()); err != nil {
			t.Fatalf("Configure failed: %v", err)
		}
	}

	m, err := New(context.Background(), a)
	if err != nil {
		t.Fatalf("Failed to create test model: %v", err)
	}

	h := &testHarness{m: &m, app: a, server: server}
	m.messageTimeout = 0
	m.copyToClipboard = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	drain(t, h.m, h.m.Init())
	return h
}

// press sends each key and runs the resulting commands to completion
func (h *testHarness) press(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := h.m.Update(key(k))
		drain(t, h.m, cmd)
	}
}

// typeText feeds runes to the focused input. Cursor blink commands are dropped.
func (h *testHarness) typeText(text string) {
	for _, r := range text {
		h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// key builds the KeyMsg whose String() is s
func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and every command it batches, returning the messages
// they produced. Spinner ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	var msgs []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// drain feeds the messages of cmd back into m until no command is left
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			t.Fatal("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

// AssertError verifies that an error occurred
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Error("Expected error but got nil")
	}
}
