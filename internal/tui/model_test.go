package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/types"
)

func TestNew_InitializesState(t *testing.T) {
	h := CreateTestModel(t, testFixture(), false)
	m := h.m

	if m.catalog == nil || m.drawer == nil || m.form == nil || m.historyState == nil {
		t.Fatal("state objects should be initialized")
	}
	if m.keys == nil {
		t.Fatal("keybindings should be loaded")
	}
	AssertModelField(t, "loading", m.loading, false)
	AssertModelField(t, "inFlight", m.inFlight, 0)
	AssertModelField(t, "width", m.width, 120)
}

func TestInit_NeedsConfigShowsForm(t *testing.T) {
	h := CreateTestModel(t, testFixture(), false)

	AssertModelField(t, "mode", h.m.mode, ModeConfigure)
	AssertModelField(t, "connected", h.m.connected, false)
	AssertModelField(t, "host", h.m.form.Value("host"), "127.0.0.1")
	AssertModelField(t, "port", h.m.form.Value("port"), "3306")

	if !strings.Contains(h.m.View(), "Database Connection") {
		t.Error("configure modal should be rendered")
	}
}

func TestInit_ConfiguredShowsCatalog(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	AssertModelField(t, "mode", h.m.mode, ModeCatalog)
	AssertModelField(t, "connected", h.m.connected, true)
	AssertModelField(t, "catalog size", h.m.catalog.Len(), 3)

	if !strings.Contains(h.m.statusMsg, "Connected to shop") {
		t.Errorf("statusMsg = %q, want connection summary", h.m.statusMsg)
	}
	view := h.m.View()
	for _, name := range []string{"orders", "users", "audit_log"} {
		if !strings.Contains(view, name) {
			t.Errorf("catalog should list %s", name)
		}
	}
}

func TestConfigure_SubmitConnects(t *testing.T) {
	h := CreateTestModel(t, testFixture(), false)

	h.m.form.set("user", "root")
	h.m.form.set("password", "x")
	h.m.form.set("db", "shop")
	h.press(t, "enter")

	AssertModelField(t, "mode", h.m.mode, ModeCatalog)
	AssertModelField(t, "connected", h.m.connected, true)
	AssertModelField(t, "catalog size", h.m.catalog.Len(), 3)
	AssertModelField(t, "/conf requests", h.server.RequestCount("/conf"), 1)

	cfg, ok := h.m.session.Connection()
	if !ok || cfg.Database != "shop" {
		t.Errorf("Connection() = %+v, %v", cfg, ok)
	}
}

func TestConfigure_ValidationStaysInForm(t *testing.T) {
	h := CreateTestModel(t, testFixture(), false)

	h.m.form.set("user", "root")
	h.press(t, "enter")

	AssertModelField(t, "mode", h.m.mode, ModeConfigure)
	AssertModelField(t, "db invalid", h.m.form.Invalid("db"), true)
	AssertModelField(t, "/conf requests", h.server.RequestCount("/conf"), 0)
	if h.m.errorMsg == "" {
		t.Error("a validation error should be shown")
	}
}

func TestConfigure_BadPortStaysInForm(t *testing.T) {
	h := CreateTestModel(t, testFixture(), false)

	h.m.form.set("user", "root")
	h.m.form.set("db", "shop")
	h.m.form.set("port", "mysql")
	h.press(t, "enter")

	AssertModelField(t, "mode", h.m.mode, ModeConfigure)
	AssertModelField(t, "port invalid", h.m.form.Invalid("port"), true)
	AssertModelField(t, "focused", h.m.form.Focused(), "port")
	AssertModelField(t, "/conf requests", h.server.RequestCount("/conf"), 0)
}

func TestConfigure_CancelRequiresConnection(t *testing.T) {
	h := CreateTestModel(t, testFixture(), false)

	h.press(t, "esc")
	AssertModelField(t, "mode", h.m.mode, ModeConfigure)

	h = CreateTestModel(t, testFixture(), true)
	h.press(t, "C")
	AssertModelField(t, "mode", h.m.mode, ModeConfigure)
	AssertModelField(t, "prefilled db", h.m.form.Value("db"), "shop")
	AssertModelField(t, "password kept out", h.m.form.Value("password"), "")

	h.press(t, "esc")
	AssertModelField(t, "mode after cancel", h.m.mode, ModeCatalog)
}

func TestCatalog_ToggleGenerates(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ")

	AssertModelField(t, "inFlight", h.m.inFlight, 0)
	AssertModelField(t, "/codegen requests", h.server.RequestCount("/codegen"), 1)

	view := h.m.drawer.GetView()
	if len(view.Rows) != 1 || view.Rows[0].Table != "orders" {
		t.Fatalf("drawer rows = %+v, want orders", view.Rows)
	}
	AssertModelField(t, "status", view.Rows[0].Status, gencache.StatusReady)

	count, err := h.app.History.GetCount()
	AssertNoError(t, err)
	AssertModelField(t, "history count", count, 1)

	h.press(t, "enter")
	AssertModelField(t, "mode", h.m.mode, ModeDrawer)

	tab, ok := h.m.drawer.CurrentArtifact()
	if !ok {
		t.Fatal("CurrentArtifact should be available")
	}
	AssertModelField(t, "artifact title", tab.Title, "orders.py")
}

func TestCatalog_ToggleOffDropsRow(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", " ")

	if !h.m.drawer.GetView().Empty() {
		t.Error("drawer should be empty after toggling the only table off")
	}
	if len(h.m.session.Selection()) != 0 {
		t.Errorf("Selection() = %v, want empty", h.m.session.Selection())
	}

	// Toggling back on comes from the cache
	h.press(t, " ")
	AssertModelField(t, "/codegen requests", h.server.RequestCount("/codegen"), 1)
}

func TestCatalog_OpenDrawerNeedsSelection(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, "enter")
	AssertModelField(t, "mode", h.m.mode, ModeCatalog)
	AssertModelField(t, "status", h.m.statusMsg, "Select a table to open the drawer")
}

func TestCatalog_ClearSelection(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "j", " ", "c")

	if len(h.m.session.Selection()) != 0 {
		t.Errorf("Selection() = %v, want empty", h.m.session.Selection())
	}
	AssertModelField(t, "status", h.m.statusMsg, "Selection cleared")
}

func TestMode_DisabledWithoutSelection(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, "t")

	AssertModelField(t, "mode", h.m.session.Mode(), types.ModeSQLModel)
	AssertModelField(t, "status", h.m.statusMsg, "Select a table before choosing a mode")
	AssertModelField(t, "/codegen requests", h.server.RequestCount("/codegen"), 0)
}

func TestMode_SwitchRefetchesAndCaches(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "t")

	AssertModelField(t, "mode", h.m.session.Mode(), types.ModeTortoise)
	AssertModelField(t, "/codegen requests", h.server.RequestCount("/codegen"), 2)

	view := h.m.drawer.GetView()
	AssertModelField(t, "view mode", view.Mode, types.ModeTortoise)
	if len(view.Rows) != 1 || len(view.Rows[0].Inner) != 2 {
		t.Fatalf("tortoise rows = %+v, want two artifacts", view.Rows)
	}

	// Back to sqlmodel is served from the cache
	h.press(t, "s")
	AssertModelField(t, "/codegen requests after switch back", h.server.RequestCount("/codegen"), 2)
	AssertModelField(t, "status", h.m.drawer.GetView().Rows[0].Status, gencache.StatusReady)

	// Pressing the active mode again does nothing
	h.press(t, "s")
	AssertModelField(t, "/codegen requests after same mode", h.server.RequestCount("/codegen"), 2)
}

func TestGeneration_StaleResultDropped(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	// Run the fetch but hold its result back
	_, cmd := h.m.Update(key(" "))
	msgs := collect(cmd)
	AssertModelField(t, "inFlight", h.m.inFlight, 1)

	// Deselect before the result lands
	h.press(t, " ")

	for _, msg := range msgs {
		h.m.Update(msg)
	}

	AssertModelField(t, "inFlight after result", h.m.inFlight, 0)
	AssertModelField(t, "cache entries", h.m.session.CacheStats().Entries, 0)
	if !h.m.drawer.GetView().Empty() {
		t.Error("stale result should not reach the drawer")
	}

	count, err := h.app.History.GetCount()
	AssertNoError(t, err)
	AssertModelField(t, "history count", count, 0)

	// Selecting again needs a new request
	h.press(t, " ")
	AssertModelField(t, "/codegen requests", h.server.RequestCount("/codegen"), 2)
	AssertModelField(t, "cache entries after reselect", h.m.session.CacheStats().Entries, 1)
}

func TestGeneration_PartialFailure(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	// orders, then audit_log at the bottom
	h.press(t, " ", "G", " ")

	view := h.m.drawer.GetView()
	if len(view.Rows) != 2 {
		t.Fatalf("drawer rows = %d, want 2", len(view.Rows))
	}
	AssertModelField(t, "orders status", view.Rows[0].Status, gencache.StatusReady)
	AssertModelField(t, "audit_log status", view.Rows[1].Status, gencache.StatusFailed)
	AssertModelField(t, "failed markers", len(view.Failed), 1)

	if !strings.Contains(h.m.fullErrorMsg, "audit_log") || !strings.Contains(h.m.fullErrorMsg, "SELECT command denied") {
		t.Errorf("fullErrorMsg = %q, want table and service reason", h.m.fullErrorMsg)
	}

	h.press(t, "E")
	AssertModelField(t, "mode", h.m.mode, ModeErrorDetail)
	if !strings.Contains(h.m.View(), "Error Details") {
		t.Error("error detail modal should be rendered")
	}
	h.press(t, "esc")
	AssertModelField(t, "mode after close", h.m.mode, ModeCatalog)
}

func TestGeneration_RefreshRetriesFailures(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "G", " ")
	AssertModelField(t, "/codegen requests", h.server.RequestCount("/codegen"), 2)
	tables := h.server.RequestCount("/tables")

	h.press(t, "r")

	// Only the failed table is requested again
	AssertModelField(t, "/codegen requests after refresh", h.server.RequestCount("/codegen"), 3)
	AssertModelField(t, "/tables requests", h.server.RequestCount("/tables"), tables+1)
}

func TestDrawer_CopyArtifact(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "enter", "y")

	if len(h.copied) != 1 || h.copied[0] != "class Orders(SQLModel): ..." {
		t.Errorf("copied = %v, want orders source", h.copied)
	}
	AssertModelField(t, "status", h.m.statusMsg, "Copied orders.py to clipboard")
}

func TestDrawer_CopyNothing(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, "G", " ", "enter", "y")

	if len(h.copied) != 0 {
		t.Errorf("copied = %v, a failed table has nothing to copy", h.copied)
	}
	AssertModelField(t, "status", h.m.statusMsg, "Nothing to copy yet")
}

func TestDrawer_TabsAndJump(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "j", " ", "enter")
	AssertModelField(t, "table index", h.m.drawer.TableIndex(), 0)
	codegen := h.server.RequestCount("/codegen")
	AssertModelField(t, "codegen requests", codegen, 2)

	h.press(t, "tab")
	AssertModelField(t, "table index after tab", h.m.drawer.TableIndex(), 1)
	h.press(t, "tab")
	AssertModelField(t, "table index wraps", h.m.drawer.TableIndex(), 0)

	h.press(t, "/")
	AssertModelField(t, "mode", h.m.mode, ModeJump)
	h.typeText("usr")

	matches := h.m.drawer.JumpMatches()
	if len(matches) != 1 || matches[0] != "users" {
		t.Fatalf("JumpMatches() = %v, want [users]", matches)
	}

	h.press(t, "enter")
	AssertModelField(t, "mode after jump", h.m.mode, ModeDrawer)
	row, ok := h.m.drawer.ActiveRow()
	if !ok || row.Table != "users" {
		t.Errorf("ActiveRow() = %+v, want users", row)
	}

	// Switching tabs shows cached artifacts
	AssertModelField(t, "codegen requests after switching", h.server.RequestCount("/codegen"), codegen)

	h.press(t, "esc")
	AssertModelField(t, "mode after close", h.m.mode, ModeCatalog)
}

func TestDrawer_ModeSwitchFromDrawer(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "enter", "t")

	AssertModelField(t, "mode", h.m.mode, ModeDrawer)
	AssertModelField(t, "generation mode", h.m.session.Mode(), types.ModeTortoise)

	h.press(t, "l")
	AssertModelField(t, "artifact index", h.m.drawer.ArtifactIndex(), 1)
	tab, ok := h.m.drawer.CurrentArtifact()
	if !ok || tab.Title != "schema.py" {
		t.Errorf("CurrentArtifact() = %+v, want schema.py", tab)
	}
}

func TestSearch_FiltersCatalog(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, "/")
	AssertModelField(t, "mode", h.m.mode, ModeSearch)
	h.typeText("ord")
	h.press(t, "enter")

	AssertModelField(t, "mode after submit", h.m.mode, ModeCatalog)
	AssertModelField(t, "catalog size", h.m.catalog.Len(), 1)
	AssertModelField(t, "filter", h.m.session.CatalogFilter(), "ord")
	AssertModelField(t, "status", h.m.statusMsg, `1 tables matching "ord"`)
}

func TestSearch_PrunesSelection(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, "j", " ")
	if got := h.m.session.Selection(); len(got) != 1 || got[0] != "users" {
		t.Fatalf("Selection() = %v, want [users]", got)
	}

	h.press(t, "/")
	h.typeText("ord")
	h.press(t, "enter")

	if got := h.m.session.Selection(); len(got) != 0 {
		t.Errorf("Selection() = %v, want users pruned", got)
	}
	if !h.m.drawer.GetView().Empty() {
		t.Error("drawer should be empty after the selection is pruned")
	}
}

func TestSearch_CancelKeepsCatalog(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)
	tables := h.server.RequestCount("/tables")

	h.press(t, "/")
	h.typeText("zzz")
	h.press(t, "esc")

	AssertModelField(t, "mode", h.m.mode, ModeCatalog)
	AssertModelField(t, "catalog size", h.m.catalog.Len(), 3)
	AssertModelField(t, "/tables requests", h.server.RequestCount("/tables"), tables)
}

func TestHistory_OpenAndClear(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "H")
	AssertModelField(t, "mode", h.m.mode, ModeHistory)
	entries := h.m.historyState.GetEntries()
	if len(entries) != 1 || entries[0].Table != "orders" {
		t.Fatalf("history entries = %+v, want one orders entry", entries)
	}
	if !strings.Contains(h.m.View(), "Generation History") {
		t.Error("history modal should be rendered")
	}

	h.press(t, "C")
	AssertModelField(t, "mode", h.m.mode, ModeHistoryClearConfirm)
	h.press(t, "n")
	AssertModelField(t, "mode after no", h.m.mode, ModeHistory)

	h.press(t, "C", "y")
	AssertModelField(t, "mode after clear", h.m.mode, ModeHistory)
	AssertModelField(t, "entries", len(h.m.historyState.GetEntries()), 0)

	count, err := h.app.History.GetCount()
	AssertNoError(t, err)
	AssertModelField(t, "stored entries", count, 0)

	h.press(t, "esc")
	AssertModelField(t, "mode after close", h.m.mode, ModeCatalog)
}

func TestHistory_StatsToggle(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, " ", "H")
	h.press(t, "s")

	if !h.m.historyState.GetShowStats() {
		t.Fatal("s should switch to the totals view")
	}
	stats := h.m.historyState.GetStats()
	if len(stats) != 1 || stats[0].Table != "orders" || stats[0].TotalCalls != 1 {
		t.Fatalf("stats = %+v, want one orders row", stats)
	}
	if !strings.Contains(h.m.View(), "Generation Totals") {
		t.Error("totals modal should be rendered")
	}

	h.press(t, "s")
	if h.m.historyState.GetShowStats() {
		t.Error("second s should return to single fetches")
	}
}

func TestHelp_OpenAndClose(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	h.press(t, "?")
	AssertModelField(t, "mode", h.m.mode, ModeHelp)
	if !strings.Contains(h.m.View(), "Keyboard Shortcuts") {
		t.Error("help should be rendered")
	}

	h.press(t, "?")
	AssertModelField(t, "mode after close", h.m.mode, ModeCatalog)
}

func TestQuit(t *testing.T) {
	h := CreateTestModel(t, testFixture(), true)

	_, cmd := h.m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit from the catalog")
	}

	_, cmd = h.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should always quit")
	}
}

func TestTruncateMessage(t *testing.T) {
	short := "done"
	AssertModelField(t, "short", truncateMessage(short), short)

	long := strings.Repeat("x", FooterMessageMax+20)
	got := truncateMessage(long)
	AssertModelField(t, "length", len(got), FooterMessageMax)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated message should end with ..., got %q", got)
	}
}
