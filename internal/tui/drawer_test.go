package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/highlight"
	"github.com/studiowebux/dfspanel/internal/presenter"
	"github.com/studiowebux/dfspanel/internal/types"
)

func readyRow(table string, titles ...string) presenter.Row {
	row := presenter.Row{Table: table, Status: gencache.StatusReady}
	for _, title := range titles {
		row.Inner = append(row.Inner, presenter.InnerTab{Key: title, Title: title, Source: "# " + title})
	}
	return row
}

func testView(mode types.GenerationMode, rows ...presenter.Row) presenter.View {
	v := presenter.View{Mode: mode, Rows: rows}
	for _, r := range rows {
		switch r.Status {
		case gencache.StatusReady:
			v.Tabs = append(v.Tabs, presenter.OuterTab{Table: r.Table, Inner: r.Inner})
		case gencache.StatusFailed:
			v.Failed = append(v.Failed, presenter.Marker{Table: r.Table, Status: r.Status, Err: r.Err})
		default:
			v.Pending = append(v.Pending, presenter.Marker{Table: r.Table, Status: r.Status})
		}
	}
	return v
}

func TestNewDrawerState(t *testing.T) {
	d := NewDrawerState("")

	if d == nil {
		t.Fatal("NewDrawerState returned nil")
	}
	AssertModelField(t, "style", d.style, highlight.DefaultStyle)
	AssertModelField(t, "table", d.TableIndex(), 0)

	if _, ok := d.ActiveRow(); ok {
		t.Error("Expected no active row for empty drawer")
	}
	if _, ok := d.CurrentArtifact(); ok {
		t.Error("Expected no artifact for empty drawer")
	}
}

func TestDrawerState_SetViewKeepsTable(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeSQLModel, readyRow("orders", "orders.py"), readyRow("users", "users.py")), "")
	d.NextTable("")
	AssertModelField(t, "table", d.TableIndex(), 1)

	// A table added in front keeps users active
	d.SetView(testView(types.ModeSQLModel,
		readyRow("audit_log", "audit_log.py"),
		readyRow("orders", "orders.py"),
		readyRow("users", "users.py")), "")

	row, ok := d.ActiveRow()
	if !ok || row.Table != "users" {
		t.Errorf("ActiveRow() = %+v, want users", row)
	}
	AssertModelField(t, "table", d.TableIndex(), 2)
}

func TestDrawerState_SetViewClampsRemovedTable(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeSQLModel, readyRow("orders", "a.py"), readyRow("users", "b.py")), "")
	d.NextTable("")

	d.SetView(testView(types.ModeSQLModel, readyRow("orders", "a.py")), "")
	AssertModelField(t, "table", d.TableIndex(), 0)

	d.SetView(presenter.View{Mode: types.ModeSQLModel}, "")
	if !strings.Contains(d.CodeView(), "No tables selected") {
		t.Error("empty drawer should say nothing is selected")
	}
}

func TestDrawerState_ModeChangeResetsArtifact(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeTortoise, readyRow("orders", "orders.py", "schema.py")), "")
	d.NextArtifact("")
	AssertModelField(t, "artifact", d.ArtifactIndex(), 1)

	d.SetView(testView(types.ModeSQLModel, readyRow("orders", "orders.py", "extra.py")), "")
	AssertModelField(t, "artifact after mode change", d.ArtifactIndex(), 0)
}

func TestDrawerState_NavigationWraps(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeTortoise,
		readyRow("orders", "orders.py", "schema.py"),
		readyRow("users", "users.py")), "")

	d.PrevTable("")
	AssertModelField(t, "table after prev", d.TableIndex(), 1)
	d.NextTable("")
	AssertModelField(t, "table after next", d.TableIndex(), 0)

	d.PrevArtifact("")
	AssertModelField(t, "artifact after prev", d.ArtifactIndex(), 1)
	tab, ok := d.CurrentArtifact()
	if !ok || tab.Title != "schema.py" {
		t.Errorf("CurrentArtifact() = %+v, want schema.py", tab)
	}

	// Changing table starts at the first artifact
	d.NextTable("")
	AssertModelField(t, "artifact after table change", d.ArtifactIndex(), 0)
}

func TestDrawerState_SelectTable(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeSQLModel, readyRow("orders", "a.py"), readyRow("users", "b.py")), "")

	if !d.SelectTable("users", "") {
		t.Fatal("SelectTable(users) should succeed")
	}
	AssertModelField(t, "table", d.TableIndex(), 1)

	if d.SelectTable("missing", "") {
		t.Error("SelectTable(missing) should fail")
	}
	AssertModelField(t, "table unchanged", d.TableIndex(), 1)
}

func TestDrawerState_RendersStatus(t *testing.T) {
	d := NewDrawerState("")
	d.SetSize(80, 10)

	failed := presenter.Row{
		Table:  "audit_log",
		Status: gencache.StatusFailed,
		Err:    &types.RemoteError{Endpoint: "/codegen", Message: "SELECT command denied"},
	}
	pending := presenter.Row{Table: "orders", Status: gencache.StatusPending}
	d.SetView(testView(types.ModeSQLModel, pending, failed), "*")

	if !strings.Contains(d.CodeView(), "Generating SQLModel models for orders") {
		t.Errorf("pending row should show progress, got %q", d.CodeView())
	}
	if _, ok := d.CurrentArtifact(); ok {
		t.Error("pending row should have no artifact")
	}

	d.NextTable("*")
	view := d.CodeView()
	if !strings.Contains(view, "Generation failed for audit_log") || !strings.Contains(view, "SELECT command denied") {
		t.Errorf("failed row should show the reason, got %q", view)
	}
}

func TestDrawerState_HighlightCache(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeSQLModel, readyRow("orders", "orders.py")), "")

	AssertModelField(t, "highlighted", len(d.highlighted), 1)

	d.Refresh("")
	AssertModelField(t, "highlighted after refresh", len(d.highlighted), 1)

	d.Reset()
	AssertModelField(t, "highlighted after reset", len(d.highlighted), 0)
	if !d.GetView().Empty() {
		t.Error("Reset should drop the view")
	}
}

func TestDrawerState_Jump(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeSQLModel,
		readyRow("orders", "a.py"),
		readyRow("order_items", "b.py"),
		readyRow("users", "c.py")), "")

	d.SetJumpQuery("")
	matches := d.JumpMatches()
	if len(matches) != 3 || matches[0] != "orders" {
		t.Errorf("empty query should match all tables in order, got %v", matches)
	}

	d.SetJumpQuery("ordit")
	matches = d.JumpMatches()
	if len(matches) != 1 || matches[0] != "order_items" {
		t.Fatalf("JumpMatches() = %v, want [order_items]", matches)
	}
	target, ok := d.JumpTarget()
	if !ok || target != "order_items" {
		t.Errorf("JumpTarget() = %q, %v", target, ok)
	}

	d.SetJumpQuery("ord")
	if len(d.JumpMatches()) != 2 {
		t.Fatalf("JumpMatches() = %v, want two order tables", d.JumpMatches())
	}
	d.NavigateJump(1)
	AssertModelField(t, "jump index", d.JumpIndex(), 1)
	d.NavigateJump(1)
	AssertModelField(t, "jump index wraps", d.JumpIndex(), 0)
	d.NavigateJump(-1)
	AssertModelField(t, "jump index wraps back", d.JumpIndex(), 1)

	d.SetJumpQuery("zzz")
	if _, ok := d.JumpTarget(); ok {
		t.Error("JumpTarget should fail without matches")
	}
}

func TestDrawerState_FailedRowWithoutError(t *testing.T) {
	d := NewDrawerState("")
	d.SetView(testView(types.ModeSQLModel, presenter.Row{Table: "t", Status: gencache.StatusFailed}), "")

	if !strings.Contains(d.CodeView(), "unknown error") {
		t.Errorf("failed row without error should say unknown error, got %q", d.CodeView())
	}

	d.SetView(testView(types.ModeSQLModel, presenter.Row{Table: "t", Status: gencache.StatusFailed, Err: errors.New("boom")}), "")
	if !strings.Contains(d.CodeView(), "boom") {
		t.Errorf("failed row should show the error, got %q", d.CodeView())
	}
}
