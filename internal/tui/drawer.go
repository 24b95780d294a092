package tui

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/highlight"
	"github.com/studiowebux/dfspanel/internal/presenter"
)

// DrawerState tracks the generation drawer: which table and artifact are
// shown, the code viewport, and the fuzzy jump input
type DrawerState struct {
	mu sync.RWMutex

	view     presenter.View
	table    int // Index into view.Rows
	artifact int // Index into the active row's artifacts
	shown    string

	codeView    viewport.Model
	style       string
	highlighted map[string]string // Rendered code by table, mode and artifact key

	jumpMatches []string
	jumpIndex   int
}

// NewDrawerState creates a drawer that highlights with the given chroma style
func NewDrawerState(style string) *DrawerState {
	if style == "" {
		style = highlight.DefaultStyle
	}
	return &DrawerState{
		codeView:    viewport.New(80, 20),
		style:       style,
		highlighted: make(map[string]string),
	}
}

// SetView replaces the drawer content. The active table is kept by name
// when it is still selected, otherwise the position is clamped.
func (d *DrawerState) SetView(v presenter.View, spinnerFrame string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := ""
	if d.table < len(d.view.Rows) {
		current = d.view.Rows[d.table].Table
	}
	modeChanged := v.Mode != d.view.Mode

	d.view = v
	found := false
	for i, row := range v.Rows {
		if row.Table == current {
			d.table = i
			found = true
			break
		}
	}
	if !found {
		d.artifact = 0
		if d.table >= len(v.Rows) {
			d.table = max(len(v.Rows)-1, 0)
		}
	}
	if modeChanged {
		d.artifact = 0
	}
	d.clampArtifact()
	d.render(spinnerFrame)
}

// Refresh re-renders the active tab, typically for a new spinner frame
func (d *DrawerState) Refresh(spinnerFrame string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.render(spinnerFrame)
}

// Reset forgets the view and every highlighted artifact
func (d *DrawerState) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.view = presenter.View{}
	d.table = 0
	d.artifact = 0
	d.shown = ""
	d.highlighted = make(map[string]string)
	d.codeView.SetContent("")
}

// GetView returns the current view
func (d *DrawerState) GetView() presenter.View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}

// TableIndex returns the active outer tab
func (d *DrawerState) TableIndex() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.table
}

// ArtifactIndex returns the active inner tab
func (d *DrawerState) ArtifactIndex() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.artifact
}

// ActiveRow returns the active outer tab
func (d *DrawerState) ActiveRow() (presenter.Row, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.activeRow()
}

// CurrentArtifact returns the artifact on screen, if the active table is ready
func (d *DrawerState) CurrentArtifact() (presenter.InnerTab, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	row, ok := d.activeRow()
	if !ok || row.Status != gencache.StatusReady || d.artifact >= len(row.Inner) {
		return presenter.InnerTab{}, false
	}
	return row.Inner[d.artifact], true
}

// NextTable moves to the next outer tab, wrapping around
func (d *DrawerState) NextTable(spinnerFrame string) {
	d.moveTable(1, spinnerFrame)
}

// PrevTable moves to the previous outer tab, wrapping around
func (d *DrawerState) PrevTable(spinnerFrame string) {
	d.moveTable(-1, spinnerFrame)
}

func (d *DrawerState) moveTable(delta int, spinnerFrame string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.view.Rows)
	if n == 0 {
		return
	}
	d.table = (d.table + delta + n) % n
	d.artifact = 0
	d.render(spinnerFrame)
}

// NextArtifact moves to the next inner tab, wrapping around
func (d *DrawerState) NextArtifact(spinnerFrame string) {
	d.moveArtifact(1, spinnerFrame)
}

// PrevArtifact moves to the previous inner tab, wrapping around
func (d *DrawerState) PrevArtifact(spinnerFrame string) {
	d.moveArtifact(-1, spinnerFrame)
}

func (d *DrawerState) moveArtifact(delta int, spinnerFrame string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.activeRow()
	if !ok || len(row.Inner) == 0 {
		return
	}
	n := len(row.Inner)
	d.artifact = (d.artifact + delta + n) % n
	d.render(spinnerFrame)
}

// SelectTable makes table the active outer tab
func (d *DrawerState) SelectTable(table, spinnerFrame string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, row := range d.view.Rows {
		if row.Table == table {
			if i != d.table {
				d.table = i
				d.artifact = 0
			}
			d.render(spinnerFrame)
			return true
		}
	}
	return false
}

// SetSize resizes the code viewport
func (d *DrawerState) SetSize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codeView.Width = max(width, 10)
	d.codeView.Height = max(height, 1)
}

// CodeView returns the rendered viewport
func (d *DrawerState) CodeView() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.codeView.View()
}

// ScrollPercent returns how far the code viewport is scrolled
func (d *DrawerState) ScrollPercent() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.codeView.ScrollPercent()
}

// Scroll moves the code viewport by lines. Positive scrolls down.
func (d *DrawerState) Scroll(lines int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if lines > 0 {
		d.codeView.ScrollDown(lines)
	} else {
		d.codeView.ScrollUp(-lines)
	}
}

// PageDown scrolls one page down
func (d *DrawerState) PageDown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codeView.PageDown()
}

// PageUp scrolls one page up
func (d *DrawerState) PageUp() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codeView.PageUp()
}

// GotoTop scrolls to the first line
func (d *DrawerState) GotoTop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codeView.GotoTop()
}

// GotoBottom scrolls to the last line
func (d *DrawerState) GotoBottom() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codeView.GotoBottom()
}

// SetJumpQuery fuzzy-matches query against the outer tab names
// An empty query matches every table in order
func (d *DrawerState) SetJumpQuery(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := d.view.TabNames()
	d.jumpIndex = 0
	if query == "" {
		d.jumpMatches = names
		return
	}

	matches := fuzzy.Find(query, names)
	d.jumpMatches = make([]string, len(matches))
	for i, match := range matches {
		d.jumpMatches[i] = match.Str
	}
}

// JumpMatches returns the tables matching the jump query, best first
func (d *DrawerState) JumpMatches() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]string, len(d.jumpMatches))
	copy(result, d.jumpMatches)
	return result
}

// JumpIndex returns the highlighted jump match
func (d *DrawerState) JumpIndex() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.jumpIndex
}

// NavigateJump moves the highlighted jump match, wrapping around
func (d *DrawerState) NavigateJump(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.jumpMatches)
	if n == 0 {
		return
	}
	d.jumpIndex = (d.jumpIndex + delta + n) % n
}

// JumpTarget returns the highlighted jump match
func (d *DrawerState) JumpTarget() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.jumpIndex >= len(d.jumpMatches) {
		return "", false
	}
	return d.jumpMatches[d.jumpIndex], true
}

// activeRow must be called with the lock held
func (d *DrawerState) activeRow() (presenter.Row, bool) {
	if d.table < 0 || d.table >= len(d.view.Rows) {
		return presenter.Row{}, false
	}
	return d.view.Rows[d.table], true
}

func (d *DrawerState) clampArtifact() {
	row, ok := d.activeRow()
	if !ok || d.artifact >= len(row.Inner) {
		d.artifact = 0
	}
}

// render fills the code viewport for the active tab. Scroll is kept while
// the same artifact stays on screen.
func (d *DrawerState) render(spinnerFrame string) {
	row, ok := d.activeRow()
	if !ok {
		d.show("empty", styleSubtle.Render("No tables selected\n\nSpace toggles a table in the catalog"))
		return
	}

	switch row.Status {
	case gencache.StatusReady:
		if len(row.Inner) == 0 {
			d.show(row.Table+"/none", styleSubtle.Render("The service returned no artifacts for "+row.Table))
			return
		}
		tab := row.Inner[d.artifact]
		key := row.Table + "\x00" + string(d.view.Mode) + "\x00" + tab.Key
		code, ok := d.highlighted[key]
		if !ok {
			code = highlight.Code(tab.Source, tab.Title, d.style)
			d.highlighted[key] = code
		}
		d.show(key, code)

	case gencache.StatusFailed:
		msg := "unknown error"
		if row.Err != nil {
			msg = categorizeError(row.Err)
		}
		content := styleError.Render(fmt.Sprintf("Generation failed for %s", row.Table)) + "\n\n" +
			wrapText(msg, d.codeView.Width) + "\n\n" +
			styleSubtle.Render("Press r in the catalog to retry")
		d.show(row.Table+"/failed", content)

	default:
		content := fmt.Sprintf("%s Generating %s models for %s...", spinnerFrame, d.view.Mode.DisplayName(), row.Table)
		d.show(row.Table+"/pending", content)
	}
}

func (d *DrawerState) show(key, content string) {
	offset := d.codeView.YOffset
	d.codeView.SetContent(content)
	if key == d.shown {
		d.codeView.SetYOffset(offset)
	} else {
		d.codeView.GotoTop()
	}
	d.shown = key
}
