package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/keybinds"
	"github.com/studiowebux/dfspanel/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#0000ff"} // Dark blue / Blue
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleActiveButton = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				Background(colorBlue).
				Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#ffffff"})

	styleButton = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(colorCyan)

	styleDisabledButton = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(colorGray).
				Strikethrough(true)
)

// Outer tab markers
const (
	markerReady  = "✓"
	markerFailed = "✗"
)

// drawerTabsWidth is the width of the outer tab column in the drawer
const drawerTabsWidth = 24

// renderMain renders the catalog panel, the drawer and the status bar
func (m *Model) renderMain() string {
	catalogWidth, drawerWidth := m.panelWidths()
	panelHeight := m.height - 1 // Leave 1 line for status bar

	catalogBorder := colorGray
	drawerBorder := colorGray
	switch m.mode {
	case ModeDrawer, ModeJump:
		drawerBorder = colorGreen
	default:
		catalogBorder = colorGreen
	}

	catalogBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(catalogBorder).
		Width(catalogWidth).
		Height(panelHeight - 2).
		Render(m.renderCatalog(catalogWidth, panelHeight-2))

	drawerBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(drawerBorder).
		Width(drawerWidth).
		Height(panelHeight - 2).
		Render(m.renderDrawer(drawerWidth, panelHeight-2))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, catalogBox, drawerBox)

	return lipgloss.JoinVertical(lipgloss.Left, mainView, m.renderStatusBar())
}

// panelWidths splits the screen between catalog and drawer. Both exclude borders.
func (m *Model) panelWidths() (int, int) {
	catalogWidth := max(CatalogMinWidth, m.width*CatalogWidthPercent/100)
	if m.width < 80 {
		catalogWidth = m.width / 2
	}
	drawerWidth := m.width - catalogWidth - 4 // Account for borders
	return catalogWidth, max(drawerWidth, 10)
}

// renderCatalog renders the table list with selection checkboxes
func (m *Model) renderCatalog(width, height int) string {
	var lines []string

	title := "Tables"
	if filter := m.session.CatalogFilter(); filter != "" {
		title = fmt.Sprintf("Tables (filter: %s)", filter)
	}
	lines = append(lines, styleTitle.Render(title))

	if m.mode == ModeSearch {
		lines = append(lines, m.searchInput.View())
	} else {
		lines = append(lines, "")
	}

	tables := m.catalog.GetTables()
	switch {
	case m.loading && len(tables) == 0:
		lines = append(lines, m.spinner.View()+" Loading tables...")
	case !m.connected:
		lines = append(lines, styleSubtle.Render("Not connected - press C to configure"))
	case len(tables) == 0:
		lines = append(lines, styleSubtle.Render("No tables found"))
	}

	pageSize := m.catalogPageSize()
	m.catalog.EnsureVisible(pageSize)
	offset := m.catalog.GetOffset()
	index := m.catalog.GetIndex()
	end := min(offset+pageSize, len(tables))

	for i := offset; i < end; i++ {
		t := tables[i]

		box := "[ ]"
		if m.session.Selected(t.Name) {
			box = styleSuccess.Render("[x]")
		}

		name := t.Name
		maxName := width - 8
		if maxName < 10 {
			maxName = 10
		}
		if len(name) > maxName {
			name = name[:maxName-3] + "..."
		}

		line := fmt.Sprintf("%s %s", box, name)
		if t.Comment != "" && len(t.Name)+len(t.Comment)+8 < width {
			line += " " + styleSubtle.Render(t.Comment)
		}
		if i == index {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}

	if len(tables) > 0 {
		lines = append(lines, "")
		footer := fmt.Sprintf("[%d/%d] %d selected", index+1, len(tables), len(m.session.Selection()))
		lines = append(lines, styleSubtle.Render(footer))
	}

	return lipgloss.NewStyle().
		Width(width).
		MaxHeight(height).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// renderModeButtons renders one button per generation mode. Buttons are
// disabled while nothing is selected.
func (m *Model) renderModeButtons() string {
	disabled := len(m.session.Selection()) == 0
	active := m.session.Mode()

	var buttons []string
	for _, mode := range types.AllModes {
		action := keybinds.ActionModeSQLModel
		if mode == types.ModeTortoise {
			action = keybinds.ActionModeTortoise
		}
		label := fmt.Sprintf("%s %s", m.keys.KeyString(keybinds.ContextCatalog, action), mode.DisplayName())

		style := styleButton
		switch {
		case disabled:
			style = styleDisabledButton
		case mode == active:
			style = styleActiveButton
		}
		buttons = append(buttons, style.Render(label))
	}
	return strings.Join(buttons, " ")
}

// renderDrawer renders the generation drawer: mode buttons, outer tabs on
// the left, inner tabs and code on the right
func (m *Model) renderDrawer(width, height int) string {
	header := m.renderModeButtons()

	view := m.drawer.GetView()
	if view.Empty() {
		body := styleSubtle.Render("No tables selected\n\nSpace toggles a table in the catalog")
		return lipgloss.NewStyle().Width(width).MaxHeight(height).Padding(0, 1).
			Render(header + "\n\n" + body)
	}

	var tabs string
	if m.mode == ModeJump {
		tabs = m.renderJump(drawerTabsWidth)
	} else {
		tabs = m.renderOuterTabs(drawerTabsWidth)
	}
	tabColumn := lipgloss.NewStyle().
		Width(drawerTabsWidth).
		MaxHeight(height - 2).
		Render(tabs)

	code := m.renderInnerTabs() + "\n" + m.drawer.CodeView()
	codeColumn := lipgloss.NewStyle().
		Width(max(width-drawerTabsWidth-3, 10)).
		MaxHeight(height - 2).
		PaddingLeft(1).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorGray).
		Render(code)

	body := lipgloss.JoinHorizontal(lipgloss.Top, tabColumn, codeColumn)
	return lipgloss.NewStyle().Width(width).MaxHeight(height).Padding(0, 1).
		Render(header + "\n\n" + body)
}

// renderOuterTabs lists the selected tables with their status markers
func (m *Model) renderOuterTabs(width int) string {
	view := m.drawer.GetView()
	active := m.drawer.TableIndex()

	var lines []string
	for i, row := range view.Rows {
		marker := m.spinner.View()
		switch row.Status {
		case gencache.StatusReady:
			marker = styleSuccess.Render(markerReady)
		case gencache.StatusFailed:
			marker = styleError.Render(markerFailed)
		}

		name := row.Table
		if len(name) > width-3 {
			name = name[:width-6] + "..."
		}
		line := marker + " " + name
		if i == active {
			line = styleSelected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderJump shows the jump input and its fuzzy matches
func (m *Model) renderJump(width int) string {
	lines := []string{m.jumpInput.View(), ""}
	matches := m.drawer.JumpMatches()
	index := m.drawer.JumpIndex()
	if len(matches) == 0 {
		lines = append(lines, styleSubtle.Render("No match"))
	}
	for i, name := range matches {
		if len(name) > width-2 {
			name = name[:width-5] + "..."
		}
		if i == index {
			name = styleSelected.Render(name)
		}
		lines = append(lines, name)
	}
	return strings.Join(lines, "\n")
}

// renderInnerTabs renders the artifact tabs of the active table
func (m *Model) renderInnerTabs() string {
	row, ok := m.drawer.ActiveRow()
	if !ok {
		return ""
	}
	if row.Status != gencache.StatusReady {
		return styleTitle.Render(row.Table)
	}

	active := m.drawer.ArtifactIndex()
	var tabs []string
	for i, tab := range row.Inner {
		if i == active {
			tabs = append(tabs, styleActiveButton.Render(tab.Title))
		} else {
			tabs = append(tabs, styleButton.Render(tab.Title))
		}
	}
	return strings.Join(tabs, " ")
}

// renderStatusBar renders the status bar at the bottom
func (m *Model) renderStatusBar() string {
	// Left side - connection and mode
	left := "dfspanel"
	if cfg, ok := m.session.Connection(); ok {
		left = fmt.Sprintf("%s@%s", cfg.Database, cfg.Address())
	}
	left += " | " + m.session.Mode().DisplayName()
	if m.busy() {
		left += " " + m.spinner.View()
	}

	// Right side - messages
	right := ""
	switch {
	case m.errorMsg != "":
		right = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		right = m.statusMsg
		if strings.HasPrefix(m.statusMsg, "Copied") || strings.HasPrefix(m.statusMsg, "Connected") ||
			strings.HasPrefix(m.statusMsg, "Generated") {
			right = styleSuccess.Render(m.statusMsg)
		}
	case m.mode == ModeDrawer:
		right = styleSubtle.Render("tab: next table | h/l: artifact | y: copy | /: jump | ? help")
	default:
		right = styleSubtle.Render("space: select | /: search | enter: drawer | ? help | q quit")
	}

	// Center spacing
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}

	return left + strings.Repeat(" ", spacing) + right
}

// updateViewport resizes the drawer and modal viewports
// MUST match width calculations in renderDrawer!
func (m *Model) updateViewport() {
	_, drawerWidth := m.panelWidths()
	codeWidth := drawerWidth - drawerTabsWidth - 6 // -2 panel padding, -1 border, -1 padding, -2 slack
	codeHeight := m.height - 1 - 2 - 4            // status, borders, mode buttons + blank + inner tabs + gap
	m.drawer.SetSize(codeWidth, codeHeight)
	m.drawer.Refresh(m.spinner.View())

	m.helpView.Width = m.width - ModalWidthMargin - 4
	m.helpView.Height = m.height - ModalHeightMargin - 8

	m.searchInput.Width = max(drawerWidth/3, 10)
	m.jumpInput.Width = drawerTabsWidth - 8
}

// updateHelpView fills the help viewport from the active keybindings
func (m *Model) updateHelpView() {
	k := func(ctx keybinds.Context, action keybinds.Action) string {
		return padRight(m.keys.KeyString(ctx, action), 16)
	}
	c, d := keybinds.ContextCatalog, keybinds.ContextDrawer

	var b strings.Builder
	b.WriteString("dfspanel - Keyboard Shortcuts\n\n")

	b.WriteString("CATALOG\n")
	fmt.Fprintf(&b, "  %s Move cursor\n", padRight(m.keys.KeyString(c, keybinds.ActionNavigateUp)+" "+m.keys.KeyString(c, keybinds.ActionNavigateDown), 16))
	fmt.Fprintf(&b, "  %s Page up\n", k(c, keybinds.ActionPageUp))
	fmt.Fprintf(&b, "  %s Page down\n", k(c, keybinds.ActionPageDown))
	fmt.Fprintf(&b, "  %s First / last table\n", padRight(m.keys.KeyString(c, keybinds.ActionGoToTop)+" "+m.keys.KeyString(c, keybinds.ActionGoToBottom), 16))
	fmt.Fprintf(&b, "  %s Select / unselect table\n", k(c, keybinds.ActionToggleSelect))
	fmt.Fprintf(&b, "  %s Clear selection\n", k(c, keybinds.ActionClearSelection))
	fmt.Fprintf(&b, "  %s Filter tables on the service\n", k(c, keybinds.ActionOpenSearch))
	fmt.Fprintf(&b, "  %s Reload tables and retry failures\n", k(c, keybinds.ActionRefresh))
	fmt.Fprintf(&b, "  %s Open the generation drawer\n", k(c, keybinds.ActionOpenDrawer))
	b.WriteString("\n")

	b.WriteString("GENERATION MODE (needs a selection)\n")
	fmt.Fprintf(&b, "  %s %s\n", k(c, keybinds.ActionModeSQLModel), types.ModeSQLModel.DisplayName())
	fmt.Fprintf(&b, "  %s %s\n", k(c, keybinds.ActionModeTortoise), types.ModeTortoise.DisplayName())
	b.WriteString("\n")

	b.WriteString("DRAWER\n")
	fmt.Fprintf(&b, "  %s Next table\n", k(d, keybinds.ActionNextTable))
	fmt.Fprintf(&b, "  %s Previous table\n", k(d, keybinds.ActionPrevTable))
	fmt.Fprintf(&b, "  %s Next artifact\n", k(d, keybinds.ActionNextArtifact))
	fmt.Fprintf(&b, "  %s Previous artifact\n", k(d, keybinds.ActionPrevArtifact))
	fmt.Fprintf(&b, "  %s Scroll code\n", padRight(m.keys.KeyString(d, keybinds.ActionNavigateUp)+" "+m.keys.KeyString(d, keybinds.ActionNavigateDown), 16))
	fmt.Fprintf(&b, "  %s Copy artifact to clipboard\n", k(d, keybinds.ActionCopyArtifact))
	fmt.Fprintf(&b, "  %s Jump to table (fuzzy)\n", k(d, keybinds.ActionOpenJump))
	fmt.Fprintf(&b, "  %s Back to catalog\n", k(d, keybinds.ActionCloseModal))
	b.WriteString("\n")

	h := keybinds.ContextHistory
	b.WriteString("HISTORY\n")
	fmt.Fprintf(&b, "  %s Fetches / per table totals\n", k(h, keybinds.ActionHistoryStats))
	fmt.Fprintf(&b, "  %s Reload\n", k(h, keybinds.ActionRefresh))
	fmt.Fprintf(&b, "  %s Clear all history\n", k(h, keybinds.ActionHistoryClear))
	b.WriteString("\n")

	b.WriteString("OTHER\n")
	fmt.Fprintf(&b, "  %s Configure connection\n", k(c, keybinds.ActionOpenConfigure))
	fmt.Fprintf(&b, "  %s Generation history\n", k(c, keybinds.ActionOpenHistory))
	fmt.Fprintf(&b, "  %s Last error in full\n", k(c, keybinds.ActionOpenErrorDetail))
	fmt.Fprintf(&b, "  %s Show this help\n", k(c, keybinds.ActionOpenHelp))
	fmt.Fprintf(&b, "  %s Quit\n", k(c, keybinds.ActionQuit))
	fmt.Fprintf(&b, "  %s Quit from anywhere\n", k(keybinds.ContextGlobal, keybinds.ActionQuitForce))
	b.WriteString("\nKeys can be overridden in keybinds.json in the config directory")

	m.helpView.SetContent(b.String())
}

// wrapText wraps long lines to fit within the specified width, breaking at
// spaces when possible
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var wrapped []string
	for _, line := range strings.Split(text, "\n") {
		for len(line) > width {
			cut := strings.LastIndex(line[:width], " ")
			if cut <= 0 {
				cut = width
			}
			wrapped = append(wrapped, line[:cut])
			line = strings.TrimLeft(line[cut:], " ")
		}
		wrapped = append(wrapped, line)
	}
	return strings.Join(wrapped, "\n")
}
