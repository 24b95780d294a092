package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/dfspanel/internal/keybinds"
	"github.com/studiowebux/dfspanel/internal/types"
)

// handleKeyPress routes key presses based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Global keys (work in all modes)
	if action, ok := m.keys.Match(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	// Mode-specific handling
	switch m.mode {
	case ModeLoading:
		if msg.String() == "q" {
			return tea.Quit
		}
	case ModeCatalog:
		return m.handleCatalogKeys(msg)
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeConfigure:
		return m.handleConfigureKeys(msg)
	case ModeDrawer:
		return m.handleDrawerKeys(msg)
	case ModeJump:
		return m.handleJumpKeys(msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeHistoryClearConfirm:
		return m.handleHistoryClearConfirmKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	case ModeErrorDetail:
		return m.handleErrorDetailKeys(msg)
	}

	return nil
}

// handleCatalogKeys handles the table list
func (m *Model) handleCatalogKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, pending := m.keys.MatchMultiKey(keybinds.ContextCatalog, msg.String())
	if pending || !ok {
		return nil
	}

	pageSize := m.catalogPageSize()

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit

	case keybinds.ActionNavigateUp:
		m.catalog.Navigate(-1)
	case keybinds.ActionNavigateDown:
		m.catalog.Navigate(1)
	case keybinds.ActionPageUp:
		m.catalog.Navigate(-pageSize)
	case keybinds.ActionPageDown:
		m.catalog.Navigate(pageSize)
	case keybinds.ActionGoToTop:
		m.catalog.GoToTop()
	case keybinds.ActionGoToBottom:
		m.catalog.GoToBottom()

	case keybinds.ActionToggleSelect:
		return m.toggleCurrent()

	case keybinds.ActionClearSelection:
		m.session.ClearSelection()
		m.refreshDrawer()
		return m.setStatusMessage("Selection cleared")

	case keybinds.ActionOpenSearch:
		m.searchInput.SetValue(m.session.CatalogFilter())
		m.searchInput.CursorEnd()
		m.searchInput.Focus()
		m.mode = ModeSearch
		return textinput.Blink

	case keybinds.ActionRefresh:
		return m.refreshCatalog()

	case keybinds.ActionModeSQLModel:
		return m.switchMode(types.ModeSQLModel)
	case keybinds.ActionModeTortoise:
		return m.switchMode(types.ModeTortoise)

	case keybinds.ActionOpenDrawer:
		if len(m.session.Selection()) == 0 {
			return m.setStatusMessage("Select a table to open the drawer")
		}
		m.mode = ModeDrawer

	case keybinds.ActionOpenConfigure:
		return m.openConfigure()

	case keybinds.ActionOpenHistory:
		return m.openHistory()

	case keybinds.ActionOpenHelp:
		m.openHelp()

	case keybinds.ActionOpenErrorDetail:
		m.openErrorDetail()
	}

	m.catalog.EnsureVisible(pageSize)
	return nil
}

// handleSearchKeys handles the catalog filter input
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextSearch, msg.String()); ok {
		switch action {
		case keybinds.ActionTextSubmit:
			return m.submitSearch()
		case keybinds.ActionTextCancel:
			m.searchInput.Blur()
			m.mode = ModeCatalog
			return nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return cmd
}

// handleConfigureKeys handles the connection form
func (m *Model) handleConfigureKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextConfigure, msg.String()); ok {
		switch action {
		case keybinds.ActionNextField:
			m.form.NextField()
			return nil
		case keybinds.ActionPrevField:
			m.form.PrevField()
			return nil
		case keybinds.ActionTextSubmit:
			if m.loading {
				return nil
			}
			return m.submitConfigure()
		case keybinds.ActionTextCancel:
			if !m.connected {
				return m.setStatusMessage("A connection is required - ctrl+c quits")
			}
			m.enterCatalog()
			return nil
		}
	}

	return m.form.Update(msg)
}

// handleDrawerKeys handles the generation drawer
func (m *Model) handleDrawerKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, pending := m.keys.MatchMultiKey(keybinds.ContextDrawer, msg.String())
	if pending || !ok {
		return nil
	}

	frame := m.spinner.View()

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = ModeCatalog

	case keybinds.ActionNextTable:
		m.drawer.NextTable(frame)
	case keybinds.ActionPrevTable:
		m.drawer.PrevTable(frame)
	case keybinds.ActionNextArtifact:
		m.drawer.NextArtifact(frame)
	case keybinds.ActionPrevArtifact:
		m.drawer.PrevArtifact(frame)

	case keybinds.ActionNavigateUp:
		m.drawer.Scroll(-1)
	case keybinds.ActionNavigateDown:
		m.drawer.Scroll(1)
	case keybinds.ActionPageUp:
		m.drawer.PageUp()
	case keybinds.ActionPageDown:
		m.drawer.PageDown()
	case keybinds.ActionGoToTop:
		m.drawer.GotoTop()
	case keybinds.ActionGoToBottom:
		m.drawer.GotoBottom()

	case keybinds.ActionCopyArtifact:
		return m.copyArtifact()

	case keybinds.ActionOpenJump:
		m.drawer.SetJumpQuery("")
		m.jumpInput.SetValue("")
		m.jumpInput.Focus()
		m.mode = ModeJump
		return textinput.Blink

	case keybinds.ActionModeSQLModel:
		return m.switchMode(types.ModeSQLModel)
	case keybinds.ActionModeTortoise:
		return m.switchMode(types.ModeTortoise)

	case keybinds.ActionOpenHelp:
		m.openHelp()
	case keybinds.ActionOpenErrorDetail:
		m.openErrorDetail()
	}

	return nil
}

// handleJumpKeys handles the fuzzy table jump input
func (m *Model) handleJumpKeys(msg tea.KeyMsg) tea.Cmd {
	if action, ok := m.keys.Match(keybinds.ContextJump, msg.String()); ok {
		switch action {
		case keybinds.ActionTextSubmit:
			m.jumpInput.Blur()
			m.mode = ModeDrawer
			if target, ok := m.drawer.JumpTarget(); ok {
				m.drawer.SelectTable(target, m.spinner.View())
				return nil
			}
			return m.setStatusMessage("No table matches " + m.jumpInput.Value())
		case keybinds.ActionTextCancel:
			m.jumpInput.Blur()
			m.mode = ModeDrawer
			return nil
		case keybinds.ActionNavigateUp:
			m.drawer.NavigateJump(-1)
			return nil
		case keybinds.ActionNavigateDown:
			m.drawer.NavigateJump(1)
			return nil
		}
	}

	var cmd tea.Cmd
	m.jumpInput, cmd = m.jumpInput.Update(msg)
	m.drawer.SetJumpQuery(m.jumpInput.Value())
	return cmd
}

// handleHistoryKeys handles the generation history modal
func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, pending := m.keys.MatchMultiKey(keybinds.ContextHistory, msg.String())
	if pending || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = m.prevMode
	case keybinds.ActionNavigateUp:
		m.historyState.Navigate(-1)
	case keybinds.ActionNavigateDown:
		m.historyState.Navigate(1)
	case keybinds.ActionPageUp:
		m.historyState.Navigate(-m.historyPageSize())
	case keybinds.ActionPageDown:
		m.historyState.Navigate(m.historyPageSize())
	case keybinds.ActionGoToTop:
		m.historyState.SetIndex(0)
	case keybinds.ActionGoToBottom:
		if n := m.historyState.RowCount(); n > 0 {
			m.historyState.SetIndex(n - 1)
		}
	case keybinds.ActionHistoryClear:
		if len(m.historyState.GetEntries()) > 0 {
			m.mode = ModeHistoryClearConfirm
		}
	case keybinds.ActionHistoryStats:
		m.historyState.ToggleStats()
		m.modalView.GotoTop()
	case keybinds.ActionRefresh:
		return m.loadHistoryCmd()
	}

	m.updateHistoryView()
	return nil
}

// handleHistoryClearConfirmKeys handles the clear history confirmation
func (m *Model) handleHistoryClearConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		return m.clearHistoryCmd()
	case "n", "N", "esc", "q":
		m.mode = ModeHistory
	}
	return nil
}

// handleHelpKeys handles the help viewer
func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, pending := m.keys.MatchMultiKey(keybinds.ContextHelp, msg.String())
	if pending || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = m.prevMode
	case keybinds.ActionNavigateUp:
		m.helpView.ScrollUp(1)
	case keybinds.ActionNavigateDown:
		m.helpView.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.helpView.PageUp()
	case keybinds.ActionPageDown:
		m.helpView.PageDown()
	case keybinds.ActionGoToTop:
		m.helpView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.helpView.GotoBottom()
	}
	return nil
}

// handleErrorDetailKeys handles the error detail modal
func (m *Model) handleErrorDetailKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok, pending := m.keys.MatchMultiKey(keybinds.ContextModal, msg.String())
	if pending || !ok {
		return nil
	}

	switch action {
	case keybinds.ActionCloseModal:
		m.mode = m.prevMode
	case keybinds.ActionNavigateUp:
		m.modalView.ScrollUp(1)
	case keybinds.ActionNavigateDown:
		m.modalView.ScrollDown(1)
	case keybinds.ActionPageUp:
		m.modalView.PageUp()
	case keybinds.ActionPageDown:
		m.modalView.PageDown()
	case keybinds.ActionGoToTop:
		m.modalView.GotoTop()
	case keybinds.ActionGoToBottom:
		m.modalView.GotoBottom()
	}
	return nil
}

func (m *Model) openConfigure() tea.Cmd {
	if cfg, ok := m.session.Connection(); ok {
		m.form.Prefill(cfg)
	}
	m.mode = ModeConfigure
	return textinput.Blink
}

func (m *Model) openHistory() tea.Cmd {
	m.prevMode = m.mode
	m.mode = ModeHistory
	m.historyState.SetIndex(0)
	return m.loadHistoryCmd()
}

func (m *Model) openHelp() {
	m.prevMode = m.mode
	m.updateHelpView()
	m.helpView.GotoTop()
	m.mode = ModeHelp
}

func (m *Model) openErrorDetail() {
	if m.fullErrorMsg == "" {
		return
	}
	m.prevMode = m.mode
	m.modalView.GotoTop()
	m.mode = ModeErrorDetail
}

func (m *Model) catalogPageSize() int {
	return max(m.height-8, 1)
}

func (m *Model) historyPageSize() int {
	return max(m.height/2, 1)
}
