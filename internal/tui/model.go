package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/dfspanel/internal/analytics"
	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/history"
	"github.com/studiowebux/dfspanel/internal/keybinds"
	"github.com/studiowebux/dfspanel/internal/orchestrator"
	"github.com/studiowebux/dfspanel/internal/types"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeLoading Mode = iota
	ModeCatalog
	ModeSearch
	ModeConfigure
	ModeDrawer
	ModeJump
	ModeHistory
	ModeHistoryClearConfirm
	ModeHelp
	ModeErrorDetail
)

// Model represents the TUI state
type Model struct {
	// Core state
	ctx       context.Context
	session   *orchestrator.Session
	history   *history.Manager
	analytics *analytics.Manager
	logger    *slog.Logger
	keys      *keybinds.Registry

	mode     Mode
	prevMode Mode // Restored when a modal closes

	// Screen state
	catalog      *CatalogState
	drawer       *DrawerState
	form         *ConfigureForm
	historyState *HistoryState

	searchInput textinput.Model
	jumpInput   textinput.Model
	spinner     spinner.Model
	helpView    viewport.Model
	modalView   viewport.Model

	width  int
	height int

	// In-flight work
	loading   bool // Start, configure or catalog request running
	inFlight  int  // Generation commands not yet answered
	connected bool

	// Footer messages
	statusMsg      string
	fullStatusMsg  string
	errorMsg       string
	fullErrorMsg   string
	messageTimeout time.Duration

	copyToClipboard func(string) error
}

// Init starts the session in the background
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.startCmd(), m.spinner.Tick)
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewport()

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.drawer.Refresh(m.spinner.View())

	case startedMsg:
		cmd = m.handleStarted(msg)

	case configuredMsg:
		cmd = m.handleConfigured(msg)

	case catalogLoadedMsg:
		cmd = m.handleCatalogLoaded(msg)

	case generationResultMsg:
		cmd = m.handleGenerationResult(msg)

	case historyLoadedMsg:
		if msg.err != nil {
			cmd = m.setErrorMessage("Failed to load history: " + msg.err.Error())
			break
		}
		m.historyState.SetEntries(msg.entries)
		m.historyState.SetStats(msg.stats)
		m.updateHistoryView()

	case historyClearedMsg:
		m.mode = ModeHistory
		if msg.err != nil {
			cmd = m.setErrorMessage("Failed to clear history: " + msg.err.Error())
			break
		}
		m.historyState.SetEntries(nil)
		m.historyState.SetStats(nil)
		m.updateHistoryView()
		cmd = m.setStatusMessage("History cleared")

	case clearStatusMsg:
		m.statusMsg = ""
		m.fullStatusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
		m.fullErrorMsg = ""
	}

	return m, cmd
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeHelp:
		return m.renderHelp()
	case ModeConfigure:
		return m.renderConfigure()
	case ModeHistory:
		return m.renderHistory()
	case ModeHistoryClearConfirm:
		return m.renderHistoryClearConfirmation()
	case ModeErrorDetail:
		return m.renderErrorDetailModal()
	default:
		return m.renderMain()
	}
}

// busy reports whether the spinner should keep ticking
func (m *Model) busy() bool {
	return m.loading || m.inFlight > 0
}

// Custom message types
type startedMsg struct {
	state orchestrator.StartupState
	err   error
}

type configuredMsg struct {
	tables []types.TableDescriptor
	err    error
}

type catalogLoadedMsg struct {
	filter string
	tables []types.TableDescriptor
	err    error
}

type generationResultMsg struct {
	result gencache.Result
}

type historyLoadedMsg struct {
	entries []types.HistoryEntry
	stats   []analytics.Stats
	err     error
}

type historyClearedMsg struct {
	err error
}

type clearStatusMsg struct{}
type clearErrorMsg struct{}

// Helper methods for setting messages with optional timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.fullStatusMsg = msg
	m.statusMsg = truncateMessage(msg)

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})
	}
	return nil
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.fullErrorMsg = msg
	m.errorMsg = truncateMessage(msg)

	if m.messageTimeout > 0 {
		return tea.Tick(m.messageTimeout, func(time.Time) tea.Msg {
			return clearErrorMsg{}
		})
	}
	return nil
}

// truncateMessage shortens msg for the footer
func truncateMessage(msg string) string {
	if len(msg) > FooterMessageMax {
		return msg[:FooterMessageMax-3] + "..."
	}
	return msg
}
