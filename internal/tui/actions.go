package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/dfspanel/internal/gencache"
	"github.com/studiowebux/dfspanel/internal/orchestrator"
	"github.com/studiowebux/dfspanel/internal/remote"
	"github.com/studiowebux/dfspanel/internal/types"
)

// startCmd restores or probes the connection and loads the catalog
func (m *Model) startCmd() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		state, err := session.Start(ctx)
		return startedMsg{state: state, err: err}
	}
}

// configureCmd applies cfg on the service and reloads the catalog
func (m *Model) configureCmd(cfg types.ConnectionConfig) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		tables, err := session.Configure(ctx, cfg)
		return configuredMsg{tables: tables, err: err}
	}
}

// searchCmd fetches the catalog for filter
func (m *Model) searchCmd(filter string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		tables, err := session.Search(ctx, filter)
		return catalogLoadedMsg{filter: filter, tables: tables, err: err}
	}
}

// fetchCmd runs one planned generation request
func (m *Model) fetchCmd(req gencache.Request) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		return generationResultMsg{result: session.FetchOne(req)}
	}
}

func (m *Model) loadHistoryCmd() tea.Cmd {
	mgr, stats := m.history, m.analytics
	return func() tea.Msg {
		if mgr == nil {
			return historyLoadedMsg{}
		}
		entries, err := mgr.Recent(HistoryLimit)
		if err != nil || stats == nil {
			return historyLoadedMsg{entries: entries, err: err}
		}
		perTable, err := stats.PerTable("")
		return historyLoadedMsg{entries: entries, stats: perTable, err: err}
	}
}

func (m *Model) clearHistoryCmd() tea.Cmd {
	mgr, stats := m.history, m.analytics
	return func() tea.Msg {
		if mgr == nil {
			return historyClearedMsg{}
		}
		err := mgr.Clear()
		if stats != nil {
			stats.Invalidate()
		}
		return historyClearedMsg{err: err}
	}
}

// planGeneration plans fetches for the current selection and mode and
// returns one command per request. The drawer is rebuilt right away so
// cached tables show without waiting.
func (m *Model) planGeneration() tea.Cmd {
	batch, err := m.session.PlanGeneration(m.ctx)
	m.refreshDrawer()
	if err != nil {
		if errors.Is(err, orchestrator.ErrNothingSelected) {
			return nil
		}
		return m.setErrorMessage(categorizeError(err))
	}

	if len(batch.Requests) == 0 {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(batch.Requests)+1)
	for _, req := range batch.Requests {
		cmds = append(cmds, m.fetchCmd(req))
	}
	m.inFlight += len(batch.Requests)
	m.logger.Debug("generation planned",
		"generation", batch.Generation,
		"mode", string(batch.Mode),
		"requests", len(batch.Requests),
		"cached", batch.Cached)

	cmds = append(cmds, m.spinner.Tick)
	return tea.Batch(cmds...)
}

// refreshDrawer rebuilds the drawer from the session view
func (m *Model) refreshDrawer() {
	m.drawer.SetView(m.session.View(), m.spinner.View())
}

func (m *Model) handleStarted(msg startedMsg) tea.Cmd {
	m.loading = false

	if msg.state == orchestrator.StartupNeedsConfig {
		m.connected = false
		m.mode = ModeConfigure
		if cfg, ok, _ := m.session.Restore(); ok {
			m.form.Prefill(cfg)
		}
		if msg.err != nil {
			return m.setErrorMessage(categorizeError(msg.err))
		}
		return m.setStatusMessage("Enter the database connection")
	}

	m.connected = true
	m.mode = ModeCatalog
	m.catalog.SetTables(m.session.Catalog())
	m.refreshDrawer()
	if msg.err != nil {
		return m.setErrorMessage("Failed to load tables: " + categorizeError(msg.err))
	}
	return m.setStatusMessage(m.connectionSummary())
}

func (m *Model) handleConfigured(msg configuredMsg) tea.Cmd {
	m.loading = false

	if msg.err != nil {
		m.form.SetInvalid(msg.err)
		if _, connected := m.session.Connection(); connected && !isRejection(msg.err) {
			// Connection applied but the catalog failed to load
			m.connected = true
			m.enterCatalog()
			return m.setErrorMessage("Failed to load tables: " + categorizeError(msg.err))
		}
		return m.setErrorMessage(categorizeError(msg.err))
	}

	m.connected = true
	m.drawer.Reset()
	m.catalog.SetTables(msg.tables)
	m.enterCatalog()
	return m.setStatusMessage(m.connectionSummary())
}

// isRejection reports whether err means the new connection was not applied
func isRejection(err error) bool {
	if _, ok := types.AsValidation(err); ok {
		return true
	}
	rerr, ok := types.AsRemote(err)
	return ok && rerr.Endpoint == remote.EndpointConfigure
}

func (m *Model) enterCatalog() {
	m.mode = ModeCatalog
	m.refreshDrawer()
}

func (m *Model) handleCatalogLoaded(msg catalogLoadedMsg) tea.Cmd {
	m.loading = false
	if msg.err != nil {
		return m.setErrorMessage("Failed to load tables: " + categorizeError(msg.err))
	}

	m.catalog.SetTables(msg.tables)
	// The selection may have been pruned, and failed pairs are retried
	cmd := m.planGeneration()

	status := fmt.Sprintf("%d tables", len(msg.tables))
	if msg.filter != "" {
		status = fmt.Sprintf("%d tables matching %q", len(msg.tables), msg.filter)
	}
	return tea.Batch(cmd, m.setStatusMessage(status))
}

func (m *Model) handleGenerationResult(msg generationResultMsg) tea.Cmd {
	if m.inFlight > 0 {
		m.inFlight--
	}

	result := msg.result
	if !m.session.CommitGeneration(result) {
		m.logger.Debug("stale generation result dropped", "table", result.Key.Table, "mode", string(result.Key.Mode))
		return nil
	}

	if m.analytics != nil {
		// A history row was recorded
		m.analytics.Invalidate()
	}
	m.refreshDrawer()
	if result.Err != nil {
		return m.setErrorMessage(fmt.Sprintf("%s: %s", result.Key.Table, categorizeError(result.Err)))
	}
	if m.inFlight == 0 && m.drawer.GetView().Settled() {
		return m.setStatusMessage(fmt.Sprintf("Generated %s models", m.session.Mode().DisplayName()))
	}
	return nil
}

// toggleCurrent flips the table under the cursor and replans
func (m *Model) toggleCurrent() tea.Cmd {
	table, ok := m.catalog.Current()
	if !ok {
		return nil
	}
	if err := m.session.Toggle(table.Name); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return m.planGeneration()
}

// switchMode changes the generation mode. It does nothing while the
// selection is empty.
func (m *Model) switchMode(mode types.GenerationMode) tea.Cmd {
	if len(m.session.Selection()) == 0 {
		return m.setStatusMessage("Select a table before choosing a mode")
	}
	if m.session.Mode() == mode {
		return nil
	}
	if err := m.session.SetMode(mode); err != nil {
		return m.setErrorMessage(err.Error())
	}
	return tea.Batch(m.planGeneration(), m.setStatusMessage("Mode: "+mode.DisplayName()))
}

// copyArtifact copies the artifact on screen to the clipboard
func (m *Model) copyArtifact() tea.Cmd {
	tab, ok := m.drawer.CurrentArtifact()
	if !ok {
		return m.setStatusMessage("Nothing to copy yet")
	}
	if err := m.copyToClipboard(tab.Source); err != nil {
		return m.setErrorMessage("Failed to copy: " + err.Error())
	}
	return m.setStatusMessage(fmt.Sprintf("Copied %s to clipboard", tab.Title))
}

// submitConfigure validates the form and applies it
func (m *Model) submitConfigure() tea.Cmd {
	cfg, err := m.form.Config()
	if err != nil {
		m.form.SetInvalid(err)
		return m.setErrorMessage(categorizeError(err))
	}
	m.loading = true
	return tea.Batch(m.configureCmd(cfg), m.spinner.Tick, m.setStatusMessage("Connecting to "+cfg.Address()+"..."))
}

// submitSearch sends the catalog filter to the service
func (m *Model) submitSearch() tea.Cmd {
	filter := m.searchInput.Value()
	m.searchInput.Blur()
	m.mode = ModeCatalog
	m.loading = true
	return tea.Batch(m.searchCmd(filter), m.spinner.Tick)
}

// refreshCatalog reloads the catalog with the current filter
func (m *Model) refreshCatalog() tea.Cmd {
	if !m.connected {
		return m.setErrorMessage(categorizeError(types.ErrNotConfigured))
	}
	m.loading = true
	return tea.Batch(m.searchCmd(m.session.CatalogFilter()), m.spinner.Tick)
}

func (m *Model) connectionSummary() string {
	cfg, ok := m.session.Connection()
	if !ok {
		return "Not connected"
	}
	return fmt.Sprintf("Connected to %s at %s (%d tables)", cfg.Database, cfg.Address(), m.catalog.Len())
}
