/*
Package tui implements the terminal panel for dfspanel.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern:
  - model.go: Model struct, message types and Update routing
  - keys.go: keyboard handling per mode through the keybinds registry
  - actions.go: tea.Cmd constructors that talk to the session
  - render.go: main screen (catalog panel, drawer, status bar)
  - modals.go: help, error detail and history modals

# State

Screen state lives in small objects with their own tests:
  - CatalogState: cursor and scroll over the table list
  - DrawerState: active outer and inner tab, code viewport, fuzzy jump
  - ConfigureForm: the connection form
  - HistoryState: generation history rows

The session (internal/orchestrator) owns everything that outlives a
screen: connection, catalog, selection, mode and the generation cache.

# Generation

Every selection or mode change plans a generation on the event loop.
Each planned request runs as its own tea.Cmd and comes back as a
generationResultMsg, which is committed through the session. Results that
went stale in the meantime are dropped there.
*/
package tui
