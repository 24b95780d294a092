package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/dfspanel/internal/app"
	"github.com/studiowebux/dfspanel/internal/config"
	"github.com/studiowebux/dfspanel/internal/highlight"
	"github.com/studiowebux/dfspanel/internal/keybinds"
)

// New creates a new TUI model around an opened App
func New(ctx context.Context, a *app.App) (Model, error) {
	keys, err := keybinds.LoadOrDefault(config.KeybindsPath)
	if err != nil {
		return Model{}, fmt.Errorf("failed to load keybindings: %w", err)
	}

	search := textinput.New()
	search.Prompt = "Filter: "
	search.CharLimit = 128

	jump := textinput.New()
	jump.Prompt = "Jump: "
	jump.CharLimit = 128

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styleWarning

	m := Model{
		ctx:             ctx,
		session:         a.Session,
		history:         a.History,
		analytics:       a.Analytics,
		logger:          a.Logger.With("component", "tui"),
		keys:            keys,
		mode:            ModeLoading,
		catalog:         NewCatalogState(),
		drawer:          NewDrawerState(highlight.DefaultStyle),
		form:            NewConfigureForm(),
		historyState:    NewHistoryState(),
		searchInput:     search,
		jumpInput:       jump,
		spinner:         spin,
		helpView:        viewport.New(80, 20),
		modalView:       viewport.New(80, 20), // For scrollable modals
		messageTimeout:  time.Duration(a.Settings.MessageTimeout) * time.Second,
		copyToClipboard: clipboard.WriteAll,
	}

	return m, nil
}

// Run starts the TUI and blocks until the user quits or ctx is canceled
func Run(ctx context.Context, a *app.App) error {
	m, err := New(ctx, a)
	if err != nil {
		return err
	}

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	return nil
}
