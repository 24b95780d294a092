// Package app assembles the settings, logger, local store, service client and
// session shared by the CLI commands and the TUI.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/studiowebux/dfspanel/internal/analytics"
	"github.com/studiowebux/dfspanel/internal/config"
	"github.com/studiowebux/dfspanel/internal/history"
	"github.com/studiowebux/dfspanel/internal/logging"
	"github.com/studiowebux/dfspanel/internal/orchestrator"
	"github.com/studiowebux/dfspanel/internal/remote"
	"github.com/studiowebux/dfspanel/internal/store"
	"github.com/studiowebux/dfspanel/internal/types"
)

// Options are the command-line overrides applied on top of the settings file
type Options struct {
	SettingsPath string
	EnvFile      string
	BaseURL      string
	Mode         string
	Verbose      bool
	LogToFile    bool      // Log to config.LogFile instead of LogWriter
	LogWriter    io.Writer // Default: stderr
}

// App holds the long-lived components of one dfspanel process
type App struct {
	Settings  config.Settings
	Logger    *slog.Logger
	Store     *store.Store
	History   *history.Manager
	Analytics *analytics.Manager
	Client    *remote.Client
	Session   *orchestrator.Session

	logFile *os.File
}

// Open builds an App. config.Initialize must have run.
func Open(opts Options) (*App, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings(opts.SettingsPath)
	if err != nil {
		return nil, err
	}
	if opts.BaseURL != "" {
		settings.BaseURL = opts.BaseURL
	}
	if opts.Mode != "" {
		settings.DefaultMode = opts.Mode
	}
	if opts.Verbose {
		settings.LogLevel = "debug"
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	mode, err := types.ParseMode(settings.DefaultMode)
	if err != nil {
		return nil, err
	}

	a := &App{Settings: settings}

	writer := opts.LogWriter
	if writer == nil {
		writer = os.Stderr
	}
	if opts.LogToFile {
		f, err := logging.OpenFile(config.LogFile)
		if err != nil {
			return nil, err
		}
		a.logFile = f
		writer = f
	}
	a.Logger = logging.New(
		logging.WithWriter(writer),
		logging.WithLevel(logging.ParseLevel(settings.LogLevel)),
		logging.WithFormat(logging.Format(settings.LogFormat)),
	)

	a.Store, err = store.Open(config.DatabasePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	a.History = history.NewManager(a.Store.DB())
	a.Analytics = analytics.NewManager(a.Store.DB(), analytics.DefaultTTL,
		analytics.WithLogger(a.Logger.With("component", "analytics")))

	a.Client, err = remote.New(settings.BaseURL,
		remote.WithTimeout(settings.Timeout()),
		remote.WithRetry(settings.Retries),
		remote.WithCircuitBreaker(settings.BreakerEnabled(), settings.CircuitThreshold),
		remote.WithLogger(a.Logger.With("component", "remote")),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Session = orchestrator.NewSession(orchestrator.Options{
		Service:     a.Client,
		Slots:       a.Store,
		History:     a.History,
		BaseURL:     settings.BaseURL,
		Mode:        mode,
		Concurrency: settings.Concurrency,
		Logger:      a.Logger,
	})

	a.Logger.Debug("app ready", "baseURL", settings.BaseURL, "mode", string(mode), "db", config.DatabasePath)
	return a, nil
}

// Close releases the store and log file
func (a *App) Close() error {
	var firstErr error
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			firstErr = err
		}
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
