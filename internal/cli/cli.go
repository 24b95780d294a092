package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/dfspanel/internal/app"
	"github.com/studiowebux/dfspanel/internal/config"
	"github.com/studiowebux/dfspanel/internal/highlight"
	"github.com/studiowebux/dfspanel/internal/orchestrator"
	"github.com/studiowebux/dfspanel/internal/types"
)

// ErrGenerationFailed is returned when at least one table could not be generated
var ErrGenerationFailed = errors.New("generation failed")

// ConnectionSummary is a connection without its password
type ConnectionSummary struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Database string `json:"db" yaml:"db"`
	Charset  string `json:"charset" yaml:"charset"`
}

func summarize(cfg types.ConnectionConfig) *ConnectionSummary {
	return &ConnectionSummary{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Database: cfg.Database,
		Charset:  cfg.Charset,
	}
}

func (c *ConnectionSummary) String() string {
	if c == nil {
		return "none"
	}
	return fmt.Sprintf("%s@%s:%d/%s (%s)", c.User, c.Host, c.Port, c.Database, c.Charset)
}

// StatusReport describes the local and service-side connection state
type StatusReport struct {
	BaseURL     string             `json:"baseURL" yaml:"baseURL"`
	Local       *ConnectionSummary `json:"local" yaml:"local"`
	Remote      *ConnectionSummary `json:"remote" yaml:"remote"`
	RemoteError string             `json:"remoteError,omitempty" yaml:"remoteError,omitempty"`
}

// Status reports the locally stored connection and probes the service
func Status(ctx context.Context, a *app.App, w io.Writer, format string) error {
	report := StatusReport{BaseURL: a.Client.BaseURL()}

	local, ok, err := a.Session.Restore()
	if err != nil {
		return err
	}
	if ok {
		report.Local = summarize(local)
	}

	remoteCfg, configured, err := a.Client.Probe(ctx)
	switch {
	case err != nil:
		report.RemoteError = err.Error()
	case configured:
		report.Remote = summarize(remoteCfg)
	}

	if format != "" && format != "text" {
		return writeStructured(w, format, report)
	}

	fmt.Fprintf(w, "Service:            %s\n", report.BaseURL)
	fmt.Fprintf(w, "Local connection:   %s\n", report.Local)
	if report.RemoteError != "" {
		fmt.Fprintf(w, "Service connection: %sunreachable%s (%s)\n", colorRed, colorReset, report.RemoteError)
	} else {
		fmt.Fprintf(w, "Service connection: %s\n", report.Remote)
	}
	return nil
}

// Configure applies cfg on the service, stores it locally and lists the catalog
func Configure(ctx context.Context, a *app.App, cfg types.ConnectionConfig, w io.Writer) error {
	if cfg.Password == "" && interactive() {
		password, err := promptForPassword(cfg.User)
		if err != nil {
			return err
		}
		cfg.Password = password
	}

	tables, err := a.Session.Configure(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to configure connection: %w", err)
	}

	active, _ := a.Session.Connection()
	fmt.Fprintf(w, "%sConnected%s to %s at %s (%d tables)\n", colorGreen, colorReset, active.Database, active.Address(), len(tables))
	return nil
}

// Tables prints the catalog, filtered by table name substring
func Tables(ctx context.Context, a *app.App, filter string, w io.Writer, format string) error {
	if err := start(ctx, a); err != nil {
		return err
	}

	tables := a.Session.Catalog()
	if filter != "" {
		var err error
		tables, err = a.Session.Search(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}
	}

	if format != "" && format != "text" {
		return writeStructured(w, format, tables)
	}

	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found")
		return nil
	}
	fmt.Fprintln(w, renderTables(tables))
	return nil
}

// GenerateOptions configures Generate
type GenerateOptions struct {
	Tables    []string
	Mode      string
	OutputDir string // Write files under <dir>/<table>/ instead of printing
	Highlight bool   // Color printed source
	Stderr    io.Writer
}

// Generate fetches artifacts for the given tables and prints or writes them.
// Tables that fail are reported and make the call return ErrGenerationFailed
// once every other table has been handled.
func Generate(ctx context.Context, a *app.App, opts GenerateOptions, w io.Writer) error {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if err := start(ctx, a); err != nil {
		return err
	}

	if opts.Mode != "" {
		mode, err := types.ParseMode(opts.Mode)
		if err != nil {
			return err
		}
		if err := a.Session.SetMode(mode); err != nil {
			return err
		}
	}

	tables := opts.Tables
	if len(tables) == 0 && interactive() {
		picked, err := promptForTables(a.Session.Catalog())
		if err != nil {
			return err
		}
		tables = picked
	}
	if len(tables) == 0 {
		return fmt.Errorf("no tables given (pass table names or run interactively)")
	}

	if err := a.Session.Select(tables); err != nil {
		return err
	}

	outcome, err := a.Session.Generate(ctx)
	if err != nil {
		return err
	}

	view := a.Session.View()
	for _, tab := range view.Tabs {
		for _, inner := range tab.Inner {
			if opts.OutputDir != "" {
				path, err := writeArtifact(opts.OutputDir, tab.Table, inner.Title, inner.Source)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "wrote %s\n", path)
				continue
			}

			fmt.Fprintf(w, "%s# %s / %s%s\n", colorYellow, tab.Table, inner.Title, colorReset)
			source := inner.Source
			if opts.Highlight {
				source = highlight.Code(source, inner.Title, highlight.DefaultStyle)
			}
			fmt.Fprintln(w, strings.TrimRight(source, "\n"))
			fmt.Fprintln(w)
		}
	}

	for _, f := range outcome.Failures {
		fmt.Fprintf(stderr, "%sError:%s %s (%s): %s\n", colorRed, colorReset, f.Table, f.Mode.DisplayName(), describeError(f.Err))
	}
	if len(outcome.Failures) > 0 {
		return fmt.Errorf("%w: %d of %d tables", ErrGenerationFailed, len(outcome.Failures), len(view.Rows))
	}
	return nil
}

// History prints recent generation fetches, or clears them
func History(a *app.App, limit int, clear bool, w io.Writer, format string) error {
	if clear {
		if err := a.History.Clear(); err != nil {
			return err
		}
		a.Analytics.Invalidate()
		fmt.Fprintln(w, "History cleared")
		return nil
	}

	entries, err := a.History.Recent(limit)
	if err != nil {
		return err
	}

	if format != "" && format != "text" {
		return writeStructured(w, format, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No history")
		return nil
	}
	fmt.Fprintln(w, renderHistory(entries))
	return nil
}

// Stats prints per table and mode generation statistics. An empty mode
// includes every mode.
func Stats(a *app.App, mode string, w io.Writer, format string) error {
	if mode != "" {
		parsed, err := types.ParseMode(mode)
		if err != nil {
			return err
		}
		mode = string(parsed)
	}

	stats, err := a.Analytics.PerTable(mode)
	if err != nil {
		return err
	}

	if format != "" && format != "text" {
		return writeStructured(w, format, stats)
	}

	if len(stats) == 0 {
		fmt.Fprintln(w, "No history")
		return nil
	}
	fmt.Fprintln(w, renderStats(stats))
	return nil
}

// start restores or adopts a connection and loads the catalog
func start(ctx context.Context, a *app.App) error {
	state, err := a.Session.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if state == orchestrator.StartupNeedsConfig {
		return fmt.Errorf("%w (run 'dfspanel configure' first)", types.ErrNotConfigured)
	}
	return nil
}

// writeArtifact writes source to <dir>/<table>/<name>
func writeArtifact(dir, table, name, source string) (string, error) {
	// Table and artifact names come from the service; keep both inside dir
	tableName, ok := pathElement(table)
	if !ok {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	clean, ok := pathElement(name)
	if !ok {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	tableDir := filepath.Join(dir, tableName)
	if err := os.MkdirAll(tableDir, config.DirPermissions); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", tableDir, err)
	}

	path := filepath.Join(tableDir, clean)
	if err := os.WriteFile(path, []byte(source), config.FilePermissions); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// pathElement reduces name to a single path element that cannot leave its parent
func pathElement(name string) (string, bool) {
	clean := filepath.Base(filepath.Clean("/" + name))
	if clean == "/" || clean == "." || clean == ".." {
		return "", false
	}
	return clean, true
}

func describeError(err error) string {
	if re, ok := types.AsRemote(err); ok && re.Message != "" {
		return re.Message
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
