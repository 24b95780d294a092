// Package logging builds the slog loggers used across dfspanel.
//
// The CLI logs to stderr. The TUI owns the terminal, so it logs to a file
// under the configuration directory instead.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Format specifies the output format for logs.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const masked = "****"

// Options configures the logger.
type Options struct {
	Format          Format
	Level           slog.Level
	Writer          io.Writer
	SensitiveFields []string
}

// Option is a functional option for New.
type Option func(*Options)

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithWriter sets the output writer.
func WithWriter(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

// WithSensitiveFields replaces the list of attribute keys whose values are masked.
func WithSensitiveFields(fields ...string) Option {
	return func(o *Options) {
		o.SensitiveFields = fields
	}
}

// New creates a logger. Passwords are masked unless WithSensitiveFields says otherwise.
func New(opts ...Option) *slog.Logger {
	options := Options{
		Format:          FormatText,
		Level:           slog.LevelInfo,
		Writer:          os.Stderr,
		SensitiveFields: []string{"password"},
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Writer == nil {
		options.Writer = os.Stderr
	}

	sensitive := make(map[string]bool, len(options.SensitiveFields))
	for _, f := range options.SensitiveFields {
		sensitive[strings.ToLower(f)] = true
	}

	handlerOpts := &slog.HandlerOptions{
		Level: options.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if sensitive[strings.ToLower(a.Key)] {
				return slog.String(a.Key, masked)
			}
			return a
		},
	}

	var handler slog.Handler
	if options.Format == FormatJSON {
		handler = slog.NewJSONHandler(options.Writer, handlerOpts)
	} else {
		handler = slog.NewTextHandler(options.Writer, handlerOpts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// OpenFile opens (appending) the log file at path, creating its directory.
// The caller closes the returned file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
