package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/studiowebux/dfspanel/internal/analytics"
	"github.com/studiowebux/dfspanel/internal/filter"
	"github.com/studiowebux/dfspanel/internal/types"
	"gopkg.in/yaml.v3"
)

// ANSI color codes
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorCell   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("9"))
)

// interactive reports whether prompts may be shown; tests replace it
var interactive = isInteractive

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// writeStructured writes v as json or yaml
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, string(data))
		return err
	}
	return fmt.Errorf("unsupported output format %q (use text, json or yaml)", format)
}

func renderTables(tables []types.TableDescriptor) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "TABLE", "COMMENT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for i, tbl := range tables {
		t.Row(strconv.Itoa(i+1), tbl.Name, tbl.Comment)
	}
	return t.Render()
}

func renderStats(stats []analytics.Stats) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TABLE", "MODE", "CALLS", "OK", "FAILED", "AVG", "MIN", "MAX", "LAST").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 4 && row >= 0 && row < len(stats) && stats[row].ErrorCount > 0 {
				return errorCell
			}
			return cellStyle
		})

	for _, s := range stats {
		t.Row(
			s.Table,
			s.Mode,
			strconv.Itoa(s.TotalCalls),
			strconv.Itoa(s.SuccessCount),
			strconv.Itoa(s.ErrorCount),
			fmt.Sprintf("%.0fms", s.AvgDurationMs),
			fmt.Sprintf("%dms", s.MinDurationMs),
			fmt.Sprintf("%dms", s.MaxDurationMs),
			s.LastCalled.Format("2006-01-02 15:04:05"),
		)
	}
	return t.Render()
}

func renderHistory(entries []types.HistoryEntry) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TIME", "TABLE", "MODE", "FILES", "DURATION", "ERROR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 5 {
				return errorCell
			}
			return cellStyle
		})

	for _, e := range entries {
		t.Row(
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Table,
			e.Mode,
			strconv.Itoa(e.ArtifactCount),
			e.Duration.Round(time.Millisecond).String(),
			e.Error,
		)
	}
	return t.Render()
}

// Query runs write, which must produce JSON, and prints the result of the
// JMESPath expression over it
func Query(w io.Writer, expression string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	result, err := filter.Apply(buf.String(), expression)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, result)
	return err
}
