// Package analytics aggregates the generation history into per table and
// mode statistics.
package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/studiowebux/dfspanel/internal/logging"
)

// DefaultTTL is how long computed stats are reused
const DefaultTTL = 30 * time.Second

// Stats summarizes every recorded fetch of one table in one mode
type Stats struct {
	Table          string         `json:"table" yaml:"table"`
	Mode           string         `json:"mode" yaml:"mode"`
	TotalCalls     int            `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount   int            `json:"successCount" yaml:"successCount"`
	ErrorCount     int            `json:"errorCount" yaml:"errorCount"`
	TotalArtifacts int            `json:"totalArtifacts" yaml:"totalArtifacts"`
	AvgDurationMs  float64        `json:"avgDurationMs" yaml:"avgDurationMs"`
	MinDurationMs  int64          `json:"minDurationMs" yaml:"minDurationMs"`
	MaxDurationMs  int64          `json:"maxDurationMs" yaml:"maxDurationMs"`
	Errors         map[string]int `json:"errors,omitempty" yaml:"errors,omitempty"` // Count per distinct error message
	LastCalled     time.Time      `json:"lastCalled" yaml:"lastCalled"`
}

// SuccessRate returns the share of successful fetches in [0, 1]
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCalls)
}

// Manager reads stats from the generation_history table
type Manager struct {
	db     *sql.DB
	cache  *statsCache
	logger *slog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger for rows that cannot be read
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.OrDiscard(logger)
	}
}

// NewManager wraps an already migrated database handle. A ttl of zero or
// less disables caching.
func NewManager(db *sql.DB, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{db: db, cache: newStatsCache(ttl), logger: logging.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerTable returns stats grouped by table and mode, most recent first.
// An empty mode includes every mode.
func (m *Manager) PerTable(mode string) ([]Stats, error) {
	if stats, ok := m.cache.get(mode); ok {
		return stats, nil
	}

	// Error messages are aggregated in the same query
	query := `
		WITH errors_agg AS (
			SELECT
				table_name,
				mode,
				json_group_object(error, count) AS errors_json
			FROM (
				SELECT table_name, mode, error, COUNT(*) AS count
				FROM generation_history
				WHERE error IS NOT NULL AND error != '' AND (mode = ? OR ? = '')
				GROUP BY table_name, mode, error
			)
			GROUP BY table_name, mode
		)
		SELECT
			h.table_name,
			h.mode,
			COUNT(*) AS total_calls,
			SUM(CASE WHEN h.error IS NULL OR h.error = '' THEN 1 ELSE 0 END) AS success_count,
			SUM(CASE WHEN h.error IS NOT NULL AND h.error != '' THEN 1 ELSE 0 END) AS error_count,
			SUM(h.artifact_count) AS total_artifacts,
			AVG(h.duration_ms) AS avg_duration,
			MIN(h.duration_ms) AS min_duration,
			MAX(h.duration_ms) AS max_duration,
			MAX(h.timestamp) AS last_called,
			COALESCE(e.errors_json, '{}') AS errors_json
		FROM generation_history h
		LEFT JOIN errors_agg e ON h.table_name = e.table_name AND h.mode = e.mode
		WHERE h.mode = ? OR ? = ''
		GROUP BY h.table_name, h.mode
		ORDER BY last_called DESC, h.table_name
	`

	rows, err := m.db.Query(query, mode, mode, mode, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats per table: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		var s Stats
		var lastCalled sql.NullString
		var errorsJSON string

		err := rows.Scan(
			&s.Table,
			&s.Mode,
			&s.TotalCalls,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.TotalArtifacts,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&lastCalled,
			&errorsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}

		if lastCalled.Valid && lastCalled.String != "" {
			if t, ok := parseTimestamp(lastCalled.String); ok {
				s.LastCalled = t
			} else {
				m.logger.Debug("unreadable history timestamp", "table", s.Table, "mode", s.Mode, "timestamp", lastCalled.String)
			}
		}

		if errorsJSON != "{}" {
			if err := json.Unmarshal([]byte(errorsJSON), &s.Errors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal error counts: %w", err)
			}
		}

		statsList = append(statsList, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	m.cache.set(mode, statsList)
	return statsList, nil
}

// Invalidate drops cached stats, typically after new history was recorded
// or the history was cleared
func (m *Manager) Invalidate() {
	m.cache.invalidate()
}

// parseTimestamp reads history timestamps, stored as local time without a zone
func parseTimestamp(value string) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
