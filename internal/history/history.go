package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/studiowebux/dfspanel/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// Manager records generation fetches in the local database
type Manager struct {
	db *sql.DB
}

// NewManager wraps an already migrated database handle
func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// Record saves one fetch outcome
func (m *Manager) Record(entry types.HistoryEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var errText sql.NullString
	if entry.Error != "" {
		errText = sql.NullString{String: entry.Error, Valid: true}
	}

	_, err := m.db.Exec(`
		INSERT INTO generation_history (
			timestamp, table_name, mode, artifact_count, duration_ms, error, base_url
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Timestamp.Local().Format(timestampLayout),
		entry.Table,
		entry.Mode,
		entry.ArtifactCount,
		entry.Duration.Milliseconds(),
		errText,
		entry.BaseURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (m *Manager) Recent(limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := m.db.Query(`
		SELECT id, timestamp, table_name, mode, artifact_count, duration_ms, error, base_url
		FROM generation_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		var (
			entry      types.HistoryEntry
			timestamp  string
			durationMs int64
			errText    sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.Table,
			&entry.Mode,
			&entry.ArtifactCount,
			&durationMs,
			&errText,
			&entry.BaseURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		parsed, err := time.ParseInLocation(timestampLayout, timestamp, time.Local)
		if err != nil {
			// Some drivers hand DATETIME back as RFC3339
			parsed, err = time.Parse(time.RFC3339, timestamp)
			if err != nil {
				parsed = time.Time{}
			}
		}
		entry.Timestamp = parsed
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		entry.Error = errText.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear deletes all history entries
func (m *Manager) Clear() error {
	if _, err := m.db.Exec("DELETE FROM generation_history"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// GetCount returns the number of recorded entries
func (m *Manager) GetCount() (int, error) {
	var count int
	if err := m.db.QueryRow("SELECT COUNT(*) FROM generation_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}
