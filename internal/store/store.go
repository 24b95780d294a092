// Package store keeps dfspanel's client-local state in a SQLite database.
//
// It plays the role a browser's local storage plays for a web panel: named
// slots hold JSON documents, and the same database backs the generation
// history.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/dfspanel/internal/migrations"
)

// ConnectionSlot is the slot holding the active ConnectionConfig
const ConnectionSlot = "connection"

// Store wraps the SQLite database
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and applies migrations
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to store database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for sibling managers (history)
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetSlot decodes the JSON held in slot name into v
// It returns false when the slot is empty
func (s *Store) GetSlot(name string, v any) (bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM local_slots WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read slot %s: %w", name, err)
	}

	if err := json.Unmarshal([]byte(value), v); err != nil {
		return false, fmt.Errorf("failed to decode slot %s: %w", name, err)
	}
	return true, nil
}

// PutSlot replaces the contents of slot name with v serialized as JSON
func (s *Store) PutSlot(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", name, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO local_slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, name, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", name, err)
	}
	return nil
}

// DeleteSlot empties slot name
func (s *Store) DeleteSlot(name string) error {
	if _, err := s.db.Exec("DELETE FROM local_slots WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", name, err)
	}
	return nil
}
