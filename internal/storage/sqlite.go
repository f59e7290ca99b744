// Package storage persists small local preferences (chat panel visibility,
// theme, last-used account) in a SQLite database so they survive sessions.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glintlabs/glint/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Preference keys. The table is a plain key/value store; these are the keys
// the rest of the application reads and writes.
const (
	keyChatPanelOpen = "chat_panel_open"
	keyTheme         = "theme"
	keyLastAccount   = "last_account"
)

// SQLiteStore implements service.PreferenceStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the preference database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ChatPanelOpen reports whether the chat panel was open last session.
// Defaults to false when never written.
func (s *SQLiteStore) ChatPanelOpen(ctx context.Context) (bool, error) {
	value, err := s.get(ctx, keyChatPanelOpen)
	if err != nil {
		return false, err
	}
	return value == "1", nil
}

// SetChatPanelOpen persists the chat panel visibility flag.
func (s *SQLiteStore) SetChatPanelOpen(ctx context.Context, open bool) error {
	value := "0"
	if open {
		value = "1"
	}
	return s.set(ctx, keyChatPanelOpen, value)
}

// Theme returns the persisted theme name, or empty when never written.
func (s *SQLiteStore) Theme(ctx context.Context) (string, error) {
	return s.get(ctx, keyTheme)
}

// SetTheme persists the theme name.
func (s *SQLiteStore) SetTheme(ctx context.Context, theme string) error {
	return s.set(ctx, keyTheme, theme)
}

// LastAccount returns the last account identifier used, or empty.
func (s *SQLiteStore) LastAccount(ctx context.Context) (string, error) {
	return s.get(ctx, keyLastAccount)
}

// SetLastAccount persists the account identifier.
func (s *SQLiteStore) SetLastAccount(ctx context.Context, account string) error {
	return s.set(ctx, keyLastAccount, account)
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %q: %w", key, err)
	}
	return nil
}

// Ensure SQLiteStore implements the PreferenceStore interface.
var _ service.PreferenceStore = (*SQLiteStore)(nil)
