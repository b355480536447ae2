// Package database implements the booking, user and facility repositories
// over sqlite. Write transactions open immediately (_txlock=immediate), so
// the check-then-flip in ApproveExclusive is serialized by the engine's
// single-writer lock.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// DB wraps the sqlite connection pool.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens (creating if needed) the database at path and ensures the
// schema exists.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			is_confirmed INTEGER NOT NULL DEFAULT 0,
			no_show_count INTEGER NOT NULL DEFAULT 0,
			is_blocked INTEGER NOT NULL DEFAULT 0,
			blocked_reason TEXT NOT NULL DEFAULT '',
			blocked_until DATETIME,
			blocked_by TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS facilities (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			campus_id TEXT NOT NULL DEFAULT '',
			capacity INTEGER NOT NULL DEFAULT 0,
			is_available INTEGER NOT NULL DEFAULT 1,
			open_time INTEGER NOT NULL DEFAULT 420,
			close_time INTEGER NOT NULL DEFAULT 1320,
			timezone TEXT NOT NULL DEFAULT 'UTC'
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			code TEXT UNIQUE NOT NULL,
			facility_id TEXT NOT NULL REFERENCES facilities(id),
			date TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			requester_id TEXT NOT NULL REFERENCES users(id),
			requester_role TEXT NOT NULL,
			lecturer_email TEXT NOT NULL DEFAULT '',
			participants INTEGER NOT NULL DEFAULT 1,
			purpose TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			resolution_kind TEXT NOT NULL DEFAULT '',
			resolution_reason TEXT NOT NULL DEFAULT '',
			resolution_actor_id TEXT NOT NULL DEFAULT '',
			resolution_at DATETIME,
			lecturer_decided_by TEXT NOT NULL DEFAULT '',
			lecturer_decided_at DATETIME,
			admin_decided_by TEXT NOT NULL DEFAULT '',
			admin_decided_at DATETIME,
			check_in_at DATETIME,
			check_in_by TEXT NOT NULL DEFAULT '',
			check_out_at DATETIME,
			check_out_by TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_facility_date
			ON bookings(facility_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_requester
			ON bookings(requester_id)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the underlying pool.
func (db *DB) Close() error {
	return db.DB.Close()
}
