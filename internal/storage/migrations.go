package storage

import (
	"database/sql"
	"fmt"
)

// migration is one versioned schema change
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// MigrationRunner applies pending migrations to a SQLite database
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

// NewMigrationRunner creates a MigrationRunner with all registered migrations
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db: db,
		migrations: []migration{
			{Version: 1, Name: "initial_schema", Apply: migrateV001},
		},
	}
}

// Run enables WAL and foreign keys, creates schema_migrations and applies
// every migration not recorded there yet
func (r *MigrationRunner) Run() error {
	if _, err := r.db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := r.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	for _, m := range r.migrations {
		applied, err := r.isApplied(m.Version)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if applied {
			continue
		}
		if err := r.apply(m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (r *MigrationRunner) isApplied(version int) (bool, error) {
	var count int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MigrationRunner) apply(m migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

// migrateV001 creates the runs, days and utterances tables
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			volume      TEXT NOT NULL,
			era         TEXT NOT NULL,
			pages       INTEGER NOT NULL DEFAULT 0,
			days        INTEGER NOT NULL DEFAULT 0,
			day_records INTEGER NOT NULL DEFAULT 0,
			utterances  INTEGER NOT NULL DEFAULT 0,
			rejected    INTEGER NOT NULL DEFAULT 0,
			reo         INTEGER NOT NULL DEFAULT 0,
			ambiguous   INTEGER NOT NULL DEFAULT 0,
			other       INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS days (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			url        TEXT NOT NULL,
			volume     TEXT NOT NULL,
			date       TEXT NOT NULL,
			reo        INTEGER NOT NULL,
			ambiguous  INTEGER NOT NULL,
			other      INTEGER NOT NULL,
			percent    REAL NOT NULL,
			retrieved  TEXT NOT NULL DEFAULT '',
			format     TEXT NOT NULL DEFAULT 'OCR',
			incomplete BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS utterances (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			url       TEXT NOT NULL,
			volume    TEXT NOT NULL,
			date      TEXT NOT NULL,
			utterance INTEGER NOT NULL,
			speaker   TEXT NOT NULL DEFAULT '',
			reo       INTEGER NOT NULL,
			ambiguous INTEGER NOT NULL,
			other     INTEGER NOT NULL,
			percent   REAL NOT NULL,
			text      TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_volume ON runs(volume)`,
		`CREATE INDEX IF NOT EXISTS idx_days_volume_date ON days(volume, date)`,
		`CREATE INDEX IF NOT EXISTS idx_utterances_volume_date ON utterances(volume, date, utterance)`,
		`CREATE INDEX IF NOT EXISTS idx_utterances_speaker ON utterances(speaker)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("exec: %w", err)
		}
	}
	return nil
}
