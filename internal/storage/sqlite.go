package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/tautohetohe/internal/pipeline"
)

// SQLiteSink writes each volume as one run inside a single transaction
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and migrates it
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; batch workers queue on the pool
	db.SetMaxOpenConns(1)

	if err := NewMigrationRunner(db).Run(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return NewSQLiteSink(db), nil
}

// NewSQLiteSink wraps an already opened and migrated database
func NewSQLiteSink(db *sql.DB) *SQLiteSink {
	return &SQLiteSink{db: db}
}

// DB returns the underlying database
func (s *SQLiteSink) DB() *sql.DB { return s.db }

// WriteVolume inserts the run, its days and its utterances atomically
func (s *SQLiteSink) WriteVolume(ctx context.Context, res *pipeline.VolumeResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	st := res.Stats
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, volume, era, pages, days, day_records, utterances, rejected,
			reo, ambiguous, other, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Volume.Name, res.Era.String(), st.Pages, st.Days, st.DayRecords,
		st.Utterances, st.Rejected, st.Totals.Target, st.Totals.Ambiguous, st.Totals.Other,
		res.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	insertDay, err := tx.PrepareContext(ctx, `
		INSERT INTO days (run_id, url, volume, date, reo, ambiguous, other, percent,
			retrieved, format, incomplete)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare days: %w", err)
	}
	defer func() { _ = insertDay.Close() }()

	for _, d := range res.Days {
		if _, err := insertDay.ExecContext(ctx, res.RunID, d.URL, d.Volume, d.Date,
			d.Target, d.Ambiguous, d.Other, d.Percent, d.Retrieved, d.Format, d.Incomplete,
		); err != nil {
			return fmt.Errorf("insert day %s: %w", d.Date, err)
		}
	}

	insertUtterance, err := tx.PrepareContext(ctx, `
		INSERT INTO utterances (run_id, url, volume, date, utterance, speaker, reo,
			ambiguous, other, percent, text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare utterances: %w", err)
	}
	defer func() { _ = insertUtterance.Close() }()

	for _, u := range res.Utterances {
		if _, err := insertUtterance.ExecContext(ctx, res.RunID, u.URL, u.Volume, u.Date,
			u.Sequence, u.Speaker, u.Target, u.Ambiguous, u.Other, u.Percent, u.Text,
		); err != nil {
			return fmt.Errorf("insert utterance %s/%d: %w", u.Date, u.Sequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit volume %s: %w", res.Volume.Name, err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
