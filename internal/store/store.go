// Package store persists transactions in a local SQLite database and keeps
// an audit row per import run. It implements the dedup/upsert discipline:
// re-running an import on the same source file inserts nothing new.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/dvloznov/simplebook/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	fingerprint TEXT PRIMARY KEY,
	posted_date TEXT NOT NULL,
	amount      TEXT NOT NULL,
	name        TEXT NOT NULL,
	memo        TEXT NOT NULL DEFAULT '',
	checknum    TEXT NOT NULL DEFAULT '',
	fitid       TEXT NOT NULL DEFAULT '',
	created_ts  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_month
	ON transactions (substr(posted_date, 1, 7));

CREATE TABLE IF NOT EXISTS import_runs (
	run_id      TEXT PRIMARY KEY,
	source_file TEXT NOT NULL,
	imported    INTEGER NOT NULL DEFAULT 0,
	inserted    INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	started_ts  TEXT NOT NULL,
	finished_ts TEXT
);
`

const tsFormat = time.RFC3339

// MonthCount is one YYYY-MM bucket with its transaction count.
type MonthCount struct {
	YM    string
	Count int
}

// Store wraps the SQLite database holding transactions and import runs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Open: create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Open: open db %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertTransactions inserts the transactions that are not already stored,
// keyed by fingerprint, and skips the rest without error. It returns the
// number of newly inserted rows so the caller can tell an already-imported
// run from genuinely new data.
func (s *Store) UpsertTransactions(ctx context.Context, txs []domain.Transaction) (int, error) {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("UpsertTransactions: begin: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, `
		INSERT INTO transactions
			(fingerprint, posted_date, amount, name, memo, checknum, fitid, created_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("UpsertTransactions: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(tsFormat)
	inserted := 0
	for _, t := range txs {
		res, err := stmt.ExecContext(ctx,
			Fingerprint(t), t.DateString(), t.Amount.String(),
			t.Name, t.Memo, t.CheckNum, t.FITID, now)
		if err != nil {
			return 0, fmt.Errorf("UpsertTransactions: insert %s %s: %w", t.DateString(), t.Name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("UpsertTransactions: rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("UpsertTransactions: commit: %w", err)
	}
	return inserted, nil
}

// CountTransactions returns the total number of stored transactions.
func (s *Store) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountTransactions: %w", err)
	}
	return n, nil
}

// ListMonths returns every month bucket with its count, newest first.
func (s *Store) ListMonths(ctx context.Context) ([]MonthCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(posted_date, 1, 7) AS ym, COUNT(*)
		FROM transactions
		GROUP BY ym
		ORDER BY ym DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ListMonths: query: %w", err)
	}
	defer rows.Close()

	var out []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.YM, &mc.Count); err != nil {
			return nil, fmt.Errorf("ListMonths: scan: %w", err)
		}
		out = append(out, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListMonths: rows: %w", err)
	}
	return out, nil
}

// ListByMonth returns a month's transactions ordered by posted date, then by
// insertion order, up to limit rows.
func (s *Store) ListByMonth(ctx context.Context, year, month, limit int) ([]domain.Transaction, error) {
	ym := domain.FormatYearMonth(year, month)
	rows, err := s.db.QueryContext(ctx, `
		SELECT posted_date, amount, name, memo, checknum, fitid
		FROM transactions
		WHERE substr(posted_date, 1, 7) = ?
		ORDER BY posted_date, rowid
		LIMIT ?
	`, ym, limit)
	if err != nil {
		return nil, fmt.Errorf("ListByMonth: query %s: %w", ym, err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var dateS, amountS string
		var t domain.Transaction
		if err := rows.Scan(&dateS, &amountS, &t.Name, &t.Memo, &t.CheckNum, &t.FITID); err != nil {
			return nil, fmt.Errorf("ListByMonth: scan: %w", err)
		}
		t.PostedDate, err = time.Parse("2006-01-02", dateS)
		if err != nil {
			return nil, fmt.Errorf("ListByMonth: stored date %q: %w", dateS, err)
		}
		t.Amount, err = decimal.NewFromString(amountS)
		if err != nil {
			return nil, fmt.Errorf("ListByMonth: stored amount %q: %w", amountS, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByMonth: rows: %w", err)
	}
	return out, nil
}
