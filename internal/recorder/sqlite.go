package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"upfolio/internal/holdings"
)

// Compile-time interface checks.
var _ Recorder = (*SQLiteRecorder)(nil)
var _ Recorder = (*NoopRecorder)(nil)

// SQLiteRecorder appends each holdings snapshot to a SQLite database, one
// row per holding, keyed by the poll timestamp.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database at dbPath and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so external readers don't block snapshot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS holdings_snapshots (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			polled_at       INTEGER NOT NULL,
			isin            TEXT NOT NULL,
			company_name    TEXT,
			trading_symbol  TEXT,
			exchange        TEXT,
			product         TEXT,
			collateral_type TEXT,
			quantity        REAL,
			average_price   REAL,
			last_price      REAL,
			pnl             REAL,
			day_change_pct  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON holdings_snapshots(polled_at)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_isin ON holdings_snapshots(isin)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordSnapshot writes all holdings of one poll in a single transaction.
func (r *SQLiteRecorder) RecordSnapshot(snap holdings.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO holdings_snapshots
		(polled_at, isin, company_name, trading_symbol, exchange, product,
		 collateral_type, quantity, average_price, last_price, pnl, day_change_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	ts := time.Now().Unix()
	for _, h := range snap {
		if _, err := stmt.Exec(
			ts, h.ISIN, h.CompanyName, h.Symbol(), h.Exchange, h.Product,
			h.CollateralType, h.Quantity.Value(), h.AveragePrice.Value(),
			h.LastPrice.Value(), h.PnL.Value(), h.DayChangePercent.Value(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", h.ISIN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
