package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PricePulse/internal/model"
)

// SQLiteStore persists price records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The sqlite driver does not tolerate concurrent writers on one handle,
	// and an in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

// Migrate creates the price_data table and its indexes. The unique index on
// (symbol, date) enforces the record identity at schema level, so duplicates
// cannot appear even if a write bypasses the merge path.
func (s *SQLiteStore) Migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS price_data (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume INTEGER
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_price_symbol_date ON price_data(symbol, date)`,
		`CREATE INDEX IF NOT EXISTS idx_price_symbol ON price_data(symbol)`,
		`CREATE INDEX IF NOT EXISTS idx_price_date ON price_data(date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// UpsertBatch writes the batch in one transaction, replacing all field
// values of any row sharing a (symbol, date) key.
func (s *SQLiteStore) UpsertBatch(ctx context.Context, records []model.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO price_data
		(symbol, date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Symbol, r.Date.Format(model.DateLayout),
			r.Open, r.High, r.Low, r.Close, r.Volume); err != nil {
			return fmt.Errorf("upsert %s@%s: %w", r.Symbol, r.Date.Format(model.DateLayout), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// MergeBatch writes the batch by looking each key up first and updating in
// place when found. Outcome matches UpsertBatch; it only differs in query
// cost and in preserving rows' synthetic ids.
func (s *SQLiteStore) MergeBatch(ctx context.Context, records []model.PriceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		day := r.Date.Format(model.DateLayout)

		var id int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM price_data WHERE symbol=? AND date=?`, r.Symbol, day).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			_, err = tx.ExecContext(ctx, `INSERT INTO price_data
				(symbol, date, open, high, low, close, volume)
				VALUES (?,?,?,?,?,?,?)`,
				r.Symbol, day, r.Open, r.High, r.Low, r.Close, r.Volume)
		case err == nil:
			_, err = tx.ExecContext(ctx, `UPDATE price_data
				SET open=?, high=?, low=?, close=?, volume=? WHERE id=?`,
				r.Open, r.High, r.Low, r.Close, r.Volume, id)
		}
		if err != nil {
			return fmt.Errorf("merge %s@%s: %w", r.Symbol, day, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge: %w", err)
	}
	return nil
}

// Query returns records for symbol, optionally bounded by inclusive start
// and end dates, ascending by date.
func (s *SQLiteStore) Query(ctx context.Context, symbol string, start, end *time.Time) ([]model.PriceRecord, error) {
	q := `SELECT symbol, date, open, high, low, close, volume FROM price_data WHERE symbol=?`
	args := []any{symbol}
	if start != nil {
		q += ` AND date >= ?`
		args = append(args, start.Format(model.DateLayout))
	}
	if end != nil {
		q += ` AND date <= ?`
		args = append(args, end.Format(model.DateLayout))
	}
	q += ` ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", symbol, err)
	}
	defer rows.Close()

	records := make([]model.PriceRecord, 0)
	for rows.Next() {
		var (
			r    model.PriceRecord
			day  string
			o, h sql.NullFloat64
			l, c sql.NullFloat64
			v    sql.NullInt64
		)
		if err := rows.Scan(&r.Symbol, &day, &o, &h, &l, &c, &v); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Date, err = time.Parse(model.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", day, err)
		}
		if o.Valid {
			r.Open = &o.Float64
		}
		if h.Valid {
			r.High = &h.Float64
		}
		if l.Valid {
			r.Low = &l.Float64
		}
		if c.Valid {
			r.Close = &c.Float64
		}
		if v.Valid {
			r.Volume = &v.Int64
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}

// Symbols returns the distinct stored symbols, sorted.
func (s *SQLiteStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM price_data ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbols: %w", err)
	}
	return symbols, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
