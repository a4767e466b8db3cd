package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"xliq/internal/application/port"
)

type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) GetDB() *sql.DB {
	return r.db
}

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS book_rows (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  exchange TEXT NOT NULL,
  pair TEXT NOT NULL,
  side TEXT NOT NULL,
  price REAL NOT NULL,
  quantity REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_rows_ts ON book_rows(ts_ms);
CREATE INDEX IF NOT EXISTS idx_book_rows_pair ON book_rows(pair);

CREATE TABLE IF NOT EXISTS funding_rates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  exchange TEXT NOT NULL,
  pair TEXT NOT NULL,
  rate REAL NOT NULL,
  UNIQUE(exchange, pair, ts_ms)
);
CREATE INDEX IF NOT EXISTS idx_funding_rates_ts ON funding_rates(ts_ms);
CREATE INDEX IF NOT EXISTS idx_funding_rates_pair ON funding_rates(pair);
`)
	return err
}

func (r *Repo) SaveBookRows(ctx context.Context, rows []port.BookRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO book_rows(ts_ms, exchange, pair, side, price, quantity)
		VALUES(?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Ts.UnixMilli(), row.Exchange, row.Pair, row.Side, row.Price, row.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) SaveFundingRate(ctx context.Context, ts time.Time, exchange, pair string, rate float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO funding_rates(ts_ms, exchange, pair, rate)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(exchange, pair, ts_ms) DO UPDATE SET rate=excluded.rate
	`, ts.UnixMilli(), exchange, pair, rate)
	return err
}

// CountBookRows reports stored rows for a pair, used by maintenance tooling.
func (r *Repo) CountBookRows(ctx context.Context, pair string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM book_rows WHERE pair=?`, pair).Scan(&n)
	return n, err
}

var _ port.SnapshotRepository = (*Repo)(nil)
