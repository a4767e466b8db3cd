package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"xliq/internal/application/port"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS book_rows (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  exchange TEXT NOT NULL,
  pair TEXT NOT NULL,
  side TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  quantity DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_rows_ts ON book_rows(ts_ms);
CREATE INDEX IF NOT EXISTS idx_book_rows_pair ON book_rows(pair);

CREATE TABLE IF NOT EXISTS funding_rates (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  exchange TEXT NOT NULL,
  pair TEXT NOT NULL,
  rate DOUBLE PRECISION NOT NULL,
  UNIQUE(exchange, pair, ts_ms)
);
CREATE INDEX IF NOT EXISTS idx_funding_rates_ts ON funding_rates(ts_ms);
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
		VALUES($1, $2, $3, $4, $5, $6)
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
		VALUES($1, $2, $3, $4)
		ON CONFLICT(exchange, pair, ts_ms) DO UPDATE SET rate=excluded.rate
	`, ts.UnixMilli(), exchange, pair, rate)
	return err
}

var _ port.SnapshotRepository = (*Repo)(nil)
