package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"xliq/internal/application/port"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveBookRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	ts := time.UnixMilli(1700000000000)

	rows := []port.BookRow{
		{Ts: ts, Exchange: "binance", Pair: "BTCUSD", Side: "bid", Price: 45000, Quantity: 1.5},
		{Ts: ts, Exchange: "binance", Pair: "BTCUSD", Side: "ask", Price: 45010, Quantity: 2},
	}
	if err := repo.SaveBookRows(ctx, rows); err != nil {
		t.Fatalf("SaveBookRows failed: %v", err)
	}

	n, err := repo.CountBookRows(ctx, "BTCUSD")
	if err != nil {
		t.Fatalf("CountBookRows failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows, got %d", n)
	}
}

func TestSaveBookRowsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.SaveBookRows(context.Background(), nil); err != nil {
		t.Fatalf("SaveBookRows on empty slice failed: %v", err)
	}
}

func TestSaveFundingRateUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	ts := time.UnixMilli(1700000000000)

	if err := repo.SaveFundingRate(ctx, ts, "bybit", "ETHUSD", 0.0001); err != nil {
		t.Fatalf("SaveFundingRate failed: %v", err)
	}
	// Same key again must not fail or duplicate.
	if err := repo.SaveFundingRate(ctx, ts, "bybit", "ETHUSD", 0.0002); err != nil {
		t.Fatalf("SaveFundingRate upsert failed: %v", err)
	}

	var n int64
	err := repo.GetDB().QueryRowContext(ctx, `SELECT COUNT(*) FROM funding_rates WHERE pair='ETHUSD'`).Scan(&n)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 funding row after upsert, got %d", n)
	}
}
