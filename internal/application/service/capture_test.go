package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

type fundingRow struct {
	exchange string
	pair     string
	rate     float64
}

type mockSnapshotRepo struct {
	mu      sync.Mutex
	rows    []port.BookRow
	funding []fundingRow
}

func (m *mockSnapshotRepo) SaveBookRows(ctx context.Context, rows []port.BookRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *mockSnapshotRepo) SaveFundingRate(ctx context.Context, ts time.Time, exchange, pair string, rate float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funding = append(m.funding, fundingRow{exchange: exchange, pair: pair, rate: rate})
	return nil
}

func (m *mockSnapshotRepo) Close() error { return nil }

func (m *mockSnapshotRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *mockSnapshotRepo) fundingRows() []fundingRow {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]fundingRow, len(m.funding))
	copy(out, m.funding)
	return out
}

type mockArchiver struct {
	mu    sync.Mutex
	calls int
}

func (m *mockArchiver) Archive(ctx context.Context, ts time.Time, pair string, rows []port.BookRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return nil
}

func TestCaptureRunPersistsRows(t *testing.T) {
	source := &mockMarketData{
		name: "binance",
		book: domain.OrderBook{
			Bids: []domain.BookLevel{{Price: 99, Size: 1}},
			Asks: []domain.BookLevel{{Price: 100, Size: 2}},
		},
	}
	repo := &mockSnapshotRepo{}
	arch := &mockArchiver{}

	svc := NewCapture(source, repo, arch, CaptureConfig{
		Pair:     "BTCUSDT",
		Depth:    10,
		Interval: 5 * time.Millisecond,
		Duration: 60 * time.Millisecond,
	})

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if repo.count() == 0 {
		t.Error("no rows persisted")
	}
	if repo.count()%2 != 0 {
		t.Errorf("row count %d not a multiple of book levels", repo.count())
	}
	arch.mu.Lock()
	defer arch.mu.Unlock()
	if arch.calls == 0 {
		t.Error("archiver never called")
	}
}

func TestCaptureSurvivesSourceFailure(t *testing.T) {
	source := &mockMarketData{name: "binance", bookErr: domain.ErrSourceUnavailable}
	repo := &mockSnapshotRepo{}

	svc := NewCapture(source, repo, nil, CaptureConfig{
		Pair:     "BTCUSDT",
		Interval: 5 * time.Millisecond,
		Duration: 30 * time.Millisecond,
	})

	if err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run should swallow per-tick failures, got: %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("rows persisted despite failing source: %d", repo.count())
	}
}

func TestFlattenBookRowShape(t *testing.T) {
	ts := time.Now().UTC()
	book := domain.OrderBook{
		Bids: []domain.BookLevel{{Price: 99, Size: 1}, {Price: 98, Size: 2}},
		Asks: []domain.BookLevel{{Price: 100, Size: 3}},
	}

	rows := port.FlattenBook(ts, "bybit", "ETHUSDT", book)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Side != "bid" || rows[2].Side != "ask" {
		t.Errorf("unexpected side ordering: %+v", rows)
	}
	if rows[2].Price != 100 || rows[2].Quantity != 3 {
		t.Errorf("ask row = %+v", rows[2])
	}
}
