package service

import (
	"context"
	"testing"
	"time"

	"xliq/internal/domain"
)

func TestFundingSyncRecordsOnStart(t *testing.T) {
	source := &mockMarketData{
		name:    "bybit",
		funding: domain.FundingRate{Rate: 0.0001},
	}
	repo := &mockSnapshotRepo{}

	sync := NewFundingSync(source, repo, []string{"BTCUSDT", "ETHUSDT"}, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	sync.Run(ctx)

	rows := repo.fundingRows()
	if len(rows) != 2 {
		t.Fatalf("got %d funding rows, want 2", len(rows))
	}
	if rows[0].exchange != "bybit" || rows[0].pair != "BTCUSDT" || rows[0].rate != 0.0001 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
}

func TestFundingSyncSkipsFailingPair(t *testing.T) {
	source := &mockMarketData{name: "bybit", fundingErr: domain.ErrNotSupported}
	repo := &mockSnapshotRepo{}

	sync := NewFundingSync(source, repo, []string{"BTCUSDT"}, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	sync.Run(ctx)

	if got := len(repo.fundingRows()); got != 0 {
		t.Errorf("got %d funding rows despite failing source", got)
	}
}
