package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

// mockMarketData is a hand-rolled port.MarketData used across the service
// tests.
type mockMarketData struct {
	mu sync.Mutex

	name     string
	quote    domain.Quote
	quoteErr error

	book    domain.OrderBook
	bookErr error

	funding    domain.FundingRate
	fundingErr error
	history    []domain.FundingSnapshot
	historyErr error

	status    domain.OrderStatus
	statusErr error

	pos    domain.Position
	posErr error

	cancelOK bool

	quoteCalls int
}

func (m *mockMarketData) Name() string { return m.name }

func (m *mockMarketData) GetQuote(ctx context.Context, pair string) (domain.Quote, error) {
	m.mu.Lock()
	m.quoteCalls++
	m.mu.Unlock()
	return m.quote, m.quoteErr
}

func (m *mockMarketData) GetOrderBook(ctx context.Context, pair string, depth int) (domain.OrderBook, error) {
	return m.book, m.bookErr
}

func (m *mockMarketData) GetFundingRate(ctx context.Context, pair string) (domain.FundingRate, error) {
	return m.funding, m.fundingErr
}

func (m *mockMarketData) GetFundingHistory(ctx context.Context, pair string, since *time.Time, limit int) ([]domain.FundingSnapshot, error) {
	return m.history, m.historyErr
}

func (m *mockMarketData) PlaceOrder(ctx context.Context, pair string, side domain.Side, quantity float64, kind domain.OrderKind, price *float64) (domain.OrderHandle, error) {
	return domain.OrderHandle{ID: "1", Symbol: pair}, nil
}

func (m *mockMarketData) CancelOrder(ctx context.Context, handle domain.OrderHandle) bool {
	return m.cancelOK
}

func (m *mockMarketData) GetOrderStatus(ctx context.Context, handle domain.OrderHandle) (domain.OrderStatus, error) {
	return m.status, m.statusErr
}

func (m *mockMarketData) GetPosition(ctx context.Context, handle domain.OrderHandle) (domain.Position, error) {
	return m.pos, m.posErr
}

func TestBestAcrossPicksTightestSpread(t *testing.T) {
	ports := []port.MarketData{
		&mockMarketData{name: "a", quote: domain.Quote{Bid: 100, Ask: 101}},
		&mockMarketData{name: "b", quoteErr: domain.ErrSourceUnavailable},
		&mockMarketData{name: "c", quote: domain.Quote{Bid: 102, Ask: 103}},
	}

	agg := NewAggregator()
	best, err := agg.BestAcross(context.Background(), ports, "BTCUSDT")
	if err != nil {
		t.Fatalf("BestAcross failed: %v", err)
	}

	if best.Bid != 102 {
		t.Errorf("best bid = %v, want 102", best.Bid)
	}
	if best.Ask != 101 {
		t.Errorf("best ask = %v, want 101", best.Ask)
	}
}

func TestBestAcrossAllSourcesFailing(t *testing.T) {
	ports := []port.MarketData{
		&mockMarketData{name: "a", quoteErr: domain.ErrSourceUnavailable},
		&mockMarketData{name: "b", quoteErr: domain.ErrSourceUnavailable},
		&mockMarketData{name: "c", quoteErr: domain.ErrSourceUnavailable},
	}

	agg := NewAggregator()
	_, err := agg.BestAcross(context.Background(), ports, "BTCUSDT")
	if !errors.Is(err, domain.ErrNoLiquiditySources) {
		t.Fatalf("err = %v, want ErrNoLiquiditySources", err)
	}
}

func TestBestAcrossOneSidedQuotes(t *testing.T) {
	ports := []port.MarketData{
		&mockMarketData{name: "a", quote: domain.Quote{Bid: 100}},
		&mockMarketData{name: "b", quote: domain.Quote{Ask: 100.5}},
	}

	agg := NewAggregator()
	best, err := agg.BestAcross(context.Background(), ports, "BTCUSDT")
	if err != nil {
		t.Fatalf("BestAcross failed: %v", err)
	}
	if best.Bid != 100 || best.Ask != 100.5 {
		t.Errorf("best = %+v, want {100 100.5}", best)
	}
}

func TestBestAcrossNoPorts(t *testing.T) {
	agg := NewAggregator()
	_, err := agg.BestAcross(context.Background(), nil, "BTCUSDT")
	if !errors.Is(err, domain.ErrNoLiquiditySources) {
		t.Fatalf("err = %v, want ErrNoLiquiditySources", err)
	}
}
