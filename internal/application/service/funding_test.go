package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"xliq/internal/domain"
)

func TestAnnualizeRateEightHourPeriod(t *testing.T) {
	f := NewFundingAnalytics()

	apr, err := f.AnnualizeRate(0.0001, 8)
	if err != nil {
		t.Fatalf("AnnualizeRate failed: %v", err)
	}

	// 0.0001 * (8760/8) * 100 = 10.95
	if !approx(apr, 10.95, 1e-9) {
		t.Errorf("apr = %v, want 10.95", apr)
	}
}

func TestAnnualizeRateNegativeRate(t *testing.T) {
	f := NewFundingAnalytics()

	apr, err := f.AnnualizeRate(-0.0002, 8)
	if err != nil {
		t.Fatalf("AnnualizeRate failed: %v", err)
	}
	if !approx(apr, -21.9, 1e-9) {
		t.Errorf("apr = %v, want -21.9", apr)
	}
}

func TestAnnualizeRateRejectsBadPeriod(t *testing.T) {
	f := NewFundingAnalytics()

	for _, hours := range []int{0, -8} {
		_, err := f.AnnualizeRate(0.0001, hours)
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("hours %d: err = %v, want ErrInvalidParameter", hours, err)
		}
	}
}

func TestHistoricalAPR(t *testing.T) {
	now := time.Now()
	mock := &mockMarketData{
		name: "binance",
		history: []domain.FundingSnapshot{
			{Rate: 0.0001, Time: now.Add(-16 * time.Hour)},
			{Rate: 0.0002, Time: now.Add(-8 * time.Hour)},
		},
	}

	f := NewFundingAnalytics()
	points, err := f.HistoricalAPR(context.Background(), mock, "BTCUSDT", nil, 100, 8)
	if err != nil {
		t.Fatalf("HistoricalAPR failed: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if !approx(points[0].APR, 10.95, 1e-9) {
		t.Errorf("points[0].APR = %v, want 10.95", points[0].APR)
	}
	if !approx(points[1].APR, 21.9, 1e-9) {
		t.Errorf("points[1].APR = %v, want 21.9", points[1].APR)
	}
}

func TestHistoricalAPRSourceFailure(t *testing.T) {
	mock := &mockMarketData{name: "binance", historyErr: domain.ErrSourceUnavailable}

	f := NewFundingAnalytics()
	_, err := f.HistoricalAPR(context.Background(), mock, "BTCUSDT", nil, 100, 8)
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}
