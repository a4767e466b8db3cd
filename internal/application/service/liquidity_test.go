package service

import (
	"errors"
	"math"
	"testing"

	"xliq/internal/domain"
)

func testBook() domain.OrderBook {
	return domain.OrderBook{
		Bids: []domain.BookLevel{{Price: 99, Size: 1}, {Price: 98, Size: 2}},
		Asks: []domain.BookLevel{{Price: 100, Size: 1}, {Price: 101, Size: 2}, {Price: 102, Size: 5}},
	}
}

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestComputeImpactBuyPartialSecondLevel(t *testing.T) {
	engine := NewLiquidityEngine()

	// 100 quote units fill level one fully, the remaining 50 take
	// 50/101 base from level two.
	res, err := engine.ComputeImpact(testBook(), domain.SideBuy, 150)
	if err != nil {
		t.Fatalf("ComputeImpact failed: %v", err)
	}

	// avg = 150 / (1 + 50/101) = 15150/151
	if !approx(res.AveragePrice, 15150.0/151, 1e-9) {
		t.Errorf("average price = %v, want %v", res.AveragePrice, 15150.0/151)
	}
	// mid = (99+100)/2 = 99.5
	if !approx(res.ImpactPct, 0.835302, 1e-5) {
		t.Errorf("impact = %v, want ~0.835302", res.ImpactPct)
	}
	if res.ImpactPct <= 0 {
		t.Errorf("buy impact should be positive, got %v", res.ImpactPct)
	}
}

func TestComputeImpactSellPushesDown(t *testing.T) {
	engine := NewLiquidityEngine()

	res, err := engine.ComputeImpact(testBook(), domain.SideSell, 148)
	if err != nil {
		t.Fatalf("ComputeImpact failed: %v", err)
	}

	// 99 quote from level one, 49 more at 98: base 1.5, avg 148/1.5.
	if !approx(res.AveragePrice, 148.0/1.5, 1e-9) {
		t.Errorf("average price = %v, want %v", res.AveragePrice, 148.0/1.5)
	}
	if res.ImpactPct >= 0 {
		t.Errorf("sell impact should be negative, got %v", res.ImpactPct)
	}
}

func TestComputeImpactExactSingleLevel(t *testing.T) {
	engine := NewLiquidityEngine()

	// Exactly the notional of the first ask level.
	res, err := engine.ComputeImpact(testBook(), domain.SideBuy, 100)
	if err != nil {
		t.Fatalf("ComputeImpact failed: %v", err)
	}
	if !approx(res.AveragePrice, 100, 1e-9) {
		t.Errorf("average price = %v, want 100", res.AveragePrice)
	}
}

func TestComputeImpactInsufficientLiquidity(t *testing.T) {
	engine := NewLiquidityEngine()

	// Total ask notional is 100 + 202 + 510 = 812.
	_, err := engine.ComputeImpact(testBook(), domain.SideBuy, 1000)
	if !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Fatalf("err = %v, want ErrInsufficientLiquidity", err)
	}
}

func TestComputeImpactEmptyBook(t *testing.T) {
	engine := NewLiquidityEngine()

	book := domain.OrderBook{Asks: []domain.BookLevel{{Price: 100, Size: 1}}}
	_, err := engine.ComputeImpact(book, domain.SideBuy, 10)
	if !errors.Is(err, domain.ErrEmptyBook) {
		t.Fatalf("err = %v, want ErrEmptyBook", err)
	}
}

func TestComputeImpactRejectsNonPositiveVolume(t *testing.T) {
	engine := NewLiquidityEngine()

	for _, vol := range []float64{0, -5} {
		_, err := engine.ComputeImpact(testBook(), domain.SideBuy, vol)
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("volume %v: err = %v, want ErrInvalidParameter", vol, err)
		}
	}
}
