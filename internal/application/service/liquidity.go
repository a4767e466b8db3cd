package service

import (
	"fmt"

	"xliq/internal/domain"
)

// LiquidityEngine estimates the execution cost of a hypothetical trade by
// walking an order book snapshot.
type LiquidityEngine struct{}

func NewLiquidityEngine() *LiquidityEngine {
	return &LiquidityEngine{}
}

// ComputeImpact walks the book greedily, consuming asks for a buy and bids
// for a sell in the book's own order, until quoteVolume of notional is
// filled. The final level is filled partially. It returns the volume
// weighted average fill price and its signed deviation from mid in percent:
// positive for buys pushing up, negative for sells pushing down.
//
// The walk is a single pass with no backtracking; the caller supplies a
// correctly sorted book.
func (e *LiquidityEngine) ComputeImpact(book domain.OrderBook, side domain.Side, quoteVolume float64) (domain.PriceImpact, error) {
	if quoteVolume <= 0 {
		return domain.PriceImpact{}, fmt.Errorf("trade volume %v: %w", quoteVolume, domain.ErrInvalidParameter)
	}
	if side != domain.SideBuy && side != domain.SideSell {
		return domain.PriceImpact{}, fmt.Errorf("side %q: %w", side, domain.ErrInvalidParameter)
	}
	if book.Empty() {
		return domain.PriceImpact{}, domain.ErrEmptyBook
	}

	mid := (book.Bids[0].Price + book.Asks[0].Price) / 2

	levels := book.Asks
	if side == domain.SideSell {
		levels = book.Bids
	}

	var consumed, totalBase, weightedSum float64
	filled := false
	for _, lv := range levels {
		levelQuote := lv.Price * lv.Size
		if consumed+levelQuote >= quoteVolume {
			remaining := quoteVolume - consumed
			neededBase := remaining / lv.Price
			totalBase += neededBase
			weightedSum += lv.Price * neededBase
			consumed = quoteVolume
			filled = true
			break
		}
		totalBase += lv.Size
		weightedSum += levelQuote
		consumed += levelQuote
	}

	if !filled {
		return domain.PriceImpact{}, fmt.Errorf("%w: %v of %v quote volume available",
			domain.ErrInsufficientLiquidity, consumed, quoteVolume)
	}

	avg := 0.0
	if totalBase > 0 {
		avg = weightedSum / totalBase
	}
	impact := 0.0
	if mid > 0 {
		impact = (avg - mid) / mid * 100
	}

	return domain.PriceImpact{AveragePrice: avg, ImpactPct: impact}, nil
}
