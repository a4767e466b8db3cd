package domain

import "time"

// Quote is a best bid/ask pair from a single source. A zero side means the
// source has no resting liquidity there.
type Quote struct {
	Bid float64
	Ask float64
}

// Empty reports whether the quote carries no usable side at all.
func (q Quote) Empty() bool {
	return q.Bid <= 0 && q.Ask <= 0
}

// Mid returns the mid price, or the single present side when the other is
// absent, or 0 for an empty quote.
func (q Quote) Mid() float64 {
	switch {
	case q.Bid > 0 && q.Ask > 0:
		return (q.Bid + q.Ask) / 2
	case q.Bid > 0:
		return q.Bid
	case q.Ask > 0:
		return q.Ask
	}
	return 0
}

// BookLevel is a single price level of an order book.
type BookLevel struct {
	Price float64
	Size  float64
}

// OrderBook holds bids sorted descending and asks sorted ascending by price,
// as delivered by the source. Consumers rely on that ordering.
type OrderBook struct {
	Bids []BookLevel
	Asks []BookLevel
}

// Empty reports whether either side of the book has no levels.
func (b OrderBook) Empty() bool {
	return len(b.Bids) == 0 || len(b.Asks) == 0
}

// BestQuote returns the top of book as a Quote.
func (b OrderBook) BestQuote() Quote {
	var q Quote
	if len(b.Bids) > 0 {
		q.Bid = b.Bids[0].Price
	}
	if len(b.Asks) > 0 {
		q.Ask = b.Asks[0].Price
	}
	return q
}

// FundingRate is the periodic funding rate of a perpetual instrument,
// expressed as a fraction per payout period. Predicted is nil when the
// source does not publish a next-period estimate.
type FundingRate struct {
	Rate      float64
	Predicted *float64
}

// FundingSnapshot is one historical funding rate observation.
type FundingSnapshot struct {
	Rate float64
	Time time.Time
}

// Side is the taker direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderKind distinguishes limit from market orders.
type OrderKind string

const (
	OrderKindLimit  OrderKind = "limit"
	OrderKindMarket OrderKind = "market"
)

// OrderStatus is the adapter-reported lifecycle state of an order. Adapters
// may report source-specific states but must map terminal fills to
// OrderStatusClosed and cancellations to OrderStatusCanceled.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusClosed   OrderStatus = "closed"
	OrderStatusCanceled OrderStatus = "canceled"
)

// OrderHandle identifies an order at its source. It is the correlation key
// for status, cancel and reconcile calls; no registry of outstanding orders
// is kept on this side.
type OrderHandle struct {
	ID     string
	Symbol string
}

// PositionSide is the direction of an open position.
type PositionSide string

const (
	PositionLong  PositionSide = "long"
	PositionShort PositionSide = "short"
)

// Position is a uniform view of a position at a source. NetPnL carries the
// source-reported unrealized PnL when HasPnL is true; otherwise a caller
// derives it from a fresh mark price.
type Position struct {
	Exchange   string
	Pair       string
	EntryTime  time.Time
	EntryPrice float64
	Quantity   float64
	Side       PositionSide
	NetPnL     float64
	HasPnL     bool
}

// PriceImpact is the outcome of a hypothetical depth walk: the volume
// weighted fill price and its signed deviation from mid, in percent.
type PriceImpact struct {
	AveragePrice float64
	ImpactPct    float64
}
