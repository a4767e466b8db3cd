package port

import (
	"context"
	"time"

	"xliq/internal/domain"
)

// MarketData is the capability contract every exchange adapter satisfies.
// Each call is a single attempt against the remote source; retry and
// timeout policy belong to the caller or the adapter's transport. Calls
// that cannot be answered fail with domain.ErrSourceUnavailable wrapped
// around the transport cause.
type MarketData interface {
	// Name identifies the exchange, lowercase ("binance", "bybit").
	Name() string

	// GetQuote returns the best bid/ask for a native pair.
	GetQuote(ctx context.Context, pair string) (domain.Quote, error)

	// GetOrderBook returns up to depth levels per side, bids descending
	// and asks ascending.
	GetOrderBook(ctx context.Context, pair string, depth int) (domain.OrderBook, error)

	// GetFundingRate returns the current funding rate. Instruments with
	// no funding mechanism fail with domain.ErrNotSupported.
	GetFundingRate(ctx context.Context, pair string) (domain.FundingRate, error)

	// GetFundingHistory returns up to limit historical funding
	// observations, oldest first, optionally bounded below by since.
	// One fetch per call; no streaming.
	GetFundingHistory(ctx context.Context, pair string, since *time.Time, limit int) ([]domain.FundingSnapshot, error)

	// PlaceOrder submits an order and returns its handle. A limit order
	// without a price, or an unrecognized kind, fails with
	// domain.ErrInvalidOrder before anything reaches the source.
	PlaceOrder(ctx context.Context, pair string, side domain.Side, quantity float64, kind domain.OrderKind, price *float64) (domain.OrderHandle, error)

	// CancelOrder attempts cancellation. False means the source refused;
	// that is an observable outcome for the caller to check, not an error.
	CancelOrder(ctx context.Context, handle domain.OrderHandle) bool

	// GetOrderStatus reports the order's lifecycle state.
	GetOrderStatus(ctx context.Context, handle domain.OrderHandle) (domain.OrderStatus, error)

	// GetPosition resolves the position resulting from a filled order.
	// Fails with domain.ErrOrderNotFilled while the order is not closed
	// and domain.ErrPositionNotFound when no position matches its pair
	// and side.
	GetPosition(ctx context.Context, handle domain.OrderHandle) (domain.Position, error)
}
