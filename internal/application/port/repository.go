package port

import (
	"context"
	"time"

	"xliq/internal/domain"
)

// BookRow is one flattened order book level, the row shape consumed by the
// columnar downstream: {timestamp, exchange, pair, side, price, quantity}.
type BookRow struct {
	Ts       time.Time
	Exchange string
	Pair     string
	Side     string // "bid" or "ask"
	Price    float64
	Quantity float64
}

// FlattenBook turns an order book snapshot into rows, bids first.
func FlattenBook(ts time.Time, exchange, pair string, book domain.OrderBook) []BookRow {
	rows := make([]BookRow, 0, len(book.Bids)+len(book.Asks))
	for _, lv := range book.Bids {
		rows = append(rows, BookRow{Ts: ts, Exchange: exchange, Pair: pair, Side: "bid", Price: lv.Price, Quantity: lv.Size})
	}
	for _, lv := range book.Asks {
		rows = append(rows, BookRow{Ts: ts, Exchange: exchange, Pair: pair, Side: "ask", Price: lv.Price, Quantity: lv.Size})
	}
	return rows
}

// SnapshotRepository persists captured market data rows.
type SnapshotRepository interface {
	SaveBookRows(ctx context.Context, rows []BookRow) error
	SaveFundingRate(ctx context.Context, ts time.Time, exchange, pair string, rate float64) error
	Close() error
}

// Archiver ships one captured snapshot to long-term storage, typically as
// a columnar object keyed by date and pair.
type Archiver interface {
	Archive(ctx context.Context, ts time.Time, pair string, rows []BookRow) error
}
