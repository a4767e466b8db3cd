package port

import (
	"context"

	"xliq/internal/domain"
)

// QuoteTick is one streamed top-of-book update.
type QuoteTick struct {
	Exchange string
	Symbol   string
	Quote    domain.Quote
	Ts       int64 // unix ms
}

// QuoteFeed streams best bid/ask updates for a set of native symbols. The
// channel closes when the feed stops; reconnection is the feed's concern.
type QuoteFeed interface {
	Name() string
	Subscribe(ctx context.Context, symbols []string) (<-chan QuoteTick, error)
}
