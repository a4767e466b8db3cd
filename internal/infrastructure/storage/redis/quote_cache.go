package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

type cachedQuote struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
	Ts  int64   `json:"ts"`
}

// QuoteCache decorates a market data source with a Redis-backed best
// bid/ask cache. Quotes live in one hash keyed "<prefix>:quotes", field
// "<exchange>:<pair>", and expire together after the TTL. Cache failures
// fall through to the source.
type QuoteCache struct {
	inner port.MarketData
	rdb   *redis.Client
	key   string
	ttl   time.Duration
}

func NewQuoteCache(inner port.MarketData, rdb *redis.Client, prefix string, ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		inner: inner,
		rdb:   rdb,
		key:   prefix + ":quotes",
		ttl:   ttl,
	}
}

func (c *QuoteCache) Name() string { return c.inner.Name() }

func (c *QuoteCache) field(pair string) string {
	return fmt.Sprintf("%s:%s", c.inner.Name(), pair)
}

func (c *QuoteCache) GetQuote(ctx context.Context, pair string) (domain.Quote, error) {
	if raw, err := c.rdb.HGet(ctx, c.key, c.field(pair)).Result(); err == nil {
		var cq cachedQuote
		if json.Unmarshal([]byte(raw), &cq) == nil {
			q := domain.Quote{Bid: cq.Bid, Ask: cq.Ask}
			if !q.Empty() {
				return q, nil
			}
		}
	}

	q, err := c.inner.GetQuote(ctx, pair)
	if err != nil {
		return domain.Quote{}, err
	}
	c.store(ctx, pair, q, time.Now().UnixMilli())
	return q, nil
}

// StoreQuote seeds the cache from a streaming feed.
func (c *QuoteCache) StoreQuote(ctx context.Context, pair string, q domain.Quote, ts int64) {
	c.store(ctx, pair, q, ts)
}

func (c *QuoteCache) store(ctx context.Context, pair string, q domain.Quote, ts int64) {
	b, _ := json.Marshal(cachedQuote{Bid: q.Bid, Ask: q.Ask, Ts: ts})

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, c.key, c.field(pair), string(b))
	if c.ttl > 0 {
		pipe.Expire(ctx, c.key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Debug().Err(err).Str("pair", pair).Msg("quote cache write failed")
	}
}

func (c *QuoteCache) GetOrderBook(ctx context.Context, pair string, depth int) (domain.OrderBook, error) {
	return c.inner.GetOrderBook(ctx, pair, depth)
}

func (c *QuoteCache) GetFundingRate(ctx context.Context, pair string) (domain.FundingRate, error) {
	return c.inner.GetFundingRate(ctx, pair)
}

func (c *QuoteCache) GetFundingHistory(ctx context.Context, pair string, since *time.Time, limit int) ([]domain.FundingSnapshot, error) {
	return c.inner.GetFundingHistory(ctx, pair, since, limit)
}

func (c *QuoteCache) PlaceOrder(ctx context.Context, pair string, side domain.Side, quantity float64, kind domain.OrderKind, price *float64) (domain.OrderHandle, error) {
	return c.inner.PlaceOrder(ctx, pair, side, quantity, kind, price)
}

func (c *QuoteCache) CancelOrder(ctx context.Context, handle domain.OrderHandle) bool {
	return c.inner.CancelOrder(ctx, handle)
}

func (c *QuoteCache) GetOrderStatus(ctx context.Context, handle domain.OrderHandle) (domain.OrderStatus, error) {
	return c.inner.GetOrderStatus(ctx, handle)
}

func (c *QuoteCache) GetPosition(ctx context.Context, handle domain.OrderHandle) (domain.Position, error) {
	return c.inner.GetPosition(ctx, handle)
}

var _ port.MarketData = (*QuoteCache)(nil)
