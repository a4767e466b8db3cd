package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

// Aggregator fans a quote query out across many market data sources and
// reduces to the tightest spread seen anywhere.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// BestAcross queries every port concurrently and returns the highest bid
// and lowest ask among the sources that answered. A failing port is logged
// and excluded; the reduction is commutative so completion order does not
// matter. Only when no port contributes a usable side does the call fail
// with domain.ErrNoLiquiditySources.
func (a *Aggregator) BestAcross(ctx context.Context, ports []port.MarketData, pair string) (domain.Quote, error) {
	var (
		mu   sync.Mutex
		best domain.Quote
		wg   sync.WaitGroup
	)

	for _, p := range ports {
		wg.Add(1)
		go func(p port.MarketData) {
			defer wg.Done()

			q, err := p.GetQuote(ctx, pair)
			if err != nil {
				log.Warn().
					Str("exchange", p.Name()).
					Str("pair", pair).
					Err(err).
					Msg("quote source skipped")
				return
			}

			mu.Lock()
			defer mu.Unlock()
			if q.Bid > 0 && q.Bid > best.Bid {
				best.Bid = q.Bid
			}
			if q.Ask > 0 && (best.Ask == 0 || q.Ask < best.Ask) {
				best.Ask = q.Ask
			}
		}(p)
	}
	wg.Wait()

	if best.Empty() {
		return domain.Quote{}, domain.ErrNoLiquiditySources
	}
	return best, nil
}
