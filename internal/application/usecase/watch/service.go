package watch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"xliq/internal/application/port"
	"xliq/internal/application/service"
)

// ServiceDeps wires a watch session: streaming feeds drive the live line,
// REST ports feed the periodic cross-exchange best snapshot.
type ServiceDeps struct {
	Feeds         []port.QuoteFeed
	Ports         []port.MarketData
	Symbols       []string
	PrintEveryMin int
	Sink          port.Sink
}

type Service struct {
	deps ServiceDeps
	st   *State
	fmt  *Formatter
	agg  *service.Aggregator
}

func NewService(deps ServiceDeps) *Service {
	if deps.PrintEveryMin <= 0 {
		deps.PrintEveryMin = 1
	}
	return &Service{
		deps: deps,
		st:   NewState(deps.Symbols),
		fmt:  NewFormatter(),
		agg:  service.NewAggregator(),
	}
}

func (s *Service) Run(ctx context.Context) error {
	if len(s.deps.Feeds) == 0 {
		return errors.New("no feeds")
	}

	merged := make(chan port.QuoteTick, 1024)

	for _, feed := range s.deps.Feeds {
		ch, err := feed.Subscribe(ctx, s.deps.Symbols)
		if err != nil {
			return err
		}
		go func(in <-chan port.QuoteTick) {
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-in:
					if !ok {
						return
					}
					merged <- t
				}
			}
		}(ch)

		log.Info().Str("feed", feed.Name()).Msg("feed started")
	}

	snapTicker := time.NewTicker(time.Duration(s.deps.PrintEveryMin) * time.Minute)
	defer snapTicker.Stop()

	_ = s.deps.Sink.WriteLive(s.fmt.Render(s.st, RenderLive))

	for {
		select {
		case <-ctx.Done():
			_ = s.deps.Sink.NewLine()
			return ctx.Err()

		case now := <-snapTicker.C:
			_ = s.deps.Sink.WriteSnapshot(now, s.snapshotLine(ctx))

		case t := <-merged:
			if s.st.Apply(t) {
				_ = s.deps.Sink.WriteLive(s.fmt.Render(s.st, RenderLive))
			}
		}
	}
}

// snapshotLine aggregates the best bid/ask per symbol across all ports.
func (s *Service) snapshotLine(ctx context.Context) string {
	parts := make([]string, 0, len(s.deps.Symbols))
	for _, sym := range s.deps.Symbols {
		best, err := s.agg.BestAcross(ctx, s.deps.Ports, sym)
		if err != nil {
			parts = append(parts, sym+" best unavailable")
			continue
		}
		parts = append(parts, s.fmt.RenderBest(sym, best))
	}
	return strings.Join(parts, "  ||  ")
}
