package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"xliq/internal/application/port"
)

// FundingSync periodically records the current funding rate of each pair.
// Funding moves slowly, so the default cadence is coarse.
type FundingSync struct {
	source   port.MarketData
	repo     port.SnapshotRepository
	pairs    []string
	interval time.Duration
}

func NewFundingSync(source port.MarketData, repo port.SnapshotRepository, pairs []string, interval time.Duration) *FundingSync {
	if interval <= 0 {
		interval = time.Hour
	}
	return &FundingSync{source: source, repo: repo, pairs: pairs, interval: interval}
}

// Run records once immediately, then on every tick until ctx cancels.
func (s *FundingSync) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.record(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.record(ctx)
		}
	}
}

func (s *FundingSync) record(ctx context.Context) {
	ts := time.Now().UTC()
	for _, pair := range s.pairs {
		rate, err := s.source.GetFundingRate(ctx, pair)
		if err != nil {
			log.Warn().
				Str("exchange", s.source.Name()).
				Str("pair", pair).
				Err(err).
				Msg("funding fetch failed")
			continue
		}
		if err := s.repo.SaveFundingRate(ctx, ts, s.source.Name(), pair, rate.Rate); err != nil {
			log.Error().Err(err).Str("pair", pair).Msg("funding persist failed")
		}
	}
}
