package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"xliq/internal/application/port"
)

// CaptureConfig controls one capture loop.
type CaptureConfig struct {
	Pair     string
	Depth    int
	Interval time.Duration
	// Duration bounds the run; zero means run until ctx cancels.
	Duration time.Duration
}

// Capture periodically snapshots an order book through a market data port
// and hands the flattened rows to a repository and an archiver. A failed
// tick is logged and skipped; the loop keeps going.
type Capture struct {
	source   port.MarketData
	repo     port.SnapshotRepository
	archiver port.Archiver
	cfg      CaptureConfig
}

func NewCapture(source port.MarketData, repo port.SnapshotRepository, archiver port.Archiver, cfg CaptureConfig) *Capture {
	if cfg.Depth <= 0 {
		cfg.Depth = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Capture{source: source, repo: repo, archiver: archiver, cfg: cfg}
}

// Run drives the capture loop until the context is canceled or the
// configured duration elapses.
func (c *Capture) Run(ctx context.Context) error {
	if c.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Duration)
		defer cancel()
	}

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	log.Info().
		Str("exchange", c.source.Name()).
		Str("pair", c.cfg.Pair).
		Dur("interval", c.cfg.Interval).
		Int("depth", c.cfg.Depth).
		Msg("capture started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("pair", c.cfg.Pair).Msg("capture stopped")
			return nil
		case <-ticker.C:
			c.snapshot(ctx)
		}
	}
}

func (c *Capture) snapshot(ctx context.Context) {
	ts := time.Now().UTC()

	book, err := c.source.GetOrderBook(ctx, c.cfg.Pair, c.cfg.Depth)
	if err != nil {
		log.Warn().
			Str("exchange", c.source.Name()).
			Str("pair", c.cfg.Pair).
			Err(err).
			Msg("snapshot fetch failed")
		return
	}

	rows := port.FlattenBook(ts, c.source.Name(), c.cfg.Pair, book)
	if len(rows) == 0 {
		log.Warn().Str("pair", c.cfg.Pair).Msg("empty book, nothing to save")
		return
	}

	if c.repo != nil {
		if err := c.repo.SaveBookRows(ctx, rows); err != nil {
			log.Error().Err(err).Str("pair", c.cfg.Pair).Msg("snapshot persist failed")
		}
	}
	if c.archiver != nil {
		if err := c.archiver.Archive(ctx, ts, c.cfg.Pair, rows); err != nil {
			log.Error().Err(err).Str("pair", c.cfg.Pair).Msg("snapshot archive failed")
		}
	}

	log.Debug().
		Str("pair", c.cfg.Pair).
		Int("rows", len(rows)).
		Time("ts", ts).
		Msg("snapshot saved")
}
