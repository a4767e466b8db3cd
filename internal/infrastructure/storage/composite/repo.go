package composite

import (
	"context"
	"time"

	"xliq/internal/application/port"
)

// Repo fans writes out to several snapshot repositories. The first error is
// kept; the remaining repos still get the write.
type Repo struct {
	repos []port.SnapshotRepository
}

func New(repos ...port.SnapshotRepository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.SnapshotRepository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) SaveBookRows(ctx context.Context, rows []port.BookRow) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveBookRows(ctx, rows); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) SaveFundingRate(ctx context.Context, ts time.Time, exchange, pair string, rate float64) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveFundingRate(ctx, ts, exchange, pair, rate); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.SnapshotRepository = (*Repo)(nil)
