package service

import (
	"context"
	"fmt"
	"time"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

const hoursPerYear = 24 * 365

// FundingAnalytics converts periodic funding rates into annualized figures.
type FundingAnalytics struct{}

func NewFundingAnalytics() *FundingAnalytics {
	return &FundingAnalytics{}
}

// AnnualizeRate converts a per-period funding rate fraction into an APR
// percentage, given the payout period length in hours (8 on most venues).
func (f *FundingAnalytics) AnnualizeRate(rate float64, payoutHours int) (float64, error) {
	if payoutHours <= 0 {
		return 0, fmt.Errorf("payout period %d hours: %w", payoutHours, domain.ErrInvalidParameter)
	}
	periodsPerYear := float64(hoursPerYear) / float64(payoutHours)
	return rate * periodsPerYear * 100, nil
}

// AnnualizedPoint pairs one historical funding observation with its APR.
type AnnualizedPoint struct {
	Time time.Time
	Rate float64
	APR  float64
}

// HistoricalAPR fetches funding history through the port and annualizes
// every observation, oldest first.
func (f *FundingAnalytics) HistoricalAPR(ctx context.Context, p port.MarketData, pair string, since *time.Time, limit, payoutHours int) ([]AnnualizedPoint, error) {
	if payoutHours <= 0 {
		return nil, fmt.Errorf("payout period %d hours: %w", payoutHours, domain.ErrInvalidParameter)
	}

	history, err := p.GetFundingHistory(ctx, pair, since, limit)
	if err != nil {
		return nil, err
	}

	points := make([]AnnualizedPoint, 0, len(history))
	for _, snap := range history {
		apr, err := f.AnnualizeRate(snap.Rate, payoutHours)
		if err != nil {
			return nil, err
		}
		points = append(points, AnnualizedPoint{Time: snap.Time, Rate: snap.Rate, APR: apr})
	}
	return points, nil
}
