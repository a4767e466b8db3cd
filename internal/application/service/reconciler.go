package service

import (
	"context"
	"fmt"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

// Reconciler resolves a filled order into a position with a uniform PnL
// figure.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile checks the order is closed, looks up the matching position and
// fills in NetPnL. A source-reported unrealized PnL wins when present,
// since the source's figure folds in fees and funding; only when the
// source reports none is PnL derived from a fresh mark price as
// (mark - entry) * quantity, negated for shorts.
func (r *Reconciler) Reconcile(ctx context.Context, p port.MarketData, handle domain.OrderHandle) (domain.Position, error) {
	status, err := p.GetOrderStatus(ctx, handle)
	if err != nil {
		return domain.Position{}, err
	}
	if status != domain.OrderStatusClosed {
		return domain.Position{}, fmt.Errorf("order %s is %s: %w", handle.ID, status, domain.ErrOrderNotFilled)
	}

	pos, err := p.GetPosition(ctx, handle)
	if err != nil {
		return domain.Position{}, err
	}

	if !pos.HasPnL {
		q, err := p.GetQuote(ctx, handle.Symbol)
		if err != nil {
			return domain.Position{}, err
		}
		dir := 1.0
		if pos.Side == domain.PositionShort {
			dir = -1
		}
		pos.NetPnL = (q.Mid() - pos.EntryPrice) * pos.Quantity * dir
		pos.HasPnL = true
	}

	return pos, nil
}
