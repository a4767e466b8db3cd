package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"xliq/internal/domain"
)

// Adapter talks to Binance USD-M futures over REST.
type Adapter struct {
	client  *futures.Client
	limiter *rate.Limiter
}

// New builds a Binance adapter. restURL overrides the production endpoint
// when non-empty; rps caps the outbound request rate.
func New(apiKey, apiSecret, restURL string, rps float64) *Adapter {
	client := futures.NewClient(apiKey, apiSecret)
	if restURL != "" {
		client.SetApiEndpoint(strings.TrimRight(restURL, "/"))
	}
	if rps <= 0 {
		rps = 5
	}
	return &Adapter{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

func (a *Adapter) Name() string { return "binance" }

func (a *Adapter) wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func sourceErr(op string, err error) error {
	return fmt.Errorf("%w: binance %s: %v", domain.ErrSourceUnavailable, op, err)
}

func (a *Adapter) GetQuote(ctx context.Context, pair string) (domain.Quote, error) {
	if err := a.wait(ctx); err != nil {
		return domain.Quote{}, err
	}
	tickers, err := a.client.NewListBookTickersService().Symbol(pair).Do(ctx)
	if err != nil {
		return domain.Quote{}, sourceErr("book ticker", err)
	}
	if len(tickers) == 0 {
		return domain.Quote{}, fmt.Errorf("%w: binance book ticker: no data for %s", domain.ErrSourceUnavailable, pair)
	}

	t := tickers[0]
	var q domain.Quote
	if v, err := strconv.ParseFloat(t.BidPrice, 64); err == nil {
		q.Bid = v
	}
	if v, err := strconv.ParseFloat(t.AskPrice, 64); err == nil {
		q.Ask = v
	}
	return q, nil
}

func (a *Adapter) GetOrderBook(ctx context.Context, pair string, depth int) (domain.OrderBook, error) {
	if depth <= 0 {
		depth = 100
	}
	if err := a.wait(ctx); err != nil {
		return domain.OrderBook{}, err
	}
	res, err := a.client.NewDepthService().Symbol(pair).Limit(depth).Do(ctx)
	if err != nil {
		return domain.OrderBook{}, sourceErr("depth", err)
	}

	book := domain.OrderBook{
		Bids: make([]domain.BookLevel, 0, len(res.Bids)),
		Asks: make([]domain.BookLevel, 0, len(res.Asks)),
	}
	for _, b := range res.Bids {
		book.Bids = append(book.Bids, parseLevel(b.Price, b.Quantity))
	}
	for _, ask := range res.Asks {
		book.Asks = append(book.Asks, parseLevel(ask.Price, ask.Quantity))
	}
	return book, nil
}

func parseLevel(price, qty string) domain.BookLevel {
	p, _ := strconv.ParseFloat(price, 64)
	q, _ := strconv.ParseFloat(qty, 64)
	return domain.BookLevel{Price: p, Size: q}
}

func (a *Adapter) GetFundingRate(ctx context.Context, pair string) (domain.FundingRate, error) {
	if err := a.wait(ctx); err != nil {
		return domain.FundingRate{}, err
	}
	rows, err := a.client.NewPremiumIndexService().Symbol(pair).Do(ctx)
	if err != nil {
		return domain.FundingRate{}, sourceErr("premium index", err)
	}
	if len(rows) == 0 {
		return domain.FundingRate{}, fmt.Errorf("%w: binance has no funding for %s", domain.ErrNotSupported, pair)
	}

	r, err := strconv.ParseFloat(rows[0].LastFundingRate, 64)
	if err != nil {
		return domain.FundingRate{}, fmt.Errorf("%w: binance has no funding for %s", domain.ErrNotSupported, pair)
	}
	return domain.FundingRate{Rate: r}, nil
}

func (a *Adapter) GetFundingHistory(ctx context.Context, pair string, since *time.Time, limit int) ([]domain.FundingSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	svc := a.client.NewFundingRateService().Symbol(pair).Limit(limit)
	if since != nil {
		svc = svc.StartTime(since.UnixMilli())
	}
	rows, err := svc.Do(ctx)
	if err != nil {
		return nil, sourceErr("funding history", err)
	}

	out := make([]domain.FundingSnapshot, 0, len(rows))
	for _, row := range rows {
		r, err := strconv.ParseFloat(row.FundingRate, 64)
		if err != nil {
			continue
		}
		out = append(out, domain.FundingSnapshot{
			Rate: r,
			Time: time.UnixMilli(row.FundingTime),
		})
	}
	return out, nil
}

func (a *Adapter) PlaceOrder(ctx context.Context, pair string, side domain.Side, quantity float64, kind domain.OrderKind, price *float64) (domain.OrderHandle, error) {
	if quantity <= 0 {
		return domain.OrderHandle{}, fmt.Errorf("%w: quantity %v", domain.ErrInvalidOrder, quantity)
	}

	var sideType futures.SideType
	switch side {
	case domain.SideBuy:
		sideType = futures.SideTypeBuy
	case domain.SideSell:
		sideType = futures.SideTypeSell
	default:
		return domain.OrderHandle{}, fmt.Errorf("%w: side %q", domain.ErrInvalidOrder, side)
	}

	svc := a.client.NewCreateOrderService().
		Symbol(pair).
		Side(sideType).
		Quantity(strconv.FormatFloat(quantity, 'f', -1, 64)).
		NewClientOrderID("xliq-" + uuid.NewString())

	switch kind {
	case domain.OrderKindLimit:
		if price == nil || *price <= 0 {
			return domain.OrderHandle{}, fmt.Errorf("%w: limit order without price", domain.ErrInvalidOrder)
		}
		svc = svc.Type(futures.OrderTypeLimit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Price(strconv.FormatFloat(*price, 'f', -1, 64))
	case domain.OrderKindMarket:
		svc = svc.Type(futures.OrderTypeMarket)
	default:
		return domain.OrderHandle{}, fmt.Errorf("%w: kind %q", domain.ErrInvalidOrder, kind)
	}

	if err := a.wait(ctx); err != nil {
		return domain.OrderHandle{}, err
	}
	res, err := svc.Do(ctx)
	if err != nil {
		return domain.OrderHandle{}, sourceErr("create order", err)
	}
	return domain.OrderHandle{
		ID:     strconv.FormatInt(res.OrderID, 10),
		Symbol: pair,
	}, nil
}

func (a *Adapter) CancelOrder(ctx context.Context, handle domain.OrderHandle) bool {
	orderID, err := strconv.ParseInt(handle.ID, 10, 64)
	if err != nil {
		return false
	}
	if err := a.wait(ctx); err != nil {
		return false
	}
	_, err = a.client.NewCancelOrderService().
		Symbol(handle.Symbol).
		OrderID(orderID).
		Do(ctx)
	return err == nil
}

func (a *Adapter) GetOrderStatus(ctx context.Context, handle domain.OrderHandle) (domain.OrderStatus, error) {
	order, err := a.getOrder(ctx, handle)
	if err != nil {
		return "", err
	}
	return mapOrderStatus(order.Status), nil
}

func (a *Adapter) getOrder(ctx context.Context, handle domain.OrderHandle) (*futures.Order, error) {
	orderID, err := strconv.ParseInt(handle.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: order id %q", domain.ErrInvalidParameter, handle.ID)
	}
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	order, err := a.client.NewGetOrderService().
		Symbol(handle.Symbol).
		OrderID(orderID).
		Do(ctx)
	if err != nil {
		return nil, sourceErr("get order", err)
	}
	return order, nil
}

func mapOrderStatus(s futures.OrderStatusType) domain.OrderStatus {
	switch s {
	case futures.OrderStatusTypeFilled:
		return domain.OrderStatusClosed
	case futures.OrderStatusTypeCanceled, futures.OrderStatusTypeExpired, futures.OrderStatusTypeRejected:
		return domain.OrderStatusCanceled
	default:
		return domain.OrderStatusOpen
	}
}

func (a *Adapter) GetPosition(ctx context.Context, handle domain.OrderHandle) (domain.Position, error) {
	order, err := a.getOrder(ctx, handle)
	if err != nil {
		return domain.Position{}, err
	}
	if mapOrderStatus(order.Status) != domain.OrderStatusClosed {
		return domain.Position{}, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotFilled, handle.ID, order.Status)
	}

	wantSide := domain.PositionLong
	if order.Side == futures.SideTypeSell {
		wantSide = domain.PositionShort
	}

	if err := a.wait(ctx); err != nil {
		return domain.Position{}, err
	}
	risks, err := a.client.NewGetPositionRiskService().Symbol(handle.Symbol).Do(ctx)
	if err != nil {
		return domain.Position{}, sourceErr("position risk", err)
	}

	for _, r := range risks {
		amt, err := strconv.ParseFloat(r.PositionAmt, 64)
		if err != nil || amt == 0 {
			continue
		}
		side := domain.PositionLong
		if amt < 0 {
			side = domain.PositionShort
			amt = -amt
		}
		if side != wantSide {
			continue
		}

		entry, _ := strconv.ParseFloat(r.EntryPrice, 64)
		pnl, pnlErr := strconv.ParseFloat(r.UnRealizedProfit, 64)

		pos := domain.Position{
			Exchange:   a.Name(),
			Pair:       canonicalPair(handle.Symbol),
			EntryTime:  time.UnixMilli(order.UpdateTime),
			EntryPrice: entry,
			Quantity:   amt,
			Side:       side,
		}
		if pnlErr == nil {
			pos.NetPnL = pnl
			pos.HasPnL = true
		}
		return pos, nil
	}
	return domain.Position{}, fmt.Errorf("%w: no %s position on %s", domain.ErrPositionNotFound, wantSide, handle.Symbol)
}

func canonicalPair(native string) string {
	sym, err := domain.Standardize(native)
	if err != nil {
		return strings.ToUpper(native)
	}
	return sym.String()
}
