package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	bybit "github.com/bybit-exchange/bybit.go.api"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"xliq/internal/domain"
)

const category = "linear"

// Adapter talks to Bybit's v5 unified trading API.
type Adapter struct {
	client  *bybit.Client
	limiter *rate.Limiter
}

// New builds a Bybit adapter. restURL overrides the production endpoint
// when non-empty; rps caps the outbound request rate.
func New(apiKey, apiSecret, restURL string, rps float64) *Adapter {
	opts := []bybit.ClientOption{}
	if restURL != "" {
		opts = append(opts, bybit.WithBaseURL(strings.TrimRight(restURL, "/")))
	}
	if rps <= 0 {
		rps = 5
	}
	return &Adapter{
		client:  bybit.NewBybitHttpClient(apiKey, apiSecret, opts...),
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
	}
}

func (a *Adapter) Name() string { return "bybit" }

func sourceErr(op string, err error) error {
	return fmt.Errorf("%w: bybit %s: %v", domain.ErrSourceUnavailable, op, err)
}

// call runs a v5 endpoint and decodes its Result payload into out. Bybit
// wraps every response in retCode/retMsg; a non-zero retCode is a refusal.
func (a *Adapter) call(ctx context.Context, op string, out interface{}, do func() (*bybit.ServerResponse, error)) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := do()
	if err != nil {
		return sourceErr(op, err)
	}
	if resp.RetCode != 0 {
		return fmt.Errorf("%w: bybit %s: retCode %d: %s", domain.ErrSourceUnavailable, op, resp.RetCode, resp.RetMsg)
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(resp.Result)
	if err != nil {
		return sourceErr(op, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return sourceErr(op, err)
	}
	return nil
}

type tickerResult struct {
	List []struct {
		Symbol      string `json:"symbol"`
		Bid1Price   string `json:"bid1Price"`
		Ask1Price   string `json:"ask1Price"`
		FundingRate string `json:"fundingRate"`
	} `json:"list"`
}

func (a *Adapter) GetQuote(ctx context.Context, pair string) (domain.Quote, error) {
	var res tickerResult
	err := a.call(ctx, "tickers", &res, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(map[string]interface{}{
			"category": category,
			"symbol":   pair,
		}).GetMarketTickers(ctx)
	})
	if err != nil {
		return domain.Quote{}, err
	}
	if len(res.List) == 0 {
		return domain.Quote{}, fmt.Errorf("%w: bybit tickers: no data for %s", domain.ErrSourceUnavailable, pair)
	}

	var q domain.Quote
	if v, err := strconv.ParseFloat(res.List[0].Bid1Price, 64); err == nil {
		q.Bid = v
	}
	if v, err := strconv.ParseFloat(res.List[0].Ask1Price, 64); err == nil {
		q.Ask = v
	}
	return q, nil
}

type orderBookResult struct {
	Symbol string     `json:"s"`
	Bids   [][]string `json:"b"`
	Asks   [][]string `json:"a"`
}

func (a *Adapter) GetOrderBook(ctx context.Context, pair string, depth int) (domain.OrderBook, error) {
	if depth <= 0 {
		depth = 100
	}
	var res orderBookResult
	err := a.call(ctx, "orderbook", &res, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(map[string]interface{}{
			"category": category,
			"symbol":   pair,
			"limit":    depth,
		}).GetOrderBookInfo(ctx)
	})
	if err != nil {
		return domain.OrderBook{}, err
	}

	book := domain.OrderBook{
		Bids: parseLevels(res.Bids),
		Asks: parseLevels(res.Asks),
	}
	return book, nil
}

func parseLevels(rows [][]string) []domain.BookLevel {
	out := make([]domain.BookLevel, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		p, err1 := strconv.ParseFloat(row[0], 64)
		q, err2 := strconv.ParseFloat(row[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, domain.BookLevel{Price: p, Size: q})
	}
	return out
}

func (a *Adapter) GetFundingRate(ctx context.Context, pair string) (domain.FundingRate, error) {
	var res tickerResult
	err := a.call(ctx, "tickers", &res, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(map[string]interface{}{
			"category": category,
			"symbol":   pair,
		}).GetMarketTickers(ctx)
	})
	if err != nil {
		return domain.FundingRate{}, err
	}
	if len(res.List) == 0 || res.List[0].FundingRate == "" {
		return domain.FundingRate{}, fmt.Errorf("%w: bybit has no funding for %s", domain.ErrNotSupported, pair)
	}

	r, err := strconv.ParseFloat(res.List[0].FundingRate, 64)
	if err != nil {
		return domain.FundingRate{}, fmt.Errorf("%w: bybit has no funding for %s", domain.ErrNotSupported, pair)
	}
	return domain.FundingRate{Rate: r}, nil
}

type fundingHistoryResult struct {
	List []struct {
		FundingRate          string `json:"fundingRate"`
		FundingRateTimestamp string `json:"fundingRateTimestamp"`
	} `json:"list"`
}

func (a *Adapter) GetFundingHistory(ctx context.Context, pair string, since *time.Time, limit int) ([]domain.FundingSnapshot, error) {
	if limit <= 0 {
		limit = 100
	}
	params := map[string]interface{}{
		"category": category,
		"symbol":   pair,
		"limit":    limit,
	}
	if since != nil {
		params["startTime"] = since.UnixMilli()
	}

	var res fundingHistoryResult
	err := a.call(ctx, "funding history", &res, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(params).GetFundingRateHistory(ctx)
	})
	if err != nil {
		return nil, err
	}

	// Bybit returns newest first; flip to oldest first.
	out := make([]domain.FundingSnapshot, 0, len(res.List))
	for i := len(res.List) - 1; i >= 0; i-- {
		row := res.List[i]
		r, err1 := strconv.ParseFloat(row.FundingRate, 64)
		ms, err2 := strconv.ParseInt(row.FundingRateTimestamp, 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, domain.FundingSnapshot{Rate: r, Time: time.UnixMilli(ms)})
	}
	return out, nil
}

type placeOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderLinkID string `json:"orderLinkId"`
}

func (a *Adapter) PlaceOrder(ctx context.Context, pair string, side domain.Side, quantity float64, kind domain.OrderKind, price *float64) (domain.OrderHandle, error) {
	if quantity <= 0 {
		return domain.OrderHandle{}, fmt.Errorf("%w: quantity %v", domain.ErrInvalidOrder, quantity)
	}

	var sideName string
	switch side {
	case domain.SideBuy:
		sideName = "Buy"
	case domain.SideSell:
		sideName = "Sell"
	default:
		return domain.OrderHandle{}, fmt.Errorf("%w: side %q", domain.ErrInvalidOrder, side)
	}

	params := map[string]interface{}{
		"category":    category,
		"symbol":      pair,
		"side":        sideName,
		"qty":         strconv.FormatFloat(quantity, 'f', -1, 64),
		"orderLinkId": "xliq-" + uuid.NewString(),
	}
	switch kind {
	case domain.OrderKindLimit:
		if price == nil || *price <= 0 {
			return domain.OrderHandle{}, fmt.Errorf("%w: limit order without price", domain.ErrInvalidOrder)
		}
		params["orderType"] = "Limit"
		params["timeInForce"] = "GTC"
		params["price"] = strconv.FormatFloat(*price, 'f', -1, 64)
	case domain.OrderKindMarket:
		params["orderType"] = "Market"
	default:
		return domain.OrderHandle{}, fmt.Errorf("%w: kind %q", domain.ErrInvalidOrder, kind)
	}

	var res placeOrderResult
	err := a.call(ctx, "place order", &res, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	})
	if err != nil {
		return domain.OrderHandle{}, err
	}
	return domain.OrderHandle{ID: res.OrderID, Symbol: pair}, nil
}

func (a *Adapter) CancelOrder(ctx context.Context, handle domain.OrderHandle) bool {
	err := a.call(ctx, "cancel order", nil, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(map[string]interface{}{
			"category": category,
			"symbol":   handle.Symbol,
			"orderId":  handle.ID,
		}).CancelOrder(ctx)
	})
	return err == nil
}

type orderListResult struct {
	List []struct {
		OrderID     string `json:"orderId"`
		OrderStatus string `json:"orderStatus"`
		Side        string `json:"side"`
		AvgPrice    string `json:"avgPrice"`
		CumExecQty  string `json:"cumExecQty"`
		UpdatedTime string `json:"updatedTime"`
	} `json:"list"`
}

func (a *Adapter) GetOrderStatus(ctx context.Context, handle domain.OrderHandle) (domain.OrderStatus, error) {
	order, err := a.findOrder(ctx, handle)
	if err != nil {
		return "", err
	}
	return mapOrderStatus(order), nil
}

type bybitOrder struct {
	Status string
	Side   string
}

// findOrder checks open orders first, then order history. Bybit moves
// terminal orders out of the realtime set.
func (a *Adapter) findOrder(ctx context.Context, handle domain.OrderHandle) (bybitOrder, error) {
	params := map[string]interface{}{
		"category": category,
		"symbol":   handle.Symbol,
		"orderId":  handle.ID,
	}

	var open orderListResult
	err := a.call(ctx, "open orders", &open, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(params).GetOpenOrders(ctx)
	})
	if err == nil {
		for _, o := range open.List {
			if o.OrderID == handle.ID {
				return bybitOrder{Status: o.OrderStatus, Side: o.Side}, nil
			}
		}
	}

	var hist orderListResult
	if err := a.call(ctx, "order history", &hist, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(params).GetOrderHistory(ctx)
	}); err != nil {
		return bybitOrder{}, err
	}
	for _, o := range hist.List {
		if o.OrderID == handle.ID {
			return bybitOrder{Status: o.OrderStatus, Side: o.Side}, nil
		}
	}
	return bybitOrder{}, fmt.Errorf("%w: bybit order %s not found", domain.ErrSourceUnavailable, handle.ID)
}

func mapOrderStatus(o bybitOrder) domain.OrderStatus {
	switch o.Status {
	case "Filled":
		return domain.OrderStatusClosed
	case "Cancelled", "Rejected", "Deactivated":
		return domain.OrderStatusCanceled
	default:
		return domain.OrderStatusOpen
	}
}

type positionResult struct {
	List []struct {
		Symbol        string `json:"symbol"`
		Side          string `json:"side"`
		Size          string `json:"size"`
		AvgPrice      string `json:"avgPrice"`
		UnrealisedPnl string `json:"unrealisedPnl"`
		CreatedTime   string `json:"createdTime"`
	} `json:"list"`
}

func (a *Adapter) GetPosition(ctx context.Context, handle domain.OrderHandle) (domain.Position, error) {
	order, err := a.findOrder(ctx, handle)
	if err != nil {
		return domain.Position{}, err
	}
	if mapOrderStatus(order) != domain.OrderStatusClosed {
		return domain.Position{}, fmt.Errorf("%w: order %s is %s", domain.ErrOrderNotFilled, handle.ID, order.Status)
	}

	wantSide := domain.PositionLong
	if order.Side == "Sell" {
		wantSide = domain.PositionShort
	}

	var res positionResult
	err = a.call(ctx, "position list", &res, func() (*bybit.ServerResponse, error) {
		return a.client.NewUtaBybitServiceWithParams(map[string]interface{}{
			"category": category,
			"symbol":   handle.Symbol,
		}).GetPositionList(ctx)
	})
	if err != nil {
		return domain.Position{}, err
	}

	for _, p := range res.List {
		size, err := strconv.ParseFloat(p.Size, 64)
		if err != nil || size == 0 {
			continue
		}
		side := domain.PositionLong
		if p.Side == "Sell" {
			side = domain.PositionShort
		}
		if side != wantSide {
			continue
		}

		entry, _ := strconv.ParseFloat(p.AvgPrice, 64)
		pos := domain.Position{
			Exchange:   a.Name(),
			Pair:       canonicalPair(handle.Symbol),
			EntryPrice: entry,
			Quantity:   size,
			Side:       side,
		}
		if ms, err := strconv.ParseInt(p.CreatedTime, 10, 64); err == nil {
			pos.EntryTime = time.UnixMilli(ms)
		}
		if pnl, err := strconv.ParseFloat(p.UnrealisedPnl, 64); err == nil {
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
