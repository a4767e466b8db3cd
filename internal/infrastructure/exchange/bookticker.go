package exchange

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

// binanceCombined wraps a Binance combined stream message.
type binanceCombined struct {
	Stream string            `json:"stream"`
	Data   binanceBookTicker `json:"data"`
}

// binanceBookTicker is the bookTicker stream payload.
type binanceBookTicker struct {
	Symbol string `json:"s"`
	Bid    string `json:"b"`
	Ask    string `json:"a"`
	Time   int64  `json:"E"`
}

// BookTickerFeed streams Binance best bid/ask over the combined
// bookTicker websocket stream. It implements port.QuoteFeed and keeps
// itself connected until the subscription context ends.
type BookTickerFeed struct {
	baseURL string
}

func NewBookTickerFeed(baseURL string) *BookTickerFeed {
	return &BookTickerFeed{baseURL: baseURL}
}

func (f *BookTickerFeed) Name() string { return "binance" }

// Subscribe starts the stream for the given native symbols. Slow readers
// lose ticks rather than stalling the socket.
func (f *BookTickerFeed) Subscribe(ctx context.Context, symbols []string) (<-chan port.QuoteTick, error) {
	wsURL, err := f.buildURL(symbols)
	if err != nil {
		return nil, err
	}

	out := make(chan port.QuoteTick, 256)
	stream := &bookTickerStream{helper: WSHelper{URL: wsURL}}

	go func() {
		defer close(out)
		runner := Runner{Stream: stream}
		runner.Run(ctx, func(symbol string, quote domain.Quote, ts int64) {
			tick := port.QuoteTick{Exchange: f.Name(), Symbol: symbol, Quote: quote, Ts: ts}
			select {
			case out <- tick:
			default:
				log.Debug().Str("symbol", symbol).Msg("tick dropped, slow consumer")
			}
		})
	}()

	return out, nil
}

func (f *BookTickerFeed) buildURL(symbols []string) (string, error) {
	if f.baseURL == "" {
		return "", errors.New("binance ws_url is empty")
	}
	if len(symbols) == 0 {
		return "", errors.New("symbols list is empty")
	}

	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		streams = append(streams, s+"@bookTicker")
	}

	u, err := url.Parse(strings.TrimRight(f.baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse ws url: %w", err)
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")
	return u.String(), nil
}

type bookTickerStream struct {
	helper WSHelper
}

func (s *bookTickerStream) Name() string { return "binance bookTicker" }

func (s *bookTickerStream) Connect(ctx context.Context, handler StreamHandler) error {
	conn, err := s.helper.DialWS(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	return s.helper.ReadWithPing(ctx, conn, func(data []byte) {
		var msg binanceCombined
		if err := ParseJSON(data, &msg); err != nil {
			return
		}

		symbol := strings.ToUpper(msg.Data.Symbol)
		if symbol == "" {
			return
		}

		var quote domain.Quote
		if v, err := strconv.ParseFloat(msg.Data.Bid, 64); err == nil {
			quote.Bid = v
		}
		if v, err := strconv.ParseFloat(msg.Data.Ask, 64); err == nil {
			quote.Ask = v
		}
		if quote.Empty() {
			return
		}

		ts := msg.Data.Time
		if ts == 0 {
			ts = time.Now().UnixMilli()
		}
		handler(symbol, quote, ts)
	})
}
