package exchange

import (
	"fmt"
	"strings"

	"xliq/internal/application/port"
	"xliq/internal/infrastructure/exchange/binance"
	"xliq/internal/infrastructure/exchange/bybit"
)

// supported is the fixed set of exchanges this build can talk to.
var supported = []string{"binance", "bybit"}

// Credentials carries per-exchange API credentials. Empty credentials give
// a read-only adapter; order and position calls will fail at the source.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Options tunes an adapter's transport.
type Options struct {
	// RestURL overrides the exchange's default REST endpoint, e.g. for a
	// testnet.
	RestURL string
	// RPS caps outbound request rate per adapter.
	RPS float64
}

// Supported lists the exchanges New accepts.
func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// New builds a market data adapter for the named exchange.
func New(name string, creds Credentials, opts Options) (port.MarketData, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "binance":
		return binance.New(creds.APIKey, creds.APISecret, opts.RestURL, opts.RPS), nil
	case "bybit":
		return bybit.New(creds.APIKey, creds.APISecret, opts.RestURL, opts.RPS), nil
	default:
		return nil, fmt.Errorf("unsupported exchange %q (supported: %s)", name, strings.Join(supported, ", "))
	}
}
