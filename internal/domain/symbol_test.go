package domain

import (
	"errors"
	"testing"
)

func TestStandardize(t *testing.T) {
	cases := []struct {
		native string
		want   string
	}{
		{"BTC-USD", "BTCUSD"},
		{"ETH/USDC", "ETHUSD"},
		{"BTCUSDT", "BTCUSD"},
		{"SOLUSDC", "SOLUSD"},
		{"XBTUSD", "XBTUSD"},
		{"1000PEPEUSDT", "000PEPEUSD"},
		{"DOGE-USDT", "DOGEUSD"},
		{"ETH-BTC", "ETHBTC"},
	}

	for _, c := range cases {
		got, err := Standardize(c.native)
		if err != nil {
			t.Fatalf("Standardize(%q) failed: %v", c.native, err)
		}
		if got.String() != c.want {
			t.Errorf("Standardize(%q) = %q, want %q", c.native, got.String(), c.want)
		}
	}
}

func TestStandardizeGreedySuffix(t *testing.T) {
	// 4-char stable suffixes win over the 3-char USD suffix.
	got, err := Standardize("XUSDT")
	if err != nil {
		t.Fatalf("Standardize failed: %v", err)
	}
	if got.Base != "X" || got.Quote != "USD" {
		t.Errorf("got base %q quote %q, want X/USD", got.Base, got.Quote)
	}
}

func TestStandardizeRejectsUnknownFormat(t *testing.T) {
	for _, native := range []string{"XYZ", "", "USDT", "1USDT", "USD", "-USD"} {
		_, err := Standardize(native)
		if !errors.Is(err, ErrUnrecognizedSymbol) {
			t.Errorf("Standardize(%q) err = %v, want ErrUnrecognizedSymbol", native, err)
		}
	}
}
