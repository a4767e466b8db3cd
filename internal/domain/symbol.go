package domain

import (
	"fmt"
	"strings"
)

// Symbol is a canonical trading pair: uppercase base asset plus a
// stable-quote-normalized quote currency.
type Symbol struct {
	Base  string
	Quote string
}

// String renders the canonical form, base and quote concatenated with no
// separator. Note the canonical form is not itself a valid input to
// Standardize for every pair ("BTCUSD" is, "1000PEPEUSD" is not), so the
// mapping is one-way by design of the format, not round-trippable.
func (s Symbol) String() string {
	return s.Base + s.Quote
}

// stableQuotes are the quote currencies collapsed to USD in canonical form.
var stableQuotes = map[string]struct{}{
	"USD":  {},
	"USDT": {},
	"USDC": {},
}

// Standardize parses an exchange-native pair spelling into a canonical
// Symbol. It understands dash and slash separated spellings
// ("BTC-USD", "ETH/USDC") and suffix-concatenated ones ("BTCUSDT"),
// and strips a single leading "1" used by some sources to mark
// leverage tokens ("1000PEPEUSDT" -> base "000PEPE" after the strip,
// per the source convention). Quote currencies USD, USDT and USDC all
// collapse to USD.
func Standardize(native string) (Symbol, error) {
	sym := strings.TrimSpace(native)
	sym = strings.TrimPrefix(sym, "1")

	var base, quote string
	switch {
	case strings.Contains(sym, "-"):
		base, quote, _ = strings.Cut(sym, "-")
	case strings.Contains(sym, "/"):
		base, quote, _ = strings.Cut(sym, "/")
	case len(sym) > 4 && (sym[len(sym)-4:] == "USDT" || sym[len(sym)-4:] == "USDC"):
		// Greedy longest match: try the 4-char stable suffixes before USD
		// so "XUSDT" parses as X/USDT, not XU/SDT.
		base, quote = sym[:len(sym)-4], sym[len(sym)-4:]
	case len(sym) > 3 && sym[len(sym)-3:] == "USD":
		base, quote = sym[:len(sym)-3], "USD"
	default:
		return Symbol{}, fmt.Errorf("%w: %q", ErrUnrecognizedSymbol, native)
	}

	if base == "" || quote == "" {
		return Symbol{}, fmt.Errorf("%w: %q", ErrUnrecognizedSymbol, native)
	}

	if _, ok := stableQuotes[quote]; ok {
		quote = "USD"
	}

	return Symbol{
		Base:  strings.ToUpper(base),
		Quote: strings.ToUpper(quote),
	}, nil
}
