package watch

import (
	"fmt"
	"sort"
	"strings"

	"xliq/internal/domain"
)

const (
	ansiReset    = "\033[0m"
	ansiRed      = "\033[31m"
	ansiGreen    = "\033[32m"
	ansiYellow   = "\033[33m"
	ansiDim      = "\033[2m"
	ansiClearEOL = "\033[K"
)

func colorize(s, c string) string { return c + s + ansiReset }

type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

type RenderMode int

const (
	RenderLive RenderMode = iota
	RenderSnapshot
)

// Render draws one line with the latest bid/ask per symbol per exchange.
func (f *Formatter) Render(st *State, mode RenderMode) string {
	var sb strings.Builder
	if mode == RenderLive {
		sb.WriteString("\r")
	}

	sb.WriteString(colorize("[XLIQ] ", ansiDim))

	for i, sym := range st.Symbols() {
		if i > 0 {
			sb.WriteString(colorize("  ||  ", ansiDim))
		}
		sb.WriteString(sym)

		exchanges := st.Exchanges(sym)
		sort.Strings(exchanges)
		if len(exchanges) == 0 {
			sb.WriteString(" --")
			continue
		}
		for _, ex := range exchanges {
			q, dir, ok := st.Latest(sym, ex)
			if !ok {
				continue
			}
			col := ansiYellow
			switch dir {
			case DirUp:
				col = ansiGreen
			case DirDown:
				col = ansiRed
			}
			sb.WriteString(" ")
			sb.WriteString(colorize(fmt.Sprintf("%s:%s/%s", ex[:1], trimPrice(q.Bid), trimPrice(q.Ask)), col))
		}
	}

	if mode == RenderLive {
		sb.WriteString(ansiClearEOL)
	}
	return sb.String()
}

// RenderBest draws one snapshot entry for an aggregated best quote.
func (f *Formatter) RenderBest(symbol string, best domain.Quote) string {
	return fmt.Sprintf("%s best bid=%s ask=%s spread=%s",
		symbol, trimPrice(best.Bid), trimPrice(best.Ask), trimPrice(best.Ask-best.Bid))
}

func trimPrice(v float64) string {
	s := fmt.Sprintf("%.4f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
