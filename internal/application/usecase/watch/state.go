package watch

import (
	"strings"
	"sync"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

type Dir int

const (
	DirSame Dir = 0
	DirUp   Dir = +1
	DirDown Dir = -1
)

type quoteState struct {
	quote domain.Quote
	mid   float64
	has   bool
	dir   Dir
}

type symState struct {
	exchanges map[string]*quoteState
}

// State holds the latest quote per symbol per exchange, with the direction
// of the last mid move.
type State struct {
	mu sync.Mutex

	order []string
	syms  map[string]*symState
}

func NewState(symbols []string) *State {
	order := make([]string, 0, len(symbols))
	syms := make(map[string]*symState, len(symbols))
	for _, sym := range symbols {
		u := strings.ToUpper(strings.TrimSpace(sym))
		if u == "" {
			continue
		}
		order = append(order, u)
		syms[u] = &symState{
			exchanges: make(map[string]*quoteState),
		}
	}
	return &State{order: order, syms: syms}
}

func (s *State) Symbols() []string {
	return s.order
}

// Apply records a tick and reports whether the display should refresh.
// Ticks for untracked symbols are dropped.
func (s *State) Apply(t port.QuoteTick) bool {
	ex := strings.ToUpper(strings.TrimSpace(t.Exchange))
	sym := strings.ToUpper(strings.TrimSpace(t.Symbol))
	if sym == "" || ex == "" || t.Quote.Empty() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.syms[sym]
	if st == nil {
		return false
	}

	qs := st.exchanges[ex]
	if qs == nil {
		qs = &quoteState{}
		st.exchanges[ex] = qs
	}

	mid := t.Quote.Mid()
	if qs.has && qs.quote == t.Quote {
		return false
	}

	if !qs.has {
		qs.dir = DirSame
	} else {
		switch {
		case mid > qs.mid:
			qs.dir = DirUp
		case mid < qs.mid:
			qs.dir = DirDown
		default:
			qs.dir = DirSame
		}
	}
	qs.quote = t.Quote
	qs.mid = mid
	qs.has = true
	return true
}

// Latest returns the last quote seen for a symbol on an exchange.
func (s *State) Latest(symbol, exchange string) (domain.Quote, Dir, bool) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	ex := strings.ToUpper(strings.TrimSpace(exchange))

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.syms[sym]
	if st == nil {
		return domain.Quote{}, DirSame, false
	}
	qs := st.exchanges[ex]
	if qs == nil || !qs.has {
		return domain.Quote{}, DirSame, false
	}
	return qs.quote, qs.dir, true
}

// Exchanges lists exchanges that have reported a symbol, sorted by name at
// the caller's discretion.
func (s *State) Exchanges(symbol string) []string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.syms[sym]
	if st == nil {
		return nil
	}
	out := make([]string, 0, len(st.exchanges))
	for ex, qs := range st.exchanges {
		if qs.has {
			out = append(out, ex)
		}
	}
	return out
}
