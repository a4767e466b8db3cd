package watch

import (
	"testing"

	"xliq/internal/application/port"
	"xliq/internal/domain"
)

func tick(ex, sym string, bid, ask float64) port.QuoteTick {
	return port.QuoteTick{Exchange: ex, Symbol: sym, Quote: domain.Quote{Bid: bid, Ask: ask}}
}

func TestStateApplyTracksDirection(t *testing.T) {
	st := NewState([]string{"BTCUSDT"})

	if !st.Apply(tick("binance", "BTCUSDT", 100, 101)) {
		t.Fatal("first tick should refresh")
	}
	q, dir, ok := st.Latest("BTCUSDT", "binance")
	if !ok || dir != DirSame {
		t.Fatalf("after first tick: quote=%+v dir=%v ok=%v", q, dir, ok)
	}

	if !st.Apply(tick("binance", "BTCUSDT", 102, 103)) {
		t.Fatal("changed tick should refresh")
	}
	_, dir, _ = st.Latest("BTCUSDT", "binance")
	if dir != DirUp {
		t.Errorf("dir = %v, want DirUp", dir)
	}

	st.Apply(tick("binance", "BTCUSDT", 99, 100))
	_, dir, _ = st.Latest("BTCUSDT", "binance")
	if dir != DirDown {
		t.Errorf("dir = %v, want DirDown", dir)
	}
}

func TestStateApplyIgnoresRepeatAndUnknown(t *testing.T) {
	st := NewState([]string{"BTCUSDT"})

	st.Apply(tick("binance", "BTCUSDT", 100, 101))
	if st.Apply(tick("binance", "BTCUSDT", 100, 101)) {
		t.Error("identical quote should not refresh")
	}
	if st.Apply(tick("binance", "DOGEUSDT", 1, 2)) {
		t.Error("untracked symbol should not refresh")
	}
	if st.Apply(port.QuoteTick{Exchange: "binance", Symbol: "BTCUSDT"}) {
		t.Error("empty quote should not refresh")
	}
}

func TestStateExchangesPerSymbol(t *testing.T) {
	st := NewState([]string{"BTCUSDT", "ETHUSDT"})

	st.Apply(tick("binance", "BTCUSDT", 100, 101))
	st.Apply(tick("bybit", "BTCUSDT", 100.5, 101.5))

	if got := len(st.Exchanges("BTCUSDT")); got != 2 {
		t.Errorf("got %d exchanges, want 2", got)
	}
	if got := len(st.Exchanges("ETHUSDT")); got != 0 {
		t.Errorf("got %d exchanges for quiet symbol, want 0", got)
	}
}
