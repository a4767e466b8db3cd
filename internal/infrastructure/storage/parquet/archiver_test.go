package parquet

import (
	"context"
	"strings"
	"testing"
	"time"

	"xliq/internal/application/port"
)

type fakeBlobStore struct {
	key  string
	body []byte
}

func (f *fakeBlobStore) Put(_ context.Context, key string, body []byte) error {
	f.key = key
	f.body = body
	return nil
}

func sampleRows(ts time.Time) []port.BookRow {
	return []port.BookRow{
		{Ts: ts, Exchange: "binance", Pair: "BTCUSD", Side: "bid", Price: 45000, Quantity: 1},
		{Ts: ts, Exchange: "binance", Pair: "BTCUSD", Side: "ask", Price: 45010, Quantity: 2},
	}
}

func TestEncodeProducesParquet(t *testing.T) {
	blob, err := Encode(sampleRows(time.UnixMilli(1700000000000)))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(blob) == 0 {
		t.Fatal("empty blob")
	}
	// Parquet files start and end with the PAR1 magic.
	if !strings.HasPrefix(string(blob), "PAR1") {
		t.Error("blob missing parquet magic header")
	}
	if !strings.HasSuffix(string(blob), "PAR1") {
		t.Error("blob missing parquet magic footer")
	}
}

func TestEncodeRejectsEmpty(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Fatal("expected error for empty rows")
	}
}

func TestArchiverKeyLayout(t *testing.T) {
	store := &fakeBlobStore{}
	a := NewArchiver(store, "order_books")
	ts := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	if err := a.Archive(context.Background(), ts, "BTCUSD", sampleRows(ts)); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	wantPrefix := "order_books/2024-03-15/BTCUSD/"
	if !strings.HasPrefix(store.key, wantPrefix) {
		t.Errorf("key = %q, want prefix %q", store.key, wantPrefix)
	}
	if !strings.HasSuffix(store.key, ".parquet") {
		t.Errorf("key = %q, want .parquet suffix", store.key)
	}
	if len(store.body) == 0 {
		t.Error("archived blob is empty")
	}
}
