package parquet

import (
	"context"
	"fmt"
	"time"

	"xliq/internal/application/port"
)

// Archiver encodes captured book rows as parquet and ships the blob to a
// store under <prefix>/<date>/<pair>/<unix-ms>.parquet.
type Archiver struct {
	store  port.BlobStore
	prefix string
}

func NewArchiver(store port.BlobStore, prefix string) *Archiver {
	if prefix == "" {
		prefix = "order_books"
	}
	return &Archiver{store: store, prefix: prefix}
}

func (a *Archiver) Archive(ctx context.Context, ts time.Time, pair string, rows []port.BookRow) error {
	blob, err := Encode(rows)
	if err != nil {
		return fmt.Errorf("encode book rows: %w", err)
	}
	key := fmt.Sprintf("%s/%s/%s/%d.parquet", a.prefix, ts.UTC().Format("2006-01-02"), pair, ts.UnixMilli())
	if err := a.store.Put(ctx, key, blob); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

var _ port.Archiver = (*Archiver)(nil)
