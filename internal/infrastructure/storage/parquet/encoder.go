package parquet

import (
	"bytes"
	"fmt"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"xliq/internal/application/port"
)

// bookRecord is the columnar row shape for archived order book levels.
type bookRecord struct {
	Ts       int64   `parquet:"name=ts, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Exchange string  `parquet:"name=exchange, type=BYTE_ARRAY, convertedtype=UTF8"`
	Pair     string  `parquet:"name=pair, type=BYTE_ARRAY, convertedtype=UTF8"`
	Side     string  `parquet:"name=side, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price    float64 `parquet:"name=price, type=DOUBLE"`
	Quantity float64 `parquet:"name=quantity, type=DOUBLE"`
}

type memFile struct {
	buffer *bytes.Buffer
}

func newMemFile() *memFile {
	return &memFile{buffer: &bytes.Buffer{}}
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }
func (m *memFile) Open(string) (source.ParquetFile, error)   { return m, nil }
func (m *memFile) Seek(int64, int) (int64, error)            { return int64(m.buffer.Len()), nil }
func (m *memFile) Read([]byte) (int, error)                  { return 0, fmt.Errorf("read not supported") }
func (m *memFile) Write(b []byte) (int, error)               { return m.buffer.Write(b) }
func (m *memFile) Close() error                              { return nil }

// Encode serializes book rows into a snappy-compressed parquet blob.
func Encode(rows []port.BookRow) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to encode")
	}

	mem := newMemFile()
	pw, err := writer.NewParquetWriter(mem, new(bookRecord), 1)
	if err != nil {
		return nil, fmt.Errorf("new parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		rec := bookRecord{
			Ts:       row.Ts.UnixMilli(),
			Exchange: row.Exchange,
			Pair:     row.Pair,
			Side:     row.Side,
			Price:    row.Price,
			Quantity: row.Quantity,
		}
		if err := pw.Write(rec); err != nil {
			return nil, fmt.Errorf("parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("parquet write stop: %w", err)
	}
	return mem.buffer.Bytes(), nil
}
