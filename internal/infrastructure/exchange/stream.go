package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"xliq/internal/domain"
)

// StreamHandler receives top-of-book updates from a stream.
type StreamHandler func(symbol string, quote domain.Quote, ts int64)

// Stream is a single websocket session against one exchange's public feed.
type Stream interface {
	Name() string
	Connect(ctx context.Context, handler StreamHandler) error
}

// WSHelper provides common websocket plumbing for streams.
type WSHelper struct {
	URL string
}

// DialWS opens the websocket connection.
func (w *WSHelper) DialWS(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.URL, nil)
	return conn, err
}

// ReadWithPing reads messages while keeping the connection alive with
// periodic pings. Returns on read error or context cancellation.
func (w *WSHelper) ReadWithPing(ctx context.Context, conn *websocket.Conn, onMessage func([]byte)) error {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(25 * time.Second)
	defer pingTicker.Stop()

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				errCh <- err
				return
			}
			onMessage(b)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}
}

// ParseJSON unmarshals a stream message.
func ParseJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}

// Runner keeps a stream connected, reconnecting with exponential backoff.
type Runner struct {
	Stream Stream
}

// Run drives the stream until the context is canceled.
func (r *Runner) Run(ctx context.Context, handler StreamHandler) {
	backoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Debug().Str("stream", r.Stream.Name()).Msg("stream connecting")

		err := r.Stream.Connect(ctx, handler)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		if err != nil {
			log.Warn().Str("stream", r.Stream.Name()).Err(err).Msg("stream disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
