// Package changefeed consumes the metadata store's change feed over
// PostgreSQL LISTEN/NOTIFY.
package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fileintake/internal/logx"
	"fileintake/internal/model"
)

// Channel is the NOTIFY channel the file_metadata trigger publishes on.
const Channel = "file_metadata_feed"

// drainWindow bounds how long the listener collects already-queued
// notifications into the current batch before dispatching.
const drainWindow = 50 * time.Millisecond

// Handler receives one delivered batch. Error handling (retry, failure
// destination) happens inside the handler; the listener just dispatches.
type Handler func(ctx context.Context, events []model.ChangeEvent)

// Listener owns a dedicated pgx connection and turns NOTIFY payloads into
// ChangeEvent batches. Notifications that arrive while a batch is being
// assembled are delivered together, so a handler must process every event
// in the slice, not just the first.
type Listener struct {
	conn    *pgx.Conn
	channel string
	handler Handler
}

// NewListener constructs a listener on the given channel.
func NewListener(conn *pgx.Conn, channel string, handler Handler) *Listener {
	return &Listener{
		conn:    conn,
		channel: channel,
		handler: handler,
	}
}

// Run blocks consuming the feed until ctx is canceled or the connection
// fails. Undecodable payloads are logged and skipped.
func (l *Listener) Run(ctx context.Context) error {
	if _, err := l.conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}

	for {
		notification, err := l.conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		batch := l.appendEvent(nil, notification.Payload)
		batch = l.drain(ctx, batch)

		if len(batch) > 0 {
			l.handler(ctx, batch)
		}
	}
}

// drain collects notifications that are already queued on the connection,
// bounded by drainWindow, so bursts are handled as one batch.
func (l *Listener) drain(ctx context.Context, batch []model.ChangeEvent) []model.ChangeEvent {
	drainCtx, cancel := context.WithTimeout(ctx, drainWindow)
	defer cancel()

	for {
		notification, err := l.conn.WaitForNotification(drainCtx)
		if err != nil {
			// Deadline exceeded means the queue is empty; anything else is
			// surfaced by the next blocking wait in Run.
			if !errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				logx.Warn("changefeed", "drain_interrupted", map[string]any{"error": err.Error()})
			}
			return batch
		}
		batch = l.appendEvent(batch, notification.Payload)
	}
}

func (l *Listener) appendEvent(batch []model.ChangeEvent, payload string) []model.ChangeEvent {
	ev, err := DecodeEvent(payload)
	if err != nil {
		logx.Error("changefeed", "payload_decode_failed", err, map[string]any{"payload": payload})
		return batch
	}
	return append(batch, ev)
}

// DecodeEvent parses one NOTIFY payload into a ChangeEvent.
func DecodeEvent(payload string) (model.ChangeEvent, error) {
	var ev model.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return model.ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	if ev.Kind == "" {
		return model.ChangeEvent{}, fmt.Errorf("change event missing kind")
	}
	return ev, nil
}
