// Package notify turns metadata change-feed events into client notifications.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"fileintake/internal/logx"
	"fileintake/internal/metrics"
	"fileintake/internal/model"
)

const notificationSubject = "File Upload Notification"

var tracer = otel.Tracer("fileintake/notify")

// Notifier handles one delivered change-feed batch per invocation. Only
// insert events produce a notification; every insert in the batch is
// processed independently, and one event's failure never suppresses the
// rest. The joined error marks the whole invocation failed so redelivery
// kicks in; duplicate notifications on redelivery are accepted.
type Notifier struct {
	mailer    Mailer
	recipient string
	mx        *metrics.Pipeline
}

// NewNotifier constructs a notifier for a single configured recipient.
func NewNotifier(mailer Mailer, recipient string, mx *metrics.Pipeline) *Notifier {
	return &Notifier{
		mailer:    mailer,
		recipient: recipient,
		mx:        mx,
	}
}

// HandleBatch processes every event of one delivered batch.
func (n *Notifier) HandleBatch(ctx context.Context, events []model.ChangeEvent) error {
	ctx, span := tracer.Start(ctx, "notify.HandleBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("feed.batch_size", len(events)))

	var errs []error
	for i, ev := range events {
		if ev.Kind != model.ChangeInsert {
			continue
		}
		if ev.NewImage == nil {
			// Malformed insert without an image; nothing to notify about.
			logx.Warn("notify", "insert_without_image", map[string]any{"index": i})
			continue
		}
		if err := n.notify(ctx, ev.NewImage); err != nil {
			n.mx.NotificationFailures.Inc()
			errs = append(errs, fmt.Errorf("event %d: %w", i, err))
			continue
		}
		n.mx.NotificationsSent.Inc()
	}
	return errors.Join(errs...)
}

func (n *Notifier) notify(ctx context.Context, rec *model.FileMetadata) error {
	body := fmt.Sprintf(
		"A new file has been processed:\n"+
			"- File Extension: %s\n"+
			"- File Size: %d bytes\n"+
			"- Upload Date: %s\n",
		rec.FileExtension,
		rec.FileSize,
		rec.UploadDate.UTC().Format(time.RFC3339),
	)

	if err := n.mailer.Send(ctx, n.recipient, notificationSubject, body); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	logx.Info("notify", "notification_sent", map[string]any{
		"recipient": n.recipient,
		"extension": rec.FileExtension,
		"size":      rec.FileSize,
	})
	return nil
}
