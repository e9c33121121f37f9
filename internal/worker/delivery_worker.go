// Package worker hands queued notification messages to their final delivery
// channel.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"

	"saldo/internal/amqp"
	"saldo/internal/clock"
	"saldo/internal/log"
	"saldo/internal/notify"
	"saldo/internal/storage"
)

// Recorder keeps a log of delivered notifications.
type Recorder interface {
	RecordNotification(ctx context.Context, n storage.NotificationRecord) (int64, error)
}

// DeliveryWorker delivers notification messages to a sink and records them.
type DeliveryWorker struct {
	sink     notify.Notifier
	recorder Recorder // optional
	clock    clock.Clock
	logger   *log.Logger

	delivered atomic.Int64
	failed    atomic.Int64
}

func NewDeliveryWorker(sink notify.Notifier, recorder Recorder, clk clock.Clock, logger *log.Logger) *DeliveryWorker {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &DeliveryWorker{
		sink:     sink,
		recorder: recorder,
		clock:    clk,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleMessage delivers one message. A sink failure is returned so the
// message is requeued; a failure to record it is only logged, since the
// user already got the notification.
func (w *DeliveryWorker) HandleMessage(ctx context.Context, msg *amqp.NotificationMessage) error {
	n := msg.Notification()
	if err := w.sink.Deliver(ctx, n); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("deliver %s notification: %w", msg.Kind, err)
	}
	w.delivered.Add(1)

	if w.recorder == nil {
		return nil
	}
	_, err := w.recorder.RecordNotification(ctx, storage.NotificationRecord{
		OwnerID:     n.OwnerID,
		Kind:        string(n.Kind),
		Title:       n.Title,
		Body:        n.Body,
		TargetID:    n.TargetID,
		CreatedAt:   n.CreatedAt,
		DeliveredAt: w.clock.Now(),
	})
	if err != nil {
		w.logger.WarnContext(ctx, "Failed to record delivered notification",
			log.FieldNotifyKind, msg.Kind,
			log.FieldOwnerID, msg.OwnerID,
			log.FieldError, err)
	}
	return nil
}

// Stats returns how many messages were delivered and how many failed.
func (w *DeliveryWorker) Stats() (delivered, failed int64) {
	return w.delivered.Load(), w.failed.Load()
}
