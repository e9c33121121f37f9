// Package notify decides when savings-target, transaction and balance
// notifications are sent during a session and hands them to a Notifier.
package notify

import (
	"context"
	"time"

	"saldo/internal/log"
)

// Kind identifies a notification category. Preferences are keyed by kind.
type Kind string

const (
	KindTransactionAlert Kind = "transaction_alert"
	KindTargetProgress   Kind = "target_progress"
	KindTargetAchieved   Kind = "target_achieved"
	KindTargetReminder   Kind = "target_reminder"
	KindLowBalance       Kind = "low_balance"
)

// Notification is one message handed to a delivery channel.
type Notification struct {
	Kind      Kind
	Title     string
	Body      string
	OwnerID   string
	TargetID  string // empty for transaction and balance notifications
	CreatedAt time.Time
}

// Notifier delivers notifications. Implementations must be safe for
// concurrent use; the reminder is delivered from a timer goroutine.
type Notifier interface {
	Deliver(ctx context.Context, n Notification) error
}

// Preferences switch notification kinds on and off. A disabled kind is not
// delivered, but engine state still advances as if it had been.
type Preferences struct {
	TransactionAlerts bool
	TargetProgress    bool
	TargetAchieved    bool
	LowBalance        bool
}

// DefaultPreferences enables every kind.
func DefaultPreferences() Preferences {
	return Preferences{
		TransactionAlerts: true,
		TargetProgress:    true,
		TargetAchieved:    true,
		LowBalance:        true,
	}
}

// Enabled reports whether notifications of kind k may be delivered.
// Reminders follow the achieved setting.
func (p Preferences) Enabled(k Kind) bool {
	switch k {
	case KindTransactionAlert:
		return p.TransactionAlerts
	case KindTargetProgress:
		return p.TargetProgress
	case KindTargetAchieved, KindTargetReminder:
		return p.TargetAchieved
	case KindLowBalance:
		return p.LowBalance
	default:
		return false
	}
}

// LogNotifier writes notifications to the log. It is the delivery channel
// when no message broker is configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Nop()
	}
	return &LogNotifier{logger: logger.WithComponent(log.ComponentNotify)}
}

func (n *LogNotifier) Deliver(ctx context.Context, msg Notification) error {
	n.logger.InfoContext(ctx, "Notification",
		log.FieldNotifyKind, string(msg.Kind),
		log.FieldOwnerID, msg.OwnerID,
		log.FieldTargetID, msg.TargetID,
		"title", msg.Title,
		"body", msg.Body)
	return nil
}
