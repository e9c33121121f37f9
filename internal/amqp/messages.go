package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"saldo/internal/notify"
)

// NotificationMessage carries one notification from the engine to the
// delivery worker. It is self-contained; the worker does not read the store.
type NotificationMessage struct {
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	OwnerID   string    `json:"owner_id"`
	TargetID  string    `json:"target_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage wraps n for publishing.
func NewNotificationMessage(n notify.Notification) *NotificationMessage {
	return &NotificationMessage{
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		OwnerID:   n.OwnerID,
		TargetID:  n.TargetID,
		CreatedAt: n.CreatedAt,
		Timestamp: time.Now(),
	}
}

// Notification converts the message back to the engine's type.
func (m *NotificationMessage) Notification() notify.Notification {
	return notify.Notification{
		Kind:      notify.Kind(m.Kind),
		Title:     m.Title,
		Body:      m.Body,
		OwnerID:   m.OwnerID,
		TargetID:  m.TargetID,
		CreatedAt: m.CreatedAt,
	}
}

// Validate rejects messages the worker cannot deliver.
func (m *NotificationMessage) Validate() error {
	if m.Kind == "" {
		return errors.New("missing kind")
	}
	if m.Title == "" {
		return errors.New("missing title")
	}
	if m.OwnerID == "" {
		return errors.New("missing owner id")
	}
	return nil
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes and validates a message body.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
