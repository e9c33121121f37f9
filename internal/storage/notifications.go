package storage

import (
	"context"
	"fmt"
	"time"
)

// NotificationRecord is a notification that reached its delivery sink.
type NotificationRecord struct {
	ID          int64
	OwnerID     string
	Kind        string
	Title       string
	Body        string
	TargetID    string
	CreatedAt   time.Time
	DeliveredAt time.Time
}

// RecordNotification appends a delivered notification to the log.
func (r *SQLiteRepository) RecordNotification(ctx context.Context, n NotificationRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (owner_id, kind, title, body, target_id, created_at, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.OwnerID, n.Kind, n.Title, n.Body, n.TargetID,
		n.CreatedAt.UTC().Format(timeLayout), n.DeliveredAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("record notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record notification: %w", err)
	}
	return id, nil
}

// ListNotifications returns the owner's most recent notifications, newest
// first.
func (r *SQLiteRepository) ListNotifications(ctx context.Context, ownerID string, limit int) ([]NotificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, title, body, target_id, created_at, delivered_at
		FROM notifications
		WHERE owner_id = ?
		ORDER BY delivered_at DESC, id DESC
		LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []NotificationRecord
	for rows.Next() {
		var (
			n                      NotificationRecord
			createdAt, deliveredAt string
		)
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Kind, &n.Title, &n.Body, &n.TargetID,
			&createdAt, &deliveredAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if n.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if n.DeliveredAt, err = time.Parse(timeLayout, deliveredAt); err != nil {
			return nil, fmt.Errorf("parse delivered_at: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
