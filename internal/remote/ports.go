// Package remote declares the data-store operations the engine depends on.
// Implementations own persistence; list order is never guaranteed.
package remote

import (
	"context"
	"errors"
	"time"

	"saldo/internal/core"
)

// ErrNotFound is returned by stores for unknown record ids.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters.
type (
	TransactionStore interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	}

	TargetStore interface {
		ListTargets(ctx context.Context, ownerID string) ([]core.Target, error)
		CreateTarget(ctx context.Context, t core.Target) (core.Target, error)
		UpdateTarget(ctx context.Context, id string, patch TargetPatch) (core.Target, error)
		DeleteTarget(ctx context.Context, id string) error
	}

	// Reader is the read side used by the application state refresh.
	Reader interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		ListTargets(ctx context.Context, ownerID string) ([]core.Target, error)
	}

	Store interface {
		TransactionStore
		TargetStore
	}
)

// TargetPatch lists the fields to change; nil fields are left alone.
type TargetPatch struct {
	Name        *string
	Icon        *string
	Color       *string
	Status      *core.Status
	CompletedAt *time.Time
}

// Apply returns t with the patch applied.
func (p TargetPatch) Apply(t core.Target) core.Target {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Icon != nil {
		t.Icon = *p.Icon
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CompletedAt != nil {
		t.CompletedAt = *p.CompletedAt
	}
	return t
}
