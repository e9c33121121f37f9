package services

import (
	"context"
	"fmt"
	"strings"

	"saldo/internal/clock"
	"saldo/internal/core"
	"saldo/internal/log"
	"saldo/internal/remote"
)

// Refresher reloads the owner's state after a write.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// TransactionNotifier is told about every recorded transaction.
type TransactionNotifier interface {
	TransactionRecorded(ctx context.Context, tx core.Transaction)
}

// NewTransaction is a transaction as entered by the user.
type NewTransaction struct {
	Kind       core.Kind
	Amount     core.Money
	CategoryID int
	Detail     string // required for the "other" category, ignored otherwise
}

// TransactionService records transactions and keeps state and notifications
// in step with the store.
type TransactionService struct {
	store    remote.TransactionStore
	state    Refresher
	notifier TransactionNotifier
	clock    clock.Clock
	ownerID  string
	logger   *log.Logger
}

func NewTransactionService(store remote.TransactionStore, st Refresher, notifier TransactionNotifier,
	clk clock.Clock, ownerID string, logger *log.Logger) *TransactionService {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &TransactionService{
		store:    store,
		state:    st,
		notifier: notifier,
		clock:    clk,
		ownerID:  ownerID,
		logger:   logger.WithComponent(log.ComponentLedger),
	}
}

// CreateTransaction validates and saves a transaction, sends the
// transaction alert and refreshes state. A failed refresh is logged, not
// returned: the transaction is already saved.
func (s *TransactionService) CreateTransaction(ctx context.Context, nt NewTransaction) (core.Transaction, error) {
	if !nt.Kind.IsValid() {
		return core.Transaction{}, fmt.Errorf("%w: %w %q", core.ErrValidation, core.ErrInvalidKind, nt.Kind)
	}
	c, ok := core.LookupCategory(nt.Kind, nt.CategoryID)
	if !ok {
		return core.Transaction{}, fmt.Errorf("%w: unknown %s category %d", core.ErrValidation, nt.Kind, nt.CategoryID)
	}
	detail := strings.TrimSpace(nt.Detail)
	if !c.Other {
		detail = ""
	} else if detail == "" {
		return core.Transaction{}, fmt.Errorf("%w: category %q needs a description", core.ErrValidation, c.Label)
	}

	tx := core.Transaction{
		OwnerID:        s.ownerID,
		Kind:           nt.Kind,
		Amount:         nt.Amount,
		CategoryID:     c.ID,
		CategoryLabel:  c.Label,
		CategoryDetail: detail,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: save transaction: %w", core.ErrUpstream, err)
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.FieldTransaction, created.ID,
		log.FieldKind, string(created.Kind),
		log.FieldAmount, created.Amount.Minor)

	if s.notifier != nil {
		s.notifier.TransactionRecorded(ctx, created)
	}
	if err := s.state.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "Refresh after transaction failed", log.FieldError, err)
	}
	return created, nil
}
