package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

const (
	Ongoing   Status = "ongoing"
	Completed Status = "completed"
)

type (
	Kind   string
	Status string

	Money struct {
		Minor int64 // smallest currency unit
	}

	Transaction struct {
		ID             string
		OwnerID        string
		Kind           Kind
		Amount         Money
		CategoryID     int
		CategoryLabel  string
		CategoryDetail string // free text, used with the "other" category
		CreatedAt      time.Time
	}

	Target struct {
		ID           string
		OwnerID      string
		Name         string
		Icon         string
		Color        string
		TargetAmount Money
		Status       Status
		CreatedAt    time.Time
		CompletedAt  time.Time
	}
)

const maxNameLength = 100

// IsValid reports whether k is one of the two transaction kinds.
func (k Kind) IsValid() bool {
	return k == Credit || k == Debit
}

// IsValid reports whether s is a known target status.
func (s Status) IsValid() bool {
	return s == Ongoing || s == Completed
}

func (m Money) Validate() error {
	if m.Minor <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns m+o.
func (m Money) Add(o Money) Money {
	return Money{Minor: m.Minor + o.Minor}
}

// Sub returns m-o. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Minor: m.Minor - o.Minor}
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyOwner)
	}
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: %w %q", ErrValidation, ErrInvalidKind, t.Kind)
	}
	if err := t.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if len(t.CategoryDetail) > 200 {
		return fmt.Errorf("%w: category detail too long (max 200 characters)", ErrValidation)
	}
	return nil
}

// Validate checks the fields a caller supplies when creating a target.
func (t Target) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyOwner)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyName)
	}
	if len(t.Name) > maxNameLength {
		return fmt.Errorf("%w: name too long (max %d characters)", ErrValidation, maxNameLength)
	}
	if err := t.TargetAmount.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// IsOngoing reports whether the target can still be completed.
func (t Target) IsOngoing() bool {
	return t.Status == Ongoing
}
