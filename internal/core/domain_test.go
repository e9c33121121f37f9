package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Minor: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Minor: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Minor: -5}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	good := Transaction{OwnerID: "u1", Kind: Credit, Amount: Money{Minor: 100}, CategoryID: 1, CreatedAt: now}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{OwnerID: "", Kind: Credit, Amount: Money{Minor: 1}},
		{OwnerID: "u1", Kind: "transfer", Amount: Money{Minor: 1}},
		{OwnerID: "u1", Kind: Debit, Amount: Money{Minor: 0}},
		{OwnerID: "u1", Kind: Debit, Amount: Money{Minor: 1}, CategoryDetail: strings.Repeat("x", 201)},
	}
	for i, tx := range bads {
		err := tx.Validate()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestTargetValidate(t *testing.T) {
	good := Target{OwnerID: "u1", Name: "Rumah", TargetAmount: Money{Minor: 1_000_000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		target Target
		cause  error
	}{
		{Target{OwnerID: "u1", Name: "  ", TargetAmount: Money{Minor: 1}}, ErrEmptyName},
		{Target{OwnerID: "u1", Name: "x", TargetAmount: Money{Minor: 0}}, ErrInvalidAmount},
		{Target{OwnerID: "", Name: "x", TargetAmount: Money{Minor: 1}}, ErrEmptyOwner},
	}
	for i, tc := range cases {
		err := tc.target.Validate()
		if !errors.Is(err, ErrValidation) || !errors.Is(err, tc.cause) {
			t.Fatalf("case %d expected %v, got %v", i, tc.cause, err)
		}
	}
}

func TestKindAndStatus(t *testing.T) {
	if !Credit.IsValid() || !Debit.IsValid() || Kind("add").IsValid() {
		t.Fatalf("unexpected kind validity")
	}
	if !Ongoing.IsValid() || !Completed.IsValid() || Status("paused").IsValid() {
		t.Fatalf("unexpected status validity")
	}
}
