// Package ledger derives balance, cumulative expense and cumulative savings
// from a transaction list.
//
// The savings figure is floored at zero after every debit, so it depends on
// the order transactions are folded in. Aggregate always folds in canonical
// order (ascending creation time, ties broken by id); the order the store
// returns rows in has no effect on the result.
package ledger

import (
	"sort"

	"saldo/internal/core"
)

// Snapshot is the derived ledger view for one owner.
type Snapshot struct {
	Balance      core.Money // no floor
	TotalExpense core.Money
	TotalSavings core.Money // never negative
	Count        int
}

// Aggregate folds txs in canonical order. The input slice is not modified.
func Aggregate(txs []core.Transaction) Snapshot {
	var s Snapshot
	for _, tx := range Sort(txs) {
		s = apply(s, tx)
	}
	return s
}

// Fold applies txs in the order given, without sorting. It exists so callers
// and tests can observe the order sensitivity of the savings figure; use
// Aggregate for anything user-facing.
func Fold(txs []core.Transaction) Snapshot {
	var s Snapshot
	for _, tx := range txs {
		s = apply(s, tx)
	}
	return s
}

func apply(s Snapshot, tx core.Transaction) Snapshot {
	amount := tx.Amount.Minor
	switch tx.Kind {
	case core.Credit:
		s.Balance.Minor += amount
		s.TotalSavings.Minor += amount
	case core.Debit:
		s.Balance.Minor -= amount
		s.TotalExpense.Minor += amount
		s.TotalSavings.Minor = max(0, s.TotalSavings.Minor-amount)
	default:
		return s
	}
	s.Count++
	return s
}

// Sort returns a copy of txs in canonical order: ascending CreatedAt, ties
// broken by ID.
func Sort(txs []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
