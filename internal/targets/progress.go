// Package targets computes progress of savings targets against the shared
// balance and owns the target lifecycle for one owner.
package targets

import (
	"fmt"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// Result is the progress of one target at a given balance.
type Result struct {
	Percent int // 0..100
	// IsComplete means newly eligible for the completion action: 100% and
	// still ongoing. Already completed targets report false.
	IsComplete bool
}

var hundred = decimal.NewFromInt(100)

// Progress returns round(balance/targetAmount*100) clamped to [0,100].
func Progress(t core.Target, balance core.Money) (Result, error) {
	if t.TargetAmount.Minor <= 0 {
		return Result{}, fmt.Errorf("%w: target %s has non-positive amount %d", core.ErrInvalidTarget, t.ID, t.TargetAmount.Minor)
	}
	if balance.Minor <= 0 {
		return Result{}, nil
	}

	pct := decimal.NewFromInt(balance.Minor).
		Mul(hundred).
		Div(decimal.NewFromInt(t.TargetAmount.Minor)).
		Round(0)

	percent := 100
	if pct.LessThan(hundred) {
		percent = int(pct.IntPart())
	}
	return Result{
		Percent:    percent,
		IsComplete: percent == 100 && t.Status == core.Ongoing,
	}, nil
}
