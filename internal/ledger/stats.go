package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

// MonthlyTotals returns income and expense per calendar month for the last
// months months ending with the month of now, oldest first. Transactions
// outside the window are ignored.
func MonthlyTotals(txs []core.Transaction, now time.Time, months int) []core.MonthTotals {
	if months <= 0 {
		return nil
	}
	loc := now.Location()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -(months - 1), 0)

	out := make([]core.MonthTotals, months)
	index := make(map[int]int, months)
	for i := range out {
		m := first.AddDate(0, i, 0)
		out[i] = core.MonthTotals{Year: m.Year(), Month: m.Month()}
		index[monthKey(m.Year(), m.Month())] = i
	}

	for _, tx := range txs {
		at := tx.CreatedAt.In(loc)
		i, ok := index[monthKey(at.Year(), at.Month())]
		if !ok {
			continue
		}
		switch tx.Kind {
		case core.Credit:
			out[i].Income = out[i].Income.Add(tx.Amount)
		case core.Debit:
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}
	return out
}

func monthKey(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

// ExpenseDistribution groups debit totals by category label. Shares are
// percentages of total expense with one decimal place. Entries are sorted by
// amount, largest first, then by label.
func ExpenseDistribution(txs []core.Transaction) []core.CategoryAmount {
	byLabel := make(map[string]int64)
	var total int64
	for _, tx := range txs {
		if tx.Kind != core.Debit {
			continue
		}
		label := tx.CategoryLabel
		if label == "" {
			c, _ := core.LookupCategory(core.Debit, tx.CategoryID)
			label = c.Label
		}
		byLabel[label] += tx.Amount.Minor
		total += tx.Amount.Minor
	}
	if total == 0 {
		return nil
	}

	out := make([]core.CategoryAmount, 0, len(byLabel))
	hundred := decimal.NewFromInt(100)
	for label, amount := range byLabel {
		c := core.LookupExpenseLabel(label)
		out = append(out, core.CategoryAmount{
			Label:   label,
			Amount:  core.Money{Minor: amount},
			Percent: decimal.NewFromInt(amount).Mul(hundred).Div(decimal.NewFromInt(total)).Round(1),
			Icon:    c.Icon,
			Color:   c.Color,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Minor != out[j].Amount.Minor {
			return out[i].Amount.Minor > out[j].Amount.Minor
		}
		return out[i].Label < out[j].Label
	})
	return out
}
