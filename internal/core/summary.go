package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount is the debit total of one expense category and its share of
// total expense.
type CategoryAmount struct {
	Label   string
	Amount  Money
	Percent decimal.Decimal // one decimal place
	Icon    string
	Color   string
}

// MonthTotals is the income/expense summary for one calendar month.
type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  Money
	Expense Money
}
