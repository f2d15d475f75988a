package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction is one monetary movement.
type Transaction struct {
	Amount      decimal.Decimal // negative = expense, positive = income
	Category    string
	Description string
	Date        string // ISO-8601, stored as given
}

// IsIncome reports whether the transaction moves money in.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// Equal compares field by field, amounts by value ("1.50" equals "1.5").
func (t Transaction) Equal(o Transaction) bool {
	return t.Amount.Equal(o.Amount) &&
		t.Category == o.Category &&
		t.Description == o.Description &&
		t.Date == o.Date
}

// String renders "2025-01-03 - Food: $-50.00 (groceries)".
func (t Transaction) String() string {
	return fmt.Sprintf("%s - %s: $%s (%s)", t.Date, t.Category, t.Amount.StringFixed(2), t.Description)
}
