package model

import "github.com/shopspring/decimal"

// Side aggregates one direction of money flow.
type Side struct {
	Total      decimal.Decimal            `json:"total"`
	Categories map[string]decimal.Decimal `json:"categories"`
}

// Report is the income/expense aggregation of a ledger.
type Report struct {
	Income   Side `json:"income"`
	Expenses Side `json:"expenses"`
}

// NewSide returns an empty side with a non-nil category map.
func NewSide() Side {
	return Side{Total: decimal.Zero, Categories: make(map[string]decimal.Decimal)}
}

// Add accumulates a non-negative value under category.
func (s *Side) Add(category string, v decimal.Decimal) {
	s.Total = s.Total.Add(v)
	s.Categories[category] = s.Categories[category].Add(v)
}

// Net is income minus expenses.
func (r Report) Net() decimal.Decimal {
	return r.Income.Total.Sub(r.Expenses.Total)
}
