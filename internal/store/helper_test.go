package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleTransactions() []model.Transaction {
	return []model.Transaction{
		{Amount: dec("1500.0"), Category: "Salary", Description: "January pay", Date: "2025-01-01"},
		{Amount: dec("-50.0"), Category: "Food", Description: "groceries", Date: "2025-01-02"},
		{Amount: dec("-200.0"), Category: "Transport", Description: "", Date: "2025-01-03"},
		{Amount: dec("300.0"), Category: "Investment", Description: "dividend", Date: "2025-01-04"},
		{Amount: dec("-75.0"), Category: "Entertainment", Description: `cinema, "two" tickets`, Date: "2025-01-05"},
		{Amount: dec("-0.1"), Category: "Fees", Description: "bank fee", Date: "2025-01-31"},
	}
}

func requireSameTransactions(t *testing.T, want, got []model.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "row %d: want %v, got %v", i, want[i], got[i])
	}
}
