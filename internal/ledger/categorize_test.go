package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/tally/internal/model"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		amount string
		want   model.Label
	}{
		{"1500.0", model.LabelLargeIncome},
		{"-1500.0", model.LabelMajorExpense},
		{"1000.01", model.LabelLargeIncome},
		{"1000", model.LabelMediumIncome},
		{"-1000", model.LabelMediumExpense},
		{"500", model.LabelMediumIncome},
		{"-250", model.LabelMediumExpense},
		{"100", model.LabelMediumIncome},
		{"-100.0", model.LabelMediumExpense},
		{"99.99", model.LabelSmallIncome},
		{"50.0", model.LabelSmallIncome},
		{"-0.01", model.LabelSmallExpense},
		{"0", model.LabelSmallExpense},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(dec(tt.amount)), "Categorize(%s)", tt.amount)
	}
}
