package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

var (
	largeThreshold  = decimal.NewFromInt(1000)
	mediumThreshold = decimal.NewFromInt(100)
)

// Categorize classifies an amount by size and direction. Zero counts as an
// expense; exactly 100 and exactly 1000 are medium.
func Categorize(amount decimal.Decimal) model.Label {
	abs := amount.Abs()
	income := amount.IsPositive()
	switch {
	case abs.GreaterThan(largeThreshold):
		if income {
			return model.LabelLargeIncome
		}
		return model.LabelMajorExpense
	case abs.GreaterThanOrEqual(mediumThreshold):
		if income {
			return model.LabelMediumIncome
		}
		return model.LabelMediumExpense
	default:
		if income {
			return model.LabelSmallIncome
		}
		return model.LabelSmallExpense
	}
}
