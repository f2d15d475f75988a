package model

// Suggested category names. The ledger accepts any category; these only seed
// shell completion of "add --category" and its new-category notice.
const (
	CategoryFood          = "Food"
	CategoryTransport     = "Transport"
	CategoryEntertainment = "Entertainment"
	CategoryUtilities     = "Utilities"
	CategorySalary        = "Salary"
	CategoryInvestment    = "Investment"
)

// Label is the size/direction class assigned to an amount.
type Label string

const (
	LabelLargeIncome   Label = "Large Income"
	LabelMajorExpense  Label = "Major Expense"
	LabelMediumIncome  Label = "Medium Income"
	LabelMediumExpense Label = "Medium Expense"
	LabelSmallIncome   Label = "Small Income"
	LabelSmallExpense  Label = "Small Expense"
)

// Labels returns every label in display order.
func Labels() []Label {
	return []Label{
		LabelLargeIncome, LabelMediumIncome, LabelSmallIncome,
		LabelSmallExpense, LabelMediumExpense, LabelMajorExpense,
	}
}

// DefaultCategories returns the suggested vocabulary.
func DefaultCategories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryEntertainment,
		CategoryUtilities,
		CategorySalary,
		CategoryInvestment,
	}
}

// IsKnownCategory reports whether name is in the suggested vocabulary.
// Advisory only: unknown categories are valid.
func IsKnownCategory(name string) bool {
	for _, c := range DefaultCategories() {
		if c == name {
			return true
		}
	}
	return false
}
