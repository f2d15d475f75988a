// Package report aggregates ledger transactions into income/expense totals.
package report

import (
	"iter"
	"sort"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// Source is anything that can be walked once in order, such as *ledger.Ledger.
type Source interface {
	Seq() iter.Seq[model.Transaction]
}

// Build partitions transactions by sign: positive amounts go to income as-is,
// everything else to expenses as absolute values.
func Build(src Source) model.Report {
	r := model.Report{Income: model.NewSide(), Expenses: model.NewSide()}
	for t := range src.Seq() {
		add(&r, t)
	}
	return r
}

func add(r *model.Report, t model.Transaction) {
	if t.IsIncome() {
		r.Income.Add(t.Category, t.Amount)
		return
	}
	r.Expenses.Add(t.Category, t.Amount.Abs())
}

// ByLabel counts transactions per size label.
func ByLabel(src Source) map[model.Label]int {
	counts := make(map[model.Label]int)
	for t := range src.Seq() {
		counts[ledger.Categorize(t.Amount)]++
	}
	return counts
}

// Period is the report of one calendar month.
type Period struct {
	Month  string       `json:"month"` // "2025-01", or "" for dates shorter than a month prefix
	Report model.Report `json:"report"`
}

// Monthly builds one report per YYYY-MM date prefix, oldest first.
func Monthly(src Source) []Period {
	byMonth := make(map[string]*model.Report)
	for t := range src.Seq() {
		m := month(t.Date)
		r, ok := byMonth[m]
		if !ok {
			r = &model.Report{Income: model.NewSide(), Expenses: model.NewSide()}
			byMonth[m] = r
		}
		add(r, t)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]Period, len(months))
	for i, m := range months {
		out[i] = Period{Month: m, Report: *byMonth[m]}
	}
	return out
}

func month(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}
