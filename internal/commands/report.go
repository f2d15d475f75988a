package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	var asJSON, monthly bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize income and expenses by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			out := cmd.OutOrStdout()
			switch {
			case monthly && asJSON:
				return writeJSON(out, report.Monthly(b.ledger))
			case monthly:
				for _, p := range report.Monthly(b.ledger) {
					month := p.Month
					if month == "" {
						month = "(undated)"
					}
					fmt.Fprintf(out, "== %s ==\n", month)
					writeReport(out, p.Report)
				}
				return nil
			case asJSON:
				return writeJSON(out, report.Build(b.ledger))
			default:
				writeReport(out, report.Build(b.ledger))
				counts := report.ByLabel(b.ledger)
				fmt.Fprintln(out, "Classes:")
				for _, l := range model.Labels() {
					if counts[l] > 0 {
						fmt.Fprintf(out, "  %-16s %d\n", l, counts[l])
					}
				}
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	cmd.Flags().BoolVar(&monthly, "monthly", false, "one report per calendar month")

	return cmd
}

func writeReport(w io.Writer, r model.Report) {
	writeSide(w, "Income", r.Income)
	writeSide(w, "Expenses", r.Expenses)
	fmt.Fprintf(w, "Net: %s\n", r.Net().StringFixed(2))
}

func writeSide(w io.Writer, title string, s model.Side) {
	fmt.Fprintf(w, "%s: %s\n", title, s.Total.StringFixed(2))
	for _, c := range slices.Sorted(maps.Keys(s.Categories)) {
		fmt.Fprintf(w, "  %-16s %s\n", c, s.Categories[c].StringFixed(2))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCategorizeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categorize <amount>",
		Short: "Print the size class of an amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := decimal.NewFromString(args[0])
			if err != nil {
				return &model.ValidationError{Field: "amount", Value: args[0], Err: err}
			}
			label := ledger.Categorize(a)

			e, err := loadEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.finish()
			e.audit.Record("categorize", fmt.Sprintf("amount=%s label=%s", a, label))

			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}
}
