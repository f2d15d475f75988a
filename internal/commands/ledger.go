package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/fx"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func newAddCommand(opts *globalOptions) *cobra.Command {
	var amount, category, description, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction (negative amounts are expenses)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := newTransaction(amount, category, description, date)
			if err != nil {
				return err
			}

			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			if !model.IsKnownCategory(t.Category) {
				b.log.Info().Str("category", t.Category).Msg("new category")
			}
			b.ledger.Add(t)
			if err := b.persist(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d: %s\n", b.ledger.Len()-1, t)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "signed amount, e.g. -50.25 (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&category, "category", "", "category, e.g. Food (required)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.RegisterFlagCompletionFunc("category", completeCategory)
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (default today, YYYY-MM-DD)")

	return cmd
}

func completeCategory(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, c := range model.DefaultCategories() {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(toComplete)) {
			out = append(out, c)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func newTransaction(amount, category, description, date string) (model.Transaction, error) {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, &model.ValidationError{Field: "amount", Value: amount, Err: err}
	}
	if category == "" {
		return model.Transaction{}, &model.ValidationError{Field: "category", Value: category, Err: fmt.Errorf("must not be empty")}
	}
	if date == "" {
		date = time.Now().Format(time.DateOnly)
	}
	return model.Transaction{Amount: a, Category: category, Description: description, Date: date}, nil
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions with their indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			seq := b.ledger.Seq()
			if category != "" {
				seq = b.ledger.ByCategory(category)
			}

			out := cmd.OutOrStdout()
			n := 0
			for i, t := range b.ledger.Positions(seq) {
				fmt.Fprintf(out, "%3d  %s\n", i, t)
				n++
			}
			if n == 0 {
				fmt.Fprintln(out, "No transactions.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show this category")

	return cmd
}

func newShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <index>",
		Short: "Show one transaction and its size class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := ledger.ParseIndex(args[0])
			if err != nil {
				return err
			}

			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			t, ok := b.ledger.At(i)
			if !ok {
				return fmt.Errorf("transaction %d: %w", i, model.ErrNotFound)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t)
			fmt.Fprintf(out, "Class: %s\n", ledger.Categorize(t.Amount))
			return nil
		},
	}
}

func newRemoveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <index>",
		Short: "Delete a transaction (json and csv storage only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := ledger.ParseIndex(args[0])
			if err != nil {
				return err
			}

			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			if err := b.requireRewritable("remove"); err != nil {
				return err
			}
			t, err := b.ledger.Remove(i)
			if err != nil {
				return err
			}
			if err := b.persist(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed #%d: %s\n", i, t)
			return nil
		},
	}
}

func newBalanceCommand(opts *globalOptions) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print income minus expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			s, err := fx.Format(b.ledger.Balance(), currency)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Balance: %s\n", s)
			return nil
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "currency used to format the balance")

	return cmd
}
