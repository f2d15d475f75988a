package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/fx"
	"github.com/cleared-dev/tally/internal/model"
)

func newConvertCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <amount> <from> <to>",
		Short: "Convert an amount between currencies at the current rate",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return &model.ValidationError{Field: "amount", Value: args[0], Err: err}
			}

			e, err := loadEnv(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer e.finish()

			conv := fx.NewConverter(&fx.HTTPRates{
				Client: &http.Client{Timeout: e.cfg.Rates.Timeout},
				URL:    e.cfg.Rates.URL,
				Path:   e.cfg.Rates.Path,
			})
			from, to := args[1], args[2]
			got, err := conv.Convert(e.ctx, amount, from, to)
			if err != nil {
				e.audit.Record("convert", fmt.Sprintf("%s %s -> %s error=%v", amount, from, to, err))
				return err
			}
			e.audit.Record("convert", fmt.Sprintf("%s %s -> %s %s", amount, from, got, to))

			s, err := fx.Format(got, to)
			if errors.Is(err, model.ErrInvalidCurrency) {
				// Known to the rate service but not to the formatter.
				s = got.StringFixed(2) + " " + to
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}
