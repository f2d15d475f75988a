package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/store"
)

func newExportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <format> <target>",
		Short: "Copy the ledger into another storage format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := store.ParseFormat(args[0])
			if err != nil {
				return err
			}
			target, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			if self, _ := filepath.Abs(b.path); target == self {
				return fmt.Errorf("export target is the ledger itself: %w", model.ErrInvalidArgument)
			}

			dst, err := store.Open(b.ctx, f, target)
			if err != nil {
				return err
			}
			defer dst.Close()

			if err := b.ledger.Save(b.ctx, dst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s (%s)\n", b.ledger.Len(), target, f)
			return nil
		},
	}
}

func newImportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <bank> [file]",
		Short: "Import a bank CSV export, or every CSV in import/ when no file is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := importer.DefaultRegistry().Lookup(args[0])
			if err != nil {
				return err
			}

			b, err := openBook(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer b.close()

			var files []importer.FileInfo
			scanned := len(args) == 1
			if scanned {
				files, err = importer.Scan(b.cfg.Root)
				if err != nil {
					return err
				}
			} else {
				files = []importer.FileInfo{{Name: filepath.Base(args[1]), Path: args[1]}}
			}

			out := cmd.OutOrStdout()
			total := 0
			for _, f := range files {
				txns, err := importer.ParseFile(parser, f.Path)
				if err != nil {
					return err
				}
				for _, t := range txns {
					b.ledger.Add(t)
				}
				total += len(txns)
				b.audit.Record("import", fmt.Sprintf("file=%s bank=%s rows=%d", f.Name, parser.Format(), len(txns)))
				fmt.Fprintf(out, "%s: %d transactions\n", f.Name, len(txns))
			}

			if err := b.persist(); err != nil {
				return err
			}

			if scanned {
				for _, f := range files {
					if err := importer.MarkProcessed(b.cfg.Root, f.Name); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(out, "Imported %d transactions from %d files\n", total, len(files))
			return nil
		},
	}
}
