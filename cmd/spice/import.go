package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/importer"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import bank statements into the ledger",
		Long: `Import one or more bank statements into the ledger.

Supported formats are Excel (.xlsx, .xlsm), CSV and OFX/QFX. Columns are
detected from the header row; entries are categorized by the keyword rules
and entries already in the ledger (same date, amount and description) are
skipped, so importing the same statement twice adds nothing.

Each file is saved as soon as it is imported; a failing file does not stop
the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	handler := cli.NewInterruptHandler(cmd.OutOrStdout(), "Files imported so far are saved.")
	ctx := handler.HandleInterrupts(cmd.Context())
	defer handler.Stop()

	return withApp(ctx, func(a *app) error {
		var (
			total importer.Result
			errs  []error
		)

		bar := cli.NewProgressBar(os.Stderr, len(args), "Importing statements")
		for _, path := range args {
			if ctx.Err() != nil {
				break
			}

			result, err := a.importer.ImportFile(ctx, path)
			_ = bar.Add(1)
			if err != nil {
				slog.Error("Import failed", "file", path, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
				continue
			}

			total.Added += result.Added
			total.Parsed += result.Parsed
			total.Duplicates += result.Duplicates
			total.Dropped += result.Dropped
		}
		_ = bar.Finish()

		if handler.WasInterrupted() {
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, cli.RenderBox("Import complete", fmt.Sprintf(
			"Parsed: %d\nAdded: %d\nAlready in ledger: %d\nRows without a valid date: %d",
			total.Parsed, total.Added, total.Duplicates, total.Dropped)))
		if total.Added == 0 && len(errs) == 0 {
			fmt.Fprintln(out, cli.FormatInfo("No new transactions found"))
		}

		return errors.Join(errs...)
	})
}
