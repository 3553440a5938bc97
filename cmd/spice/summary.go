package main

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	var (
		opts   listOptions
		month  bool
		recent int
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize income, expenses and savings",
		Example: `  spice summary --month
  spice summary --from 2024-01-01 --to 2024-03-31 --account "Main Account"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := opts.filter()
			if err != nil {
				return err
			}

			return withApp(ctx, func(a *app) error {
				entries, err := a.ledger.Load(ctx)
				if err != nil {
					return fmt.Errorf("failed to load ledger: %w", err)
				}

				title := "All time"
				if month {
					now := time.Now()
					entries = ledger.InMonth(entries, now)
					title = now.Format("January 2006")
				}
				if opts.filtered() {
					entries = ledger.Filter(entries, filter)
					title += " (filtered)"
				}

				if !a.ledger.Remote() {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Local mode: reading "+a.paths.Ledger))
				}

				printSummary(cmd.OutOrStdout(), title, ledger.Summarize(entries, recent))
				return nil
			})
		},
	}

	opts.bindFilterFlags(cmd)
	cmd.Flags().BoolVar(&month, "month", false, "only the current month")
	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent entries to show")

	return cmd
}

func printSummary(w io.Writer, title string, s service.CashFlowSummary) {
	net := cli.FormatAmount(s.NetSavings.Abs(), model.TypeIncome)
	if s.NetSavings.IsNegative() {
		net = cli.FormatAmount(s.NetSavings.Abs(), model.TypeExpense)
	}

	fmt.Fprintln(w, cli.RenderBox(cli.ChartIcon+" "+title, fmt.Sprintf(
		"Income:      %s\nExpenses:    %s\nCredit card: %s\nNet savings: %s",
		cli.FormatAmount(s.TotalIncome, model.TypeIncome),
		cli.FormatAmount(s.TotalExpenses, model.TypeExpense),
		s.CreditCardSpending.StringFixed(2),
		net,
	)))

	if len(s.ExpensesByCategory) > 0 {
		names := slices.Collect(maps.Keys(s.ExpensesByCategory))
		slices.SortFunc(names, func(a, b string) int {
			if c := s.ExpensesByCategory[b].Amount.Cmp(s.ExpensesByCategory[a].Amount); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			cat := s.ExpensesByCategory[name]
			rows = append(rows, []string{name, strconv.Itoa(cat.Count), cat.Amount.StringFixed(2)})
		}
		fmt.Fprintln(w, cli.FormatTitle("Expenses by category"))
		fmt.Fprintln(w, cli.RenderTable([]cli.Column{{Title: "Category"}, {Title: "Entries"}, {Title: "Amount"}}, rows))
	}

	if len(s.Recent) > 0 {
		fmt.Fprintln(w, cli.FormatTitle("Recent entries"))
		fmt.Fprintln(w, renderEntries(s.Recent))
	}
}
