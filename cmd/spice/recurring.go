package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/spf13/cobra"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Track monthly recurring payments",
		Long: `Recurring payments are monthly templates such as rent or a
subscription. A payment is pending until the ledger holds an entry this
month whose description equals the payment name.`,
	}

	cmd.AddCommand(listRecurringCmd())
	cmd.AddCommand(addRecurringCmd())
	cmd.AddCommand(removeRecurringCmd())
	cmd.AddCommand(pendingRecurringCmd())
	cmd.AddCommand(payRecurringCmd())

	return cmd
}

func listRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recurring payments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				profiles, err := a.recurring.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to load recurring payments: %w", err)
				}
				if len(profiles) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No recurring payments. Use 'spice recurring add' to create one."))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderProfiles(profiles, true))
				return nil
			})
		},
	}
}

func addRecurringCmd() *cobra.Command {
	var (
		amount    string
		category  string
		entryType string
		day       int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a recurring payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			value, err := parseAmountArg(amount)
			if err != nil {
				return err
			}
			t, err := parseEntryType(entryType)
			if err != nil {
				return err
			}

			return withApp(ctx, func(a *app) error {
				profile := model.RecurringProfile{
					Name:     args[0],
					Amount:   value,
					Category: category,
					Type:     t,
					Day:      day,
				}
				if err := a.recurring.Add(ctx, profile); err != nil {
					return common.NewUserError("could not add recurring payment", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %q, due on day %d", args[0], day)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount paid each month")
	cmd.Flags().StringVar(&category, "category", model.FallbackCategory, "category of the payment")
	cmd.Flags().StringVar(&entryType, "type", string(model.TypeExpense), "entry type (Expense, Income, Transfer)")
	cmd.Flags().IntVar(&day, "day", 1, "day of month the payment is due (1-31)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func removeRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number>",
		Short: "Remove a recurring payment by its number in 'recurring list'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("invalid number %q", args[0]), err)
			}

			return withApp(ctx, func(a *app) error {
				ok, err := a.recurring.Remove(ctx, n-1)
				if err != nil {
					return fmt.Errorf("failed to remove recurring payment: %w", err)
				}
				if !ok {
					return common.NewUserError(fmt.Sprintf("no recurring payment number %d", n), nil)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed recurring payment %d", n)))
				return nil
			})
		},
	}
}

func pendingRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "Show recurring payments not yet paid this month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				pending, err := a.reconciler.Pending(ctx)
				if err != nil {
					return fmt.Errorf("failed to check recurring payments: %w", err)
				}
				if len(pending) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("All recurring payments are paid this month"))
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("%s %d pending", cli.BellIcon, len(pending))))
				fmt.Fprintln(cmd.OutOrStdout(), renderProfiles(pending, false))
				return nil
			})
		},
	}
}

func payRecurringCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <name>",
		Short: "Record a recurring payment as paid today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				entry, err := a.reconciler.MarkPaid(ctx, args[0])
				if err != nil {
					return common.NewUserError(fmt.Sprintf("could not mark %q as paid", args[0]), err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s %s on %s",
					entry.Description, cli.FormatAmount(entry.Amount, entry.Type), model.FormatDate(entry.Date))))
				return nil
			})
		},
	}
}

func renderProfiles(profiles []model.RecurringProfile, numbered bool) string {
	var columns []cli.Column
	if numbered {
		columns = append(columns, cli.Column{Title: "#"})
	}
	columns = append(columns,
		cli.Column{Title: "Name"},
		cli.Column{Title: "Amount"},
		cli.Column{Title: "Category"},
		cli.Column{Title: "Type"},
		cli.Column{Title: "Day"},
	)

	rows := make([][]string, 0, len(profiles))
	for i, p := range profiles {
		var row []string
		if numbered {
			row = append(row, strconv.Itoa(i+1))
		}
		row = append(row, p.Name, p.Amount.StringFixed(2), p.Category, string(p.Type), strconv.Itoa(p.Day))
		rows = append(rows, row)
	}
	return cli.RenderTable(columns, rows)
}
