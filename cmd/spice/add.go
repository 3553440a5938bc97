package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		date          string
		entryTime     string
		entryType     string
		category      string
		paymentMethod string
		account       string
		tags          string
	)

	cmd := &cobra.Command{
		Use:   "add <amount> <description>",
		Short: "Add a single ledger entry",
		Long: `Add one entry to the ledger. Amounts are never negative; use --type
to say whether money came in or went out.`,
		Example: `  spice add 250 "Lunch at Swiggy" --category Food
  spice add 50000 "October salary" --type income --category Salary`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmountArg(args[0])
			if err != nil {
				return err
			}
			t, err := parseEntryType(entryType)
			if err != nil {
				return err
			}

			in := ledger.EntryInput{
				Amount:        amount,
				Time:          entryTime,
				Type:          t,
				Category:      category,
				PaymentMethod: paymentMethod,
				Account:       account,
				Description:   args[1],
				Source:        model.SourceManual,
				Tags:          tags,
			}
			if date != "" {
				d, err := model.ParseDate(date, false)
				if err != nil {
					return common.NewUserError(fmt.Sprintf("invalid date %q", date), err)
				}
				in.Date = d
			}

			return withApp(ctx, func(a *app) error {
				if in.Account == "" {
					in.Account = a.accounts.DefaultName(ctx)
				}

				entry, err := a.writer.Add(ctx, in)
				if err != nil {
					return common.NewUserError("could not add entry", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s %s to %s on %s",
					entry.Description, cli.FormatAmount(entry.Amount, entry.Type), entry.Account, model.FormatDate(entry.Date))))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "entry date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&entryTime, "time", time.Now().Format("15:04"), "entry time, HH:MM")
	cmd.Flags().StringVar(&entryType, "type", string(model.TypeExpense), "entry type (Expense, Income, Transfer)")
	cmd.Flags().StringVar(&category, "category", model.FallbackCategory, "category")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "Cash", "payment method")
	cmd.Flags().StringVar(&account, "account", "", "account (default: the default account)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")

	return cmd
}
