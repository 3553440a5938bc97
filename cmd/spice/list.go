package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/ledger"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
	"github.com/spf13/cobra"
)

type listOptions struct {
	from       string
	to         string
	accounts   []string
	categories []string
	types      []string
	limit      int
}

func listCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		Example: `  spice list --from 2024-01-01 --to 2024-01-31
  spice list --category Food --category Groceries --type expense`,
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

				matched := ledger.Filter(entries, filter)
				if len(matched) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No matching entries"))
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderEntries(matched))
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("%d of %d entries", len(matched), len(entries))))
				return nil
			})
		},
	}

	opts.bindFilterFlags(cmd)
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "show at most this many entries")

	return cmd
}

// bindFilterFlags registers the date, account, category and type filters.
func (o *listOptions) bindFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.from, "from", "", "first date to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&o.to, "to", "", "last date to include, YYYY-MM-DD")
	cmd.Flags().StringSliceVar(&o.accounts, "account", nil, "only these accounts (repeatable)")
	cmd.Flags().StringSliceVar(&o.categories, "category", nil, "only these categories (repeatable)")
	cmd.Flags().StringSliceVar(&o.types, "type", nil, "only these types: expense, income, transfer (repeatable)")
}

func (o listOptions) filtered() bool {
	return o.from != "" || o.to != "" || len(o.accounts) > 0 || len(o.categories) > 0 || len(o.types) > 0
}

func (o listOptions) filter() (service.TransactionFilter, error) {
	f := service.TransactionFilter{
		Accounts:   o.accounts,
		Categories: o.categories,
		Limit:      o.limit,
	}

	parse := func(flag, value string) (*time.Time, error) {
		if value == "" {
			return nil, nil
		}
		d, err := model.ParseDate(value, false)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("invalid --%s date %q", flag, value), err)
		}
		return &d, nil
	}

	var err error
	if f.StartDate, err = parse("from", o.from); err != nil {
		return f, err
	}
	if f.EndDate, err = parse("to", o.to); err != nil {
		return f, err
	}

	for _, s := range o.types {
		t, err := parseEntryType(s)
		if err != nil {
			return f, err
		}
		f.Types = append(f.Types, t)
	}

	return f, nil
}
