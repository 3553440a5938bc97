package main

import (
	"fmt"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage keyword categorization rules",
		Long: `Keyword rules assign a category to every entry whose description
contains the keyword, ignoring case. When several keywords match, the rule
listed last wins.`,
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(setRuleCmd())
	cmd.AddCommand(deleteRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				rules, err := a.rules.Load(ctx)
				if err != nil {
					return fmt.Errorf("failed to load rules: %w", err)
				}

				if rules.Len() == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No rules yet. Use 'spice rules set <keyword> <category>' to add one."))
					return nil
				}

				var rows [][]string
				rules.Each(func(keyword, category string) {
					rows = append(rows, []string{keyword, category})
				})
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]cli.Column{{Title: "Keyword"}, {Title: "Category"}}, rows))
				return nil
			})
		},
	}
}

func setRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <keyword> <category>",
		Short: "Add or change a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keyword, category := args[0], args[1]

			return withApp(ctx, func(a *app) error {
				existing, err := a.categories.Get(ctx, category)
				if err != nil {
					return fmt.Errorf("failed to look up category: %w", err)
				}
				if existing == nil {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("Category %q is not registered", category)))
				}

				if err := a.rules.Set(ctx, keyword, category); err != nil {
					return fmt.Errorf("failed to save rule: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q → %s", keyword, category)))
				return nil
			})
		},
	}
}

func deleteRuleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <keyword>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				ok, err := a.rules.Delete(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to delete rule: %w", err)
				}
				if !ok {
					return common.NewUserError(fmt.Sprintf("no rule for keyword %q", args[0]), nil)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted rule %q", args[0])))
				return nil
			})
		},
	}
}
