package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/storage"
	"github.com/spf13/cobra"
)

// registryCommand describes one registry's command tree.
type registryCommand struct {
	pick        func(*app) *storage.Registry
	use         string
	noun        string
	short       string
	types       []string
	defaultType string
	hasStatus   bool
}

func accountsCmd() *cobra.Command {
	return registryCommand{
		use:         "accounts",
		noun:        "account",
		short:       "Manage accounts",
		types:       model.AccountTypes(),
		defaultType: model.AccountBank,
		hasStatus:   true,
		pick:        func(a *app) *storage.Registry { return a.accounts },
	}.build()
}

func categoriesCmd() *cobra.Command {
	return registryCommand{
		use:         "categories",
		noun:        "category",
		short:       "Manage income and expense categories",
		types:       []string{model.CategoryExpense, model.CategoryIncome},
		defaultType: model.CategoryExpense,
		pick:        func(a *app) *storage.Registry { return a.categories },
	}.build()
}

func (rc registryCommand) build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   rc.use,
		Short: rc.short,
		Long: fmt.Sprintf(`List, add, update and delete %s, and choose the default %s.

Supported types: %s.`, rc.use, rc.noun, strings.Join(rc.types, ", ")),
	}

	cmd.AddCommand(rc.listCmd())
	cmd.AddCommand(rc.addCmd())
	cmd.AddCommand(rc.updateCmd())
	cmd.AddCommand(rc.deleteCmd())
	cmd.AddCommand(rc.defaultCmd())

	return cmd
}

func (rc registryCommand) listCmd() *cobra.Command {
	var itemType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all " + rc.use,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				reg := rc.pick(a)

				var (
					items []model.RegistryItem
					err   error
				)
				if itemType != "" {
					items, err = reg.ByType(ctx, itemType)
				} else {
					items, err = reg.All(ctx)
				}
				if err != nil {
					return fmt.Errorf("failed to get %s: %w", rc.use, err)
				}

				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("No %s found. Use 'spice %s add' to create one.", rc.use, rc.use)))
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderRegistry(items, rc.hasStatus))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&itemType, "type", "", "only list items of this type")

	return cmd
}

func (rc registryCommand) addCmd() *cobra.Command {
	var (
		itemType    string
		description string
		status      string
		isDefault   bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new " + rc.noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				item := model.RegistryItem{
					Name:        args[0],
					Type:        itemType,
					Description: description,
					Status:      status,
					IsDefault:   isDefault,
				}

				ok, err := rc.pick(a).Create(ctx, item)
				if err != nil {
					return fmt.Errorf("failed to add %s: %w", rc.noun, err)
				}
				if !ok {
					return common.NewUserError(fmt.Sprintf("%s %q already exists or is invalid", rc.noun, args[0]), nil)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s %q", rc.noun, args[0])))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&itemType, "type", rc.defaultType, "type ("+strings.Join(rc.types, ", ")+")")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().BoolVar(&isDefault, "default", false, "make this the default "+rc.noun)
	if rc.hasStatus {
		cmd.Flags().StringVar(&status, "status", model.StatusActive, "status (Active, Inactive)")
	}

	return cmd
}

func (rc registryCommand) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <name>",
		Short: "Update an existing " + rc.noun,
		Long:  "Update the fields given as flags. Fields without a flag are left unchanged.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			upd := registryUpdateFromFlags(cmd)

			return withApp(ctx, func(a *app) error {
				ok, err := rc.pick(a).Update(ctx, args[0], upd)
				if err != nil {
					return fmt.Errorf("failed to update %s: %w", rc.noun, err)
				}
				if !ok {
					return common.NewUserError(fmt.Sprintf("could not update %s %q: not found, name taken or invalid value", rc.noun, args[0]), nil)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s %q", rc.noun, args[0])))
				return nil
			})
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("type", "", "new type ("+strings.Join(rc.types, ", ")+")")
	cmd.Flags().String("description", "", "new description")
	cmd.Flags().Bool("default", false, "set or clear the default flag")
	if rc.hasStatus {
		cmd.Flags().String("status", "", "new status (Active, Inactive)")
	}

	return cmd
}

// registryUpdateFromFlags turns the flags the user actually set into a
// partial update.
func registryUpdateFromFlags(cmd *cobra.Command) storage.RegistryUpdate {
	var upd storage.RegistryUpdate
	str := func(name string) *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		return &v
	}

	upd.Name = str("name")
	upd.Type = str("type")
	upd.Description = str("description")
	if cmd.Flags().Lookup("status") != nil {
		upd.Status = str("status")
	}
	if cmd.Flags().Changed("default") {
		v, _ := cmd.Flags().GetBool("default")
		upd.IsDefault = &v
	}
	return upd
}

func (rc registryCommand) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a " + rc.noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				ok, err := rc.pick(a).Delete(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to delete %s: %w", rc.noun, err)
				}
				if !ok {
					return common.NewUserError(fmt.Sprintf("could not delete %s %q: not found or it is the default", rc.noun, args[0]), nil)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s %q", rc.noun, args[0])))
				return nil
			})
		},
	}
}

func (rc registryCommand) defaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default [name]",
		Short: "Show or set the default " + rc.noun,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				reg := rc.pick(a)

				if len(args) == 0 {
					item, err := reg.Default(ctx)
					if err != nil {
						return fmt.Errorf("failed to get default %s: %w", rc.noun, err)
					}
					if item == nil {
						fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No default " + rc.noun))
						return nil
					}
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Default %s: %s", rc.noun, item.Name)))
					return nil
				}

				ok, err := reg.SetDefault(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to set default %s: %w", rc.noun, err)
				}
				if !ok {
					return common.NewUserError(fmt.Sprintf("%s %q not found", rc.noun, args[0]), nil)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q is now the default %s", args[0], rc.noun)))
				return nil
			})
		},
	}
}

func renderRegistry(items []model.RegistryItem, withStatus bool) string {
	columns := []cli.Column{{Title: "Name"}, {Title: "Type"}}
	if withStatus {
		columns = append(columns, cli.Column{Title: "Status"})
	}
	columns = append(columns, cli.Column{Title: "Default"}, cli.Column{Title: "Description"})

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := []string{item.Name, item.Type}
		if withStatus {
			row = append(row, item.Status)
		}
		mark := ""
		if item.IsDefault {
			mark = cli.DefaultIcon
		}
		row = append(row, mark, item.Description)
		rows = append(rows, row)
	}

	return cli.RenderTable(columns, rows)
}
