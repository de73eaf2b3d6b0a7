package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Philos250/TransactiTrack/internal/cli"
	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage budget categories",
		Long:    `List, add, update and delete the categories transactions are booked against.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.updateCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())
	cmd.AddCommand(a.categoryUsageCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeLedger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLedger()

			categories, err := svc.ListCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.RenderCategories(categories))
			return nil
		},
	}
}

func (a *app) addCategoryCmd() *cobra.Command {
	var (
		description string
		budget      string
		parent      string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := model.CategoryFields{
				Name:        args[0],
				Description: description,
			}
			if budget != "" {
				amount, err := parseAmount("budget", budget)
				if err != nil {
					return err
				}
				fields.Budget = &amount
			}
			if parent != "" {
				fields.ParentID = &parent
			}

			svc, closeLedger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLedger()

			category, err := svc.CreateCategory(cmd.Context(), fields)
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (%s)", category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "category description")
	cmd.Flags().StringVarP(&budget, "budget", "b", "", "budget amount")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent category ID")

	return cmd
}

func (a *app) updateCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long: `Update the fields given as flags and leave the rest untouched.
Use --parent "" to detach a category from its parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			var patch model.CategoryPatch
			if flags.Changed("name") {
				name, _ := flags.GetString("name")
				patch.Name = &name
			}
			if flags.Changed("description") {
				description, _ := flags.GetString("description")
				patch.Description = &description
			}
			if flags.Changed("parent") {
				parent, _ := flags.GetString("parent")
				patch.ParentID = &parent
			}
			if flags.Changed("budget") {
				raw, _ := flags.GetString("budget")
				amount, err := parseAmount("budget", raw)
				if err != nil {
					return err
				}
				patch.Budget = &amount
			}

			svc, closeLedger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLedger()

			category, err := svc.UpdateCategory(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated category %q", category.Name)))
			return nil
		},
	}

	cmd.Flags().StringP("name", "n", "", "new name")
	cmd.Flags().StringP("description", "d", "", "new description")
	cmd.Flags().StringP("budget", "b", "", "new budget amount")
	cmd.Flags().StringP("parent", "p", "", "new parent category ID")

	return cmd
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Long: `Delete a category. Categories that still have transactions cannot be
deleted; sub-categories are detached and kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			category, err := svc.GetCategory(ctx, args[0])
			if err != nil {
				return err
			}

			if !yes {
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete category %q?", category.Name), false)
				if err != nil {
					return err
				}
				if !ok {
					writeln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
			}

			if err := svc.DeleteCategory(ctx, category.ID); err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %q", category.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func (a *app) categoryUsageCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show budget consumption per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, to, err := parseRangeFlags(start, end)
			if err != nil {
				return err
			}

			svc, closeLedger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLedger()

			usage, err := svc.CategoryUsage(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.RenderUsage(usage))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end date, inclusive (YYYY-MM-DD or RFC 3339)")

	return cmd
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, common.NewValidationError(fmt.Sprintf("invalid amount %q", raw), field)
	}
	return amount, nil
}
