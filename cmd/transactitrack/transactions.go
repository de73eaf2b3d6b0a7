package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Philos250/TransactiTrack/internal/cli"
	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
)

func (a *app) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"transaction", "tx"},
		Short:   "Manage transactions",
		Long:    `List, add, update and delete income and expense transactions.`,
	}

	cmd.AddCommand(a.listTransactionsCmd())
	cmd.AddCommand(a.addTransactionCmd())
	cmd.AddCommand(a.updateTransactionCmd())
	cmd.AddCommand(a.deleteTransactionCmd())

	return cmd
}

func (a *app) listTransactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all transactions with their category names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeLedger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLedger()

			transactions, err := svc.ListTransactions(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.RenderTransactions(transactions))
			return nil
		},
	}
}

func (a *app) addTransactionCmd() *cobra.Command {
	var (
		amount      string
		description string
		category    string
		txType      string
		accountType string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record an income or expense transaction against a category.
The date defaults to now.`,
		Example: `  transactitrack transactions add --amount 12.50 --category <id> --type expense --account-type cash
  transactitrack tx add -a 3000 -c <id> -t income --account-type "mobile money" --date 2024-01-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fields := model.TransactionFields{
				Description: description,
				CategoryID:  category,
				Type:        txType,
				AccountType: accountType,
			}
			if amount != "" {
				value, err := parseAmount("amount", amount)
				if err != nil {
					return err
				}
				fields.Amount = &value
			}
			if date != "" {
				value, err := common.ParseDate(date, false)
				if err != nil {
					return common.NewValidationError(err.Error(), "date")
				}
				fields.Date = &value
			}

			svc, closeLedger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLedger()

			tx, err := svc.CreateTransaction(cmd.Context(), fields)
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s of %s in %q (%s)",
				tx.Type, cli.FormatAmount(tx.Amount), tx.CategoryName, tx.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "transaction amount")
	cmd.Flags().StringVarP(&description, "description", "d", "", "transaction description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category ID")
	cmd.Flags().StringVarP(&txType, "type", "t", "", "transaction type: income or expense")
	cmd.Flags().StringVar(&accountType, "account-type", "", "account type: bank, mobile money or cash")
	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD or RFC 3339)")

	return cmd
}

func (a *app) updateTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a transaction",
		Long:  `Update the fields given as flags and leave the rest untouched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			var patch model.TransactionPatch
			if flags.Changed("amount") {
				raw, _ := flags.GetString("amount")
				value, err := parseAmount("amount", raw)
				if err != nil {
					return err
				}
				patch.Amount = &value
			}
			if flags.Changed("date") {
				raw, _ := flags.GetString("date")
				value, err := common.ParseDate(raw, false)
				if err != nil {
					return common.NewValidationError(err.Error(), "date")
				}
				patch.Date = &value
			}
			patch.Description = changedString(cmd, "description")
			patch.CategoryID = changedString(cmd, "category")
			patch.Type = changedString(cmd, "type")
			patch.AccountType = changedString(cmd, "account-type")

			svc, closeLedger, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer closeLedger()

			tx, err := svc.UpdateTransaction(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated transaction %s", tx.ID)))
			return nil
		},
	}

	cmd.Flags().StringP("amount", "a", "", "new amount")
	cmd.Flags().StringP("description", "d", "", "new description")
	cmd.Flags().StringP("category", "c", "", "new category ID")
	cmd.Flags().StringP("type", "t", "", "new transaction type")
	cmd.Flags().String("account-type", "", "new account type")
	cmd.Flags().String("date", "", "new date (YYYY-MM-DD or RFC 3339)")

	return cmd
}

func (a *app) deleteTransactionCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			svc, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			if !yes {
				tx, err := svc.GetTransaction(ctx, args[0])
				if err != nil {
					return err
				}
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				prompt := fmt.Sprintf("Delete %s of %s on %s?", tx.Type, cli.FormatAmount(tx.Amount), tx.Date.Format(common.DateOnly))
				ok, err := prompter.Confirm(ctx, prompt, false)
				if err != nil {
					return err
				}
				if !ok {
					writeln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
			}

			deleted, err := svc.DeleteTransaction(ctx, args[0])
			if err != nil {
				return err
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted transaction %s", deleted.ID)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// changedString returns the flag value only when the user set it.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}
