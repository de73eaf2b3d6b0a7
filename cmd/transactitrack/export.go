package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Philos250/TransactiTrack/internal/cli"
	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/sheets"
)

func (a *app) exportSheetsCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "export-sheets",
		Short: "Export a date-range report to Google Sheets",
		Long: `Write the report for --start to --end into a Google Sheets spreadsheet.

Authentication uses a service account (sheets.service_account_path) or
OAuth2 client credentials with a refresh token or a token file. Run
"export-sheets auth" once to obtain a token file interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			from, to, err := parseRangeFlags(start, end)
			if err != nil {
				return err
			}

			writerConfig, err := a.cfg.Sheets.Writer()
			if err != nil {
				return common.NewUserError("Google Sheets is not configured", err)
			}

			svc, closeLedger, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer closeLedger()

			report, err := svc.Report(ctx, from, to)
			if err != nil {
				return err
			}

			writer, err := a.newReportWriter(ctx, writerConfig, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to create sheets writer: %w", err)
			}

			if err := writer.Write(ctx, report); err != nil {
				return fmt.Errorf("failed to export report: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions (%s to %s)",
				len(report.Transactions), from.Format(common.DateOnly), to.Format(common.DateOnly))))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end date, inclusive (YYYY-MM-DD or RFC 3339)")

	cmd.AddCommand(a.sheetsAuthCmd())

	return cmd
}

func (a *app) sheetsAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Sheets access with OAuth2",
		Long: `Open the OAuth2 consent flow in a browser and store the resulting token
in sheets.token_file. An existing token is refreshed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauth := a.cfg.Sheets.OAuth()
			if oauth.ClientID == "" || oauth.ClientSecret == "" {
				return common.NewUserError("Set sheets.client_id and sheets.client_secret first",
					common.MissingFields("client_id", "client_secret"))
			}
			if oauth.TokenFile == "" {
				return common.NewUserError("Set sheets.token_file to store the token", common.MissingFields("token_file"))
			}

			if _, err := sheets.GetOrCreateToken(cmd.Context(), oauth); err != nil {
				return fmt.Errorf("failed to authorize: %w", err)
			}

			writeln(cmd.OutOrStdout(), cli.FormatSuccess("Token saved to "+oauth.TokenFile))
			return nil
		},
	}
}
