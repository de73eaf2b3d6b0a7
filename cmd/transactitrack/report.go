package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Philos250/TransactiTrack/internal/cli"
	"github.com/Philos250/TransactiTrack/internal/common"
)

func (a *app) reportCmd() *cobra.Command {
	var (
		start       string
		end         string
		summaryOnly bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report transactions within a date range",
		Long: `List every transaction dated within --start and --end, both inclusive,
followed by income, expense and budget totals. A date-only --end covers
the whole day.`,
		Example: `  transactitrack report --start 2024-01-01 --end 2024-01-31
  transactitrack report --start 2024-01-01 --end 2024-01-31 --summary
  transactitrack report --start 2024-01-01T00:00:00Z --end 2024-01-31T12:00:00Z --json`,
		Args: cobra.NoArgs,
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

			report, err := svc.Report(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if summaryOnly {
					return enc.Encode(report.Summary)
				}
				return enc.Encode(report)
			}

			title := fmt.Sprintf("%s to %s", from.Format(common.DateOnly), to.Format(common.DateOnly))
			if !summaryOnly {
				writeln(out, cli.FormatTitle(title))
				writeln(out, cli.RenderTransactions(report.Transactions))
			}
			writeln(out, cli.RenderSummary(title, &report.Summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "end date, inclusive (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().BoolVarP(&summaryOnly, "summary", "s", false, "show only the totals")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")

	return cmd
}
