package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Philos250/TransactiTrack/internal/cli"
	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/model"
	"github.com/Philos250/TransactiTrack/internal/ofx"
)

// importResult counts the outcome of one import run.
type importResult struct {
	Parsed     int
	Duplicates int
	Created    int
	Failed     int
}

func (a *app) importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX (Quicken) files exported from your bank.

Every imported line is booked against the category given with --category.
Debits become expenses and credits become income. Lines repeated across
overlapping statements are imported once.

Examples:
  # Import a single file
  transactitrack import-ofx --category <id> ~/Downloads/jan_2024.qfx

  # Import every statement in a directory
  transactitrack import-ofx --category <id> ~/Downloads/statements

  # Preview without saving
  transactitrack import-ofx --category <id> --dry-run ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runImportOFX,
	}

	cmd.Flags().StringP("category", "c", "", "category ID the imported transactions are booked against")
	cmd.Flags().String("account-type", string(model.AccountTypeBank), "account type: bank, mobile money or cash")
	cmd.Flags().BoolP("dry-run", "d", false, "preview the import without saving")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func (a *app) runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	categoryID, _ := cmd.Flags().GetString("category")
	rawAccountType, _ := cmd.Flags().GetString("account-type")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	accountType, err := model.ParseAccountType(rawAccountType)
	if err != nil {
		return common.NewValidationError(err.Error(), "accountType")
	}

	files, err := expandStatementFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return common.NewUserError("No OFX/QFX files found to import", errors.New("no files found"))
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	entries, err := parseStatements(ctx, files)
	if err != nil {
		return err
	}

	unique := ofx.Dedupe(entries)
	result := importResult{
		Parsed:     len(entries),
		Duplicates: len(entries) - len(unique),
	}

	if len(unique) == 0 {
		writeln(out, cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	if dryRun {
		preview := make([]model.TransactionView, 0, len(unique))
		for _, entry := range unique {
			fields := entry.Fields(categoryID, accountType)
			preview = append(preview, model.TransactionView{Transaction: model.Transaction{
				Date:        *fields.Date,
				Description: fields.Description,
				CategoryID:  categoryID,
				Type:        entry.Type(),
				AccountType: accountType,
				Amount:      *fields.Amount,
			}})
		}
		writeln(out, cli.RenderTransactions(preview))
		writef(out, "%s\n", cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions parsed, %d duplicates, nothing saved",
			result.Parsed, result.Duplicates)))
		return nil
	}

	svc, closeLedger, err := a.openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeLedger()

	// Fail before the loop rather than once per entry.
	if _, err := svc.GetCategory(ctx, categoryID); err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(unique),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing transactions"),
		progressbar.OptionClearOnFinish(),
	)

	for _, entry := range unique {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := svc.CreateTransaction(ctx, entry.Fields(categoryID, accountType)); err != nil {
			result.Failed++
			slog.Warn("Failed to import transaction",
				"account", entry.AccountID,
				"fitid", entry.FITID,
				"error", err)
		} else {
			result.Created++
		}
		if err := bar.Add(1); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
	}
	_ = bar.Finish()

	summary := fmt.Sprintf("Imported %d of %d transactions (%d duplicates skipped, %d failed)",
		result.Created, result.Parsed, result.Duplicates, result.Failed)
	if result.Failed > 0 {
		writeln(out, cli.FormatWarning(summary))
	} else {
		writeln(out, cli.FormatSuccess(summary))
	}

	return nil
}

// expandStatementFiles resolves globs, plain paths and directories into the
// list of statement files to read. Directories are walked for .ofx and .qfx
// files of any case.
func expandStatementFiles(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		info, err := os.Stat(pattern)
		if err == nil && info.IsDir() {
			err := filepath.WalkDir(pattern, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isStatementFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", pattern, err)
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func isStatementFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return true
	}
	return false
}

// parseStatements parses every file in order. Unreadable files are logged
// and skipped.
func parseStatements(ctx context.Context, files []string) ([]ofx.Entry, error) {
	parser := ofx.NewParser()

	var entries []ofx.Entry
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(parsed))
		entries = append(entries, parsed...)
	}
	return entries, nil
}
