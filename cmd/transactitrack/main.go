// Command transactitrack manages a personal budget ledger and serves it over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Philos250/TransactiTrack/internal/common"
	"github.com/Philos250/TransactiTrack/internal/config"
	"github.com/Philos250/TransactiTrack/internal/service"
	"github.com/Philos250/TransactiTrack/internal/sheets"
)

var version = "dev"

// app carries the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
	envFile string

	// newReportWriter builds the Sheets exporter; tests replace it.
	newReportWriter func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (service.ReportWriter, error)
}

func newApp() *app {
	return &app{
		v: viper.New(),
		newReportWriter: func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (service.ReportWriter, error) {
			return sheets.NewWriter(ctx, cfg, logger)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "transactitrack",
		Short: "Track spending against category budgets",
		Long: `TransactiTrack records income and expense transactions against budget
categories, reports on date ranges and serves the ledger as a JSON API.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/transactitrack/config.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("db", "", "database path (overrides database.path)")
	flags.String("backend", "", "storage backend: sqlite or bolt (overrides database.backend)")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("database.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("database.backend", flags.Lookup("backend"))

	rootCmd.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.categoriesCmd(),
		a.transactionsCmd(),
		a.reportCmd(),
		a.importOFXCmd(),
		a.exportSheetsCmd(),
		versionCmd(),
	)

	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd(newApp()).ExecuteContext(ctx)
	cancel()

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, userErr.UserMessage)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}

	config.SetDefaults(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		a.v.AddConfigPath(filepath.Join(home, ".config", "transactitrack"))
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	config.BindEnv(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults apply without a config file.
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := common.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "transactitrack %s\n", version)
		},
	}
}

func writef(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func writeln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}
