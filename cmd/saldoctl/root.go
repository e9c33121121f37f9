package main

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"saldo/internal/app"
	"saldo/internal/backend"
	"saldo/internal/config"
	"saldo/internal/log"
)

type rootOptions struct {
	owner    string
	backend  string
	dbPath   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "saldoctl",
		Short: "Inspect and edit a saldo ledger from the command line",
		Long: `saldoctl reads and writes the same store as the saldo server.

Configuration comes from the environment (and a .env file when present);
the flags below override it.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.owner, "owner", "", "owner id (default: $OWNER_ID)")
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", fmt.Sprintf("data backend %v (default: $DATA_BACKEND)", backend.GetBackendTypes()))
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default: $SQLITE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(summaryCmd(opts))
	cmd.AddCommand(txCmd(opts))
	cmd.AddCommand(targetsCmd(opts))
	cmd.AddCommand(statsCmd(opts))
	cmd.AddCommand(notificationsCmd(opts))
	cmd.AddCommand(categoriesCmd())
	return cmd
}

// openApp loads configuration, applies flag overrides and opens the
// session. Logs go to stderr so command output stays clean.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	_ = godotenv.Load()

	cfg := config.Load()
	if opts.owner != "" {
		cfg.OwnerID = opts.owner
	}
	if opts.backend != "" {
		cfg.DataBackend = opts.backend
	}
	if opts.dbPath != "" {
		cfg.SQLiteDBPath = opts.dbPath
	}
	// The CLI never publishes notifications to the broker.
	cfg.AMQPURL = ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level:     log.ParseLevel(opts.logLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
	a, err := app.New(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		slog.Error("failed to close ledger", "error", err)
	}
}

// exitOnRefreshError fails the command when the session could not load.
func exitOnRefreshError(a *app.App) error {
	if err := a.State.Err(); err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	return nil
}

