package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/pkg/config"
	"github.com/Skotchmaster/general_store/pkg/db"
	"github.com/Skotchmaster/general_store/pkg/logging"
)

var (
	// Global flags
	dbURL      string
	sqlitePath string
	logLevel   string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Operator tooling for the general store backend",
	Long: `storectl runs one-off maintenance tasks against the store database:
schema migrations, admin accounts, seed data, session cleanup, stock
reports and search reindexing.

Connection settings come from the same environment (and .env file) as the
server; flags override them.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		slog.SetDefault(logging.NewWithWriter(cmd.ErrOrStderr(), logLevel, "text"))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cfg = config.Load()

	rootCmd.PersistentFlags().StringVar(&dbURL, "database-url", cfg.DatabaseURL, "Postgres connection URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "Use a local SQLite file instead of Postgres (development only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

// openRepo connects to the configured database. SQLite files are migrated
// in place since the SQL migrations target Postgres.
func openRepo(ctx context.Context) (*repo.GormRepo, func(), error) {
	if sqlitePath != "" {
		gdb, err := db.OpenSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := gdb.AutoMigrate(models.All()...); err != nil {
			return nil, nil, fmt.Errorf("sqlite automigrate: %w", err)
		}
		return repo.New(gdb), closer(gdb), nil
	}

	if dbURL == "" {
		return nil, nil, errors.New("no database: pass --database-url or --sqlite, or set DATABASE_URL")
	}
	gdb, err := db.Open(ctx, dbURL)
	if err != nil {
		return nil, nil, err
	}
	return repo.New(gdb), closer(gdb), nil
}

func closer(gdb *gorm.DB) func() {
	return func() {
		if s, err := gdb.DB(); err == nil {
			_ = s.Close()
		}
	}
}

func publisher() events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Nop{}
	}
	return events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
}
