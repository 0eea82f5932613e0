package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/general_store/cmd/storectl/output"
	"github.com/Skotchmaster/general_store/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending SQL migrations",
	Long: `Apply every embedded migration that is not yet recorded in
schema_migrations. Each file runs in its own transaction.

With --sqlite the schema is created from the models instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		w := cmd.OutOrStdout()

		if sqlitePath != "" {
			_, done, err := openRepo(ctx)
			if err != nil {
				return err
			}
			done()
			output.Success(w, "sqlite schema ready at %s", sqlitePath)
			return nil
		}

		sqlDB, err := migrate.Open(ctx, dbURL)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		applied, err := migrate.Up(ctx, sqlDB, slog.Default())
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			output.Muted(w, "schema is up to date")
			return nil
		}
		for _, v := range applied {
			output.Success(w, "applied %s", v)
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	rootCmd.AddCommand(migrateCmd)
}
