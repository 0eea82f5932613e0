package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/general_store/cmd/storectl/output"
	"github.com/Skotchmaster/general_store/internal/service"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage login sessions",
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired sessions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, done, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer done()

		n, err := service.NewAuthService(r, nil, 0).PruneExpiredSessions(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		output.Success(cmd.OutOrStdout(), "removed %d expired sessions", n)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsPruneCmd)
	rootCmd.AddCommand(sessionsCmd)
}
