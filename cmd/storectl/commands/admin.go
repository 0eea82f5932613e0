package commands

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/general_store/cmd/storectl/output"
	"github.com/Skotchmaster/general_store/internal/service"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a store admin",
	Example: `  storectl admin create --email owner@store.pk --name Owner --password '...'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		r, done, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer done()

		pub := publisher()
		defer pub.Close()

		u, err := service.NewAuthService(r, pub, 0).CreateAdmin(ctx, adminName, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		output.Success(cmd.OutOrStdout(), "admin %s created (%s)", u.Email, u.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminName, "name", "Admin", "Display name")
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Login email")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "Login password (min 6 characters)")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
