package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matprat/matprat/backend/internal/service"
)

// passwordEnv is read when --password is omitted, so the password stays out
// of shell history.
const passwordEnv = "MATPRAT_ADMIN_PASSWORD"

func newAdminCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var username, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account or reset its password",
		Long: `Create adds an admin account. An existing account with the same
username gets the new password.

Example:
  matpratctl admin create --username chef --password s3cret
  MATPRAT_ADMIN_PASSWORD=s3cret matpratctl admin create --username chef`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			return opts.withRuntime(cmd, func(rt *Runtime) error {
				auth := service.NewAuthService(rt.DB, rt.Config.SessionSecret, rt.Config.SessionTTL)
				user, err := auth.UpsertUser(cmd.Context(), username, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %q saved\n", user.Username)
				return nil
			})
		},
	}
	create.Flags().StringVar(&username, "username", "", "account name (required)")
	create.Flags().StringVar(&password, "password", "", "account password (default $"+passwordEnv+")")
	_ = create.MarkFlagRequired("username")

	cmd.AddCommand(create)
	return cmd
}
