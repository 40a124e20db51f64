package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/pkg/logger"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear a persisted session",
	Long: `Clear the member session, or the admin session with --admin. The other
domain is left untouched.`,
	RunE: runLogout,
}

func init() {
	logoutCmd.Flags().Bool("admin", false, "clear the admin session")
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	admin, _ := cmd.Flags().GetBool("admin")

	ctx := cmd.Context()
	a, err := openApp(ctx, cfg, logger.Named("cli"))
	if err != nil {
		return err
	}
	defer a.Close()
	a.Hydrate(ctx)

	d := domain.DomainMember
	if admin {
		d = domain.DomainAdmin
		err = a.Auth.AdminLogout(ctx)
	} else {
		err = a.Auth.Logout(ctx)
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "logged out of %s\n", d)
	return nil
}
