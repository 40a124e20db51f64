package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/internal/core/ports"
	"github.com/noteapp/client/pkg/logger"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session",
	Long: `Log in against the backend and persist the session in storage, where a
later "serve" picks it up.

The password is read from stdin when --password is not given.

Examples:
  noteapp login --email ada@example.com
  echo secret | noteapp login --admin --email root@example.com`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (read from stdin when empty)")
	loginCmd.Flags().Bool("admin", false, "log in to the admin domain")
	_ = loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	admin, _ := cmd.Flags().GetBool("admin")

	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("login: no password given")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, cfg, logger.Named("cli"))
	if err != nil {
		return err
	}
	defer a.Close()
	a.Hydrate(ctx)

	creds := ports.Credentials{Email: email, Password: password}
	var sess domain.Session
	if admin {
		sess, err = a.Auth.AdminLogin(ctx, creds)
	} else {
		sess, err = a.Auth.Login(ctx, creds)
	}
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "logged in to %s as %s\n", sess.Domain, displayName(sess.Profile))
	return nil
}

func displayName(p domain.Profile) string {
	for _, key := range []string{"name", "email", "_id"} {
		if v := p.String(key); v != "" {
			return v
		}
	}
	return "(unknown)"
}
