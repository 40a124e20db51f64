package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noteapp/client/internal/core/domain"
	"github.com/noteapp/client/pkg/logger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show both sessions",
	Long: `Hydrate both identity domains from storage and print their presence.
Tokens are never printed.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("json", false, "print JSON instead of a table")
	rootCmd.AddCommand(statusCmd)
}

type statusLine struct {
	Domain        domain.IdentityDomain `json:"domain"`
	Presence      string                `json:"presence"`
	Authenticated bool                  `json:"authenticated"`
	Name          string                `json:"name,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	ctx := cmd.Context()
	a, err := openApp(ctx, cfg, logger.Named("cli"))
	if err != nil {
		return err
	}
	defer a.Close()
	a.Hydrate(ctx)

	lines := make([]statusLine, 0, 2)
	for _, d := range []domain.IdentityDomain{domain.DomainMember, domain.DomainAdmin} {
		s := a.Session(d).Snapshot()
		line := statusLine{Domain: d, Presence: s.Presence.String(), Authenticated: s.IsAuthenticated()}
		if line.Authenticated {
			line.Name = displayName(s.Profile)
		}
		lines = append(lines, line)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lines)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DOMAIN\tPRESENCE\tUSER")
	for _, l := range lines {
		name := l.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", l.Domain, l.Presence, name)
	}
	return w.Flush()
}
