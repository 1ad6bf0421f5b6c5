package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/agroexport/cmd/agroexport/tui"
	"github.com/marshallshelly/agroexport/pkg/httpapi"
)

// dashboardCmd shows the admin overview
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show quotes and messages in the terminal",
	Long: `Show catalog counts, quote and message statistics, and the newest quote
requests and contact messages.

Examples:
  agroexport dashboard          # Interactive view (r refreshes, tab switches)
  agroexport dashboard --json   # One-shot JSON snapshot`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(ctx context.Context) error {
	s, closeDB, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	products, posts := resolvers(s)
	backend := httpapi.NewBackend(s, products, posts)

	if jsonOutput {
		d, err := backend.Dashboard(ctx)
		if err != nil {
			return err
		}
		return printJSON(d)
	}
	return tui.RunDashboardUI(ctx, backend.Dashboard)
}
