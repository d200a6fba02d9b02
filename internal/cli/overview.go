package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/dashboard"
	"github.com/spf13/cobra"
)

const monthLayout = "2006-01"

func newOverviewCmd(a *app) *cobra.Command {
	var (
		month     string
		chartPath string
	)

	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show try-on totals, active products and daily usage for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from := time.Now()
			if month != "" {
				parsed, err := time.Parse(monthLayout, month)
				if err != nil {
					return fmt.Errorf("invalid --month %q, expected YYYY-MM: %w", month, err)
				}
				from = parsed
			}

			lang, err := a.language()
			if err != nil {
				return err
			}
			client, err := a.client()
			if err != nil {
				return err
			}

			svc := dashboard.NewService(client, client.Logger, dashboard.WithLanguage(lang))
			overview, err := svc.Overview(cmd.Context(), from)
			if err != nil {
				return err
			}
			if overview.NeedsReauth() {
				if err := a.writeJSON(overview); err != nil {
					return err
				}
				return &ReauthRequiredError{Shop: client.Shop().Shop, URL: overview.RedirectURL}
			}

			if chartPath != "" {
				html, err := dashboard.RenderDailyUsageChart(overview, dashboard.ChartOptions{})
				if err != nil {
					return fmt.Errorf("render chart: %w", err)
				}
				if err := os.WriteFile(chartPath, []byte(html), 0o644); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
				fmt.Fprintf(a.errOut, "Daily usage chart written to %s\n", chartPath)
			}
			return a.writeJSON(overview)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to load as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write the daily usage line chart as HTML to this path")
	return cmd
}
