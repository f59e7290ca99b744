package main

import (
	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/tui"
	"github.com/spf13/cobra"
)

var dashboardDemo bool

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the analytics dashboard",
		Long: `Open the analytics dashboard. On first run this walks you through
onboarding: glint analyzes your synced CRM data, asks what to focus on, and
generates your dashboard. Later runs go straight to the dashboard.`,
		RunE: runDashboard,
	}
	cmd.Flags().BoolVar(&dashboardDemo, "demo", false, "Run with sample data, no backend required")
	return cmd
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	app := config.FromViper()

	gw, err := newGateway(app)
	if err != nil {
		if dashboardDemo {
			// Demo mode never talks to the backend, so a missing gateway
			// config is fine; a mock keeps the interface satisfied.
			return tui.Run(cmd.Context(), tui.Config{
				Gateway: newDemoGateway(),
				Demo:    true,
			})
		}
		return err
	}

	prefs := newPreferenceStore(app)
	if prefs != nil {
		defer func() { _ = prefs.Close() }()
	}

	return tui.Run(cmd.Context(), tui.Config{
		Gateway:    gw,
		Prefs:      prefs,
		Onboarding: onboardingOptions(app),
		Demo:       dashboardDemo,
	})
}
