package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/glintlabs/glint/internal/cli"
	"github.com/glintlabs/glint/internal/config"
	"github.com/spf13/cobra"
)

var resetForce bool

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the dashboard configuration",
		Long: `Reset deletes the persisted dashboard configuration on the server, so the
next dashboard launch runs onboarding from scratch.

Synced CRM data is untouched; only the focus-area selection and generated
dashboard setup are discarded.`,
		RunE: runReset,
	}
	cmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	app := config.FromViper()
	gw, err := newGateway(app)
	if err != nil {
		return err
	}

	if !resetForce {
		fmt.Print(cli.WarningStyle.Render("This deletes your dashboard configuration.") + " Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := gw.ClearConfig(cmd.Context()); err != nil {
		return fmt.Errorf("clearing dashboard configuration: %w", err)
	}
	fmt.Println(cli.SuccessStyle.Render("Dashboard configuration cleared."))
	return nil
}
