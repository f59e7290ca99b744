package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/glintlabs/glint/internal/cli"
	"github.com/glintlabs/glint/internal/config"
	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/onboarding"
	"github.com/glintlabs/glint/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	syncTrigger bool
	syncWait    bool
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Show CRM data sync status",
		Long: `Show the per-entity status of the CRM data import.

With --trigger, ask the backend to start a sync. With --wait, keep polling
until enough data has synced for analytics (the primary entity, or
everything, is complete).`,
		RunE: runSync,
	}
	cmd.Flags().BoolVar(&syncTrigger, "trigger", false, "Trigger a sync before checking status")
	cmd.Flags().BoolVar(&syncWait, "wait", false, "Poll until the sync gate is satisfied")
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	app := config.FromViper()
	gw, err := newGateway(app)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if syncTrigger {
		// Fire-and-forget by contract; a failure is not worth aborting for.
		if err := gw.TriggerSync(ctx); err != nil {
			fmt.Fprintln(os.Stderr, cli.WarningStyle.Render("sync trigger failed: "+err.Error()))
		} else {
			fmt.Println(cli.InfoStyle.Render("Sync triggered."))
		}
	}

	status, err := gw.GetSyncStatus(ctx)
	if err != nil {
		return fmt.Errorf("fetching sync status: %w", err)
	}
	printSyncStatus(*status, app.PrimaryEntity)

	if !syncWait || onboarding.GateSatisfied(*status, app.PrimaryEntity) {
		return nil
	}
	return waitForGate(ctx, gw, app)
}

func printSyncStatus(status model.SyncStatus, primaryEntity string) {
	if len(status.Entities) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No sync activity reported yet."))
		return
	}

	fmt.Println(cli.TableHeaderStyle.Render(fmt.Sprintf("%-16s %-10s %10s", "ENTITY", "STATE", "RECORDS")))
	for _, e := range status.Entities {
		name := e.Entity
		if e.Entity == primaryEntity {
			name += " *"
		}
		fmt.Printf("%-16s %-21s %10d\n", name, cli.RenderEntityState(string(e.State)), e.Records)
		if e.Error != "" {
			fmt.Println("  " + cli.ErrorStyle.Render(e.Error))
		}
	}
	fmt.Printf("\n%d records total · * primary entity\n", status.TotalRecords())
}

// waitForGate polls sync status until the completion gate is satisfied,
// showing record counts as progress.
func waitForGate(ctx context.Context, gw service.Gateway, app config.App) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Waiting for sync...[reset]"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	ticker := time.NewTicker(app.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		status, err := gw.GetSyncStatus(ctx)
		if err != nil {
			// Transient failures are retried on the next tick.
			continue
		}
		_ = bar.Set(status.TotalRecords())

		if onboarding.GateSatisfied(*status, app.PrimaryEntity) {
			_ = bar.Finish()
			fmt.Println(cli.SuccessStyle.Render("Sync gate satisfied — enough data to analyze."))
			printSyncStatus(*status, app.PrimaryEntity)
			return nil
		}
	}
}
