package tui

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/glintlabs/glint/internal/onboarding"
	"github.com/glintlabs/glint/internal/service"
)

// Config holds everything the TUI needs to run.
type Config struct {
	Gateway    service.Gateway
	Prefs      service.PreferenceStore
	Onboarding onboarding.Options
	Demo       bool
}

// Run starts the dashboard client and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Gateway == nil {
		return fmt.Errorf("gateway is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		cancel()
	}()

	model := newModel(ctx, cfg)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("running dashboard client: %w", err)
	}
	if m, ok := final.(Model); ok && m.machine != nil {
		m.machine.Close()
	}
	return nil
}
