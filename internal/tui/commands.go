package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/glintlabs/glint/internal/bootstrap"
	"github.com/glintlabs/glint/internal/onboarding"
	"github.com/glintlabs/glint/internal/service"
)

// loadBootstrap runs the mount-time routing decision.
func loadBootstrap(ctx context.Context, loader *bootstrap.Loader) tea.Cmd {
	return func() tea.Msg {
		decision, err := loader.Load(ctx)
		return bootstrapDoneMsg{decision: decision, err: err}
	}
}

// primeDashboard populates the dashboard working set.
func primeDashboard(ctx context.Context, loader *bootstrap.Loader) tea.Cmd {
	return func() tea.Msg {
		return dashboardPrimedMsg{data: loader.Prime(ctx)}
	}
}

// reconfigure clears the persisted config so onboarding can restart.
func reconfigure(ctx context.Context, loader *bootstrap.Loader) tea.Cmd {
	return func() tea.Msg {
		return reconfiguredMsg{err: loader.Reconfigure(ctx)}
	}
}

// waitForChange blocks on the machine's change channel and converts the next
// tick into a message. The handler re-arms it after every receive.
func waitForChange(m *onboarding.Machine) tea.Cmd {
	return func() tea.Msg {
		<-m.Changes()
		return machineChangedMsg{}
	}
}

// loadPrefs reads the persisted UI preferences once at mount.
func loadPrefs(ctx context.Context, prefs service.PreferenceStore) tea.Cmd {
	return func() tea.Msg {
		if prefs == nil {
			return prefsLoadedMsg{}
		}
		open, err := prefs.ChatPanelOpen(ctx)
		return prefsLoadedMsg{chatOpen: open, err: err}
	}
}

// saveChatPref persists the chat panel flag on every change.
func saveChatPref(ctx context.Context, prefs service.PreferenceStore, open bool) tea.Cmd {
	return func() tea.Msg {
		if prefs == nil {
			return prefSavedMsg{}
		}
		return prefSavedMsg{err: prefs.SetChatPanelOpen(ctx, open)}
	}
}
