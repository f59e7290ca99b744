package tui

import (
	"github.com/glintlabs/glint/internal/bootstrap"
	"github.com/glintlabs/glint/internal/model"
)

// Bootstrap messages.
type bootstrapDoneMsg struct {
	decision *bootstrap.Decision
	err      error
}

type dashboardPrimedMsg struct {
	data model.DashboardData
}

type reconfiguredMsg struct {
	err error
}

// Onboarding messages.

// machineChangedMsg signals that the state machine's observable state moved;
// the model re-reads the getters and re-arms the wait.
type machineChangedMsg struct{}

// Preference messages.
type prefsLoadedMsg struct {
	err      error
	chatOpen bool
}

type prefSavedMsg struct {
	err error
}
