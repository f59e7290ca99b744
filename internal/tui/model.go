// Package tui renders the glint dashboard client: the onboarding wizard, the
// sync-wait and no-source screens, and the ready dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/glintlabs/glint/internal/bootstrap"
	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/onboarding"
	"github.com/glintlabs/glint/internal/service"
)

// screen is the top-level view the client is showing.
type screen int

const (
	screenLoading screen = iota
	screenNoSource
	screenOnboarding
	screenDashboard
)

// Model holds the main TUI state.
type Model struct {
	startTime time.Time
	ctx       context.Context
	gateway   service.Gateway
	prefs     service.PreferenceStore
	loader    *bootstrap.Loader
	machine   *onboarding.Machine
	config    Config
	keymap    KeyMap
	spinner   spinner.Model

	data      model.DashboardData
	lastError error

	screen      screen
	width       int
	height      int
	cursor      int
	questionIdx int
	optionIdx   int
	chatOpen    bool
	quitting    bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5EA0EF"))

	return Model{
		ctx:       ctx,
		config:    cfg,
		gateway:   cfg.Gateway,
		prefs:     cfg.Prefs,
		loader:    bootstrap.New(cfg.Gateway),
		keymap:    DefaultKeyMap(),
		spinner:   sp,
		screen:    screenLoading,
		startTime: time.Now(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.spinner.Tick,
		loadPrefs(m.ctx, m.prefs),
	}

	// Demo mode skips the backend entirely and renders sample data.
	if m.config.Demo {
		cmds = append(cmds, func() tea.Msg {
			return bootstrapDoneMsg{decision: &bootstrap.Decision{
				Route:      bootstrap.RouteNoSource,
				Connection: bootstrap.ConnectionAbsent,
			}}
		})
	} else {
		cmds = append(cmds, loadBootstrap(m.ctx, m.loader))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bootstrapDoneMsg:
		return m.handleBootstrapDone(msg)

	case machineChangedMsg:
		return m.handleMachineChange()

	case dashboardPrimedMsg:
		m.data = msg.data
		m.screen = screenDashboard
		return m, nil

	case reconfiguredMsg:
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		return m.startOnboarding(nil)

	case prefsLoadedMsg:
		if msg.err == nil {
			m.chatOpen = msg.chatOpen
		}
		return m, nil

	case prefSavedMsg:
		if msg.err != nil {
			m.lastError = msg.err
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleBootstrapDone(msg bootstrapDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.lastError = msg.err
		m.screen = screenNoSource
		return m, nil
	}
	m.lastError = nil

	switch msg.decision.Route {
	case bootstrap.RouteNoSource:
		m.screen = screenNoSource
		return m, nil
	case bootstrap.RouteResumeOnboarding:
		return m.startOnboarding(msg.decision.Config)
	case bootstrap.RouteDashboard:
		return m, primeDashboard(m.ctx, m.loader)
	default:
		return m.startOnboarding(nil)
	}
}

// startOnboarding creates a fresh machine, starting from analyzing or resuming
// from a persisted config.
func (m Model) startOnboarding(cfg *model.DashboardConfig) (tea.Model, tea.Cmd) {
	if m.machine != nil {
		m.machine.Close()
	}
	m.machine = onboarding.New(m.gateway, m.config.Onboarding, nil)

	var err error
	if cfg != nil {
		err = m.machine.Resume(m.ctx, cfg)
	} else {
		err = m.machine.Start(m.ctx)
	}
	if err != nil {
		m.lastError = err
		m.screen = screenNoSource
		return m, nil
	}

	m.screen = screenOnboarding
	m.cursor = 0
	m.questionIdx = 0
	m.optionIdx = 0
	return m, waitForChange(m.machine)
}

func (m Model) handleMachineChange() (tea.Model, tea.Cmd) {
	if m.machine == nil {
		return m, nil
	}

	// Keep cursors inside the new step's bounds.
	switch m.machine.Step() {
	case onboarding.StepSelectFocus:
		if n := len(m.machine.Candidates()); m.cursor >= n && n > 0 {
			m.cursor = n - 1
		}
	case onboarding.StepRefine:
		if n := len(m.machine.Questions()); m.questionIdx >= n && n > 0 {
			m.questionIdx = n - 1
		}
	}
	return m, waitForChange(m.machine)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.screen {
	case screenLoading:
		if key.Matches(msg, m.keymap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	case screenNoSource:
		return m.handleNoSourceKey(msg)
	case screenOnboarding:
		return m.handleOnboardingKey(msg)
	case screenDashboard:
		return m.handleDashboardKey(msg)
	}
	return m, nil
}

func (m Model) handleNoSourceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Sample):
		m.loader.UseSample(onboarding.SampleDashboard())
		m.data = m.loader.Data()
		m.screen = screenDashboard
		return m, nil
	case key.Matches(msg, m.keymap.Retry):
		m.screen = screenLoading
		m.lastError = nil
		return m, loadBootstrap(m.ctx, m.loader)
	}
	return m, nil
}

func (m Model) handleOnboardingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.machine == nil {
		return m, nil
	}

	switch m.machine.Step() {
	case onboarding.StepAnalyzing:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Retry):
			if err := m.machine.Retry(); err != nil {
				m.lastError = err
			}
		}

	case onboarding.StepNoSource:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Sample):
			if err := m.machine.UseSampleData(); err != nil {
				m.lastError = err
			}
		case key.Matches(msg, m.keymap.Retry):
			m.machine.Close()
			m.machine = nil
			m.screen = screenLoading
			return m, loadBootstrap(m.ctx, m.loader)
		}

	case onboarding.StepSyncWait, onboarding.StepGenerating:
		if key.Matches(msg, m.keymap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}

	case onboarding.StepSelectFocus:
		return m.handleSelectFocusKey(msg)

	case onboarding.StepRefine:
		return m.handleRefineKey(msg)

	case onboarding.StepReveal:
		if key.Matches(msg, m.keymap.Submit) {
			if m.machine.InSampleMode() {
				m.loader.UseSample(onboarding.SampleDashboard())
				m.data = m.loader.Data()
				m.screen = screenDashboard
				return m, nil
			}
			return m, primeDashboard(m.ctx, m.loader)
		}
		if key.Matches(msg, m.keymap.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleSelectFocusKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	candidates := m.machine.Candidates()

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(candidates)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Toggle):
		if m.cursor < len(candidates) {
			if err := m.machine.ToggleFocus(candidates[m.cursor].ID); err != nil {
				m.lastError = err
			}
		}
	case key.Matches(msg, m.keymap.Submit):
		if err := m.machine.SubmitFocus(); err != nil {
			m.lastError = err
		} else {
			m.lastError = nil
			m.questionIdx = 0
			m.optionIdx = 0
		}
	case key.Matches(msg, m.keymap.Retry):
		m.lastError = nil
	}
	return m, nil
}

func (m Model) handleRefineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	questions := m.machine.Questions()
	if len(questions) == 0 {
		return m, nil
	}
	q := questions[m.questionIdx]

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		if m.optionIdx > 0 {
			m.optionIdx--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.optionIdx < len(q.Options)-1 {
			m.optionIdx++
		}

	case key.Matches(msg, m.keymap.Toggle):
		if m.optionIdx >= len(q.Options) {
			break
		}
		value := q.Options[m.optionIdx].Value
		var err error
		switch q.Kind {
		case model.QuestionSingleChoice:
			err = m.machine.SelectAnswer(q.ID, value)
		case model.QuestionMultiChoice:
			err = m.machine.ToggleAnswer(q.ID, value)
		}
		if err != nil {
			m.lastError = err
		}

	case key.Matches(msg, m.keymap.MoveUp):
		if q.Kind == model.QuestionRankedOrder {
			if err := m.machine.MoveAnswer(q.ID, m.optionIdx, -1); err == nil && m.optionIdx > 0 {
				m.optionIdx--
			}
		}

	case key.Matches(msg, m.keymap.MoveDown):
		if q.Kind == model.QuestionRankedOrder {
			if err := m.machine.MoveAnswer(q.ID, m.optionIdx, 1); err == nil && m.optionIdx < len(q.Options)-1 {
				m.optionIdx++
			}
		}

	case key.Matches(msg, m.keymap.Submit):
		// Walk the questions; the last enter submits the whole map.
		if m.questionIdx < len(questions)-1 {
			m.questionIdx++
			m.optionIdx = 0
			return m, nil
		}
		if err := m.machine.SubmitRefinement(); err != nil {
			m.lastError = err
		}
	}
	return m, nil
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.ChatPanel):
		m.chatOpen = !m.chatOpen
		return m, saveChatPref(m.ctx, m.prefs, m.chatOpen)
	case key.Matches(msg, m.keymap.Refresh):
		if !m.data.SampleMode {
			return m, primeDashboard(m.ctx, m.loader)
		}
	case key.Matches(msg, m.keymap.Reconfigure):
		if m.data.SampleMode {
			// Sample mode has no persisted config to clear.
			return m.startOnboarding(nil)
		}
		return m, reconfigure(m.ctx, m.loader)
	}
	return m, nil
}
