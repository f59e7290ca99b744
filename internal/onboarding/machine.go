package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glintlabs/glint/internal/common"
	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/service"
)

// Step identifies the wizard's current state. Exactly one is active at a time.
type Step string

const (
	// StepAnalyzing is the initial state: the backend is analyzing synced data.
	StepAnalyzing Step = "analyzing"
	// StepNoSource means no source system is connected; terminal until an
	// out-of-band connect, or the sample-data escape hatch.
	StepNoSource Step = "no-source"
	// StepSyncWait means the data import has not produced enough data yet;
	// the poller owns this state.
	StepSyncWait Step = "sync-wait"
	// StepSelectFocus is the focus-area selection screen.
	StepSelectFocus Step = "select-focus"
	// StepRefine is the optional refinement questionnaire.
	StepRefine Step = "refine"
	// StepGenerating means the backend is building the dashboard.
	StepGenerating Step = "generating"
	// StepReveal is the terminal success state carrying the summary.
	StepReveal Step = "reveal"
)

// Options tunes the machine's timing and gating behavior. Zero values take
// the defaults below; the timing knobs are presentation contracts, not
// correctness properties, except where the tests in this package pin them.
type Options struct {
	// PrimaryEntity satisfies the sync gate on its own. Which entity is
	// "enough" is a product decision, so it is configuration here.
	PrimaryEntity        string
	AnalyzingLabels      []string
	GeneratingLabels     []string
	PollInterval         time.Duration
	SyncAckDelay         time.Duration
	RevealCadence        time.Duration
	RevealFloor          time.Duration
	LabelCadence         time.Duration
	GenerationFloor      time.Duration
	MaxDefaultSelections int
}

func (o Options) withDefaults() Options {
	if o.PrimaryEntity == "" {
		o.PrimaryEntity = "deals"
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.SyncAckDelay < 0 {
		o.SyncAckDelay = 0
	}
	if o.RevealCadence <= 0 {
		o.RevealCadence = time.Second
	}
	if o.RevealFloor <= 0 {
		o.RevealFloor = 3 * time.Second
	}
	if o.LabelCadence <= 0 {
		o.LabelCadence = 1500 * time.Millisecond
	}
	if o.GenerationFloor <= 0 {
		o.GenerationFloor = 3 * time.Second
	}
	if o.MaxDefaultSelections <= 0 {
		o.MaxDefaultSelections = 3
	}
	if len(o.AnalyzingLabels) == 0 {
		o.AnalyzingLabels = []string{
			"Connecting to your workspace",
			"Scanning synced records",
			"Scoring focus areas",
		}
	}
	if len(o.GeneratingLabels) == 0 {
		o.GeneratingLabels = []string{
			"Crunching the numbers",
			"Drafting widgets",
			"Writing insights",
			"Polishing your dashboard",
			"Ready",
		}
	}
	return o
}

// DefaultSelection computes the initial focus selection: every candidate that
// is both recommended and backed by usable data, or, when that set is empty,
// the first min(limit, available) candidates with any usable data.
func DefaultSelection(candidates []model.FocusCandidate, limit int) []string {
	var recommended []string
	for _, c := range candidates {
		if c.Recommended && c.HasUsableData() {
			recommended = append(recommended, c.ID)
		}
	}
	if len(recommended) > 0 {
		return recommended
	}

	var usable []string
	for _, c := range candidates {
		if !c.HasUsableData() {
			continue
		}
		usable = append(usable, c.ID)
		if len(usable) == limit {
			break
		}
	}
	return usable
}

// Machine drives the onboarding wizard. All state lives behind one mutex;
// network calls and timers run in the background and re-check, under the
// lock, that their result is still relevant before applying it. Leaving a
// state stops every timer and poller that state owns.
type Machine struct {
	start      time.Time
	gateway    service.Gateway
	logger     *slog.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	changes    chan struct{}
	onComplete func(model.GenerationSummary)

	mu            sync.Mutex
	step          Step
	epoch         int
	candidates    []model.FocusCandidate
	selected      map[string]bool
	trustSummary  string
	questions     []model.RefinementQuestion
	answers       map[string]model.Answer
	syncSnapshot  *model.SyncStatus
	summary       *model.GenerationSummary
	notice        string
	revealCount   int
	progressIndex int
	sampleMode    bool
	inFlight      bool
	ackPending    bool
	closed        bool

	poller *poller
	reveal *revealRun
	gen    *generationRun
	timers []*time.Timer

	opts Options
}

// New creates a machine. onComplete, if non-nil, is invoked asynchronously
// once the machine reaches reveal, with the generation summary.
func New(gw service.Gateway, opts Options, onComplete func(model.GenerationSummary)) *Machine {
	return &Machine{
		gateway:    gw,
		opts:       opts.withDefaults(),
		onComplete: onComplete,
		changes:    make(chan struct{}, 1),
		logger:     slog.Default().With("component", "onboarding"),
		selected:   make(map[string]bool),
	}
}

// Changes signals whenever observable machine state changed. The channel
// coalesces: consumers re-read the getters after each tick.
func (m *Machine) Changes() <-chan struct{} {
	return m.changes
}

// Start begins a fresh run in the analyzing step. ctx bounds every background
// call the machine makes for its whole lifetime.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx != nil {
		return fmt.Errorf("onboarding already started")
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.start = time.Now()
	m.enterAnalyzingLocked()
	return nil
}

// Resume rehydrates the machine from a persisted configuration: the candidate
// list and prior selection are restored and the step is normalized to
// select-focus so the user can re-confirm. No analysis request is issued.
func (m *Machine) Resume(ctx context.Context, cfg *model.DashboardConfig) error {
	if cfg == nil || len(cfg.Candidates) == 0 {
		return fmt.Errorf("cannot resume without persisted candidates")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx != nil {
		return fmt.Errorf("onboarding already started")
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.start = time.Now()

	m.candidates = append([]model.FocusCandidate(nil), cfg.Candidates...)
	m.seedSelectionLocked(cfg.SelectedFocusIDs)
	m.transitionLocked(StepSelectFocus)
	m.logger.Info("Resumed onboarding from persisted config",
		"candidates", len(m.candidates),
		"saved_step", cfg.Step)
	m.notifyLocked()
	return nil
}

// Close tears the machine down: all timers and pollers stop and in-flight
// results are discarded on arrival.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	m.stopOwnedLocked()
	if m.cancel != nil {
		m.cancel()
	}
}

// transitionLocked is the single exit hook: leaving any state stops the
// timers and poller that state owns and invalidates in-flight results.
func (m *Machine) transitionLocked(next Step) {
	m.stopOwnedLocked()
	m.epoch++
	m.inFlight = false
	m.ackPending = false
	m.step = next
}

func (m *Machine) stopOwnedLocked() {
	if m.poller != nil {
		m.poller.Stop()
		m.poller = nil
	}
	if m.reveal != nil {
		m.reveal.Stop()
		m.reveal = nil
	}
	if m.gen != nil {
		m.gen.Stop()
		m.gen = nil
	}
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = nil
}

// afterLocked schedules fn on the current state's epoch; if the machine has
// moved on by the time the timer fires, fn is silently dropped.
func (m *Machine) afterLocked(d time.Duration, fn func()) {
	epoch := m.epoch
	t := time.AfterFunc(d, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.epoch != epoch {
			return
		}
		fn()
	})
	m.timers = append(m.timers, t)
}

func (m *Machine) notifyLocked() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// --- analyzing ---

func (m *Machine) enterAnalyzingLocked() {
	m.transitionLocked(StepAnalyzing)
	m.notice = ""
	m.revealCount = 1
	m.syncSnapshot = nil

	epoch := m.epoch
	m.reveal = startRevealRun(len(m.opts.AnalyzingLabels), m.opts.RevealCadence, m.opts.RevealFloor, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.epoch != epoch {
			return
		}
		if m.revealCount < len(m.opts.AnalyzingLabels) {
			m.revealCount++
			m.notifyLocked()
		}
	})

	m.inFlight = true
	holdUntil := m.reveal.HoldUntil()
	go func() {
		result, err := m.gateway.StartAnalysis(m.ctx)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.epoch != epoch || m.step != StepAnalyzing {
			return
		}
		m.inFlight = false

		if err != nil {
			m.handleAnalysisErrorLocked(err)
			return
		}

		m.candidates = append([]model.FocusCandidate(nil), result.Candidates...)
		m.trustSummary = result.TrustSummary
		m.seedSelectionLocked(nil)

		// Honor the staggered-reveal floor before moving on.
		if wait := time.Until(holdUntil); wait > 0 {
			m.afterLocked(wait, func() {
				m.transitionLocked(StepSelectFocus)
				m.notifyLocked()
			})
			return
		}
		m.transitionLocked(StepSelectFocus)
		m.notifyLocked()
	}()
	m.notifyLocked()
}

func (m *Machine) handleAnalysisErrorLocked(err error) {
	switch Classify(err) {
	case ErrorNoSource:
		m.logger.Info("No source connected", "error", err)
		m.transitionLocked(StepNoSource)
	case ErrorSyncPending:
		m.logger.Info("Sync not ready, waiting", "error", err)
		m.enterSyncWaitLocked()
	default:
		// Stay on analyzing; surfacing the message is the caller's job.
		m.logger.Warn("Analysis failed", "error", err)
		if m.reveal != nil {
			m.reveal.Stop()
			m.reveal = nil
		}
		m.notice = err.Error()
	}
	m.notifyLocked()
}

// Retry re-runs the analyzing request after an unclassified failure.
func (m *Machine) Retry() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return common.ErrMachineFinished
	}
	if m.step != StepAnalyzing {
		return common.ErrWrongStep
	}
	if m.inFlight {
		return common.ErrRequestInFlight
	}
	m.enterAnalyzingLocked()
	return nil
}

// --- sync-wait ---

func (m *Machine) enterSyncWaitLocked() {
	m.transitionLocked(StepSyncWait)

	epoch := m.epoch
	m.poller = startPoller(m.ctx, m.gateway, m.opts.PollInterval, func(status model.SyncStatus) {
		m.applySyncStatus(epoch, status)
	})
}

func (m *Machine) applySyncStatus(epoch int, status model.SyncStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A result that arrives after sync-wait was left is a silent no-op.
	if m.closed || m.epoch != epoch || m.step != StepSyncWait {
		return
	}

	m.syncSnapshot = &status
	m.notifyLocked()

	if m.ackPending || !GateSatisfied(status, m.opts.PrimaryEntity) {
		return
	}

	// Gate satisfied: stop polling and re-enter analyzing exactly once,
	// after the brief "sync complete" acknowledgement.
	m.ackPending = true
	m.poller.Stop()
	m.logger.Info("Sync gate satisfied", "primary_entity", m.opts.PrimaryEntity)

	if m.opts.SyncAckDelay <= 0 {
		m.enterAnalyzingLocked()
		return
	}
	m.afterLocked(m.opts.SyncAckDelay, func() {
		m.enterAnalyzingLocked()
	})
}

// SyncAcknowledged reports whether the gate fired and the machine is in its
// short "sync complete" pause before re-analyzing.
func (m *Machine) SyncAcknowledged() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step == StepSyncWait && m.ackPending
}

// --- select-focus ---

func (m *Machine) seedSelectionLocked(saved []string) {
	m.selected = make(map[string]bool)

	valid := make(map[string]bool, len(m.candidates))
	for _, c := range m.candidates {
		valid[c.ID] = true
	}
	for _, id := range saved {
		if valid[id] {
			m.selected[id] = true
		}
	}
	if len(m.selected) > 0 {
		return
	}
	for _, id := range DefaultSelection(m.candidates, m.opts.MaxDefaultSelections) {
		m.selected[id] = true
	}
}

// ToggleFocus flips membership of a candidate id in the selection. Pure set
// toggle; no network call.
func (m *Machine) ToggleFocus(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return common.ErrMachineFinished
	}
	if m.step != StepSelectFocus {
		return common.ErrWrongStep
	}
	if m.selected[id] {
		delete(m.selected, id)
	} else {
		m.selected[id] = true
	}
	m.notifyLocked()
	return nil
}

// SubmitFocus submits the chosen focus areas. On success the machine moves to
// refine when the backend has follow-up questions, else straight to
// generating with an empty answer set.
func (m *Machine) SubmitFocus() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return common.ErrMachineFinished
	}
	if m.step != StepSelectFocus {
		return common.ErrWrongStep
	}
	if m.inFlight {
		return common.ErrRequestInFlight
	}
	ids := m.selectedIDsLocked()
	if len(ids) == 0 {
		return common.ErrNoSelection
	}

	m.inFlight = true
	m.notice = ""
	epoch := m.epoch
	go func() {
		questions, err := m.gateway.SelectFocusAreas(m.ctx, ids)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.epoch != epoch || m.step != StepSelectFocus {
			return
		}
		m.inFlight = false

		if err != nil {
			// Submission failure: stay put, nothing is lost, user retries.
			m.logger.Warn("Focus selection failed", "error", err)
			m.notice = err.Error()
			m.notifyLocked()
			return
		}

		if len(questions) == 0 {
			m.questions = nil
			m.answers = make(map[string]model.Answer)
			m.enterGeneratingLocked()
			return
		}

		m.questions = append([]model.RefinementQuestion(nil), questions...)
		m.answers = make(map[string]model.Answer, len(questions))
		for _, q := range questions {
			m.answers[q.ID] = model.InitialAnswer(q)
		}
		m.transitionLocked(StepRefine)
		m.notifyLocked()
	}()
	m.notifyLocked()
	return nil
}

// --- refine ---

// SelectAnswer sets the exclusive value of a single-choice question.
func (m *Machine) SelectAnswer(questionID, value string) error {
	return m.editAnswer(questionID, func(a *model.Answer) {
		a.Select(value)
	})
}

// ToggleAnswer flips set membership for a multi-choice question.
func (m *Machine) ToggleAnswer(questionID, value string) error {
	return m.editAnswer(questionID, func(a *model.Answer) {
		a.Toggle(value)
	})
}

// MoveAnswer swaps the ranked-order item at index with its neighbor at
// index+delta; boundary moves are no-ops.
func (m *Machine) MoveAnswer(questionID string, index, delta int) error {
	return m.editAnswer(questionID, func(a *model.Answer) {
		a.Move(index, delta)
	})
}

func (m *Machine) editAnswer(questionID string, edit func(*model.Answer)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return common.ErrMachineFinished
	}
	if m.step != StepRefine {
		return common.ErrWrongStep
	}
	answer, ok := m.answers[questionID]
	if !ok {
		return fmt.Errorf("unknown question %q", questionID)
	}
	edit(&answer)
	m.answers[questionID] = answer
	m.notifyLocked()
	return nil
}

// SubmitRefinement carries the full answer map into generating.
func (m *Machine) SubmitRefinement() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return common.ErrMachineFinished
	}
	if m.step != StepRefine {
		return common.ErrWrongStep
	}
	if m.inFlight {
		return common.ErrRequestInFlight
	}
	m.enterGeneratingLocked()
	return nil
}

// --- generating ---

func (m *Machine) enterGeneratingLocked() {
	m.transitionLocked(StepGenerating)
	m.notice = ""
	m.progressIndex = 0

	answers := make(map[string]model.Answer, len(m.answers))
	for k, v := range m.answers {
		answers[k] = v
	}

	epoch := m.epoch
	labelCount := len(m.opts.GeneratingLabels)
	m.gen = startGenerationRun(labelCount, m.opts.LabelCadence, m.opts.GenerationFloor, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.epoch != epoch {
			return
		}
		// Cap at the second-to-last label until the call resolves.
		if m.progressIndex < labelCount-2 {
			m.progressIndex++
			m.notifyLocked()
		}
	})
	gen := m.gen

	m.inFlight = true
	go func() {
		summary, err := m.gateway.SubmitRefinement(m.ctx, answers)

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.epoch != epoch || m.step != StepGenerating {
			return
		}
		m.inFlight = false

		if err != nil {
			// Back to focus selection; the answers are deliberately dropped.
			m.logger.Warn("Generation failed", "error", err)
			m.transitionLocked(StepSelectFocus)
			m.questions = nil
			m.answers = nil
			m.notice = err.Error()
			m.notifyLocked()
			return
		}

		gen.Stop()
		m.progressIndex = labelCount - 1
		m.notifyLocked()

		finish := func() {
			m.transitionLocked(StepReveal)
			m.summary = summary
			m.notifyLocked()
			if m.onComplete != nil {
				go m.onComplete(*summary)
			}
		}
		if wait := gen.Remaining(time.Now()); wait > 0 {
			m.afterLocked(wait, finish)
			return
		}
		finish()
	}()
	m.notifyLocked()
}

// --- no-source / sample mode ---

// UseSampleData short-circuits from no-source straight to a populated
// reveal-equivalent state built from non-live sample data. No wizard endpoint
// is contacted.
func (m *Machine) UseSampleData() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return common.ErrMachineFinished
	}
	if m.step != StepNoSource {
		return common.ErrWrongStep
	}

	m.transitionLocked(StepReveal)
	m.sampleMode = true
	summary := SampleSummary()
	m.summary = &summary
	m.logger.Info("Entering sample-data mode")
	m.notifyLocked()
	if m.onComplete != nil {
		go m.onComplete(summary)
	}
	return nil
}

// --- accessors ---

// Step returns the wizard's current state.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Candidates returns the focus candidates in server order.
func (m *Machine) Candidates() []model.FocusCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.FocusCandidate(nil), m.candidates...)
}

// TrustSummary returns the backend's confidence blurb for the analysis.
func (m *Machine) TrustSummary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trustSummary
}

func (m *Machine) selectedIDsLocked() []string {
	ids := make([]string, 0, len(m.selected))
	for _, c := range m.candidates {
		if m.selected[c.ID] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// SelectedFocusIDs returns the current selection, ordered like Candidates.
func (m *Machine) SelectedFocusIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedIDsLocked()
}

// IsSelected reports selection membership for one candidate.
func (m *Machine) IsSelected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected[id]
}

// Questions returns the refinement questions in server order.
func (m *Machine) Questions() []model.RefinementQuestion {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RefinementQuestion(nil), m.questions...)
}

// Answer returns the current answer for a question.
func (m *Machine) Answer(questionID string) (model.Answer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[questionID]
	return a, ok
}

// SyncSnapshot returns the last-fetched sync status, or nil before the first
// poll of the current sync-wait.
func (m *Machine) SyncSnapshot() *model.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.syncSnapshot == nil {
		return nil
	}
	snapshot := *m.syncSnapshot
	return &snapshot
}

// RevealedLabels returns the analyzing-phase labels visible so far.
func (m *Machine) RevealedLabels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != StepAnalyzing {
		return nil
	}
	n := m.revealCount
	if n > len(m.opts.AnalyzingLabels) {
		n = len(m.opts.AnalyzingLabels)
	}
	return append([]string(nil), m.opts.AnalyzingLabels[:n]...)
}

// ProgressIndex returns the generating-phase label cursor.
func (m *Machine) ProgressIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progressIndex
}

// CurrentProgressLabel returns the generating-phase label under the cursor.
func (m *Machine) CurrentProgressLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.progressIndex < 0 || m.progressIndex >= len(m.opts.GeneratingLabels) {
		return ""
	}
	return m.opts.GeneratingLabels[m.progressIndex]
}

// Notice returns the unclassified error message to surface, if any.
func (m *Machine) Notice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notice
}

// Summary returns the generation summary once the machine reached reveal.
func (m *Machine) Summary() *model.GenerationSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.summary == nil {
		return nil
	}
	summary := *m.summary
	return &summary
}

// InSampleMode reports whether reveal was reached via the sample-data hatch.
func (m *Machine) InSampleMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sampleMode
}

// InFlight reports whether a network-issuing transition is underway; callers
// use it to disable their submit controls.
func (m *Machine) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}
