package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glintlabs/glint/internal/common"
	"github.com/glintlabs/glint/internal/gateway"
	"github.com/glintlabs/glint/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testOptions shrinks every timing knob so the suite runs in milliseconds.
func testOptions() Options {
	return Options{
		PrimaryEntity:   "deals",
		PollInterval:    20 * time.Millisecond,
		SyncAckDelay:    5 * time.Millisecond,
		RevealCadence:   5 * time.Millisecond,
		RevealFloor:     20 * time.Millisecond,
		LabelCadence:    10 * time.Millisecond,
		GenerationFloor: 80 * time.Millisecond,
	}
}

func waitForStep(t *testing.T, m *Machine, want Step) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.Step() == want
	}, 2*time.Second, 2*time.Millisecond, "machine never reached step %q (at %q)", want, m.Step())
}

func twoCandidates() *model.AnalysisResult {
	return &model.AnalysisResult{
		TrustSummary: "enough data for pipeline analytics",
		Candidates: []model.FocusCandidate{
			{ID: "pipeline", Name: "Pipeline health", Recommended: true, Trust: model.TrustHigh},
			{ID: "churn", Name: "Churn risk", Trust: model.TrustNone, Warnings: []string{"too few closed deals"}},
		},
	}
}

func TestDefaultSelection(t *testing.T) {
	tests := []struct {
		name       string
		candidates []model.FocusCandidate
		want       []string
	}{
		{
			name: "recommended and usable wins",
			candidates: []model.FocusCandidate{
				{ID: "a", Recommended: true, Trust: model.TrustHigh},
				{ID: "b", Recommended: true, Trust: model.TrustNone},
				{ID: "c", Trust: model.TrustHigh},
				{ID: "d", Recommended: true, Trust: model.TrustLow},
			},
			want: []string{"a", "d"},
		},
		{
			name: "falls back to first three usable",
			candidates: []model.FocusCandidate{
				{ID: "a", Trust: model.TrustNone},
				{ID: "b", Trust: model.TrustLow},
				{ID: "c", Trust: model.TrustMedium},
				{ID: "d", Trust: model.TrustHigh},
				{ID: "e", Trust: model.TrustHigh},
			},
			want: []string{"b", "c", "d"},
		},
		{
			name: "fewer usable than the cap",
			candidates: []model.FocusCandidate{
				{ID: "a", Trust: model.TrustNone},
				{ID: "b", Trust: model.TrustLow},
			},
			want: []string{"b"},
		},
		{
			name:       "no candidates",
			candidates: nil,
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultSelection(tt.candidates, 3)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMachine_FreshHappyPath(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return twoCandidates(), nil
	}
	gw.SelectFocusAreasFn = func(_ context.Context, _ []string) ([]model.RefinementQuestion, error) {
		return []model.RefinementQuestion{
			{
				ID:     "cadence",
				Prompt: "How often do you review results?",
				Kind:   model.QuestionSingleChoice,
				Options: []model.QuestionOption{
					{Value: "weekly", Label: "Weekly"},
					{Value: "monthly", Label: "Monthly"},
				},
			},
		}, nil
	}

	opts := testOptions()
	callDelay := opts.GenerationFloor + 20*time.Millisecond // resolves after the floor
	gw.SubmitRefinementFn = func(_ context.Context, _ map[string]model.Answer) (*model.GenerationSummary, error) {
		time.Sleep(callDelay)
		return &model.GenerationSummary{WidgetCount: 6, InsightCount: 3}, nil
	}

	var completedAt time.Time
	done := make(chan model.GenerationSummary, 1)
	m := New(gw, opts, func(s model.GenerationSummary) {
		completedAt = time.Now()
		done <- s
	})
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, StepAnalyzing, m.Step())

	waitForStep(t, m, StepSelectFocus)

	// Default selection: exactly the recommended candidate with usable data.
	assert.Equal(t, []string{"pipeline"}, m.SelectedFocusIDs())
	assert.Equal(t, "enough data for pipeline analytics", m.TrustSummary())

	// Select both, then submit.
	require.NoError(t, m.ToggleFocus("churn"))
	assert.Equal(t, []string{"pipeline", "churn"}, m.SelectedFocusIDs())

	require.NoError(t, m.SubmitFocus())
	waitForStep(t, m, StepRefine)

	// No server default: the answer initializes to the first option.
	answer, ok := m.Answer("cadence")
	require.True(t, ok)
	assert.Equal(t, model.QuestionSingleChoice, answer.Kind)
	assert.Equal(t, "weekly", answer.Scalar)

	enteredGenerating := time.Now()
	require.NoError(t, m.SubmitRefinement())
	waitForStep(t, m, StepGenerating)

	select {
	case summary := <-done:
		assert.Equal(t, 6, summary.WidgetCount)
		assert.Equal(t, 3, summary.InsightCount)
	case <-time.After(2 * time.Second):
		t.Fatal("machine never completed")
	}
	waitForStep(t, m, StepReveal)

	// A call slower than the floor gates the transition, not the timer.
	assert.GreaterOrEqual(t, completedAt.Sub(enteredGenerating), opts.GenerationFloor)

	require.NotNil(t, m.Summary())
	assert.Equal(t, 6, m.Summary().WidgetCount)

	require.Len(t, gw.SelectFocusCalls, 1)
	assert.Equal(t, []string{"pipeline", "churn"}, gw.SelectFocusCalls[0])
	require.Len(t, gw.SubmitRefinementArgs, 1)
	assert.Equal(t, "weekly", gw.SubmitRefinementArgs[0]["cadence"].Scalar)
}

func TestMachine_GenerationMinimumDuration(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return twoCandidates(), nil
	}
	// No questions: selection jumps straight to generating.
	gw.SelectFocusAreasFn = func(_ context.Context, _ []string) ([]model.RefinementQuestion, error) {
		return nil, nil
	}
	gw.SubmitRefinementFn = func(_ context.Context, _ map[string]model.Answer) (*model.GenerationSummary, error) {
		time.Sleep(10 * time.Millisecond) // resolves well before the floor
		return &model.GenerationSummary{WidgetCount: 2}, nil
	}

	opts := testOptions()
	done := make(chan time.Time, 1)
	m := New(gw, opts, func(model.GenerationSummary) {
		done <- time.Now()
	})
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSelectFocus)

	enteredGenerating := time.Now()
	require.NoError(t, m.SubmitFocus())
	waitForStep(t, m, StepGenerating)

	// Empty answer set was still submitted.
	select {
	case completedAt := <-done:
		elapsed := completedAt.Sub(enteredGenerating)
		assert.GreaterOrEqual(t, elapsed, opts.GenerationFloor,
			"reveal happened before the minimum duration")
		assert.Less(t, elapsed, opts.GenerationFloor+10*opts.LabelCadence,
			"reveal happened far too late")
	case <-time.After(2 * time.Second):
		t.Fatal("machine never completed")
	}

	waitForStep(t, m, StepReveal)
	require.Len(t, gw.SubmitRefinementArgs, 1)
	assert.Empty(t, gw.SubmitRefinementArgs[0])
}

func TestMachine_SyncLoop(t *testing.T) {
	gw := gateway.NewMockGateway()

	analysisCalls := 0
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		analysisCalls++
		if analysisCalls == 1 {
			return nil, errors.New("Sync pending for this account")
		}
		return twoCandidates(), nil
	}

	statusCalls := 0
	gw.GetSyncStatusFn = func(_ context.Context) (*model.SyncStatus, error) {
		statusCalls++
		if statusCalls == 1 {
			return &model.SyncStatus{Entities: []model.EntityStatus{
				{Entity: "deals", State: model.EntitySyncing, Records: 120},
				{Entity: "contacts", State: model.EntitySyncing, Records: 40},
			}}, nil
		}
		return &model.SyncStatus{Entities: []model.EntityStatus{
			{Entity: "deals", State: model.EntityComplete, Records: 1200},
			{Entity: "contacts", State: model.EntitySyncing, Records: 300},
		}}, nil
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSyncWait)

	// First check: all syncing, no transition; snapshot recorded.
	require.Eventually(t, func() bool {
		return m.SyncSnapshot() != nil
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, StepSyncWait, m.Step())

	// Second check satisfies the gate on the primary entity alone.
	waitForStep(t, m, StepSelectFocus)

	// The poller stopped at the gate: checks do not keep accumulating.
	_, settled := gw.Calls()
	time.Sleep(5 * testOptions().PollInterval)
	_, after := gw.Calls()
	assert.Equal(t, settled, after, "poller kept polling after leaving sync-wait")
	assert.Equal(t, 2, analysisCalls)
}

func TestMachine_NoStaleSyncApplication(t *testing.T) {
	gw := gateway.NewMockGateway()
	analysisCalls := 0
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		analysisCalls++
		if analysisCalls == 1 {
			return nil, errors.New("initial sync still pending")
		}
		return twoCandidates(), nil
	}

	var gateMu sync.Mutex
	gateOpen := false
	gw.GetSyncStatusFn = func(_ context.Context) (*model.SyncStatus, error) {
		gateMu.Lock()
		open := gateOpen
		gateMu.Unlock()
		state := model.EntitySyncing
		if open {
			state = model.EntityComplete
		}
		return &model.SyncStatus{Entities: []model.EntityStatus{
			{Entity: "deals", State: state, Records: 10},
		}}, nil
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSyncWait)

	m.mu.Lock()
	staleEpoch := m.epoch
	m.mu.Unlock()

	gateMu.Lock()
	gateOpen = true
	gateMu.Unlock()

	waitForStep(t, m, StepSelectFocus)

	// A status result from the abandoned sync-wait must be a silent no-op.
	m.applySyncStatus(staleEpoch, model.SyncStatus{Entities: []model.EntityStatus{
		{Entity: "deals", State: model.EntityError, Records: 0},
	}})

	assert.Equal(t, StepSelectFocus, m.Step())
	snapshot := m.SyncSnapshot()
	if snapshot != nil {
		deals, ok := snapshot.Entity("deals")
		require.True(t, ok)
		assert.NotEqual(t, model.EntityError, deals.State)
	}
}

func TestMachine_NoSourceThenSampleMode(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return nil, errors.New("CRM not connected")
	}

	done := make(chan model.GenerationSummary, 1)
	m := New(gw, testOptions(), func(s model.GenerationSummary) { done <- s })
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepNoSource)

	// The escape hatch is only offered on the no-source screen.
	require.NoError(t, m.UseSampleData())
	waitForStep(t, m, StepReveal)

	assert.True(t, m.InSampleMode())
	require.NotNil(t, m.Summary())
	assert.Positive(t, m.Summary().WidgetCount)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("completion callback never fired")
	}

	// No wizard endpoint was contacted.
	assert.Empty(t, gw.SelectFocusCalls)
	assert.Empty(t, gw.SubmitRefinementArgs)
}

func TestMachine_UnclassifiedErrorStaysOnAnalyzing(t *testing.T) {
	gw := gateway.NewMockGateway()
	analysisCalls := 0
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		analysisCalls++
		if analysisCalls == 1 {
			return nil, errors.New("internal server error")
		}
		return twoCandidates(), nil
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))

	require.Eventually(t, func() bool {
		return m.Notice() != ""
	}, 2*time.Second, 2*time.Millisecond)
	assert.Equal(t, StepAnalyzing, m.Step())

	// Explicit retry succeeds.
	require.NoError(t, m.Retry())
	waitForStep(t, m, StepSelectFocus)
	assert.Empty(t, m.Notice())
}

func TestMachine_ToggleFocusIsIdempotent(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return twoCandidates(), nil
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSelectFocus)

	before := m.SelectedFocusIDs()
	require.NoError(t, m.ToggleFocus("churn"))
	require.NoError(t, m.ToggleFocus("churn"))
	assert.Equal(t, before, m.SelectedFocusIDs())

	// And deselecting everything blocks submission.
	require.NoError(t, m.ToggleFocus("pipeline"))
	err := m.SubmitFocus()
	assert.ErrorIs(t, err, common.ErrNoSelection)
}

func TestMachine_SubmitFocusReentrancyGuard(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return twoCandidates(), nil
	}
	release := make(chan struct{})
	gw.SelectFocusAreasFn = func(_ context.Context, _ []string) ([]model.RefinementQuestion, error) {
		<-release
		return nil, nil
	}
	gw.SubmitRefinementFn = func(_ context.Context, _ map[string]model.Answer) (*model.GenerationSummary, error) {
		return &model.GenerationSummary{}, nil
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSelectFocus)

	require.NoError(t, m.SubmitFocus())
	assert.ErrorIs(t, m.SubmitFocus(), common.ErrRequestInFlight)
	close(release)

	waitForStep(t, m, StepReveal)
	assert.Len(t, gw.SelectFocusCalls, 1)
}

func TestMachine_GenerationFailureReturnsToSelection(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return twoCandidates(), nil
	}
	gw.SelectFocusAreasFn = func(_ context.Context, _ []string) ([]model.RefinementQuestion, error) {
		return []model.RefinementQuestion{
			{
				ID:      "rank",
				Kind:    model.QuestionRankedOrder,
				Options: []model.QuestionOption{{Value: "a"}, {Value: "b"}},
			},
		}, nil
	}
	gw.SubmitRefinementFn = func(_ context.Context, _ map[string]model.Answer) (*model.GenerationSummary, error) {
		return nil, errors.New("generation backend unavailable")
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSelectFocus)
	require.NoError(t, m.SubmitFocus())
	waitForStep(t, m, StepRefine)
	require.NoError(t, m.SubmitRefinement())

	// Failure: back to selection, answers dropped, selection preserved.
	waitForStep(t, m, StepSelectFocus)
	assert.NotEmpty(t, m.Notice())
	assert.Empty(t, m.Questions())
	_, ok := m.Answer("rank")
	assert.False(t, ok)
	assert.Equal(t, []string{"pipeline"}, m.SelectedFocusIDs())
}

func TestMachine_ResumeSkipsAnalysis(t *testing.T) {
	gw := gateway.NewMockGateway()

	cfg := &model.DashboardConfig{
		Step: model.StepMarkerRefinement,
		Candidates: []model.FocusCandidate{
			{ID: "pipeline", Name: "Pipeline health", Recommended: true, Trust: model.TrustHigh},
			{ID: "agents", Name: "Agent performance", Trust: model.TrustMedium},
		},
		SelectedFocusIDs: []string{"agents"},
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Resume(context.Background(), cfg))

	// Normalized to select-focus with the persisted list and selection intact.
	assert.Equal(t, StepSelectFocus, m.Step())
	assert.Len(t, m.Candidates(), 2)
	assert.Equal(t, []string{"agents"}, m.SelectedFocusIDs())
	assert.Equal(t, 0, gw.StartAnalysisCalls)
}

func TestMachine_ResumeRecomputesEmptySelection(t *testing.T) {
	gw := gateway.NewMockGateway()
	cfg := &model.DashboardConfig{
		Step: model.StepMarkerSelection,
		Candidates: []model.FocusCandidate{
			{ID: "pipeline", Recommended: true, Trust: model.TrustHigh},
			{ID: "churn", Trust: model.TrustNone},
		},
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Resume(context.Background(), cfg))
	assert.Equal(t, []string{"pipeline"}, m.SelectedFocusIDs())
}

func TestMachine_ResumeRequiresCandidates(t *testing.T) {
	m := New(gateway.NewMockGateway(), testOptions(), nil)
	defer m.Close()

	assert.Error(t, m.Resume(context.Background(), nil))
	assert.Error(t, m.Resume(context.Background(), &model.DashboardConfig{Step: model.StepMarkerSelection}))
}

func TestMachine_RefinementAnswerEditing(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return twoCandidates(), nil
	}
	gw.SelectFocusAreasFn = func(_ context.Context, _ []string) ([]model.RefinementQuestion, error) {
		return []model.RefinementQuestion{
			{ID: "single", Kind: model.QuestionSingleChoice, Options: []model.QuestionOption{{Value: "a"}, {Value: "b"}}},
			{ID: "multi", Kind: model.QuestionMultiChoice, Options: []model.QuestionOption{{Value: "x"}, {Value: "y"}}},
			{ID: "rank", Kind: model.QuestionRankedOrder, Options: []model.QuestionOption{{Value: "p"}, {Value: "q"}, {Value: "r"}}},
		}, nil
	}

	m := New(gw, testOptions(), nil)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSelectFocus)
	require.NoError(t, m.SubmitFocus())
	waitForStep(t, m, StepRefine)

	// Every question has an initialized answer before refine is shown.
	for _, id := range []string{"single", "multi", "rank"} {
		_, ok := m.Answer(id)
		assert.True(t, ok, "answer for %q not initialized", id)
	}

	require.NoError(t, m.SelectAnswer("single", "b"))
	single, _ := m.Answer("single")
	assert.Equal(t, "b", single.Scalar)

	require.NoError(t, m.ToggleAnswer("multi", "y"))
	multi, _ := m.Answer("multi")
	assert.Equal(t, []string{"y"}, multi.Values)

	require.NoError(t, m.MoveAnswer("rank", 2, -1))
	rank, _ := m.Answer("rank")
	assert.Equal(t, []string{"p", "r", "q"}, rank.Values)

	assert.Error(t, m.SelectAnswer("missing", "a"))
}

func TestMachine_CloseStopsEverything(t *testing.T) {
	gw := gateway.NewMockGateway()
	gw.StartAnalysisFn = func(_ context.Context) (*model.AnalysisResult, error) {
		return nil, errors.New("sync pending")
	}
	gw.GetSyncStatusFn = func(_ context.Context) (*model.SyncStatus, error) {
		return &model.SyncStatus{Entities: []model.EntityStatus{
			{Entity: "deals", State: model.EntitySyncing},
		}}, nil
	}

	m := New(gw, testOptions(), nil)
	require.NoError(t, m.Start(context.Background()))
	waitForStep(t, m, StepSyncWait)

	m.Close()
	_, settled := gw.Calls()
	time.Sleep(5 * testOptions().PollInterval)
	_, after := gw.Calls()
	assert.Equal(t, settled, after, "poller survived Close")
}
