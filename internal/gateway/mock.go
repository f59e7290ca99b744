package gateway

import (
	"context"
	"sync"

	"github.com/glintlabs/glint/internal/model"
	"github.com/glintlabs/glint/internal/service"
)

// MockGateway is a mock implementation of service.Gateway for testing.
type MockGateway struct {
	// Functions that can be set by tests to control behavior
	StartAnalysisFn       func(ctx context.Context) (*model.AnalysisResult, error)
	SelectFocusAreasFn    func(ctx context.Context, ids []string) ([]model.RefinementQuestion, error)
	SubmitRefinementFn    func(ctx context.Context, answers map[string]model.Answer) (*model.GenerationSummary, error)
	GetSyncStatusFn       func(ctx context.Context) (*model.SyncStatus, error)
	TriggerSyncFn         func(ctx context.Context) error
	GetConnectionStatusFn func(ctx context.Context) (bool, error)
	GetConfigFn           func(ctx context.Context) (*model.DashboardConfig, error)
	ClearConfigFn         func(ctx context.Context) error
	GetWidgetsFn          func(ctx context.Context) ([]model.Widget, error)
	GetInsightsFn         func(ctx context.Context) ([]model.Insight, error)
	GetDataUsageFn        func(ctx context.Context) (*model.DataUsage, error)

	// Call tracking
	mu                   sync.Mutex
	StartAnalysisCalls   int
	SelectFocusCalls     [][]string
	SubmitRefinementArgs []map[string]model.Answer
	SyncStatusCalls      int
	TriggerSyncCalls     int
	ConnectionCalls      int
	ConfigCalls          int
	ClearConfigCalls     int
	WidgetsCalls         int
	InsightsCalls        int
	DataUsageCalls       int
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// StartAnalysis implements service.Gateway.
func (m *MockGateway) StartAnalysis(ctx context.Context) (*model.AnalysisResult, error) {
	m.mu.Lock()
	m.StartAnalysisCalls++
	m.mu.Unlock()

	if m.StartAnalysisFn != nil {
		return m.StartAnalysisFn(ctx)
	}
	return &model.AnalysisResult{}, nil
}

// SelectFocusAreas implements service.Gateway.
func (m *MockGateway) SelectFocusAreas(ctx context.Context, ids []string) ([]model.RefinementQuestion, error) {
	m.mu.Lock()
	m.SelectFocusCalls = append(m.SelectFocusCalls, append([]string(nil), ids...))
	m.mu.Unlock()

	if m.SelectFocusAreasFn != nil {
		return m.SelectFocusAreasFn(ctx, ids)
	}
	return nil, nil
}

// SubmitRefinement implements service.Gateway.
func (m *MockGateway) SubmitRefinement(ctx context.Context, answers map[string]model.Answer) (*model.GenerationSummary, error) {
	copied := make(map[string]model.Answer, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	m.mu.Lock()
	m.SubmitRefinementArgs = append(m.SubmitRefinementArgs, copied)
	m.mu.Unlock()

	if m.SubmitRefinementFn != nil {
		return m.SubmitRefinementFn(ctx, answers)
	}
	return &model.GenerationSummary{}, nil
}

// GetSyncStatus implements service.Gateway.
func (m *MockGateway) GetSyncStatus(ctx context.Context) (*model.SyncStatus, error) {
	m.mu.Lock()
	m.SyncStatusCalls++
	m.mu.Unlock()

	if m.GetSyncStatusFn != nil {
		return m.GetSyncStatusFn(ctx)
	}
	return &model.SyncStatus{}, nil
}

// TriggerSync implements service.Gateway.
func (m *MockGateway) TriggerSync(ctx context.Context) error {
	m.mu.Lock()
	m.TriggerSyncCalls++
	m.mu.Unlock()

	if m.TriggerSyncFn != nil {
		return m.TriggerSyncFn(ctx)
	}
	return nil
}

// GetConnectionStatus implements service.Gateway.
func (m *MockGateway) GetConnectionStatus(ctx context.Context) (bool, error) {
	m.mu.Lock()
	m.ConnectionCalls++
	m.mu.Unlock()

	if m.GetConnectionStatusFn != nil {
		return m.GetConnectionStatusFn(ctx)
	}
	return true, nil
}

// GetConfig implements service.Gateway.
func (m *MockGateway) GetConfig(ctx context.Context) (*model.DashboardConfig, error) {
	m.mu.Lock()
	m.ConfigCalls++
	m.mu.Unlock()

	if m.GetConfigFn != nil {
		return m.GetConfigFn(ctx)
	}
	return nil, nil
}

// ClearConfig implements service.Gateway.
func (m *MockGateway) ClearConfig(ctx context.Context) error {
	m.mu.Lock()
	m.ClearConfigCalls++
	m.mu.Unlock()

	if m.ClearConfigFn != nil {
		return m.ClearConfigFn(ctx)
	}
	return nil
}

// GetWidgets implements service.Gateway.
func (m *MockGateway) GetWidgets(ctx context.Context) ([]model.Widget, error) {
	m.mu.Lock()
	m.WidgetsCalls++
	m.mu.Unlock()

	if m.GetWidgetsFn != nil {
		return m.GetWidgetsFn(ctx)
	}
	return nil, nil
}

// GetInsights implements service.Gateway.
func (m *MockGateway) GetInsights(ctx context.Context) ([]model.Insight, error) {
	m.mu.Lock()
	m.InsightsCalls++
	m.mu.Unlock()

	if m.GetInsightsFn != nil {
		return m.GetInsightsFn(ctx)
	}
	return nil, nil
}

// GetDataUsage implements service.Gateway.
func (m *MockGateway) GetDataUsage(ctx context.Context) (*model.DataUsage, error) {
	m.mu.Lock()
	m.DataUsageCalls++
	m.mu.Unlock()

	if m.GetDataUsageFn != nil {
		return m.GetDataUsageFn(ctx)
	}
	return nil, nil
}

// Calls returns a snapshot of call counters useful in assertions that must
// not race the machine's background goroutines.
func (m *MockGateway) Calls() (analysis, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartAnalysisCalls, m.SyncStatusCalls
}

// Ensure MockGateway implements the Gateway interface.
var _ service.Gateway = (*MockGateway)(nil)
