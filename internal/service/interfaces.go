// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/glintlabs/glint/internal/model"
)

// Gateway defines the contract with the remote analytics backend. Every
// method is a single request/response exchange; the caller decides what a
// failure means. This interface allows for easy mocking in tests and swapping
// backends.
type Gateway interface {
	// Onboarding operations
	StartAnalysis(ctx context.Context) (*model.AnalysisResult, error)
	SelectFocusAreas(ctx context.Context, ids []string) ([]model.RefinementQuestion, error)
	SubmitRefinement(ctx context.Context, answers map[string]model.Answer) (*model.GenerationSummary, error)

	// Sync operations
	GetSyncStatus(ctx context.Context) (*model.SyncStatus, error)
	TriggerSync(ctx context.Context) error

	// Dashboard operations
	GetConnectionStatus(ctx context.Context) (bool, error)
	GetConfig(ctx context.Context) (*model.DashboardConfig, error)
	ClearConfig(ctx context.Context) error
	GetWidgets(ctx context.Context) ([]model.Widget, error)
	GetInsights(ctx context.Context) ([]model.Insight, error)
	GetDataUsage(ctx context.Context) (*model.DataUsage, error)
}

// PreferenceStore persists small local UI preferences between sessions.
type PreferenceStore interface {
	ChatPanelOpen(ctx context.Context) (bool, error)
	SetChatPanelOpen(ctx context.Context, open bool) error
	Theme(ctx context.Context) (string, error)
	SetTheme(ctx context.Context, theme string) error
	LastAccount(ctx context.Context) (string, error)
	SetLastAccount(ctx context.Context, account string) error
	Close() error
}
