package model

import "time"

// ConfigStep marks how far a persisted onboarding run progressed.
type ConfigStep string

const (
	// StepMarkerSelection means the user stopped at focus selection.
	StepMarkerSelection ConfigStep = "selection"
	// StepMarkerRefinement means the user stopped at refinement.
	StepMarkerRefinement ConfigStep = "refinement"
	// StepMarkerComplete means onboarding finished and the dashboard exists.
	StepMarkerComplete ConfigStep = "complete"
)

// DashboardConfig is the server's durable onboarding/dashboard configuration.
type DashboardConfig struct {
	GeneratedAt      time.Time        `json:"generated_at,omitempty"`
	Step             ConfigStep       `json:"step"`
	SelectedFocusIDs []string         `json:"selected_focus_ids,omitempty"`
	Candidates       []FocusCandidate `json:"candidates,omitempty"`
}

// Widget is one dashboard tile.
type Widget struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// Insight is one generated narrative finding.
type Insight struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Severity  string    `json:"severity,omitempty"`
}

// DataUsage summarizes how much source data backs the dashboard.
type DataUsage struct {
	LastSyncAt    time.Time `json:"last_sync_at"`
	RecordsSynced int       `json:"records_synced"`
	StorageBytes  int64     `json:"storage_bytes"`
}

// GenerationSummary describes what the generation step produced.
type GenerationSummary struct {
	Message      string   `json:"message,omitempty"`
	FocusAreas   []string `json:"focus_areas,omitempty"`
	WidgetCount  int      `json:"widget_count"`
	InsightCount int      `json:"insight_count"`
}

// DashboardData is the ready dashboard's working set, primed after onboarding
// completes or on the complete route at mount. Each field is populated
// independently; LastRefreshed is set only once the whole priming batch has
// settled.
type DashboardData struct {
	LastRefreshed time.Time
	Usage         *DataUsage
	Widgets       []Widget
	Insights      []Insight
	SampleMode    bool
}
