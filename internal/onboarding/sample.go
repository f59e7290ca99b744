package onboarding

import (
	"time"

	"github.com/glintlabs/glint/internal/model"
)

// Sample data backing the "explore with sample data" escape hatch on the
// no-source screen. Nothing here touches the network; the payloads mirror
// what a small, healthy CRM account would generate.

// SampleSummary returns the generation summary for sample mode.
func SampleSummary() model.GenerationSummary {
	data := SampleDashboard()
	return model.GenerationSummary{
		WidgetCount:  len(data.Widgets),
		InsightCount: len(data.Insights),
		FocusAreas:   []string{"pipeline", "lead-response"},
		Message:      "Sample dashboard built from demo data",
	}
}

// SampleDashboard returns a populated working set for sample mode.
func SampleDashboard() model.DashboardData {
	now := time.Now()

	widgets := []model.Widget{
		{ID: "sample-pipeline-value", Title: "Pipeline value", Kind: "metric", Description: "Open deal value by stage"},
		{ID: "sample-win-rate", Title: "Win rate", Kind: "metric", Description: "Closed-won share over the last quarter"},
		{ID: "sample-lead-response", Title: "Lead response time", Kind: "trend", Description: "Median minutes to first touch"},
		{ID: "sample-deal-velocity", Title: "Deal velocity", Kind: "trend", Description: "Days from create to close"},
		{ID: "sample-top-agents", Title: "Top agents", Kind: "leaderboard", Description: "Closed-won value per agent"},
		{ID: "sample-stale-deals", Title: "Stale deals", Kind: "list", Description: "Open deals without activity for 14 days"},
	}

	insights := []model.Insight{
		{
			ID:        "sample-insight-1",
			Title:     "Response time drives conversion",
			Body:      "Leads contacted within 5 minutes convert 3.1x more often than the rest of the sample book.",
			Severity:  "info",
			CreatedAt: now.Add(-36 * time.Hour),
		},
		{
			ID:        "sample-insight-2",
			Title:     "Mid-funnel stall",
			Body:      "28% of sample deals sit in negotiation for more than three weeks before moving.",
			Severity:  "warning",
			CreatedAt: now.Add(-12 * time.Hour),
		},
		{
			ID:        "sample-insight-3",
			Title:     "Tuesday is your best day",
			Body:      "Demo bookings peak on Tuesdays; the sample calendar shows 41% of weekly meetings land there.",
			Severity:  "info",
			CreatedAt: now.Add(-2 * time.Hour),
		},
	}

	return model.DashboardData{
		Widgets:       widgets,
		Insights:      insights,
		Usage:         &model.DataUsage{RecordsSynced: 4820, StorageBytes: 18 << 20, LastSyncAt: now.Add(-45 * time.Minute)},
		LastRefreshed: now,
		SampleMode:    true,
	}
}
