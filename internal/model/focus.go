// Package model defines the domain types shared across the application.
package model

// TrustLevel grades how much usable data backs a focus candidate.
type TrustLevel string

const (
	// TrustHigh indicates the candidate is backed by plenty of synced data.
	TrustHigh TrustLevel = "high"
	// TrustMedium indicates enough data to be useful, with caveats.
	TrustMedium TrustLevel = "medium"
	// TrustLow indicates sparse data; results may be noisy.
	TrustLow TrustLevel = "low"
	// TrustNone indicates no usable data for this candidate yet.
	TrustNone TrustLevel = "none"
)

// FocusCandidate is a selectable analytics category or goal offered during
// onboarding, annotated with recommendation and data-quality signals.
type FocusCandidate struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Trust       TrustLevel `json:"trust,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
	Recommended bool       `json:"recommended"`
}

// HasUsableData reports whether the candidate is backed by any usable data.
// An unset trust level is treated as usable; the backend omits the field for
// candidates it has no quality signal for.
func (c FocusCandidate) HasUsableData() bool {
	return c.Trust != TrustNone
}

// AnalysisResult is the payload returned by the start-analysis operation.
type AnalysisResult struct {
	TrustSummary string           `json:"trust_summary,omitempty"`
	Candidates   []FocusCandidate `json:"candidates"`
}
