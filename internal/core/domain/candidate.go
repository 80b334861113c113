package domain

import "time"

// ThemeCandidate is a (theme, confidence) proposal from one strategy.
type ThemeCandidate struct {
	Theme      string
	Category   Category
	Confidence float64
	Source     Source
	Evidence   string
}

// RankedTheme is one entry of a merged ThemeResult.
type RankedTheme struct {
	Theme      string   `json:"theme"`
	Category   Category `json:"category,omitempty"`
	Confidence float64  `json:"confidence"`
	Source     Source   `json:"source"`
	Evidence   string   `json:"evidence,omitempty"`
}

// ResultMetadata describes how a ThemeResult was produced.
type ResultMetadata struct {
	// SourcesUsed lists every strategy that contributed a surviving
	// candidate, in descending priority order.
	SourcesUsed []Source `json:"sources_used"`

	// TotalCandidates counts raw candidates before merging.
	TotalCandidates int `json:"total_candidates"`

	// ChunksTotal and ChunksRelevant report semantic filter volume.
	ChunksTotal    int `json:"chunks_total"`
	ChunksRelevant int `json:"chunks_relevant"`

	// FilingOrigin is the filing kind the text came from, if any.
	FilingOrigin OriginKind `json:"filing_origin,omitempty"`

	// Unavailable lists collaborators that supplied no data.
	Unavailable []string `json:"unavailable,omitempty"`
}

// ThemeResult is the ranked theme set for one company from one run.
type ThemeResult struct {
	RunID       string         `json:"run_id,omitempty"`
	Ticker      string         `json:"ticker"`
	CompanyName string         `json:"company_name"`
	Themes      []RankedTheme  `json:"themes"`
	Metadata    ResultMetadata `json:"metadata"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ThemeNames returns theme names at or above minConfidence, in rank order.
func (r ThemeResult) ThemeNames(minConfidence float64) []string {
	names := make([]string, 0, len(r.Themes))
	for _, t := range r.Themes {
		if t.Confidence >= minConfidence {
			names = append(names, t.Theme)
		}
	}
	return names
}

// IsEmpty returns true if no theme survived.
func (r ThemeResult) IsEmpty() bool {
	return len(r.Themes) == 0
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
