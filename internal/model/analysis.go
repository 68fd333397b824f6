package model

// AnalysisResult is the risk descriptor returned by the remote scoring
// service for a single URL or piece of content. The engine treats the
// scoring algorithm as opaque: only RiskScore participates in gating
// decisions, the remaining fields are carried through to annotations,
// reports, and notifications unchanged.
type AnalysisResult struct {
	// RiskScore is the overall risk in the range 0-100.
	RiskScore int `json:"risk_score"`

	// RiskLevel is the service's descriptive category for the score
	// (e.g. "HIGH RISK", "SAFE"). Treated as opaque text.
	RiskLevel string `json:"risk_level"`

	// Recommendation is the service's human-readable advice.
	Recommendation string `json:"recommendation"`

	// Threats lists detected threat descriptions, if any.
	Threats []string `json:"threats,omitempty"`

	// Details lists supporting analysis details, if any.
	Details []string `json:"details,omitempty"`

	// MLConfidence is the classifier confidence, when the service ran
	// an ML model. Nil when not applicable.
	MLConfidence *float64 `json:"ml_confidence,omitempty"`

	// AnalysisTimeMS is the service-side analysis duration.
	AnalysisTimeMS float64 `json:"analysis_time_ms,omitempty"`

	// AnalysisType identifies which detector produced the result.
	AnalysisType string `json:"analysis_type,omitempty"`
}

// Tier returns the presentation tier for the result's score.
func (r *AnalysisResult) Tier() Tier {
	return TierFor(r.RiskScore)
}

// Verdict returns the navigation verdict for the result's score.
func (r *AnalysisResult) Verdict() Verdict {
	score := r.RiskScore
	return Classify(&score)
}
