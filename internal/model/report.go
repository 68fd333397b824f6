package model

import "time"

// PageReport summarizes a completed page scan for report output.
// It is a point-in-time snapshot: links still in flight when the
// snapshot is taken appear with a nil score.
type PageReport struct {
	// PageURL is the URL (or file path) of the scanned document.
	PageURL string `json:"page_url"`

	// ScannedAt is when the snapshot was taken.
	ScannedAt time.Time `json:"scanned_at"`

	// Links holds one summary per unique canonical URL, in the order
	// the URLs were first registered.
	Links []LinkSummary `json:"links"`

	// Stats is the session statistics at snapshot time.
	Stats Stats `json:"stats"`
}

// LinkSummary is the per-link portion of a PageReport.
type LinkSummary struct {
	// URL is the canonical URL of the link.
	URL string `json:"url"`

	// State is the link's lifecycle state name (pending, in_flight,
	// scored, failed).
	State string `json:"state"`

	// RiskScore is the score when State is scored, nil otherwise.
	RiskScore *int `json:"risk_score,omitempty"`

	// RiskLevel is the service's category when scored.
	RiskLevel string `json:"risk_level,omitempty"`

	// Verdict is the navigation verdict the gate would apply.
	Verdict string `json:"verdict"`

	// Elements is the number of document elements sharing this URL.
	Elements int `json:"elements"`
}

// CountByTier returns how many scored links fall into each tier.
// Unscored links are not counted.
func (r *PageReport) CountByTier() map[Tier]int {
	counts := make(map[Tier]int)
	for _, l := range r.Links {
		if l.RiskScore != nil {
			counts[TierFor(*l.RiskScore)]++
		}
	}
	return counts
}

// Flagged returns summaries of scored links at TierWarn or above,
// preserving registration order.
func (r *PageReport) Flagged() []LinkSummary {
	flagged := make([]LinkSummary, 0)
	for _, l := range r.Links {
		if l.RiskScore != nil && TierFor(*l.RiskScore) >= TierWarn {
			flagged = append(flagged, l)
		}
	}
	return flagged
}
