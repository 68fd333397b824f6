package model

import "time"

// Stats holds the session-spanning counters surfaced to the user and
// persisted across runs. A loaded snapshot replaces the in-memory value
// wholesale; fields are never merged individually.
type Stats struct {
	// URLsScanned counts every completed analysis, regardless of score.
	URLsScanned int64 `json:"urlsScanned"`

	// ThreatsBlocked counts analyses whose score reached BlockThreshold.
	ThreatsBlocked int64 `json:"threatsBlocked"`

	// LastScan is the completion time of the most recent analysis.
	// Zero when no analysis has completed yet.
	LastScan time.Time `json:"lastScan"`
}

// RecordAnalysis updates the counters for one completed analysis.
func (s *Stats) RecordAnalysis(score int, at time.Time) {
	s.URLsScanned++
	if score >= BlockThreshold {
		s.ThreatsBlocked++
	}
	s.LastScan = at
}
