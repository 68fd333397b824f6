// Package index implements the link index: the dedup ledger mapping
// each canonical URL on the page to its scoring state and associated
// elements. The index is the single authority on whether a URL has
// already been dispatched, which is what bounds the engine to one
// outstanding request per URL.
package index

import (
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/linkgate/linkgate/internal/page"
)

// State is the lifecycle state of a LinkRecord.
type State int

const (
	// StatePending means the URL is registered but no request has been
	// dispatched yet (e.g. waiting on the scheduler's stagger).
	StatePending State = iota

	// StateInFlight means a scoring request is outstanding.
	StateInFlight

	// StateScored means a score arrived and is stored on the record.
	StateScored

	// StateFailed means the scoring request failed. Failed records are
	// never retried within a session and classify as ALLOW.
	StateFailed
)

// String returns the state name as used in reports.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInFlight:
		return "in_flight"
	case StateScored:
		return "scored"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LinkRecord tracks one unique canonical URL encountered on the page.
// The document owns the elements; the record holds a non-owning
// association used only to apply annotations. Records are never
// explicitly destroyed; the index is bounded by page lifetime.
type LinkRecord struct {
	// URL is the canonical URL, the record's identity.
	URL string

	// State is the current lifecycle state.
	State State

	// RiskScore is the score from the scoring service. Valid only when
	// State is StateScored.
	RiskScore int

	// RiskLevel is the service's descriptive category.
	RiskLevel string

	// Recommendation is the service's advice text.
	Recommendation string

	// Elements are the document elements currently associated with
	// this URL. Every element sharing the URL is linked here so each
	// occurrence receives annotation and gating.
	Elements []*page.Element
}

// Score returns the record's score as a nillable value suitable for
// model.Classify: nil unless the record is scored.
func (r *LinkRecord) Score() *int {
	if r.State != StateScored {
		return nil
	}
	score := r.RiskScore
	return &score
}

// Index is the per-page link ledger. All mutation happens under one
// mutex, so checking for an existing record and creating a new one is
// atomic: the scheduler and the mutation watcher can race on the same
// URL without ever producing a second record or a second request.
type Index struct {
	mu sync.Mutex

	// records maps canonical URL to its record.
	records map[string]*LinkRecord

	// order preserves first-registration order for reports.
	order []string
}

// New creates an empty index.
func New() *Index {
	return &Index{records: make(map[string]*LinkRecord)}
}

// Canonicalize normalizes a URL for deduplication: the fragment is
// dropped, scheme and host are lowercased, and an empty path becomes
// "/". Returns the input unchanged when it does not parse.
//
// Design decision: We normalize because the same target commonly
// appears under several spellings. Fragments never change the fetched
// resource, and http://example.com and http://example.com/ must count
// as one URL, not two.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// Register records a sighting of rawURL by el. If the canonical URL is
// new, a record in StatePending is created and isNew is true: the
// caller owns dispatching exactly one request for it. If the URL is
// already known, the element is linked into the existing record (so a
// later annotation reaches every occurrence) and isNew is false: the
// caller must not dispatch.
//
// el may be nil for sightings with no document element, e.g. the
// reactive analysis path.
func (ix *Index) Register(rawURL string, el *page.Element) (rec *LinkRecord, isNew bool) {
	canonical := Canonicalize(rawURL)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if existing, ok := ix.records[canonical]; ok {
		if el != nil && !slices.Contains(existing.Elements, el) {
			existing.Elements = append(existing.Elements, el)
		}
		return existing, false
	}

	rec = &LinkRecord{URL: canonical, State: StatePending}
	if el != nil {
		rec.Elements = append(rec.Elements, el)
	}
	ix.records[canonical] = rec
	ix.order = append(ix.order, canonical)
	return rec, true
}

// BeginRequest transitions the URL's record from Pending to InFlight.
// It returns false when the record is absent or not Pending, enforcing
// the at-most-one-outstanding-request invariant even if a caller tries
// to dispatch twice.
func (ix *Index) BeginRequest(rawURL string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rec, ok := ix.records[Canonicalize(rawURL)]
	if !ok || rec.State != StatePending {
		return false
	}
	rec.State = StateInFlight
	return true
}

// Completion is an immutable snapshot of a scored record, taken while
// the index lock is held. Annotation consumes completions rather than
// live records, so it never reads an element list that Register is
// appending to from another goroutine.
type Completion struct {
	// URL is the canonical URL of the scored record.
	URL string

	// RiskScore, RiskLevel, and Recommendation are the stored result
	// fields at snapshot time.
	RiskScore      int
	RiskLevel      string
	Recommendation string

	// Elements is a copy of the record's element list at snapshot time.
	Elements []*page.Element
}

// Complete transitions the URL's record to Scored and stores the
// result fields. The returned snapshot is taken under the same lock
// hold, so its element list includes every sighting registered before
// the score landed. Completion order is independent of dispatch order;
// with at most one outstanding request per URL this can never write
// conflict on a single record.
func (ix *Index) Complete(rawURL string, score int, level, recommendation string) *Completion {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rec, ok := ix.records[Canonicalize(rawURL)]
	if !ok {
		return nil
	}
	rec.State = StateScored
	rec.RiskScore = score
	rec.RiskLevel = level
	rec.Recommendation = recommendation
	return completionLocked(rec)
}

// Completed returns a snapshot of the URL's record when it is already
// scored, nil otherwise. The mutation watcher uses it to annotate a
// late sighting of a URL whose score arrived before the element did.
func (ix *Index) Completed(rawURL string) *Completion {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rec, ok := ix.records[Canonicalize(rawURL)]
	if !ok || rec.State != StateScored {
		return nil
	}
	return completionLocked(rec)
}

// completionLocked snapshots rec. The caller holds ix.mu.
func completionLocked(rec *LinkRecord) *Completion {
	return &Completion{
		URL:            rec.URL,
		RiskScore:      rec.RiskScore,
		RiskLevel:      rec.RiskLevel,
		Recommendation: rec.Recommendation,
		Elements:       slices.Clone(rec.Elements),
	}
}

// Fail transitions the URL's record to Failed. The URL stays unscored
// for the rest of the session; no retry is ever scheduled.
func (ix *Index) Fail(rawURL string) *LinkRecord {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rec, ok := ix.records[Canonicalize(rawURL)]
	if !ok {
		return nil
	}
	rec.State = StateFailed
	return rec
}

// Lookup returns the record for a URL, nil when unknown.
func (ix *Index) Lookup(rawURL string) *LinkRecord {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.records[Canonicalize(rawURL)]
}

// Len returns the number of unique URLs registered.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.records)
}

// Snapshot returns copies of all records in first-registration order.
// The copies are taken under the lock, so report generation never
// reads a record the mutation watcher is updating.
func (ix *Index) Snapshot() []LinkRecord {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]LinkRecord, 0, len(ix.order))
	for _, u := range ix.order {
		rec := *ix.records[u]
		rec.Elements = slices.Clone(rec.Elements)
		out = append(out, rec)
	}
	return out
}

// Reset clears every record. Used by rescan: previously scored URLs
// become unknown again and will be re-registered and re-dispatched.
func (ix *Index) Reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.records = make(map[string]*LinkRecord)
	ix.order = nil
}
