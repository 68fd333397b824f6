package model

// Risk score thresholds defining the four-tier classification.
// Scores are integers in the range 0-100 as returned by the scoring
// service. The thresholds are ordered cut points: a score is classified
// by the highest threshold it meets or exceeds.
//
// Invariant: BlockThreshold > WarnThreshold > InfoThreshold >= 0.
// Classification is total and non-overlapping over 0-100.
const (
	// BlockThreshold is the minimum score at which navigation is denied
	// outright. At or above this score the link is considered an active
	// threat and the user is not offered a way to proceed.
	BlockThreshold = 70

	// WarnThreshold is the minimum score at which navigation requires
	// explicit user confirmation before proceeding.
	WarnThreshold = 40

	// InfoThreshold is the minimum score at which a link receives a
	// passive visual indicator. Navigation is never gated at this tier.
	InfoThreshold = 20
)

// Verdict is the navigation gate's decision for a single click or
// analysis request. Both the proactive (click interception) and
// reactive (post-hoc analysis) paths derive their behavior from the
// same verdict, so policy changes stay consistent across both.
type Verdict int

const (
	// VerdictAllow lets navigation proceed without interception.
	VerdictAllow Verdict = iota

	// VerdictWarn requires a synchronous user decision before
	// navigation may proceed.
	VerdictWarn

	// VerdictDeny cancels navigation with no path to proceed.
	VerdictDeny
)

// String returns a human-readable representation of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "ALLOW"
	case VerdictWarn:
		return "WARN"
	case VerdictDeny:
		return "DENY"
	default:
		return "UNKNOWN"
	}
}

// Classify maps a risk score to a navigation verdict. A nil score means
// the link was never scored (still pending, in flight, or failed) and
// always classifies as VerdictAllow.
//
// Design decision: Unscored links fail open rather than blocking
// because:
//  1. Scoring is asynchronous and may never complete
//  2. Blocking on an absent score would make every slow or failed
//     analysis a denial of service against the user
//  3. The reactive path can still remediate after the fact
func Classify(score *int) Verdict {
	if score == nil {
		return VerdictAllow
	}
	switch {
	case *score >= BlockThreshold:
		return VerdictDeny
	case *score >= WarnThreshold:
		return VerdictWarn
	default:
		return VerdictAllow
	}
}

// Tier is the four-level presentation classification applied to
// annotated elements. Unlike Verdict, which drives gating, Tier drives
// only visual treatment; the two share the same threshold constants.
type Tier int

const (
	// TierSafe covers scores below InfoThreshold.
	TierSafe Tier = iota

	// TierInfo covers scores from InfoThreshold up to WarnThreshold.
	TierInfo

	// TierWarn covers scores from WarnThreshold up to BlockThreshold.
	TierWarn

	// TierBlock covers scores at or above BlockThreshold.
	TierBlock
)

// TierFor returns the presentation tier for a score.
func TierFor(score int) Tier {
	switch {
	case score >= BlockThreshold:
		return TierBlock
	case score >= WarnThreshold:
		return TierWarn
	case score >= InfoThreshold:
		return TierInfo
	default:
		return TierSafe
	}
}

// String returns the tier name as used in reports and element classes.
func (t Tier) String() string {
	switch t {
	case TierSafe:
		return "safe"
	case TierInfo:
		return "info"
	case TierWarn:
		return "warn"
	case TierBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Color returns the display color associated with the tier. The mapping
// matches the scoring service's own presentation (HIGH RISK is red,
// MEDIUM RISK yellow, LOW RISK blue, SAFE green).
func (t Tier) Color() string {
	switch t {
	case TierBlock:
		return "red"
	case TierWarn:
		return "yellow"
	case TierInfo:
		return "blue"
	case TierSafe:
		return "green"
	default:
		return "gray"
	}
}
