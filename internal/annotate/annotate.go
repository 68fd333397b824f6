// Package annotate applies scoring results to document elements. Once
// a link is scored, every element associated with its record receives
// durable attributes the navigation gate reads at click time, plus a
// tier-keyed visual treatment. Failed analyses apply nothing: a failed
// link stays visually indistinguishable from an unscanned one.
//
// Annotation works from index.Completion snapshots, never from live
// records: the element list in a snapshot was copied under the index
// lock, so a concurrent duplicate sighting cannot grow the list out
// from under the annotator.
package annotate

import (
	"log/slog"
	"strconv"

	"github.com/linkgate/linkgate/internal/index"
	"github.com/linkgate/linkgate/internal/model"
	"github.com/linkgate/linkgate/internal/page"
)

// Durable attributes written onto annotated elements. The navigation
// gate reads AttrRiskScore back at click time, so the attribute names
// are part of the contract between the two packages.
const (
	AttrRiskScore = "data-risk-score"
	AttrRiskLevel = "data-risk-level"
)

// classPrefix namespaces the visual classes applied per tier, e.g.
// "linkgate-warn".
const classPrefix = "linkgate-"

// Badge glyphs appended for elevated tiers. Tiers below TierWarn get
// no badge, only the border/background class.
const (
	badgeWarn  = "⚠" // warning sign
	badgeBlock = "⛔" // no entry
)

// Annotator writes analysis results onto elements.
type Annotator struct {
	// logger is used for annotation diagnostics.
	logger *slog.Logger
}

// New creates an Annotator.
func New(logger *slog.Logger) *Annotator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{logger: logger}
}

// Apply annotates every element in a completion snapshot. Only scored
// records produce completions, so there is no state to check here; a
// nil completion is a no-op.
//
// Apply is idempotent: attributes are overwritten and classes and
// badges deduplicate, so re-applying a completion after a late
// duplicate sighting re-writes earlier elements harmlessly. Elements
// removed from the document since registration are still written to;
// the write is inert, and skipping it would buy nothing.
func (a *Annotator) Apply(c *index.Completion) {
	if c == nil {
		return
	}

	tier := model.TierFor(c.RiskScore)
	for _, el := range c.Elements {
		el.SetAttr(AttrRiskScore, strconv.Itoa(c.RiskScore))
		el.SetAttr(AttrRiskLevel, c.RiskLevel)
		el.AddClass(classPrefix + tier.String())

		switch tier {
		case model.TierWarn:
			el.AppendBadge(badgeWarn)
		case model.TierBlock:
			el.AppendBadge(badgeBlock)
		}
	}

	a.logger.Debug("annotated link",
		"url", c.URL,
		"risk_score", c.RiskScore,
		"tier", tier.String(),
		"elements", len(c.Elements),
	)
}

// Score reads the risk score annotation back from an element. Returns
// nil when the element was never annotated or carries an unparsable
// value, which the gate treats as unscored (fail open).
func Score(el *page.Element) *int {
	raw, ok := el.Attr(AttrRiskScore)
	if !ok {
		return nil
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &score
}

// Level reads the risk level annotation back from an element, empty
// when absent.
func Level(el *page.Element) string {
	raw, _ := el.Attr(AttrRiskLevel)
	return raw
}
