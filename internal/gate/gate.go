// Package gate enforces the deny/warn/allow navigation policy. Two
// trigger paths share the single classification in model.Classify:
//
// The proactive path intercepts an in-page click before navigation
// commits, reads the clicked element's annotation, and either lets the
// click through, demands a synchronous confirmation, or cancels it
// outright.
//
// The reactive path runs when analysis is requested out of band,
// typically after navigation has already committed. It fetches a fresh
// score and, when the score reaches the block threshold, remediates:
// the destination is forcibly redirected to a neutral blank target and
// a high-priority alert is raised. It is remediation, not prevention.
package gate

import (
	"context"
	"log/slog"
	"time"

	"github.com/linkgate/linkgate/internal/annotate"
	"github.com/linkgate/linkgate/internal/model"
	"github.com/linkgate/linkgate/internal/page"
	"github.com/linkgate/linkgate/internal/warning"
)

// blankTarget is the neutral destination used by reactive remediation.
const blankTarget = "about:blank"

// Analyzer fetches a fresh risk descriptor for a URL. Satisfied by
// riskclient.Client.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, targetURL string) (*model.AnalysisResult, error)
}

// Navigator controls an already-committed navigation target. The
// reactive path uses it to pull a page back to a blank destination.
type Navigator interface {
	// Redirect replaces the current destination with the given URL.
	Redirect(url string)
}

// StatsRecorder receives completed-analysis notifications. Satisfied
// by stats.Store.
type StatsRecorder interface {
	RecordAnalysis(score int, at time.Time)
}

// ClickDecision is the outcome of the proactive path for one click.
type ClickDecision struct {
	// Verdict is the policy classification that produced the outcome.
	Verdict model.Verdict

	// Proceed reports whether the navigation default action may
	// continue. False means the event is cancelled.
	Proceed bool

	// Reported is true when the user chose to file a report from the
	// blocking surface.
	Reported bool
}

// Gate applies the navigation policy.
type Gate struct {
	// surface presents warnings and confirmations. A nil surface means
	// headless operation: warn-tier decisions default to deny.
	surface warning.Surface

	// navigator remediates committed navigations. May be nil when the
	// embedding context has nothing to redirect.
	navigator Navigator

	// analyzer fetches fresh scores for the reactive path.
	analyzer Analyzer

	// stats records completed reactive analyses.
	stats StatsRecorder

	// logger is used for decision logging.
	logger *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithSurface sets the warning surface.
func WithSurface(s warning.Surface) Option {
	return func(g *Gate) {
		g.surface = s
	}
}

// WithNavigator sets the navigator used for reactive remediation.
func WithNavigator(n Navigator) Option {
	return func(g *Gate) {
		g.navigator = n
	}
}

// WithStats sets the stats recorder for reactive analyses.
func WithStats(s StatsRecorder) Option {
	return func(g *Gate) {
		g.stats = s
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// New creates a Gate. The analyzer is required by the reactive path;
// everything else is optional.
func New(analyzer Analyzer, opts ...Option) *Gate {
	g := &Gate{analyzer: analyzer}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	return g
}

// HandleClick is the proactive path. It reads the clicked element's
// current annotation and applies the policy. An element that was never
// scored (pending, in flight, or failed analysis) classifies as ALLOW:
// a click that races the score fails open by design.
func (g *Gate) HandleClick(el *page.Element) ClickDecision {
	score := annotate.Score(el)
	verdict := model.Classify(score)
	url := el.Href()

	switch verdict {
	case model.VerdictDeny:
		level := annotate.Level(el)
		reported := false
		if g.surface != nil {
			action := g.surface.ShowBlocked(url, *score, level)
			reported = action == warning.ActionReport
		}
		if reported {
			// Local acknowledgment only; delivery is not guaranteed.
			g.logger.Info("user reported blocked link", "url", url, "risk_score", *score)
		}
		g.logger.Warn("navigation denied",
			"url", url,
			"risk_score", *score,
			"risk_level", level,
		)
		return ClickDecision{Verdict: verdict, Proceed: false, Reported: reported}

	case model.VerdictWarn:
		level := annotate.Level(el)
		proceed := false
		if g.surface != nil {
			proceed = g.surface.Confirm(url, *score, level)
		}
		g.logger.Info("navigation warned",
			"url", url,
			"risk_score", *score,
			"proceed", proceed,
		)
		return ClickDecision{Verdict: verdict, Proceed: proceed}

	default:
		return ClickDecision{Verdict: model.VerdictAllow, Proceed: true}
	}
}

// Remediate is the reactive path. It fetches a fresh score for the
// target URL regardless of any cached annotation, records the analysis
// in the session stats, and remediates when the fresh score reaches
// the block threshold. Failures raise a user-visible notification,
// since this path is user-initiated and expects feedback.
func (g *Gate) Remediate(ctx context.Context, targetURL string) (*model.AnalysisResult, error) {
	result, err := g.analyzer.AnalyzeURL(ctx, targetURL)
	if err != nil {
		g.logger.Error("reactive analysis failed", "url", targetURL, "error", err)
		if g.surface != nil {
			g.surface.Notify(warning.PriorityNormal, "Analysis failed", err.Error())
		}
		return nil, err
	}

	if g.stats != nil {
		g.stats.RecordAnalysis(result.RiskScore, time.Now())
	}

	if result.RiskScore >= model.BlockThreshold {
		if g.navigator != nil {
			g.navigator.Redirect(blankTarget)
		}
		if g.surface != nil {
			g.surface.Notify(warning.PriorityHigh, "Dangerous link blocked", result.Recommendation)
		}
		g.logger.Warn("reactive remediation applied",
			"url", targetURL,
			"risk_score", result.RiskScore,
		)
	}

	return result, nil
}
