// Package scanner drives link discovery and scoring. It has two entry
// points sharing one register→dispatch→annotate pipeline:
//
// The initial scan sweeps every link present in the document and paces
// its requests with a fixed linear stagger: request i is dispatched
// i×interval after scan start. This caps the burst rate independent of
// page size, at the cost of tail latency on link-heavy pages.
//
// The mutation watcher feeds links that appear after the initial scan
// and dispatches them immediately, with no stagger. A large insertion
// therefore produces a concurrent request spike the initial scan would
// have smoothed out. The asymmetry is a deliberate policy split:
// mutation-inserted content is what the user is about to interact
// with, so freshness wins over pacing there.
package scanner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linkgate/linkgate/internal/annotate"
	"github.com/linkgate/linkgate/internal/index"
	"github.com/linkgate/linkgate/internal/metrics"
	"github.com/linkgate/linkgate/internal/model"
	"github.com/linkgate/linkgate/internal/page"
)

// DefaultStaggerInterval is the per-index delay of the initial scan:
// request i waits i×interval, bounding the burst rate at roughly ten
// requests per second regardless of link count.
const DefaultStaggerInterval = 100 * time.Millisecond

// Analyzer fetches a risk descriptor for a URL. Satisfied by
// riskclient.Client.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, targetURL string) (*model.AnalysisResult, error)
}

// StatsRecorder receives completed-analysis notifications.
type StatsRecorder interface {
	RecordAnalysis(score int, at time.Time)
}

// sleeper waits for a duration or until the context is cancelled.
// Injected in tests to observe stagger timing without real sleeps.
type sleeper func(ctx context.Context, d time.Duration) error

// realSleep is the production sleeper.
func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Scanner owns the scoring pipeline for one page session.
type Scanner struct {
	// index is the dedup ledger; registration through it is what
	// guarantees one request per canonical URL.
	index *index.Index

	// analyzer performs the scoring requests.
	analyzer Analyzer

	// annotator applies results to elements.
	annotator *annotate.Annotator

	// stats receives completed analyses. May be nil.
	stats StatsRecorder

	// interval is the stagger step of the initial scan.
	interval time.Duration

	// sleep implements the stagger wait.
	sleep sleeper

	// g tracks every in-flight dispatch goroutine. Dispatches never
	// return errors through the group: each link's failure is
	// independent and recorded on its own record.
	g *errgroup.Group

	// logger is used for pipeline diagnostics.
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithStaggerInterval overrides the initial-scan stagger step.
func WithStaggerInterval(d time.Duration) Option {
	return func(s *Scanner) {
		if d >= 0 {
			s.interval = d
		}
	}
}

// WithStats sets the stats recorder.
func WithStats(rec StatsRecorder) Option {
	return func(s *Scanner) {
		s.stats = rec
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// withSleeper replaces the stagger wait. Test hook.
func withSleeper(fn sleeper) Option {
	return func(s *Scanner) {
		s.sleep = fn
	}
}

// New creates a Scanner over the given index.
func New(ix *index.Index, analyzer Analyzer, opts ...Option) *Scanner {
	s := &Scanner{
		index:    ix,
		analyzer: analyzer,
		interval: DefaultStaggerInterval,
		sleep:    realSleep,
		g:        &errgroup.Group{},
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.annotator = annotate.New(s.logger)

	return s
}

// Scan performs the initial sweep: every qualifying link present in
// the document right now is registered, and each new URL's request is
// scheduled at i×interval from scan start, in document order.
//
// Registration is completed synchronously before Scan returns, so a
// concurrent mutation batch cannot register the same URL twice. The
// dispatches themselves run on background goroutines; use Wait to
// drain them.
func (s *Scanner) Scan(ctx context.Context, doc *page.Document) int {
	links := doc.Links()

	dispatched := 0
	for _, el := range links {
		rec, isNew := s.index.Register(el.Href(), el)
		if !isNew {
			continue
		}

		delay := time.Duration(dispatched) * s.interval
		dispatched++
		s.g.Go(func() error {
			if err := s.sleep(ctx, delay); err != nil {
				// Cancelled before dispatch; the record stays pending.
				return nil
			}
			s.dispatch(ctx, rec)
			return nil
		})
	}

	s.logger.Info("initial scan scheduled",
		"page", doc.URL(),
		"links_found", len(links),
		"requests_scheduled", dispatched,
	)
	return dispatched
}

// Watch subscribes the scanner to the document's change feed. Every
// link inserted afterwards is registered and, when new, dispatched
// immediately with no stagger. A duplicate sighting of a URL that is
// already scored is annotated on the spot instead of re-dispatched.
func (s *Scanner) Watch(ctx context.Context, doc *page.Document) {
	doc.Subscribe(func(batch []*page.Element) {
		for _, el := range batch {
			rec, isNew := s.index.Register(el.Href(), el)
			if !isNew {
				// The score may have landed before this occurrence
				// appeared; the new element still needs annotation so
				// the gate can read it at click time.
				if done := s.index.Completed(rec.URL); done != nil {
					s.annotator.Apply(done)
				}
				continue
			}
			s.g.Go(func() error {
				s.dispatch(ctx, rec)
				return nil
			})
		}
	})
}

// Wait blocks until every scheduled dispatch has completed or been
// cancelled.
func (s *Scanner) Wait() {
	_ = s.g.Wait()
}

// dispatch performs one scoring request and applies the outcome. The
// index transition to InFlight happens before the network call; the
// BeginRequest check makes a double dispatch for one URL impossible
// even if two callers race.
func (s *Scanner) dispatch(ctx context.Context, rec *index.LinkRecord) {
	if !s.index.BeginRequest(rec.URL) {
		return
	}

	metrics.InFlight.Inc()
	result, err := s.analyzer.AnalyzeURL(ctx, rec.URL)
	metrics.InFlight.Dec()

	if err != nil {
		s.index.Fail(rec.URL)
		metrics.AnalysisFailures.Inc()
		// Passive log only; the proactive path surfaces nothing for
		// background failures and the link fails open.
		s.logger.Warn("analysis failed", "url", rec.URL, "error", err)
		return
	}

	scored := s.index.Complete(rec.URL, result.RiskScore, result.RiskLevel, result.Recommendation)
	s.annotator.Apply(scored)

	metrics.URLsScanned.Inc()
	if result.RiskScore >= model.BlockThreshold {
		metrics.ThreatsDetected.Inc()
	}
	if s.stats != nil {
		s.stats.RecordAnalysis(result.RiskScore, time.Now())
	}
}
