// Package session assembles the per-page engine: one Session owns the
// document, the link index, the scanner, and the navigation gate for a
// single page, and exposes the message bus its embedding surface talks
// to. Nothing in the engine is process-global; two tabs are two
// sessions.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/linkgate/linkgate/internal/gate"
	"github.com/linkgate/linkgate/internal/index"
	"github.com/linkgate/linkgate/internal/messaging"
	"github.com/linkgate/linkgate/internal/metrics"
	"github.com/linkgate/linkgate/internal/model"
	"github.com/linkgate/linkgate/internal/page"
	"github.com/linkgate/linkgate/internal/scanner"
	"github.com/linkgate/linkgate/internal/warning"
)

// Analyzer is the scoring dependency shared by the scanner and the
// gate. Satisfied by riskclient.Client.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, targetURL string) (*model.AnalysisResult, error)
}

// StatsStore is the statistics dependency. Satisfied by stats.Store;
// a session without persistence gets an in-memory fallback.
type StatsStore interface {
	RecordAnalysis(score int, at time.Time)
	Stats() model.Stats
}

// memStats is the in-memory StatsStore used when no persistent store
// is configured.
type memStats struct {
	mu sync.Mutex
	s  model.Stats
}

func (m *memStats) RecordAnalysis(score int, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.RecordAnalysis(score, at)
}

func (m *memStats) Stats() model.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s
}

// Session is the per-page engine context.
type Session struct {
	doc      *page.Document
	index    *index.Index
	scanner  *scanner.Scanner
	gate     *gate.Gate
	stats    StatsStore
	bus      *messaging.Bus
	logger   *slog.Logger
	analyzer Analyzer
}

// Option configures a Session.
type Option func(*config)

// config collects construction options before wiring.
type config struct {
	surface   warning.Surface
	navigator gate.Navigator
	stats     StatsStore
	logger    *slog.Logger
	interval  time.Duration
}

// WithSurface sets the warning surface consulted by the gate.
func WithSurface(s warning.Surface) Option {
	return func(c *config) {
		c.surface = s
	}
}

// WithNavigator sets the navigator used by reactive remediation.
func WithNavigator(n gate.Navigator) Option {
	return func(c *config) {
		c.navigator = n
	}
}

// WithStats sets a persistent statistics store.
func WithStats(s StatsStore) Option {
	return func(c *config) {
		c.stats = s
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithStaggerInterval overrides the initial scan's stagger step.
func WithStaggerInterval(d time.Duration) Option {
	return func(c *config) {
		c.interval = d
	}
}

// New creates a Session for the document. The session is inert until
// Start is called.
func New(doc *page.Document, analyzer Analyzer, opts ...Option) *Session {
	cfg := &config{interval: scanner.DefaultStaggerInterval}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.stats == nil {
		cfg.stats = &memStats{}
	}

	ix := index.New()
	s := &Session{
		doc:      doc,
		index:    ix,
		analyzer: analyzer,
		stats:    cfg.stats,
		logger:   cfg.logger,
		bus:      messaging.NewBus(),
	}

	s.scanner = scanner.New(ix, analyzer,
		scanner.WithStaggerInterval(cfg.interval),
		scanner.WithStats(cfg.stats),
		scanner.WithLogger(cfg.logger),
	)

	gateOpts := []gate.Option{
		gate.WithStats(cfg.stats),
		gate.WithLogger(cfg.logger),
	}
	if cfg.surface != nil {
		gateOpts = append(gateOpts, gate.WithSurface(cfg.surface))
	}
	if cfg.navigator != nil {
		gateOpts = append(gateOpts, gate.WithNavigator(cfg.navigator))
	}
	s.gate = gate.New(analyzer, gateOpts...)

	s.registerHandlers()
	return s
}

// Start subscribes the mutation watcher and runs the initial staggered
// scan. It returns once the scan is scheduled; use Wait to drain the
// in-flight requests.
func (s *Session) Start(ctx context.Context) {
	s.scanner.Watch(ctx, s.doc)
	s.scanner.Scan(ctx, s.doc)
}

// Rescan clears the link index and re-runs the full staggered scan.
// Previously scored URLs are registered and dispatched again.
func (s *Session) Rescan(ctx context.Context) {
	s.index.Reset()
	s.scanner.Scan(ctx, s.doc)
}

// HandleClick applies the proactive navigation policy to a click on
// the given element.
func (s *Session) HandleClick(el *page.Element) gate.ClickDecision {
	decision := s.gate.HandleClick(el)
	if !decision.Proceed {
		metrics.NavigationsDenied.Inc()
	}
	return decision
}

// Analyze runs the reactive path for one URL: fresh score, stats
// update, remediation at the block threshold.
func (s *Session) Analyze(ctx context.Context, targetURL string) (*model.AnalysisResult, error) {
	return s.gate.Remediate(ctx, targetURL)
}

// Wait blocks until all in-flight scoring requests have finished.
func (s *Session) Wait() {
	s.scanner.Wait()
}

// Stats returns the current session statistics.
func (s *Session) Stats() model.Stats {
	return s.stats.Stats()
}

// Bus returns the session's message bus. Handlers for analyzeURL,
// getStats, and rescanPage are pre-registered.
func (s *Session) Bus() *messaging.Bus {
	return s.bus
}

// Close disconnects the message bus.
func (s *Session) Close() {
	s.bus.Close()
}

// Report snapshots the index into a page report.
func (s *Session) Report() *model.PageReport {
	report := &model.PageReport{
		PageURL:   s.doc.URL(),
		ScannedAt: time.Now(),
		Stats:     s.stats.Stats(),
	}

	for _, rec := range s.index.Snapshot() {
		summary := model.LinkSummary{
			URL:      rec.URL,
			State:    rec.State.String(),
			Verdict:  model.Classify(rec.Score()).String(),
			Elements: len(rec.Elements),
		}
		if score := rec.Score(); score != nil {
			summary.RiskScore = score
			summary.RiskLevel = rec.RiskLevel
		}
		report.Links = append(report.Links, summary)
	}
	return report
}

// registerHandlers wires the session's operations onto the bus.
func (s *Session) registerHandlers() {
	// analyzeURL responds after the analysis completes: the handler
	// returns immediately and delivers the deferred response from the
	// analysis goroutine.
	s.bus.Handle(messaging.ActionAnalyzeURL, func(ctx context.Context, req messaging.Request, respond func(messaging.Response)) {
		go func() {
			result, err := s.Analyze(ctx, req.URL)
			if err != nil {
				respond(messaging.Response{Success: false, Err: err.Error()})
				return
			}
			respond(messaging.Response{Success: true, Result: result})
		}()
	})

	s.bus.Handle(messaging.ActionGetStats, func(_ context.Context, _ messaging.Request, respond func(messaging.Response)) {
		stats := s.stats.Stats()
		respond(messaging.Response{Success: true, Stats: &stats})
	})

	s.bus.Handle(messaging.ActionRescanPage, func(ctx context.Context, _ messaging.Request, respond func(messaging.Response)) {
		s.Rescan(ctx)
		respond(messaging.Response{Success: true})
	})
}
