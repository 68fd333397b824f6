package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/linkgate/linkgate/internal/annotate"
	"github.com/linkgate/linkgate/internal/index"
	"github.com/linkgate/linkgate/internal/model"
	"github.com/linkgate/linkgate/internal/page"
)

// fakeAnalyzer returns canned scores per URL and records every call.
type fakeAnalyzer struct {
	mu     sync.Mutex
	scores map[string]int
	fail   map[string]bool
	calls  map[string]int
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		scores: make(map[string]int),
		fail:   make(map[string]bool),
		calls:  make(map[string]int),
	}
}

func (f *fakeAnalyzer) AnalyzeURL(_ context.Context, targetURL string) (*model.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[targetURL]++

	if f.fail[targetURL] {
		return nil, fmt.Errorf("analysis unavailable for %s", targetURL)
	}
	return &model.AnalysisResult{
		RiskScore: f.scores[targetURL],
		RiskLevel: "TEST",
	}, nil
}

func (f *fakeAnalyzer) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// recordingSleeper captures the delay of every stagger wait without
// actually sleeping.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func (r *recordingSleeper) sorted() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]time.Duration(nil), r.delays...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TestScanStagger verifies that the initial scan of N links schedules
// request i at i×interval, never earlier.
func TestScanStagger(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	for i := 0; i < 5; i++ {
		doc.Append(page.NewElement("a", fmt.Sprintf("https://link%d.example/", i)))
	}

	analyzer := newFakeAnalyzer()
	sleeper := &recordingSleeper{}
	s := New(index.New(), analyzer,
		WithStaggerInterval(100*time.Millisecond),
		withSleeper(sleeper.sleep),
	)

	dispatched := s.Scan(context.Background(), doc)
	s.Wait()

	if dispatched != 5 {
		t.Fatalf("expected 5 dispatches, got %d", dispatched)
	}

	expected := []time.Duration{0, 100, 200, 300, 400}
	got := sleeper.sorted()
	if len(got) != len(expected) {
		t.Fatalf("expected %d stagger waits, got %d", len(expected), len(got))
	}
	for i, d := range got {
		if d != expected[i]*time.Millisecond {
			t.Errorf("delay[%d] = %v, expected %v", i, d, expected[i]*time.Millisecond)
		}
	}
}

// TestScanDedup verifies that two elements sharing one canonical URL
// produce exactly one request, and that both elements receive the
// resulting annotation.
func TestScanDedup(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	first := page.NewElement("a", "https://shared.example/page")
	second := page.NewElement("a", "https://shared.example/page#section")
	doc.Append(first, second)

	analyzer := newFakeAnalyzer()
	analyzer.scores["https://shared.example/page"] = 77

	ix := index.New()
	sleeper := &recordingSleeper{}
	s := New(ix, analyzer, withSleeper(sleeper.sleep))

	dispatched := s.Scan(context.Background(), doc)
	s.Wait()

	if dispatched != 1 {
		t.Fatalf("expected 1 dispatch, got %d", dispatched)
	}
	if analyzer.callCount("https://shared.example/page") != 1 {
		t.Fatalf("expected exactly one request, got %d", analyzer.callCount("https://shared.example/page"))
	}

	// Both elements must carry the annotation, not just the first.
	for i, el := range []*page.Element{first, second} {
		if v, _ := el.Attr(annotate.AttrRiskScore); v != "77" {
			t.Errorf("element %d: risk score attribute = %q, expected 77", i, v)
		}
	}

	rec := ix.Lookup("https://shared.example/page")
	if rec == nil || len(rec.Elements) != 2 {
		t.Fatalf("expected record with 2 elements, got %+v", rec)
	}
}

// TestWatcherImmediateDispatch verifies that a mutation-inserted link
// is dispatched at once, without the initial scan's stagger.
func TestWatcherImmediateDispatch(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	analyzer := newFakeAnalyzer()
	sleeper := &recordingSleeper{}
	s := New(index.New(), analyzer, withSleeper(sleeper.sleep))

	s.Watch(context.Background(), doc)
	doc.Append(page.NewElement("a", "https://inserted.example/"))
	s.Wait()

	if analyzer.callCount("https://inserted.example/") != 1 {
		t.Fatalf("expected inserted link to be analyzed once, got %d",
			analyzer.callCount("https://inserted.example/"))
	}
	if len(sleeper.sorted()) != 0 {
		t.Errorf("watcher dispatch must not stagger, saw waits %v", sleeper.sorted())
	}
}

// TestWatcherAnnotatesLateDuplicate verifies that an occurrence of an
// already-scored URL inserted later is annotated on arrival: the new
// element carries the stored score and classifies like every earlier
// occurrence, without a second request.
func TestWatcherAnnotatesLateDuplicate(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	doc.Append(page.NewElement("a", "https://evil.example/"))

	analyzer := newFakeAnalyzer()
	analyzer.scores["https://evil.example/"] = 85

	ix := index.New()
	s := New(ix, analyzer, withSleeper((&recordingSleeper{}).sleep))

	s.Scan(context.Background(), doc)
	s.Wait()
	s.Watch(context.Background(), doc)

	late := page.NewElement("a", "https://evil.example/")
	doc.Append(late)
	s.Wait()

	if analyzer.callCount("https://evil.example/") != 1 {
		t.Fatalf("duplicate sighting must not re-dispatch, got %d calls",
			analyzer.callCount("https://evil.example/"))
	}

	score := annotate.Score(late)
	if score == nil || *score != 85 {
		t.Fatalf("late occurrence not annotated, score = %v", score)
	}
	if got := model.Classify(score); got != model.VerdictDeny {
		t.Errorf("late occurrence classifies as %v, expected %v", got, model.VerdictDeny)
	}
	if got := len(late.Badges()); got != 1 {
		t.Errorf("late occurrence carries %d badges, expected 1", got)
	}
}

// TestWatcherBurst verifies that a batch insertion dispatches every new
// link, and that duplicates against already-scanned URLs are dropped.
func TestWatcherBurst(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	doc.Append(page.NewElement("a", "https://known.example/"))

	analyzer := newFakeAnalyzer()
	sleeper := &recordingSleeper{}
	ix := index.New()
	s := New(ix, analyzer, withSleeper(sleeper.sleep))

	s.Scan(context.Background(), doc)
	s.Watch(context.Background(), doc)

	batch := []*page.Element{
		page.NewElement("a", "https://known.example/"), // dup
		page.NewElement("a", "https://burst1.example/"),
		page.NewElement("a", "https://burst2.example/"),
	}
	doc.Append(batch...)
	s.Wait()

	if analyzer.callCount("https://known.example/") != 1 {
		t.Errorf("duplicate URL dispatched %d times, expected 1", analyzer.callCount("https://known.example/"))
	}
	if analyzer.callCount("https://burst1.example/") != 1 || analyzer.callCount("https://burst2.example/") != 1 {
		t.Error("expected both burst links to be analyzed")
	}
	if ix.Len() != 3 {
		t.Errorf("expected 3 unique URLs, got %d", ix.Len())
	}
}

// TestDispatchFailure verifies the fail-open outcome: the record is
// marked failed, the element stays unannotated, and no retry happens.
func TestDispatchFailure(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	el := page.NewElement("a", "https://flaky.example/")
	doc.Append(el)

	analyzer := newFakeAnalyzer()
	analyzer.fail["https://flaky.example/"] = true

	ix := index.New()
	s := New(ix, analyzer, withSleeper((&recordingSleeper{}).sleep))

	s.Scan(context.Background(), doc)
	s.Wait()

	rec := ix.Lookup("https://flaky.example/")
	if rec == nil || rec.State != index.StateFailed {
		t.Fatalf("expected failed record, got %+v", rec)
	}
	if _, ok := el.Attr(annotate.AttrRiskScore); ok {
		t.Error("failed analysis must not annotate the element")
	}
	if analyzer.callCount("https://flaky.example/") != 1 {
		t.Errorf("failed analysis must not retry, got %d calls", analyzer.callCount("https://flaky.example/"))
	}
}

// TestScanRecordsStats verifies completed analyses reach the stats
// recorder.
func TestScanRecordsStats(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	doc.Append(page.NewElement("a", "https://a.example/"))
	doc.Append(page.NewElement("a", "https://b.example/"))

	analyzer := newFakeAnalyzer()
	analyzer.scores["https://a.example/"] = 80

	var mu sync.Mutex
	var recorded []int
	recFn := statsFunc(func(score int, _ time.Time) {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, score)
	})

	s := New(index.New(), analyzer,
		withSleeper((&recordingSleeper{}).sleep),
		WithStats(recFn),
	)
	s.Scan(context.Background(), doc)
	s.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(recorded) != 2 {
		t.Errorf("expected 2 recorded analyses, got %d", len(recorded))
	}
}

// statsFunc adapts a function to the StatsRecorder interface.
type statsFunc func(score int, at time.Time)

func (f statsFunc) RecordAnalysis(score int, at time.Time) {
	f(score, at)
}

// TestScanCancelled verifies that cancelling the context before the
// stagger elapses leaves records pending and unscored.
func TestScanCancelled(t *testing.T) {
	t.Parallel()

	doc := page.New("https://host.example/")
	doc.Append(page.NewElement("a", "https://slow.example/"))

	analyzer := newFakeAnalyzer()
	ix := index.New()
	s := New(ix, analyzer, withSleeper(func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}))

	s.Scan(context.Background(), doc)
	s.Wait()

	rec := ix.Lookup("https://slow.example/")
	if rec == nil || rec.State != index.StatePending {
		t.Fatalf("expected pending record after cancellation, got %+v", rec)
	}
	if analyzer.callCount("https://slow.example/") != 0 {
		t.Error("cancelled dispatch must not reach the analyzer")
	}
}
