package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/linkgate/linkgate/internal/model"
)

// intPtr returns a pointer to the given int.
func intPtr(v int) *int {
	return &v
}

// testReport returns a report with one link in each tier plus one
// unscored link.
func testReport() *model.PageReport {
	return &model.PageReport{
		PageURL:   "https://example.com/inbox",
		ScannedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Links: []model.LinkSummary{
			{URL: "https://evil.example/login", State: "scored", RiskScore: intPtr(92), RiskLevel: "HIGH RISK", Verdict: "DENY", Elements: 2},
			{URL: "https://shady.example/offer", State: "scored", RiskScore: intPtr(55), RiskLevel: "MEDIUM RISK", Verdict: "WARN", Elements: 1},
			{URL: "https://odd.example/", State: "scored", RiskScore: intPtr(25), RiskLevel: "LOW RISK", Verdict: "ALLOW", Elements: 1},
			{URL: "https://fine.example/", State: "scored", RiskScore: intPtr(3), RiskLevel: "SAFE", Verdict: "ALLOW", Elements: 1},
			{URL: "https://slow.example/", State: "in_flight", Verdict: "ALLOW", Elements: 1},
		},
		Stats: model.Stats{URLsScanned: 4, ThreatsBlocked: 1},
	}
}

// TestSimpleWriter tests the human-readable text output.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and tier summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		n, err := w.Write(testReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{
			"LINKGATE PAGE REPORT",
			"https://example.com/inbox",
			"BLOCK: 1",
			"WARN:  1",
			"INFO:  1",
			"SAFE:  1",
			"1 link(s) not yet scored",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("flagged section lists block and warn links only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "https://evil.example/login") {
			t.Error("flagged section missing the blocked link")
		}
		if !strings.Contains(out, "https://shady.example/offer") {
			t.Error("flagged section missing the warned link")
		}
		if strings.Contains(out, "https://fine.example/") {
			t.Error("safe link should not appear without verbose")
		}
	})

	t.Run("verbose includes all links", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "ALL LINKS") {
			t.Error("verbose output missing link inventory section")
		}
		if !strings.Contains(out, "https://fine.example/") {
			t.Error("verbose output missing safe link")
		}
		if !strings.Contains(out, "State: in_flight") {
			t.Error("verbose output missing unscored link state")
		}
	})

	t.Run("showEmpty renders empty flagged section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))

		report := &model.PageReport{
			PageURL:   "https://clean.example/",
			ScannedAt: time.Now(),
		}
		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No flagged links") {
			t.Errorf("expected empty flagged section, got:\n%s", buf.String())
		}
	})
}

// TestJSONWriter tests the JSON output formats.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact output round-trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.PageReport
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if got.PageURL != "https://example.com/inbox" {
			t.Errorf("PageURL = %q", got.PageURL)
		}
		if len(got.Links) != 5 {
			t.Errorf("expected 5 links, got %d", len(got.Links))
		}
		if got.Links[0].RiskScore == nil || *got.Links[0].RiskScore != 92 {
			t.Errorf("first link score lost: %+v", got.Links[0])
		}
		if got.Links[4].RiskScore != nil {
			t.Errorf("unscored link gained a score: %+v", got.Links[4])
		}
	})

	t.Run("pretty print is indented", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"page_url\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("Version = %q", wrapped.Version)
		}
		if wrapped.Report == nil || wrapped.Report.PageURL != "https://example.com/inbox" {
			t.Errorf("wrapped report missing: %+v", wrapped.Report)
		}
	})
}

// TestMarkdownWriter tests the Markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes header, summary, and tables", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(testReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"# LinkGate Page Report",
			"## Risk Tier Summary",
			"## Flagged Links",
			"## All Links",
			"https://evil.example/login",
			"mermaid",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("markdown missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("clean page gets a tip instead of a caution", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		report := &model.PageReport{
			PageURL:   "https://clean.example/",
			ScannedAt: time.Now(),
			Links: []model.LinkSummary{
				{URL: "https://fine.example/", State: "scored", RiskScore: intPtr(2), Verdict: "ALLOW", Elements: 1},
			},
		}
		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "[!TIP]") {
			t.Errorf("expected a tip alert, got:\n%s", out)
		}
		if strings.Contains(out, "[!CAUTION]") {
			t.Errorf("unexpected caution alert:\n%s", out)
		}
	})
}

// TestMultiWriter tests writing to multiple destinations.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	n, err := mw.Write(testReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+jsonBuf.Len() {
		t.Errorf("total = %d, expected %d", n, text.Len()+jsonBuf.Len())
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("one of the writers received no output")
	}
}

// TestTruncateString tests URL truncation for table cells.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string unchanged", input: "abc", maxLen: 10, want: "abc"},
		{name: "exact length unchanged", input: "abcde", maxLen: 5, want: "abcde"},
		{name: "long string gets ellipsis", input: "abcdefghij", maxLen: 8, want: "abcde..."},
		{name: "tiny max truncates hard", input: "abcdefghij", maxLen: 2, want: "ab"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tc.input, tc.maxLen); got != tc.want {
				t.Errorf("truncateString(%q, %d) = %q, expected %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}
