package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/linkgate/linkgate/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.PageReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFlagged(&sb, report)
	if w.verbose {
		w.writeLinks(&sb, report)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with page information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.PageReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         LINKGATE PAGE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Page:         %s\n", report.PageURL))
	sb.WriteString(fmt.Sprintf("Scan Date:    %s\n", report.ScannedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Unique Links: %d\n", len(report.Links)))
	sb.WriteString("\n")
}

// writeSummary writes the tier summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.PageReport) {
	counts := report.CountByTier()

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RISK TIER SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  BLOCK: %d\n", counts[model.TierBlock]))
	sb.WriteString(fmt.Sprintf("  WARN:  %d\n", counts[model.TierWarn]))
	sb.WriteString(fmt.Sprintf("  INFO:  %d\n", counts[model.TierInfo]))
	sb.WriteString(fmt.Sprintf("  SAFE:  %d\n", counts[model.TierSafe]))
	sb.WriteString("\n")

	unscored := 0
	for _, l := range report.Links {
		if l.RiskScore == nil {
			unscored++
		}
	}
	if unscored > 0 {
		sb.WriteString(fmt.Sprintf("  %d link(s) not yet scored\n\n", unscored))
	}
}

// writeFlagged writes flagged links with their scores.
func (w *SimpleWriter) writeFlagged(sb *strings.Builder, report *model.PageReport) {
	flagged := report.Flagged()
	if len(flagged) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FLAGGED LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(flagged) == 0 {
		sb.WriteString("  No flagged links\n\n")
		return
	}

	for _, l := range flagged {
		indicator := w.getTierIndicator(model.TierFor(*l.RiskScore))
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", indicator, l.URL))
		sb.WriteString(fmt.Sprintf("      Score: %d  Verdict: %s", *l.RiskScore, l.Verdict))
		if l.RiskLevel != "" {
			sb.WriteString(fmt.Sprintf("  Level: %s", l.RiskLevel))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// writeLinks writes the full link inventory.
func (w *SimpleWriter) writeLinks(sb *strings.Builder, report *model.PageReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ALL LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Links) == 0 {
		sb.WriteString("  No outbound links found\n\n")
		return
	}

	for _, l := range report.Links {
		score := "-"
		if l.RiskScore != nil {
			score = fmt.Sprintf("%d", *l.RiskScore)
		}
		sb.WriteString(fmt.Sprintf("  * %s\n", l.URL))
		sb.WriteString(fmt.Sprintf("    State: %s  Score: %s  Verdict: %s  Elements: %d\n",
			l.State, score, l.Verdict, l.Elements))
	}
	sb.WriteString("\n")
}

// getTierIndicator returns a visual indicator for the tier.
func (w *SimpleWriter) getTierIndicator(tier model.Tier) string {
	switch tier {
	case model.TierBlock:
		return "!!!"
	case model.TierWarn:
		return "!!"
	case model.TierInfo:
		return "!"
	case model.TierSafe:
		return "-"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by LinkGate\n")
	sb.WriteString("https://github.com/linkgate/linkgate\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
