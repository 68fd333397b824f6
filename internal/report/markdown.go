package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/linkgate/linkgate/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.PageReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFlagged(md, report)
	w.writeLinks(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with page information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.PageReport) {
	md.H1("LinkGate Page Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + report.PageURL + "`"},
			{"Scan Date", report.ScannedAt.Format("2006-01-02 15:04:05 MST")},
			{"Unique Links", strconv.Itoa(len(report.Links))},
			{"URLs Scanned", strconv.FormatInt(report.Stats.URLsScanned, 10)},
			{"Threats Blocked", strconv.FormatInt(report.Stats.ThreatsBlocked, 10)},
		},
	})
	md.PlainText("")
}

// writeSummary writes the tier summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.PageReport) {
	counts := report.CountByTier()

	md.H2("Risk Tier Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Tier", "Count"},
		Rows: [][]string{
			{"🔴 Block", strconv.Itoa(counts[model.TierBlock])},
			{"🟡 Warn", strconv.Itoa(counts[model.TierWarn])},
			{"🔵 Info", strconv.Itoa(counts[model.TierInfo])},
			{"🟢 Safe", strconv.Itoa(counts[model.TierSafe])},
		},
	})
	md.PlainText("")

	scored := counts[model.TierBlock] + counts[model.TierWarn] + counts[model.TierInfo] + counts[model.TierSafe]
	if scored > 0 {
		w.writePieChart(md, counts)
	}

	w.writeAlert(md, counts)
}

// writePieChart writes a mermaid pie chart for the tier distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Tier]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Link Risk Distribution"),
		piechart.WithShowData(true),
	)

	if counts[model.TierBlock] > 0 {
		chart.LabelAndIntValue("Block", uint64(counts[model.TierBlock]))
	}
	if counts[model.TierWarn] > 0 {
		chart.LabelAndIntValue("Warn", uint64(counts[model.TierWarn]))
	}
	if counts[model.TierInfo] > 0 {
		chart.LabelAndIntValue("Info", uint64(counts[model.TierInfo]))
	}
	if counts[model.TierSafe] > 0 {
		chart.LabelAndIntValue("Safe", uint64(counts[model.TierSafe]))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on tier counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, counts map[model.Tier]int) {
	switch {
	case counts[model.TierBlock] > 0:
		md.Cautionf(
			"High risk links detected! Navigation to %d link(s) on this page is blocked.",
			counts[model.TierBlock],
		)
	case counts[model.TierWarn] > 0:
		md.Warningf(
			"Suspicious links detected. %d link(s) require confirmation before navigation.",
			counts[model.TierWarn],
		)
	case counts[model.TierInfo] > 0:
		md.Note(fmt.Sprintf("%d link(s) carry minor risk indicators. Navigation is not gated.", counts[model.TierInfo]))
	default:
		md.Tip("No risky links detected on this page.")
	}
	md.PlainText("")
}

// writeFlagged writes the flagged links section with full details.
func (w *MarkdownWriter) writeFlagged(md *markdown.Markdown, report *model.PageReport) {
	flagged := report.Flagged()
	if len(flagged) == 0 {
		return
	}

	md.H2("Flagged Links")
	md.PlainText("")

	rows := make([][]string, len(flagged))
	for i, l := range flagged {
		rows[i] = []string{
			"`" + truncateString(l.URL, 60) + "`",
			strconv.Itoa(*l.RiskScore),
			l.RiskLevel,
			l.Verdict,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Score", "Level", "Verdict"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeLinks writes the full link inventory.
func (w *MarkdownWriter) writeLinks(md *markdown.Markdown, report *model.PageReport) {
	md.H2("All Links")
	md.PlainText("")

	if len(report.Links) == 0 {
		md.PlainText("No outbound links found on this page.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Links))
	for i, l := range report.Links {
		score := "-"
		if l.RiskScore != nil {
			score = strconv.Itoa(*l.RiskScore)
		}
		rows[i] = []string{
			"`" + truncateString(l.URL, 60) + "`",
			l.State,
			score,
			l.Verdict,
			strconv.Itoa(l.Elements),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "State", "Score", "Verdict", "Elements"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [LinkGate](https://github.com/linkgate/linkgate)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
