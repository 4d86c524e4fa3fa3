// Package report renders drift analysis results as Markdown for pull
// request comments.
package report

import (
	"fmt"
	"strings"

	"github.com/docsentry/docsentry/internal/domain"
)

// CommentMarker tags the drift comment so subsequent runs update it in
// place instead of stacking new comments on the PR.
const CommentMarker = "<!-- docsentry-drift-report -->"

var severityEmoji = map[domain.DriftSeverity]string{
	domain.DriftSeverityLow:      "🟢",
	domain.DriftSeverityMedium:   "🟡",
	domain.DriftSeverityHigh:     "🟠",
	domain.DriftSeverityCritical: "🔴",
}

// RenderDriftComment renders a drift report as a Markdown PR comment,
// marker included.
func RenderDriftComment(r *domain.DriftReport) string {
	var b strings.Builder

	b.WriteString(CommentMarker)
	b.WriteString("\n## Documentation drift check\n\n")

	if !r.HasDrift() {
		fmt.Fprintf(&b, "No documentation drift detected (%d candidate document", r.Candidates)
		if r.Candidates != 1 {
			b.WriteString("s")
		}
		fmt.Fprintf(&b, " checked, scope `%s`).\n", r.Scope)
		return b.String()
	}

	fmt.Fprintf(&b, "**%d of %d candidate documents** look out of date after this change (scope `%s`).\n\n",
		len(r.Findings), r.Candidates, r.Scope)

	b.WriteString("| Severity | Document | What drifted |\n")
	b.WriteString("|---|---|---|\n")
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "| %s %s | `%s` | %s |\n",
			severityEmoji[f.Severity], f.Severity, f.Path, escapeCell(f.Summary))
	}

	for _, f := range r.Findings {
		fmt.Fprintf(&b, "\n<details>\n<summary><code>%s</code></summary>\n\n", f.Path)
		if len(f.Sections) > 0 {
			b.WriteString("Affected sections:\n")
			for _, s := range f.Sections {
				fmt.Fprintf(&b, "- %s\n", s)
			}
			b.WriteString("\n")
		}
		if f.Recommended != "" {
			fmt.Fprintf(&b, "Suggested fix: %s\n\n", f.Recommended)
		}
		fmt.Fprintf(&b, "Confidence: %.0f%%\n</details>\n", f.Confidence*100)
	}

	fmt.Fprintf(&b, "\n_Analyzed at %s._\n", r.AnalyzedAt.Format("2006-01-02 15:04 UTC"))
	return b.String()
}

// RenderSlackSummary renders a one-line drift summary for chat
// notifications.
func RenderSlackSummary(r *domain.DriftReport) string {
	if !r.HasDrift() {
		return fmt.Sprintf("No documentation drift in %s#%d (%d candidates checked).",
			r.Repository, r.PullNumber, r.Candidates)
	}
	return fmt.Sprintf("%s drift in %s#%d: %d of %d candidate documents look out of date.",
		strings.ToUpper(string(r.MaxSeverity())), r.Repository, r.PullNumber, len(r.Findings), r.Candidates)
}

// escapeCell keeps finding text from breaking the Markdown table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
