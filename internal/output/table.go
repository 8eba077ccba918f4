// Package output renders compliance reports for terminals and CI logs.
// It is a pure presentation package; no evaluation logic lives here.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/shayshab/workload-compliance/internal/models"
)

// ANSI color codes for verdict output (used when Colored=true).
const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[0;31m"
	ansiGreen = "\033[0;32m"
)

// TableOptions controls how RenderReport renders a compliance report.
type TableOptions struct {
	// Colored wraps PASS/FAIL labels with ANSI codes. Default false (CI-safe).
	Colored bool

	// Subject is an optional workload label printed above the table
	// (e.g. "default/web-7f9c/app"). Empty omits the line.
	Subject string
}

// verdictLabel formats the boolean verdict, optionally coloured.
func verdictLabel(passed, colored bool) string {
	if passed {
		if colored {
			return ansiGreen + "PASS" + ansiReset
		}
		return "PASS"
	}
	if colored {
		return ansiRed + "FAIL" + ansiReset
	}
	return "FAIL"
}

// verdictCell returns the verdict padded to width characters. ANSI codes
// wrap only the text so subsequent columns stay aligned regardless of
// terminal ANSI support.
func verdictCell(passed bool, width int, colored bool) string {
	text := "FAIL"
	if passed {
		text = "PASS"
	}
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	return verdictLabel(passed, true) + strings.Repeat(" ", width-len(text))
}

// truncateReason shortens reason to at most max runes, appending "..." when
// truncated. max is treated as at least 4 to guarantee space for the ellipsis.
func truncateReason(reason string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(reason)
	if len(runes) <= max {
		return reason
	}
	return string(runes[:max-3]) + "..."
}

// RenderReport writes a formatted rule-result table and a summary line to w.
// Results are rendered in report order (rule registration order).
func RenderReport(w io.Writer, report *models.ComplianceReport, opts TableOptions) {
	if opts.Subject != "" {
		fmt.Fprintf(w, "Workload: %s\n", opts.Subject)
	}

	if report.Total == 0 {
		fmt.Fprintln(w, "No rules evaluated.")
		fmt.Fprintln(w, renderSummary(report, opts.Colored))
		return
	}

	const (
		wRule   = 26
		wStatus = 8
		wReason = 70
	)

	header := fmt.Sprintf("%-*s  %-*s  %s", wRule, "RULE", wStatus, "STATUS", "REASON")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", wRule+2+wStatus+2+wReason))

	for _, res := range report.Results {
		fmt.Fprintf(w, "%-*s  %s  %s\n",
			wRule, res.RuleName,
			verdictCell(res.Passed, wStatus, opts.Colored),
			truncateReason(res.Reason, wReason),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, renderSummary(report, opts.Colored))
}

// renderSummary formats the aggregate verdict line, e.g.
//
//	Score: 8/10 (80%)  threshold: 80%  verdict: PASS
func renderSummary(report *models.ComplianceReport, colored bool) string {
	percent := 100.0
	if report.Total > 0 {
		percent = float64(report.Score) / float64(report.Total) * 100
	}
	return fmt.Sprintf("Score: %d/%d (%.0f%%)  threshold: %.0f%%  verdict: %s",
		report.Score, report.Total, percent,
		report.Threshold*100,
		verdictLabel(report.Passed, colored),
	)
}
