package output

import (
	"strings"
	"testing"

	"github.com/shayshab/workload-compliance/internal/models"
)

func sampleReport() *models.ComplianceReport {
	return &models.ComplianceReport{
		Results: []models.RuleResult{
			{RuleName: "container_security", Passed: true, Reason: "all container hardening checks satisfied"},
			{RuleName: "audit_logging", Passed: false, Reason: "audit logging is not enabled"},
		},
		Score:     1,
		Total:     2,
		Threshold: 0.8,
		Passed:    false,
	}
}

func TestRenderReport_PlainTable(t *testing.T) {
	var buf strings.Builder
	RenderReport(&buf, sampleReport(), TableOptions{})
	out := buf.String()

	for _, want := range []string{
		"RULE", "STATUS", "REASON",
		"container_security", "PASS",
		"audit_logging", "FAIL", "audit logging is not enabled",
		"Score: 1/2 (50%)  threshold: 80%  verdict: FAIL",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("plain output must not contain ANSI codes")
	}
}

func TestRenderReport_SubjectLine(t *testing.T) {
	var buf strings.Builder
	RenderReport(&buf, sampleReport(), TableOptions{Subject: "default/web-7f9c/app"})
	if !strings.HasPrefix(buf.String(), "Workload: default/web-7f9c/app\n") {
		t.Errorf("missing subject line:\n%s", buf.String())
	}
}

func TestRenderReport_Colored(t *testing.T) {
	var buf strings.Builder
	RenderReport(&buf, sampleReport(), TableOptions{Colored: true})
	out := buf.String()

	if !strings.Contains(out, ansiGreen+"PASS"+ansiReset) {
		t.Error("colored output missing green PASS")
	}
	if !strings.Contains(out, ansiRed+"FAIL"+ansiReset) {
		t.Error("colored output missing red FAIL")
	}
}

func TestRenderReport_RowsFollowResultOrder(t *testing.T) {
	var buf strings.Builder
	RenderReport(&buf, sampleReport(), TableOptions{})
	out := buf.String()

	if strings.Index(out, "container_security") > strings.Index(out, "audit_logging") {
		t.Error("rows are not in result order")
	}
}

func TestRenderReport_EmptyReport(t *testing.T) {
	var buf strings.Builder
	RenderReport(&buf, &models.ComplianceReport{Threshold: 0.8, Passed: true}, TableOptions{})
	out := buf.String()

	if !strings.Contains(out, "No rules evaluated.") {
		t.Errorf("missing empty-report notice:\n%s", out)
	}
	if !strings.Contains(out, "Score: 0/0 (100%)") {
		t.Errorf("missing summary for empty report:\n%s", out)
	}
}

func TestTruncateReason(t *testing.T) {
	if got := truncateReason("short", 70); got != "short" {
		t.Errorf("got %q; want unchanged", got)
	}
	long := strings.Repeat("x", 80)
	got := truncateReason(long, 70)
	if len([]rune(got)) != 70 || !strings.HasSuffix(got, "...") {
		t.Errorf("got %d runes %q; want 70 ending in ellipsis", len([]rune(got)), got)
	}
}
