package models

import "time"

// RuleResult is the outcome of evaluating a single rule against a descriptor.
// It is the atomic output unit of the compliance engine.
type RuleResult struct {
	// RuleName is the unique identifier of the rule that produced this result.
	RuleName string `json:"rule_name"`

	// Passed is the rule's verdict for the evaluated descriptor.
	Passed bool `json:"passed"`

	// Reason explains the verdict. Always populated on failure and names the
	// specific missing or mismatched field so failures are actionable.
	Reason string `json:"reason,omitempty"`
}

// ComplianceReport is the full output of one evaluation run.
// Results appear in rule registration order, deterministically.
type ComplianceReport struct {
	ReportID    string    `json:"report_id"`
	GeneratedAt time.Time `json:"generated_at"`

	// Results holds exactly one entry per registered rule, in registration
	// order. No rule is ever skipped.
	Results []RuleResult `json:"results"`

	// Score is the number of passing rules; Total the number evaluated.
	Score int `json:"score"`
	Total int `json:"total"`

	// Threshold is the minimum Score/Total ratio required for Passed.
	Threshold float64 `json:"threshold"`

	// Passed is the aggregate verdict: Total == 0, or
	// Score/Total >= Threshold.
	Passed bool `json:"passed"`
}

// FailedResults returns the failing results, in report order.
func (r *ComplianceReport) FailedResults() []RuleResult {
	var failed []RuleResult
	for _, res := range r.Results {
		if !res.Passed {
			failed = append(failed, res)
		}
	}
	return failed
}
