// Package scan reduces external scanner output to the security_scan section
// of a workload descriptor. SAST, DAST, dependency, and container scanners
// all run outside this program; only their SARIF result files are consumed.
package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shayshab/workload-compliance/internal/models"
)

// The SARIF 2.1.0 subset consumed by the importer. Only rule metadata and
// result severity matter; locations, fixes, and flows are ignored.
type sarifLog struct {
	Runs []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

type sarifResult struct {
	RuleID    string `json:"ruleId"`
	RuleIndex *int   `json:"ruleIndex"`
	Level     string `json:"level"`
}

// ParseSARIF reads a SARIF 2.1.0 log and reduces it to a scan result:
// finding counts for the critical and high severities, and an overall
// status. A log with no runs yields ScanStatusUnknown: the scanner's
// verdict cannot be inferred from an empty log.
//
// Severity resolution follows the GitHub code-scanning convention: a rule's
// "security-severity" property maps scores >= 9.0 to critical and >= 7.0 to
// high. Results without a usable score fall back to the SARIF level, where
// "error" counts as high.
func ParseSARIF(r io.Reader) (*models.SecurityScanResult, error) {
	var log sarifLog
	if err := json.NewDecoder(r).Decode(&log); err != nil {
		return nil, fmt.Errorf("parse SARIF: %w", err)
	}

	if len(log.Runs) == 0 {
		return &models.SecurityScanResult{Status: models.ScanStatusUnknown}, nil
	}

	result := &models.SecurityScanResult{}
	for _, run := range log.Runs {
		for _, res := range run.Results {
			switch resolveSeverity(run, res) {
			case "critical":
				result.CriticalCount++
			case "high":
				result.HighCount++
			}
		}
	}

	result.Status = models.ScanStatusPassed
	if result.CriticalCount > 0 || result.HighCount > 0 {
		result.Status = models.ScanStatusFailed
	}
	return result, nil
}

// LoadSARIF reads and reduces the SARIF file at path.
func LoadSARIF(path string) (*models.SecurityScanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open SARIF file: %w", err)
	}
	defer f.Close()
	return ParseSARIF(f)
}

// resolveSeverity classifies one result as "critical", "high", or "" (not
// counted).
func resolveSeverity(run sarifRun, res sarifResult) string {
	if score, ok := securityScore(run, res); ok {
		switch {
		case score >= 9.0:
			return "critical"
		case score >= 7.0:
			return "high"
		default:
			return ""
		}
	}
	if strings.EqualFold(res.Level, "error") {
		return "high"
	}
	return ""
}

// securityScore resolves the result's rule and extracts its
// "security-severity" property. SARIF producers emit the score as either a
// JSON string or a number; both are accepted.
func securityScore(run sarifRun, res sarifResult) (float64, bool) {
	rule, ok := lookupRule(run, res)
	if !ok || rule.Properties == nil {
		return 0, false
	}
	switch v := rule.Properties["security-severity"].(type) {
	case string:
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return score, true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// lookupRule finds the rule metadata for a result, preferring the explicit
// ruleIndex and falling back to an ID scan.
func lookupRule(run sarifRun, res sarifResult) (sarifRule, bool) {
	rules := run.Tool.Driver.Rules
	if res.RuleIndex != nil && *res.RuleIndex >= 0 && *res.RuleIndex < len(rules) {
		return rules[*res.RuleIndex], true
	}
	for _, rule := range rules {
		if rule.ID != "" && rule.ID == res.RuleID {
			return rule, true
		}
	}
	return sarifRule{}, false
}
