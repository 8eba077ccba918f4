package scan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shayshab/workload-compliance/internal/models"
)

func parse(t *testing.T, sarif string) *models.SecurityScanResult {
	t.Helper()
	result, err := ParseSARIF(strings.NewReader(sarif))
	if err != nil {
		t.Fatalf("ParseSARIF: %v", err)
	}
	return result
}

func TestParseSARIF_NoRunsMeansUnknown(t *testing.T) {
	for _, sarif := range []string{`{}`, `{"runs": []}`} {
		result := parse(t, sarif)
		if result.Status != models.ScanStatusUnknown {
			t.Errorf("ParseSARIF(%s).Status = %q; want unknown", sarif, result.Status)
		}
	}
}

func TestParseSARIF_CleanRunPasses(t *testing.T) {
	result := parse(t, `{"runs": [{"tool": {"driver": {"rules": []}}, "results": []}]}`)
	if result.Status != models.ScanStatusPassed {
		t.Errorf("Status = %q; want passed", result.Status)
	}
	if result.CriticalCount != 0 || result.HighCount != 0 {
		t.Errorf("counts = %d/%d; want 0/0", result.CriticalCount, result.HighCount)
	}
}

func TestParseSARIF_SecuritySeverityMapping(t *testing.T) {
	// Scores as string and number, across both severity boundaries; a low
	// score and an unleveled note must not be counted.
	sarif := `{
  "runs": [{
    "tool": {"driver": {"rules": [
      {"id": "sql-injection", "properties": {"security-severity": "9.8"}},
      {"id": "path-traversal", "properties": {"security-severity": 7.5}},
      {"id": "weak-hash", "properties": {"security-severity": "5.3"}},
      {"id": "boundary", "properties": {"security-severity": 9.0}}
    ]}},
    "results": [
      {"ruleId": "sql-injection", "ruleIndex": 0},
      {"ruleId": "path-traversal", "ruleIndex": 1},
      {"ruleId": "weak-hash", "ruleIndex": 2},
      {"ruleId": "boundary", "ruleIndex": 3},
      {"ruleId": "untracked", "level": "note"}
    ]
  }]
}`

	result := parse(t, sarif)
	if result.CriticalCount != 2 {
		t.Errorf("CriticalCount = %d; want 2 (9.8 and the 9.0 boundary)", result.CriticalCount)
	}
	if result.HighCount != 1 {
		t.Errorf("HighCount = %d; want 1 (7.5)", result.HighCount)
	}
	if result.Status != models.ScanStatusFailed {
		t.Errorf("Status = %q; want failed", result.Status)
	}
}

func TestParseSARIF_LevelFallback(t *testing.T) {
	sarif := `{
  "runs": [{
    "tool": {"driver": {"rules": []}},
    "results": [
      {"ruleId": "no-metadata", "level": "error"},
      {"ruleId": "warned", "level": "warning"},
      {"ruleId": "cased", "level": "Error"}
    ]
  }]
}`

	result := parse(t, sarif)
	if result.HighCount != 2 {
		t.Errorf("HighCount = %d; want 2 (error levels, case-insensitive)", result.HighCount)
	}
	if result.CriticalCount != 0 {
		t.Errorf("CriticalCount = %d; want 0", result.CriticalCount)
	}
}

func TestParseSARIF_RuleLookupByIDWhenIndexMissing(t *testing.T) {
	sarif := `{
  "runs": [{
    "tool": {"driver": {"rules": [
      {"id": "xss", "properties": {"security-severity": "9.1"}}
    ]}},
    "results": [{"ruleId": "xss"}]
  }]
}`

	result := parse(t, sarif)
	if result.CriticalCount != 1 {
		t.Errorf("CriticalCount = %d; want 1 via ruleId fallback", result.CriticalCount)
	}
}

func TestParseSARIF_OutOfRangeRuleIndexFallsBack(t *testing.T) {
	sarif := `{
  "runs": [{
    "tool": {"driver": {"rules": [
      {"id": "xss", "properties": {"security-severity": "9.1"}}
    ]}},
    "results": [{"ruleId": "xss", "ruleIndex": 7}]
  }]
}`

	result := parse(t, sarif)
	if result.CriticalCount != 1 {
		t.Errorf("CriticalCount = %d; want 1 via ID scan after bad index", result.CriticalCount)
	}
}

func TestParseSARIF_MultipleRunsAccumulate(t *testing.T) {
	sarif := `{
  "runs": [
    {"tool": {"driver": {"rules": []}}, "results": [{"ruleId": "a", "level": "error"}]},
    {"tool": {"driver": {"rules": [
      {"id": "b", "properties": {"security-severity": "9.5"}}
    ]}}, "results": [{"ruleId": "b", "ruleIndex": 0}]}
  ]
}`

	result := parse(t, sarif)
	if result.CriticalCount != 1 || result.HighCount != 1 {
		t.Errorf("counts = %d/%d; want 1/1 across runs", result.CriticalCount, result.HighCount)
	}
}

func TestParseSARIF_MalformedJSON(t *testing.T) {
	if _, err := ParseSARIF(strings.NewReader(`{"runs": [`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadSARIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.sarif")
	content := `{"runs": [{"tool": {"driver": {"rules": []}}, "results": []}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	result, err := LoadSARIF(path)
	if err != nil {
		t.Fatalf("LoadSARIF: %v", err)
	}
	if result.Status != models.ScanStatusPassed {
		t.Errorf("Status = %q; want passed", result.Status)
	}

	if _, err := LoadSARIF(filepath.Join(t.TempDir(), "absent.sarif")); err == nil {
		t.Error("expected error for missing file")
	}
}
