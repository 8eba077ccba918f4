package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy fixture: %v", err)
	}
	return path
}

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestLoad_FullConfig(t *testing.T) {
	path := writePolicy(t, `
version: 1
threshold: 0.9
trusted_registries:
  - ".amazonaws.com"
  - "registry.internal"
rules:
  audit_logging:
    enabled: false
  container_security:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d; want 1", cfg.Version)
	}
	if cfg.Threshold == nil || *cfg.Threshold != 0.9 {
		t.Errorf("Threshold = %v; want 0.9", cfg.Threshold)
	}
	if len(cfg.TrustedRegistries) != 2 || cfg.TrustedRegistries[0] != ".amazonaws.com" {
		t.Errorf("TrustedRegistries = %v", cfg.TrustedRegistries)
	}
	if RuleEnabled(cfg, "audit_logging") {
		t.Error("audit_logging should be disabled")
	}
	if !RuleEnabled(cfg, "container_security") {
		t.Error("container_security should be enabled")
	}
}

func TestLoad_MinimalConfigInitializesRulesMap(t *testing.T) {
	cfg, err := Load(writePolicy(t, "version: 1\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rules == nil {
		t.Error("Rules map should be initialized")
	}
	if cfg.Threshold != nil {
		t.Errorf("Threshold = %v; want nil", *cfg.Threshold)
	}
}

func TestLoad_RejectsUnsupportedVersion(t *testing.T) {
	for _, content := range []string{"version: 2\n", "threshold: 0.5\n"} {
		if _, err := Load(writePolicy(t, content)); err == nil {
			t.Errorf("Load(%q): expected version error", strings.TrimSpace(content))
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	if _, err := Load(writePolicy(t, "version: [not a number\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestEffectiveThreshold(t *testing.T) {
	if got := EffectiveThreshold(nil, 0.8); got != 0.8 {
		t.Errorf("nil config: got %v; want 0.8", got)
	}
	if got := EffectiveThreshold(&Config{}, 0.8); got != 0.8 {
		t.Errorf("no override: got %v; want 0.8", got)
	}
	if got := EffectiveThreshold(&Config{Threshold: floatPtr(0.95)}, 0.8); got != 0.95 {
		t.Errorf("override: got %v; want 0.95", got)
	}
}

func TestRuleEnabled_DefaultsAndNilSafety(t *testing.T) {
	if !RuleEnabled(nil, "anything") {
		t.Error("nil config must default to enabled")
	}
	cfg := &Config{Rules: map[string]RuleConfig{
		"off":      {Enabled: boolPtr(false)},
		"on":       {Enabled: boolPtr(true)},
		"implicit": {},
	}}
	if RuleEnabled(cfg, "off") {
		t.Error("explicitly disabled rule reported enabled")
	}
	if !RuleEnabled(cfg, "on") || !RuleEnabled(cfg, "implicit") || !RuleEnabled(cfg, "unlisted") {
		t.Error("enabled/implicit/unlisted rules must report enabled")
	}
}

func TestValidate_AcceptsCleanConfig(t *testing.T) {
	cfg := &Config{
		Version:           1,
		Threshold:         floatPtr(0.75),
		TrustedRegistries: []string{".amazonaws.com", "gcr.io"},
		Rules:             map[string]RuleConfig{"audit_logging": {Enabled: boolPtr(false)}},
	}
	if errs := Validate(cfg, []string{"audit_logging", "container_security"}); len(errs) != 0 {
		t.Errorf("Validate returned %v; want none", errs)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Version:           3,
		Threshold:         floatPtr(1.5),
		TrustedRegistries: []string{"", "https://gcr.io", "gcr.io/project"},
		Rules:             map[string]RuleConfig{"no_such_rule": {}},
	}

	errs := Validate(cfg, []string{"audit_logging"})
	if len(errs) != 6 {
		for _, err := range errs {
			t.Logf("error: %v", err)
		}
		t.Fatalf("got %d errors; want 6", len(errs))
	}

	wantFragments := []string{
		"version",
		"threshold",
		"empty suffix",
		"not a URL",
		"must not contain a path",
		"unknown rule name",
	}
	joined := make([]string, 0, len(errs))
	for _, err := range errs {
		joined = append(joined, err.Error())
	}
	all := strings.Join(joined, "\n")
	for _, frag := range wantFragments {
		if !strings.Contains(all, frag) {
			t.Errorf("errors missing fragment %q in:\n%s", frag, all)
		}
	}
}

func TestValidate_NilConfig(t *testing.T) {
	if errs := Validate(nil, nil); len(errs) != 1 {
		t.Errorf("got %d errors; want 1", len(errs))
	}
}
