// Package policy loads and validates the optional compliance policy file.
// The policy file adjusts engine configuration (threshold, trusted
// registries and per-rule toggles) without code changes.
package policy

// Config is the top-level policy file structure (YAML).
type Config struct {
	// Version is the policy schema version. Must be 1.
	Version int `yaml:"version"`

	// Threshold overrides the engine's passing ratio. Nil keeps the
	// engine default. Must be within [0,1] when set.
	Threshold *float64 `yaml:"threshold,omitempty"`

	// TrustedRegistries overrides the image_security trusted registry
	// suffix set. Empty keeps the built-in defaults.
	TrustedRegistries []string `yaml:"trusted_registries,omitempty"`

	// Rules holds per-rule overrides keyed by rule name.
	Rules map[string]RuleConfig `yaml:"rules,omitempty"`
}

// RuleConfig is the per-rule override block.
type RuleConfig struct {
	// Enabled disables the rule when explicitly false. Nil means enabled.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// EffectiveThreshold returns the configured threshold, or defaultValue when
// no override is present. Safe to call with cfg == nil.
func EffectiveThreshold(cfg *Config, defaultValue float64) float64 {
	if cfg == nil || cfg.Threshold == nil {
		return defaultValue
	}
	return *cfg.Threshold
}

// RuleEnabled reports whether the named rule is enabled under cfg.
// Safe to call with cfg == nil; rules are enabled by default.
func RuleEnabled(cfg *Config, name string) bool {
	if cfg == nil {
		return true
	}
	rc, ok := cfg.Rules[name]
	if !ok || rc.Enabled == nil {
		return true
	}
	return *rc.Enabled
}
