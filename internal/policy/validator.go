package policy

import (
	"fmt"
	"strings"
)

// Validate checks cfg for semantic correctness and returns all validation
// errors found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - threshold, when set, must be within [0,1]
//   - rule names must appear in availableRuleNames
//   - trusted registry suffixes must be non-empty, without scheme or path
//
// All errors are collected before returning; Validate never stops at the
// first error.
func Validate(cfg *Config, availableRuleNames []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	known := make(map[string]struct{}, len(availableRuleNames))
	for _, name := range availableRuleNames {
		known[name] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	if cfg.Threshold != nil && (*cfg.Threshold < 0 || *cfg.Threshold > 1) {
		errs = append(errs, fmt.Errorf("threshold: value %v outside [0,1]", *cfg.Threshold))
	}

	for i, suffix := range cfg.TrustedRegistries {
		switch {
		case strings.TrimSpace(suffix) == "":
			errs = append(errs, fmt.Errorf("trusted_registries[%d]: empty suffix", i))
		case strings.Contains(suffix, "://"):
			errs = append(errs, fmt.Errorf("trusted_registries[%d]: %q must be a bare host suffix, not a URL", i, suffix))
		case strings.Contains(strings.TrimPrefix(suffix, "."), "/"):
			errs = append(errs, fmt.Errorf("trusted_registries[%d]: %q must not contain a path", i, suffix))
		}
	}

	for name := range cfg.Rules {
		if _, ok := known[name]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule name", name))
		}
	}

	return errs
}
