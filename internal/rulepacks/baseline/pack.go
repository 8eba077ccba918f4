// Package baseline provides the baseline workload compliance rule pack.
// It groups the ten core rules into a single registration call.
package baseline

import "github.com/shayshab/workload-compliance/internal/rules"

// New returns the complete baseline rule set in its canonical order. The
// order is stable and fixes the order of results in every report.
//
// trustedRegistries configures the image_security rule; an empty slice
// selects rules.DefaultTrustedRegistries.
func New(trustedRegistries []string) []rules.Rule {
	return []rules.Rule{
		rules.ContainerSecurityRule{},
		rules.NetworkSecurityRule{},
		rules.ResourceLimitsRule{},
		rules.SecretsManagementRule{},
		rules.NewImageSecurityRule(trustedRegistries),
		rules.PodSecurityStandardsRule{},
		rules.RBACComplianceRule{},
		rules.AuditLoggingRule{},
		rules.EncryptionComplianceRule{},
		rules.VulnerabilityScanningRule{},
	}
}

// Names returns the baseline rule names in pack order. Used by policy
// validation to reject unknown rule IDs without building a registry.
func Names() []string {
	pack := New(nil)
	names := make([]string, 0, len(pack))
	for _, r := range pack {
		names = append(names, r.Name())
	}
	return names
}
