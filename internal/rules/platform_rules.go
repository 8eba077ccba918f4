package rules

import (
	"fmt"

	"github.com/shayshab/workload-compliance/internal/models"
)

// ── network_security ─────────────────────────────────────────────────────────

// NetworkSecurityRule requires a network policy covering both ingress and
// egress traffic.
type NetworkSecurityRule struct{}

func (r NetworkSecurityRule) Name() string { return "network_security" }
func (r NetworkSecurityRule) Description() string {
	return "A network policy covering both Ingress and Egress applies to the workload"
}

func (r NetworkSecurityRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	np := d.NetworkPolicy
	if np == nil {
		return fail(r.Name(), "no network policy is applied")
	}
	var reasons []string
	if !np.HasPolicyType(models.PolicyTypeIngress) {
		reasons = append(reasons, "network policy does not cover Ingress")
	}
	if !np.HasPolicyType(models.PolicyTypeEgress) {
		reasons = append(reasons, "network policy does not cover Egress")
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}

// ── audit_logging ────────────────────────────────────────────────────────────

// AuditLoggingRule requires audit logging to be enabled with a policy
// configured.
type AuditLoggingRule struct{}

func (r AuditLoggingRule) Name() string { return "audit_logging" }
func (r AuditLoggingRule) Description() string {
	return "Audit logging is enabled and an audit policy is configured"
}

func (r AuditLoggingRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	a := d.Audit
	if a == nil {
		return fail(r.Name(), "audit configuration not provided")
	}
	var reasons []string
	if !a.Enabled {
		reasons = append(reasons, "audit logging is not enabled")
	}
	if !a.PolicyConfigured {
		reasons = append(reasons, "audit policy is not configured")
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}

// ── encryption_compliance ────────────────────────────────────────────────────

// EncryptionComplianceRule requires encryption at rest for storage and TLS
// for traffic in transit.
type EncryptionComplianceRule struct{}

func (r EncryptionComplianceRule) Name() string { return "encryption_compliance" }
func (r EncryptionComplianceRule) Description() string {
	return "Storage is encrypted at rest and network traffic uses TLS in transit"
}

func (r EncryptionComplianceRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	var reasons []string
	switch {
	case d.Storage == nil:
		reasons = append(reasons, "storage configuration not provided")
	case !d.Storage.EncryptionAtRest:
		reasons = append(reasons, "storage encryption at rest is not enabled")
	}
	switch {
	case d.Network == nil:
		reasons = append(reasons, "network configuration not provided")
	case !d.Network.TLSInTransit:
		reasons = append(reasons, "TLS in transit is not enabled")
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}

// ── vulnerability_scanning ───────────────────────────────────────────────────

// VulnerabilityScanningRule requires a passing scan with zero critical and
// zero high findings.
type VulnerabilityScanningRule struct{}

func (r VulnerabilityScanningRule) Name() string { return "vulnerability_scanning" }
func (r VulnerabilityScanningRule) Description() string {
	return "Security scan passed with no critical or high findings"
}

func (r VulnerabilityScanningRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	s := d.SecurityScan
	if s == nil {
		return fail(r.Name(), "security scan result not provided")
	}
	var reasons []string
	if s.Status != models.ScanStatusPassed {
		reasons = append(reasons, fmt.Sprintf("scan status is %q, want %q", s.Status, models.ScanStatusPassed))
	}
	if s.CriticalCount != 0 {
		reasons = append(reasons, fmt.Sprintf("scan reports %d critical finding(s)", s.CriticalCount))
	}
	if s.HighCount != 0 {
		reasons = append(reasons, fmt.Sprintf("scan reports %d high finding(s)", s.HighCount))
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}
