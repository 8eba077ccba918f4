package rules

import "github.com/shayshab/workload-compliance/internal/models"

// ── pod_security_standards ───────────────────────────────────────────────────

// PodSecurityStandardsRule requires a pod security context with runAsNonRoot
// enabled and fsGroup set.
type PodSecurityStandardsRule struct{}

func (r PodSecurityStandardsRule) Name() string { return "pod_security_standards" }
func (r PodSecurityStandardsRule) Description() string {
	return "Pod security context is present with run_as_non_root enabled and fs_group set"
}

func (r PodSecurityStandardsRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	p := d.Pod
	if p == nil {
		return fail(r.Name(), "pod spec not provided")
	}
	sc := p.SecurityContext
	if sc == nil {
		return fail(r.Name(), "pod security context not set")
	}
	var reasons []string
	switch {
	case sc.RunAsNonRoot == nil:
		reasons = append(reasons, "run_as_non_root not set")
	case !*sc.RunAsNonRoot:
		reasons = append(reasons, "run_as_non_root is disabled")
	}
	if sc.FSGroup == nil {
		reasons = append(reasons, "fs_group not set")
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}

// ── rbac_compliance ──────────────────────────────────────────────────────────

// RBACComplianceRule requires a dedicated service account with the API token
// automount disabled.
type RBACComplianceRule struct{}

func (r RBACComplianceRule) Name() string { return "rbac_compliance" }
func (r RBACComplianceRule) Description() string {
	return "Pod uses a named service account and does not automount its API token"
}

func (r RBACComplianceRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	p := d.Pod
	if p == nil {
		return fail(r.Name(), "pod spec not provided")
	}
	var reasons []string
	if p.ServiceAccountName == "" {
		reasons = append(reasons, "service_account_name not set")
	}
	switch {
	case p.AutomountServiceAccountToken == nil:
		reasons = append(reasons, "automount_service_account_token not set")
	case *p.AutomountServiceAccountToken:
		reasons = append(reasons, "automount_service_account_token is enabled")
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}
