package rules

import (
	"testing"

	"github.com/shayshab/workload-compliance/internal/models"
)

// int64Ptr returns a pointer to the given int64 value.
func int64Ptr(i int64) *int64 { return &i }

// compliantPod returns a PodSpec that passes every pod rule.
func compliantPod() *models.PodSpec {
	return &models.PodSpec{
		SecurityContext: &models.PodSecurityContext{
			RunAsNonRoot: boolPtr(true),
			FSGroup:      int64Ptr(2000),
		},
		ServiceAccountName:           "app-sa",
		AutomountServiceAccountToken: boolPtr(false),
	}
}

// podDescriptor wraps a PodSpec in a descriptor.
func podDescriptor(p *models.PodSpec) *models.WorkloadDescriptor {
	return &models.WorkloadDescriptor{Pod: p}
}

// ── pod_security_standards ───────────────────────────────────────────────────

func TestPodSecurityStandards_Passes_WhenCompliant(t *testing.T) {
	wantPass(t, PodSecurityStandardsRule{}.Evaluate(podDescriptor(compliantPod())))
}

func TestPodSecurityStandards_Fails_WhenPodMissing(t *testing.T) {
	wantFail(t, PodSecurityStandardsRule{}.Evaluate(&models.WorkloadDescriptor{}), "pod spec not provided")
}

func TestPodSecurityStandards_Fails_WhenSecurityContextMissing(t *testing.T) {
	p := compliantPod()
	p.SecurityContext = nil
	wantFail(t, PodSecurityStandardsRule{}.Evaluate(podDescriptor(p)), "pod security context not set")
}

func TestPodSecurityStandards_Fails_PerField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.PodSpec)
		reason string
	}{
		{"run_as_non_root unset", func(p *models.PodSpec) { p.SecurityContext.RunAsNonRoot = nil }, "run_as_non_root not set"},
		{"run_as_non_root false", func(p *models.PodSpec) { p.SecurityContext.RunAsNonRoot = boolPtr(false) }, "run_as_non_root is disabled"},
		{"fs_group unset", func(p *models.PodSpec) { p.SecurityContext.FSGroup = nil }, "fs_group not set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := compliantPod()
			tt.mutate(p)
			wantFail(t, PodSecurityStandardsRule{}.Evaluate(podDescriptor(p)), tt.reason)
		})
	}
}

// ── rbac_compliance ──────────────────────────────────────────────────────────

func TestRBACCompliance_Passes_WhenCompliant(t *testing.T) {
	wantPass(t, RBACComplianceRule{}.Evaluate(podDescriptor(compliantPod())))
}

func TestRBACCompliance_Fails_WhenPodMissing(t *testing.T) {
	wantFail(t, RBACComplianceRule{}.Evaluate(&models.WorkloadDescriptor{}), "pod spec not provided")
}

func TestRBACCompliance_Fails_PerField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.PodSpec)
		reason string
	}{
		{"service account empty", func(p *models.PodSpec) { p.ServiceAccountName = "" }, "service_account_name not set"},
		{"automount unset", func(p *models.PodSpec) { p.AutomountServiceAccountToken = nil }, "automount_service_account_token not set"},
		{"automount enabled", func(p *models.PodSpec) { p.AutomountServiceAccountToken = boolPtr(true) }, "automount_service_account_token is enabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := compliantPod()
			tt.mutate(p)
			wantFail(t, RBACComplianceRule{}.Evaluate(podDescriptor(p)), tt.reason)
		})
	}
}
