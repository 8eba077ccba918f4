package rules

import (
	"strings"
	"testing"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/shayshab/workload-compliance/internal/models"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// boolPtr returns a pointer to the given bool value.
func boolPtr(b bool) *bool { return &b }

// qty parses a Kubernetes quantity string and returns its address.
func qty(s string) *resource.Quantity {
	q := resource.MustParse(s)
	return &q
}

// compliantContainer returns a ContainerSpec that passes every container rule.
func compliantContainer() *models.ContainerSpec {
	return &models.ContainerSpec{
		Image:                  "myrepo.ecr.amazonaws.com/app@sha256:" + strings.Repeat("ab", 32),
		RunAsNonRoot:           boolPtr(true),
		ReadOnlyRootFilesystem: boolPtr(true),
		CapabilitiesDrop:       []string{"ALL"},
		Resources: &models.ResourceRequirements{
			CPULimit:      qty("500m"),
			MemoryLimit:   qty("256Mi"),
			CPURequest:    qty("250m"),
			MemoryRequest: qty("128Mi"),
		},
		Env: []models.EnvVar{
			{Name: "DB_PASSWORD", SecretRef: &models.SecretRef{Name: "db-secret", Key: "password"}},
		},
	}
}

// containerDescriptor wraps a ContainerSpec in a descriptor.
func containerDescriptor(c *models.ContainerSpec) *models.WorkloadDescriptor {
	return &models.WorkloadDescriptor{Container: c}
}

// wantFail asserts a failing result whose reason mentions want.
func wantFail(t *testing.T, res models.RuleResult, want string) {
	t.Helper()
	if res.Passed {
		t.Fatalf("expected failure, got pass")
	}
	if !strings.Contains(res.Reason, want) {
		t.Errorf("reason %q does not mention %q", res.Reason, want)
	}
}

// wantPass asserts a passing result.
func wantPass(t *testing.T, res models.RuleResult) {
	t.Helper()
	if !res.Passed {
		t.Fatalf("expected pass, got failure: %s", res.Reason)
	}
}

// ── container_security ───────────────────────────────────────────────────────

func TestContainerSecurity_Passes_WhenHardened(t *testing.T) {
	res := ContainerSecurityRule{}.Evaluate(containerDescriptor(compliantContainer()))
	wantPass(t, res)
	if res.RuleName != "container_security" {
		t.Errorf("RuleName = %q; want container_security", res.RuleName)
	}
}

func TestContainerSecurity_Fails_WhenContainerMissing(t *testing.T) {
	res := ContainerSecurityRule{}.Evaluate(&models.WorkloadDescriptor{})
	wantFail(t, res, "container spec not provided")
}

func TestContainerSecurity_Fails_PerField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *models.ContainerSpec)
		reason string
	}{
		{"run_as_non_root unset", func(c *models.ContainerSpec) { c.RunAsNonRoot = nil }, "run_as_non_root not set"},
		{"run_as_non_root false", func(c *models.ContainerSpec) { c.RunAsNonRoot = boolPtr(false) }, "run_as_non_root is disabled"},
		{"read_only_root_filesystem unset", func(c *models.ContainerSpec) { c.ReadOnlyRootFilesystem = nil }, "read_only_root_filesystem not set"},
		{"read_only_root_filesystem false", func(c *models.ContainerSpec) { c.ReadOnlyRootFilesystem = boolPtr(false) }, "read_only_root_filesystem is disabled"},
		{"capabilities not dropped", func(c *models.ContainerSpec) { c.CapabilitiesDrop = []string{"NET_RAW"} }, "capabilities_drop"},
		{"no capability drops", func(c *models.ContainerSpec) { c.CapabilitiesDrop = nil }, "capabilities_drop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compliantContainer()
			tt.mutate(c)
			wantFail(t, ContainerSecurityRule{}.Evaluate(containerDescriptor(c)), tt.reason)
		})
	}
}

// ── resource_limits ──────────────────────────────────────────────────────────

func TestResourceLimits_Passes_WhenAllDeclared(t *testing.T) {
	wantPass(t, ResourceLimitsRule{}.Evaluate(containerDescriptor(compliantContainer())))
}

func TestResourceLimits_Fails_WhenResourcesMissing(t *testing.T) {
	c := compliantContainer()
	c.Resources = nil
	wantFail(t, ResourceLimitsRule{}.Evaluate(containerDescriptor(c)), "resource limits and requests not set")
}

func TestResourceLimits_Fails_PerQuantity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.ResourceRequirements)
		reason string
	}{
		{"cpu limit missing", func(r *models.ResourceRequirements) { r.CPULimit = nil }, "cpu limit not set"},
		{"memory limit missing", func(r *models.ResourceRequirements) { r.MemoryLimit = nil }, "memory limit not set"},
		{"cpu request missing", func(r *models.ResourceRequirements) { r.CPURequest = nil }, "cpu request not set"},
		{"memory request missing", func(r *models.ResourceRequirements) { r.MemoryRequest = nil }, "memory request not set"},
		{"zero cpu limit", func(r *models.ResourceRequirements) { r.CPULimit = qty("0") }, "cpu limit is not a positive quantity"},
		{"zero memory request", func(r *models.ResourceRequirements) { r.MemoryRequest = qty("0") }, "memory request is not a positive quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compliantContainer()
			tt.mutate(c.Resources)
			wantFail(t, ResourceLimitsRule{}.Evaluate(containerDescriptor(c)), tt.reason)
		})
	}
}

// ── secrets_management ───────────────────────────────────────────────────────

func TestSecretsManagement_Passes_WhenAllSecretRefs(t *testing.T) {
	wantPass(t, SecretsManagementRule{}.Evaluate(containerDescriptor(compliantContainer())))
}

func TestSecretsManagement_Passes_WhenNoEnv(t *testing.T) {
	c := compliantContainer()
	c.Env = nil
	wantPass(t, SecretsManagementRule{}.Evaluate(containerDescriptor(c)))
}

func TestSecretsManagement_Fails_OnLiteralValue(t *testing.T) {
	c := compliantContainer()
	c.Env = append(c.Env, models.EnvVar{Name: "API_TOKEN", Value: "hunter2"})
	res := SecretsManagementRule{}.Evaluate(containerDescriptor(c))
	wantFail(t, res, "API_TOKEN")
}

func TestSecretsManagement_Fails_OnUnreferencedBinding(t *testing.T) {
	c := compliantContainer()
	c.Env = []models.EnvVar{{Name: "POD_IP"}}
	wantFail(t, SecretsManagementRule{}.Evaluate(containerDescriptor(c)), "POD_IP")
}

func TestSecretsManagement_Fails_WhenLiteralShadowsSecretRef(t *testing.T) {
	c := compliantContainer()
	c.Env = []models.EnvVar{{
		Name:      "DB_PASSWORD",
		Value:     "plaintext",
		SecretRef: &models.SecretRef{Name: "db-secret", Key: "password"},
	}}
	wantFail(t, SecretsManagementRule{}.Evaluate(containerDescriptor(c)), "DB_PASSWORD")
}

// ── image_security ───────────────────────────────────────────────────────────

func TestImageSecurity_Passes_DigestPinnedTrustedRegistry(t *testing.T) {
	c := compliantContainer()
	c.Image = "myrepo.ecr.amazonaws.com/app@sha256:" + strings.Repeat("0123456789abcdef", 4)
	wantPass(t, NewImageSecurityRule(nil).Evaluate(containerDescriptor(c)))
}

func TestImageSecurity_Fails_TagOnlyReference(t *testing.T) {
	c := compliantContainer()
	c.Image = "myrepo.ecr.amazonaws.com/app:latest"
	wantFail(t, NewImageSecurityRule(nil).Evaluate(containerDescriptor(c)), "not digest-pinned")
}

func TestImageSecurity_Fails_UntrustedRegistry(t *testing.T) {
	c := compliantContainer()
	c.Image = "registry.example.com/app@sha256:" + strings.Repeat("ab", 32)
	res := NewImageSecurityRule(nil).Evaluate(containerDescriptor(c))
	wantFail(t, res, `"registry.example.com"`)
}

func TestImageSecurity_Fails_DockerHubShortName(t *testing.T) {
	c := compliantContainer()
	c.Image = "nginx:latest"
	res := NewImageSecurityRule(nil).Evaluate(containerDescriptor(c))
	wantFail(t, res, "docker.io")
}

func TestImageSecurity_Fails_WhenImageMissing(t *testing.T) {
	c := compliantContainer()
	c.Image = ""
	wantFail(t, NewImageSecurityRule(nil).Evaluate(containerDescriptor(c)), "image reference not set")
}

func TestImageSecurity_CustomTrustedRegistries(t *testing.T) {
	rule := NewImageSecurityRule([]string{"registry.internal.example.com"})
	c := compliantContainer()
	c.Image = "registry.internal.example.com/team/app@sha256:" + strings.Repeat("cd", 32)
	wantPass(t, rule.Evaluate(containerDescriptor(c)))

	// Default-trusted hosts are no longer trusted under the custom set.
	c.Image = "myrepo.ecr.amazonaws.com/app@sha256:" + strings.Repeat("cd", 32)
	wantFail(t, rule.Evaluate(containerDescriptor(c)), "trusted registry set")
}

func TestImageSecurity_StripsRegistryPort(t *testing.T) {
	rule := NewImageSecurityRule([]string{"registry.internal.example.com"})
	c := compliantContainer()
	c.Image = "registry.internal.example.com:5000/app@sha256:" + strings.Repeat("ef", 32)
	wantPass(t, rule.Evaluate(containerDescriptor(c)))
}

func TestImageSecurity_GCRSubdomains(t *testing.T) {
	c := compliantContainer()
	c.Image = "eu.gcr.io/project/app@sha256:" + strings.Repeat("12", 32)
	wantPass(t, NewImageSecurityRule(nil).Evaluate(containerDescriptor(c)))
}
