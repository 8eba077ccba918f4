package rules

import (
	"fmt"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/shayshab/workload-compliance/internal/models"
)

// pass builds a passing result for the named rule.
func pass(name string) models.RuleResult {
	return models.RuleResult{RuleName: name, Passed: true}
}

// fail builds a failing result for the named rule with the given reason.
func fail(name, reason string) models.RuleResult {
	return models.RuleResult{RuleName: name, Passed: false, Reason: reason}
}

// failAll joins the collected per-field reasons into one failing result so
// every broken field is actionable from a single report line.
func failAll(name string, reasons []string) models.RuleResult {
	return fail(name, strings.Join(reasons, "; "))
}

// ── container_security ───────────────────────────────────────────────────────

// ContainerSecurityRule requires a hardened container security context:
// runAsNonRoot, a read-only root filesystem, and all capabilities dropped.
type ContainerSecurityRule struct{}

func (r ContainerSecurityRule) Name() string { return "container_security" }
func (r ContainerSecurityRule) Description() string {
	return "Container runs as non-root with a read-only root filesystem and all capabilities dropped"
}

func (r ContainerSecurityRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	c := d.Container
	if c == nil {
		return fail(r.Name(), "container spec not provided")
	}
	var reasons []string
	switch {
	case c.RunAsNonRoot == nil:
		reasons = append(reasons, "run_as_non_root not set")
	case !*c.RunAsNonRoot:
		reasons = append(reasons, "run_as_non_root is disabled")
	}
	switch {
	case c.ReadOnlyRootFilesystem == nil:
		reasons = append(reasons, "read_only_root_filesystem not set")
	case !*c.ReadOnlyRootFilesystem:
		reasons = append(reasons, "read_only_root_filesystem is disabled")
	}
	if !dropsAllCapabilities(c.CapabilitiesDrop) {
		reasons = append(reasons, `capabilities_drop does not include "ALL"`)
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}

// dropsAllCapabilities reports whether the drop set contains "ALL".
func dropsAllCapabilities(drop []string) bool {
	for _, cap := range drop {
		if cap == "ALL" {
			return true
		}
	}
	return false
}

// ── resource_limits ──────────────────────────────────────────────────────────

// ResourceLimitsRule requires CPU and memory limits and requests, each a
// positive quantity.
type ResourceLimitsRule struct{}

func (r ResourceLimitsRule) Name() string { return "resource_limits" }
func (r ResourceLimitsRule) Description() string {
	return "Container declares positive CPU and memory limits and requests"
}

func (r ResourceLimitsRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	c := d.Container
	if c == nil {
		return fail(r.Name(), "container spec not provided")
	}
	if c.Resources == nil {
		return fail(r.Name(), "resource limits and requests not set")
	}
	var reasons []string
	appendQuantityReason(&reasons, "cpu limit", c.Resources.CPULimit)
	appendQuantityReason(&reasons, "memory limit", c.Resources.MemoryLimit)
	appendQuantityReason(&reasons, "cpu request", c.Resources.CPURequest)
	appendQuantityReason(&reasons, "memory request", c.Resources.MemoryRequest)
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}

// appendQuantityReason adds a reason when q is missing or not positive.
func appendQuantityReason(reasons *[]string, field string, q *resource.Quantity) {
	switch {
	case q == nil:
		*reasons = append(*reasons, field+" not set")
	case q.Sign() <= 0:
		*reasons = append(*reasons, field+" is not a positive quantity")
	}
}

// ── secrets_management ───────────────────────────────────────────────────────

// SecretsManagementRule requires every environment variable to come from a
// secret reference; any literal (hardcoded) value fails.
type SecretsManagementRule struct{}

func (r SecretsManagementRule) Name() string { return "secrets_management" }
func (r SecretsManagementRule) Description() string {
	return "All environment variables are bound via secret references, never literal values"
}

func (r SecretsManagementRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	c := d.Container
	if c == nil {
		return fail(r.Name(), "container spec not provided")
	}
	for _, env := range c.Env {
		if env.SecretRef == nil || env.Value != "" {
			return fail(r.Name(), fmt.Sprintf(
				"environment variable %q carries a hardcoded value instead of a secret reference",
				env.Name,
			))
		}
	}
	return pass(r.Name())
}

// ── image_security ───────────────────────────────────────────────────────────

// digestPinned matches a sha256 digest-pinned image reference.
var digestPinned = regexp.MustCompile(`@sha256:[a-fA-F0-9]{64}$`)

// DefaultTrustedRegistries is the default trusted registry suffix set.
// A leading dot means "any host ending in this suffix" (ECR/GCR/ACR-style
// wildcards); a bare host matches itself or any subdomain of it.
var DefaultTrustedRegistries = []string{
	".amazonaws.com", // ECR: <acct>.dkr.ecr.<region>.amazonaws.com
	"gcr.io",         // GCR, including regional mirrors like eu.gcr.io
	".pkg.dev",       // Artifact Registry
	"azurecr.io",     // ACR: <name>.azurecr.io
}

// ImageSecurityRule requires the image reference to be digest-pinned and to
// come from a trusted registry. The trusted suffix set is engine
// configuration, fixed at construction.
type ImageSecurityRule struct {
	trusted []string
}

// NewImageSecurityRule builds the rule with the given trusted registry
// suffixes. An empty set falls back to DefaultTrustedRegistries.
func NewImageSecurityRule(trustedRegistries []string) ImageSecurityRule {
	if len(trustedRegistries) == 0 {
		trustedRegistries = DefaultTrustedRegistries
	}
	return ImageSecurityRule{trusted: trustedRegistries}
}

func (r ImageSecurityRule) Name() string { return "image_security" }
func (r ImageSecurityRule) Description() string {
	return "Image reference is digest-pinned and comes from a trusted registry"
}

func (r ImageSecurityRule) Evaluate(d *models.WorkloadDescriptor) models.RuleResult {
	c := d.Container
	if c == nil {
		return fail(r.Name(), "container spec not provided")
	}
	if c.Image == "" {
		return fail(r.Name(), "image reference not set")
	}
	var reasons []string
	if !digestPinned.MatchString(c.Image) {
		reasons = append(reasons, "image reference is not digest-pinned (no @sha256 digest)")
	}
	host := registryHost(c.Image)
	if !r.trustedHost(host) {
		reasons = append(reasons, fmt.Sprintf("image registry %q is not in the trusted registry set", host))
	}
	if len(reasons) > 0 {
		return failAll(r.Name(), reasons)
	}
	return pass(r.Name())
}

// registryHost extracts the registry host from an image reference.
// The first path segment is the registry only when it looks like a host
// (contains a dot or a port); otherwise the reference is a Docker Hub short
// name and the implicit default registry is returned.
func registryHost(image string) string {
	first, _, found := strings.Cut(image, "/")
	if !found || (!strings.Contains(first, ".") && !strings.Contains(first, ":")) {
		return "docker.io"
	}
	// Strip a port, but not a digest/tag colon (those come after the "/").
	if host, _, ok := strings.Cut(first, ":"); ok {
		return strings.ToLower(host)
	}
	return strings.ToLower(first)
}

// trustedHost reports whether host matches any configured suffix.
func (r ImageSecurityRule) trustedHost(host string) bool {
	for _, suffix := range r.trusted {
		s := strings.ToLower(suffix)
		if strings.HasPrefix(s, ".") {
			if strings.HasSuffix(host, s) {
				return true
			}
			continue
		}
		if host == s || strings.HasSuffix(host, "."+s) {
			return true
		}
	}
	return false
}
