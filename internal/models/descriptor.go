package models

import "k8s.io/apimachinery/pkg/api/resource"

// WorkloadDescriptor is the structured snapshot of a deployable unit's
// security-relevant configuration. It is the sole input to rule evaluation.
//
// Every section is optional. A nil section means "not provided by the
// caller"; rules that require a missing section fail with a reason naming
// it. Absence is never silently treated as compliant.
//
// Descriptors are built fresh per evaluation by a source (live cluster,
// manifest file, scanner output, infrastructure attestation) and carry no
// persistent identity. The engine never mutates a descriptor.
type WorkloadDescriptor struct {
	// Container holds the container-level security configuration.
	Container *ContainerSpec `json:"container,omitempty"`

	// Pod holds the pod-level security configuration.
	Pod *PodSpec `json:"pod,omitempty"`

	// NetworkPolicy describes the network policy applied to the workload.
	// Nil means no policy is applied.
	NetworkPolicy *NetworkPolicySpec `json:"network_policy,omitempty"`

	// Audit describes the platform's audit logging configuration.
	Audit *AuditConfig `json:"audit,omitempty"`

	// Storage describes the platform's storage encryption posture.
	Storage *StorageConfig `json:"storage,omitempty"`

	// Network describes the platform's in-transit encryption posture.
	Network *NetworkConfig `json:"network,omitempty"`

	// SecurityScan is the reduced result of external SAST/DAST/dependency/
	// container scanners for this workload's artifacts.
	SecurityScan *SecurityScanResult `json:"security_scan,omitempty"`
}

// ContainerSpec holds container security context flags, resource
// declarations, the image reference, and environment bindings.
type ContainerSpec struct {
	// Image is the container image reference
	// (e.g. "myrepo.ecr.amazonaws.com/app@sha256:...").
	Image string `json:"image,omitempty"`

	// RunAsNonRoot mirrors securityContext.runAsNonRoot. Nil means unset.
	RunAsNonRoot *bool `json:"run_as_non_root,omitempty"`

	// ReadOnlyRootFilesystem mirrors securityContext.readOnlyRootFilesystem.
	ReadOnlyRootFilesystem *bool `json:"read_only_root_filesystem,omitempty"`

	// CapabilitiesDrop is the set of dropped Linux capabilities
	// (e.g. ["ALL"]).
	CapabilitiesDrop []string `json:"capabilities_drop,omitempty"`

	// Resources holds CPU/memory limits and requests. Nil means none declared.
	Resources *ResourceRequirements `json:"resources,omitempty"`

	// Env holds the container's environment variable bindings.
	Env []EnvVar `json:"env,omitempty"`
}

// ResourceRequirements holds declared CPU and memory limits and requests as
// Kubernetes quantities ("500m", "128Mi"). A nil field means not declared.
type ResourceRequirements struct {
	CPULimit      *resource.Quantity `json:"cpu_limit,omitempty"`
	MemoryLimit   *resource.Quantity `json:"memory_limit,omitempty"`
	CPURequest    *resource.Quantity `json:"cpu_request,omitempty"`
	MemoryRequest *resource.Quantity `json:"memory_request,omitempty"`
}

// EnvVar is a single environment variable binding: either a literal value or
// a reference to a secret. A binding with no SecretRef is treated as
// hardcoded by the secrets_management rule regardless of where the value
// originally came from.
type EnvVar struct {
	// Name is the environment variable name.
	Name string `json:"name"`

	// Value is the literal (hardcoded) value, when present.
	Value string `json:"value,omitempty"`

	// SecretRef points at the secret providing the value, when present.
	SecretRef *SecretRef `json:"secret_ref,omitempty"`
}

// SecretRef identifies a key inside a named secret.
type SecretRef struct {
	Name string `json:"name"`
	Key  string `json:"key,omitempty"`
}

// PodSpec holds pod-level security configuration.
type PodSpec struct {
	// SecurityContext is the pod security context. Nil means unset.
	SecurityContext *PodSecurityContext `json:"security_context,omitempty"`

	// ServiceAccountName is the service account the pod runs as.
	ServiceAccountName string `json:"service_account_name,omitempty"`

	// AutomountServiceAccountToken mirrors the pod (or service account)
	// automount flag. Nil means unset.
	AutomountServiceAccountToken *bool `json:"automount_service_account_token,omitempty"`
}

// PodSecurityContext mirrors the pod-level securityContext fields consumed
// by the pod_security_standards rule.
type PodSecurityContext struct {
	RunAsNonRoot *bool  `json:"run_as_non_root,omitempty"`
	FSGroup      *int64 `json:"fs_group,omitempty"`
}

// Network policy type values as used in NetworkPolicySpec.PolicyTypes.
const (
	PolicyTypeIngress = "Ingress"
	PolicyTypeEgress  = "Egress"
)

// NetworkPolicySpec describes the network policy coverage for a workload.
// The descriptor-level presence of this section is the presence flag; the
// network_security rule additionally requires both Ingress and Egress types.
type NetworkPolicySpec struct {
	PolicyTypes []string `json:"policy_types"`
}

// HasPolicyType reports whether t appears in the policy-type set.
// A nil spec has no policy types.
func (n *NetworkPolicySpec) HasPolicyType(t string) bool {
	if n == nil {
		return false
	}
	for _, pt := range n.PolicyTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// AuditConfig describes the platform audit logging posture.
type AuditConfig struct {
	// Enabled is true when audit logging is switched on.
	Enabled bool `json:"enabled"`

	// PolicyConfigured is true when an audit policy is in place.
	PolicyConfigured bool `json:"policy_configured"`
}

// StorageConfig describes the storage encryption posture.
type StorageConfig struct {
	// EncryptionAtRest is true when every persistent store backing the
	// workload is encrypted at rest.
	EncryptionAtRest bool `json:"encryption_at_rest"`
}

// NetworkConfig describes the in-transit encryption posture.
type NetworkConfig struct {
	// TLSInTransit is true when all exposed endpoints terminate TLS.
	TLSInTransit bool `json:"tls_in_transit"`
}

// ScanStatus is the overall verdict reported by external security scanners.
type ScanStatus string

const (
	ScanStatusPassed  ScanStatus = "passed"
	ScanStatusFailed  ScanStatus = "failed"
	ScanStatusUnknown ScanStatus = "unknown"
)

// SecurityScanResult is the reduced output of external scanners: an overall
// status plus finding counts by the two severities the engine gates on.
type SecurityScanResult struct {
	Status        ScanStatus `json:"status"`
	CriticalCount int        `json:"critical_count"`
	HighCount     int        `json:"high_count"`
}
