package kubernetes

import (
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"

	"github.com/shayshab/workload-compliance/internal/models"
)

// Translate builds the compliance descriptor for one container of a pod.
// policies is the set of NetworkPolicies in the pod's namespace; only those
// whose pod selector matches the pod contribute to the descriptor.
//
// Platform sections (audit, storage, network, security scan) are not
// derivable from a pod and are left nil; callers merge them from other
// sources.
func Translate(pod *corev1.Pod, container corev1.Container, policies []networkingv1.NetworkPolicy) *models.WorkloadDescriptor {
	return &models.WorkloadDescriptor{
		Container:     translateContainer(pod, container),
		Pod:           translatePod(pod),
		NetworkPolicy: translateNetworkPolicies(pod, policies),
	}
}

// translateContainer maps container security context, resources, image, and
// environment bindings. Container-level security context fields take
// precedence over pod-level ones, matching the kubelet's effective-context
// resolution.
func translateContainer(pod *corev1.Pod, container corev1.Container) *models.ContainerSpec {
	spec := &models.ContainerSpec{Image: container.Image}

	if podSC := pod.Spec.SecurityContext; podSC != nil {
		spec.RunAsNonRoot = podSC.RunAsNonRoot
	}
	if sc := container.SecurityContext; sc != nil {
		if sc.RunAsNonRoot != nil {
			spec.RunAsNonRoot = sc.RunAsNonRoot
		}
		spec.ReadOnlyRootFilesystem = sc.ReadOnlyRootFilesystem
		if sc.Capabilities != nil {
			for _, cap := range sc.Capabilities.Drop {
				spec.CapabilitiesDrop = append(spec.CapabilitiesDrop, string(cap))
			}
		}
	}

	spec.Resources = translateResources(container.Resources)
	spec.Env = translateEnv(container.Env)
	return spec
}

// translateResources maps declared limits and requests. A quantity absent
// from the resource list stays nil so the resource_limits rule can tell
// "not set" from "set to zero".
func translateResources(res corev1.ResourceRequirements) *models.ResourceRequirements {
	if len(res.Limits) == 0 && len(res.Requests) == 0 {
		return nil
	}
	out := &models.ResourceRequirements{}
	if q, ok := res.Limits[corev1.ResourceCPU]; ok {
		q := q
		out.CPULimit = &q
	}
	if q, ok := res.Limits[corev1.ResourceMemory]; ok {
		q := q
		out.MemoryLimit = &q
	}
	if q, ok := res.Requests[corev1.ResourceCPU]; ok {
		q := q
		out.CPURequest = &q
	}
	if q, ok := res.Requests[corev1.ResourceMemory]; ok {
		q := q
		out.MemoryRequest = &q
	}
	return out
}

// translateEnv maps environment bindings. Only SecretKeyRef sources become
// secret references; literal values and non-secret ValueFrom sources
// (configmaps, field refs) are left unreferenced so the secrets_management
// rule flags them.
func translateEnv(env []corev1.EnvVar) []models.EnvVar {
	if len(env) == 0 {
		return nil
	}
	out := make([]models.EnvVar, 0, len(env))
	for _, e := range env {
		v := models.EnvVar{Name: e.Name, Value: e.Value}
		if e.ValueFrom != nil && e.ValueFrom.SecretKeyRef != nil {
			v.SecretRef = &models.SecretRef{
				Name: e.ValueFrom.SecretKeyRef.Name,
				Key:  e.ValueFrom.SecretKeyRef.Key,
			}
		}
		out = append(out, v)
	}
	return out
}

// translatePod maps pod-level security configuration. The automount flag is
// the pod-level one; the live collector overlays the service account's flag
// when the pod leaves it unset.
func translatePod(pod *corev1.Pod) *models.PodSpec {
	spec := &models.PodSpec{
		ServiceAccountName:           pod.Spec.ServiceAccountName,
		AutomountServiceAccountToken: pod.Spec.AutomountServiceAccountToken,
	}
	if sc := pod.Spec.SecurityContext; sc != nil {
		spec.SecurityContext = &models.PodSecurityContext{
			RunAsNonRoot: sc.RunAsNonRoot,
			FSGroup:      sc.FSGroup,
		}
	}
	return spec
}

// translateNetworkPolicies reduces the policies selecting pod to a single
// descriptor section holding the union of their effective policy types.
// No matching policy means no section (no policy applied).
func translateNetworkPolicies(pod *corev1.Pod, policies []networkingv1.NetworkPolicy) *models.NetworkPolicySpec {
	typeSet := make(map[string]struct{})
	matched := false
	for i := range policies {
		np := &policies[i]
		if np.Namespace != "" && np.Namespace != pod.Namespace {
			continue
		}
		if !policySelectsPod(np, pod) {
			continue
		}
		matched = true
		for _, t := range effectivePolicyTypes(np) {
			typeSet[t] = struct{}{}
		}
	}
	if !matched {
		return nil
	}
	spec := &models.NetworkPolicySpec{}
	// Stable order: Ingress before Egress.
	if _, ok := typeSet[models.PolicyTypeIngress]; ok {
		spec.PolicyTypes = append(spec.PolicyTypes, models.PolicyTypeIngress)
	}
	if _, ok := typeSet[models.PolicyTypeEgress]; ok {
		spec.PolicyTypes = append(spec.PolicyTypes, models.PolicyTypeEgress)
	}
	return spec
}

// policySelectsPod reports whether the policy's pod selector matches the
// pod's labels. An empty selector selects every pod in the namespace.
func policySelectsPod(np *networkingv1.NetworkPolicy, pod *corev1.Pod) bool {
	selector, err := metav1.LabelSelectorAsSelector(&np.Spec.PodSelector)
	if err != nil {
		return false
	}
	return selector.Matches(labels.Set(pod.Labels))
}

// effectivePolicyTypes returns the policy's declared types, falling back to
// the API server's defaulting: Ingress always, Egress when egress rules are
// present.
func effectivePolicyTypes(np *networkingv1.NetworkPolicy) []string {
	if len(np.Spec.PolicyTypes) > 0 {
		types := make([]string, 0, len(np.Spec.PolicyTypes))
		for _, t := range np.Spec.PolicyTypes {
			types = append(types, string(t))
		}
		return types
	}
	types := []string{models.PolicyTypeIngress}
	if len(np.Spec.Egress) > 0 {
		types = append(types, models.PolicyTypeEgress)
	}
	return types
}
