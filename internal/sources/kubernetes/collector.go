package kubernetes

import (
	"context"
	"fmt"

	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8sclient "k8s.io/client-go/kubernetes"

	"github.com/shayshab/workload-compliance/internal/models"
)

// Workload is one evaluable unit collected from a cluster: a single
// container of a pod and its assembled descriptor.
type Workload struct {
	Namespace string
	Pod       string
	Container string

	Descriptor *models.WorkloadDescriptor
}

// Subject returns the workload's display identity ("ns/pod/container").
func (w Workload) Subject() string {
	return fmt.Sprintf("%s/%s/%s", w.Namespace, w.Pod, w.Container)
}

// CollectWorkloads lists pods (one namespace, or all when namespace is
// empty) and builds one Workload per container.
//
// Per pod, the collector resolves the NetworkPolicies of the pod's
// namespace and, when the pod leaves the token automount flag unset, the
// owning ServiceAccount's flag. Namespace lookups are cached across pods.
// The clientset parameter is an interface so tests can inject a fake.
func CollectWorkloads(ctx context.Context, clientset k8sclient.Interface, namespace string) ([]Workload, error) {
	podList, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}

	policyCache := make(map[string][]networkingv1.NetworkPolicy)
	automountCache := make(map[string]*bool)

	var workloads []Workload
	for i := range podList.Items {
		pod := &podList.Items[i]

		policies, ok := policyCache[pod.Namespace]
		if !ok {
			npList, err := clientset.NetworkingV1().NetworkPolicies(pod.Namespace).List(ctx, metav1.ListOptions{})
			if err != nil {
				return nil, fmt.Errorf("list network policies in namespace %q: %w", pod.Namespace, err)
			}
			policies = npList.Items
			policyCache[pod.Namespace] = policies
		}

		automount := pod.Spec.AutomountServiceAccountToken
		if automount == nil && pod.Spec.ServiceAccountName != "" {
			automount = serviceAccountAutomount(ctx, clientset, automountCache, pod.Namespace, pod.Spec.ServiceAccountName)
		}

		for _, container := range pod.Spec.Containers {
			d := Translate(pod, container, policies)
			if d.Pod.AutomountServiceAccountToken == nil {
				d.Pod.AutomountServiceAccountToken = automount
			}
			workloads = append(workloads, Workload{
				Namespace:  pod.Namespace,
				Pod:        pod.Name,
				Container:  container.Name,
				Descriptor: d,
			})
		}
	}
	return workloads, nil
}

// serviceAccountAutomount looks up the automount flag on the named service
// account, caching per namespace/name. A lookup failure returns nil; the
// flag stays unset and the rbac_compliance rule reports it as such.
func serviceAccountAutomount(
	ctx context.Context,
	clientset k8sclient.Interface,
	cache map[string]*bool,
	namespace, name string,
) *bool {
	key := namespace + "/" + name
	if v, ok := cache[key]; ok {
		return v
	}
	sa, err := clientset.CoreV1().ServiceAccounts(namespace).Get(ctx, name, metav1.GetOptions{})
	var v *bool
	if err == nil {
		v = sa.AutomountServiceAccountToken
	}
	cache[key] = v
	return v
}
