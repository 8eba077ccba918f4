package kubernetes

import (
	"fmt"
	"os"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

// LoadManifest reads a (possibly multi-document) YAML manifest file and
// builds one Workload per container of every Pod and Deployment found.
// NetworkPolicy documents in the same file are matched against the pods by
// namespace and label selector, exactly as the live collector does.
//
// Unrecognised kinds are skipped; a file yielding no workloads is an error.
func LoadManifest(path string) ([]Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var pods []corev1.Pod
	var policies []networkingv1.NetworkPolicy

	for i, doc := range splitDocuments(string(data)) {
		var meta metav1.TypeMeta
		if err := yaml.Unmarshal([]byte(doc), &meta); err != nil {
			return nil, fmt.Errorf("parse manifest %s document %d: %w", path, i+1, err)
		}
		switch meta.Kind {
		case "Pod":
			var pod corev1.Pod
			if err := yaml.Unmarshal([]byte(doc), &pod); err != nil {
				return nil, fmt.Errorf("parse Pod in %s document %d: %w", path, i+1, err)
			}
			pods = append(pods, pod)
		case "Deployment":
			var dep appsv1.Deployment
			if err := yaml.Unmarshal([]byte(doc), &dep); err != nil {
				return nil, fmt.Errorf("parse Deployment in %s document %d: %w", path, i+1, err)
			}
			pods = append(pods, podFromTemplate(&dep))
		case "NetworkPolicy":
			var np networkingv1.NetworkPolicy
			if err := yaml.Unmarshal([]byte(doc), &np); err != nil {
				return nil, fmt.Errorf("parse NetworkPolicy in %s document %d: %w", path, i+1, err)
			}
			policies = append(policies, np)
		}
	}

	if len(pods) == 0 {
		return nil, fmt.Errorf("manifest %s contains no Pod or Deployment documents", path)
	}

	var workloads []Workload
	for i := range pods {
		pod := &pods[i]
		for _, container := range pod.Spec.Containers {
			workloads = append(workloads, Workload{
				Namespace:  pod.Namespace,
				Pod:        pod.Name,
				Container:  container.Name,
				Descriptor: Translate(pod, container, policies),
			})
		}
	}
	return workloads, nil
}

// podFromTemplate synthesises a Pod from a Deployment's pod template so the
// same translation path applies. The pod inherits the deployment's name and
// namespace; template labels are kept for network policy matching.
func podFromTemplate(dep *appsv1.Deployment) corev1.Pod {
	pod := corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      dep.Name,
			Namespace: dep.Namespace,
			Labels:    dep.Spec.Template.Labels,
		},
		Spec: dep.Spec.Template.Spec,
	}
	return pod
}

// splitDocuments splits data on YAML document separators, dropping empty
// documents.
func splitDocuments(data string) []string {
	var docs []string
	for _, doc := range strings.Split(data, "\n---") {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
