// Package kubernetes turns live cluster state and manifest files into
// workload descriptors for compliance evaluation.
//
// It is a descriptor source only: no rule logic, no scoring. One descriptor
// is produced per container so every container is evaluated independently.
package kubernetes

import (
	"fmt"
	"os"
	"path/filepath"

	k8sclient "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// ClusterInfo identifies the cluster a collection ran against.
type ClusterInfo struct {
	// ContextName is the kubeconfig context name.
	ContextName string
}

// ClientProvider creates kubernetes clientsets for named kubeconfig
// contexts. It abstracts kubeconfig loading so callers and tests can inject
// any clientset without touching the filesystem.
type ClientProvider interface {
	// ClientsetForContext returns a clientset and the resolved ClusterInfo
	// for the given kubeconfig context. Pass an empty string to use the
	// current context from the loaded kubeconfig.
	ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error)
}

// DefaultClientProvider loads kubeconfig from $KUBECONFIG or ~/.kube/config
// and builds a real kubernetes clientset.
type DefaultClientProvider struct{}

// NewDefaultClientProvider returns a provider backed by the system kubeconfig.
func NewDefaultClientProvider() *DefaultClientProvider {
	return &DefaultClientProvider{}
}

// ClientsetForContext implements ClientProvider.
func (p *DefaultClientProvider) ClientsetForContext(contextName string) (k8sclient.Interface, ClusterInfo, error) {
	return loadClientset(kubeconfigPath(), contextName)
}

// kubeconfigPath returns the effective kubeconfig file path.
// Prefers $KUBECONFIG if set; falls back to ~/.kube/config.
func kubeconfigPath() string {
	if path := os.Getenv("KUBECONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".kube", "config")
}

// loadClientset builds a kubernetes clientset from the kubeconfig file at
// path, targeting the given context (empty = current context).
func loadClientset(path, contextName string) (k8sclient.Interface, ClusterInfo, error) {
	loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: path}
	overrides := &clientcmd.ConfigOverrides{}
	if contextName != "" {
		overrides.CurrentContext = contextName
	}

	cfg := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides)

	rawCfg, err := cfg.RawConfig()
	if err != nil {
		return nil, ClusterInfo{}, fmt.Errorf("load kubeconfig %q: %w", path, err)
	}
	effectiveContext := rawCfg.CurrentContext
	if contextName != "" {
		effectiveContext = contextName
	}

	restCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, ClusterInfo{}, fmt.Errorf("build REST config for context %q: %w", effectiveContext, err)
	}

	clientset, err := k8sclient.NewForConfig(restCfg)
	if err != nil {
		return nil, ClusterInfo{}, fmt.Errorf("build clientset for context %q: %w", effectiveContext, err)
	}

	return clientset, ClusterInfo{ContextName: effectiveContext}, nil
}
