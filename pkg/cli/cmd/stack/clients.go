package stack

import (
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/helm"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// DefaultComponentTimeout bounds each component's install and readiness wait.
const DefaultComponentTimeout = 10 * time.Minute

// apiServerProbeTimeout bounds the preflight API server reachability check.
const apiServerProbeTimeout = 30 * time.Second

// clusterClients bundles the cluster-facing clients the stack commands share.
type clusterClients struct {
	clientset     kubernetes.Interface
	dynamic       dynamic.Interface
	apiextensions apiextensionsclientset.Interface
	helm          helm.Interface
}

// newClusterClients builds all cluster clients from the stack connection
// settings. Errors here are prerequisite failures that abort the run.
func newClusterClients(cfg *v1alpha1.Stack) (*clusterClients, error) {
	kubeconfig := k8s.ExpandHomePath(cfg.Spec.Connection.Kubeconfig)
	kubeContext := cfg.Spec.Connection.Context

	restConfig, err := k8s.BuildRESTConfig(kubeconfig, kubeContext)
	if err != nil {
		return nil, fmt.Errorf("failed to build rest config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	apiextensionsClient, err := apiextensionsclientset.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create apiextensions client: %w", err)
	}

	helmClient, err := helm.NewClient(kubeconfig, kubeContext)
	if err != nil {
		return nil, fmt.Errorf("failed to create helm client: %w", err)
	}

	return &clusterClients{
		clientset:     clientset,
		dynamic:       dynamicClient,
		apiextensions: apiextensionsClient,
		helm:          helmClient,
	}, nil
}

// componentTimeout returns the configured per-component timeout, falling back
// to DefaultComponentTimeout.
func componentTimeout(cfg *v1alpha1.Stack) time.Duration {
	if cfg.Spec.Connection.Timeout.Duration > 0 {
		return cfg.Spec.Connection.Timeout.Duration
	}

	return DefaultComponentTimeout
}
