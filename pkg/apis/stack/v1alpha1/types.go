package v1alpha1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

const (
	// Group is the API group for ChainSail.
	Group = "chainsail.dev"
	// Version is the API version for ChainSail.
	Version = "v1alpha1"
	// Kind is the kind for ChainSail stack configurations.
	Kind = "Stack"
	// APIVersion is the full API version for ChainSail.
	APIVersion = Group + "/" + Version
)

// --- Core Types ---

// Stack represents a ChainSail supply chain stack configuration including API
// metadata and desired state. It contains TypeMeta for API versioning
// information and Spec for the stack specification.
type Stack struct {
	metav1.TypeMeta `json:",inline" mapstructure:",squash"`

	Spec Spec `json:"spec,omitzero" mapstructure:"spec,omitempty"`
}

// Spec defines the desired state of a supply chain stack.
type Spec struct {
	Connection Connection     `json:"connection,omitzero"`
	Registry   RegistrySpec   `json:"registry,omitzero"`
	Components ComponentsSpec `json:"components,omitzero"`
	Signing    SigningSpec    `json:"signing,omitzero"`
}

// Connection defines connection options for the target OpenShift cluster.
type Connection struct {
	Kubeconfig string          `default:"~/.kube/config" json:"kubeconfig,omitzero"`
	Context    string          `                         json:"context,omitzero"`
	Timeout    metav1.Duration `                         json:"timeout,omitzero"`
}

// RegistrySpec defines how the in-cluster Quay registry is addressed.
type RegistrySpec struct {
	// Endpoint overrides the registry host. When empty the Quay route host
	// is discovered from the cluster.
	Endpoint string `json:"endpoint,omitzero"`
	// Organization is the Quay organization (namespace) images are pushed to.
	Organization string `json:"organization,omitzero"`
	// Insecure allows plain HTTP and self-signed certificates.
	Insecure bool `json:"insecure,omitzero"`
}

// ComponentsSpec defines per-component configuration for the stack.
type ComponentsSpec struct {
	Quay      QuaySpec      `json:"quay,omitzero"`
	ACS       ACSSpec       `json:"acs,omitzero"`
	TPA       TPASpec       `json:"tpa,omitzero"`
	Pipelines PipelinesSpec `json:"pipelines,omitzero"`
	MLflow    MLflowSpec    `json:"mlflow,omitzero"`
	Demo      DemoSpec      `json:"demo,omitzero"`
}

// QuaySpec configures the Quay registry operator deployment.
type QuaySpec struct {
	Toggle    ComponentToggle `json:"toggle,omitzero"`
	Namespace string          `json:"namespace,omitzero"`
	Channel   string          `json:"channel,omitzero"`
}

// ACSSpec configures the Advanced Cluster Security operator deployment.
type ACSSpec struct {
	Toggle    ComponentToggle `json:"toggle,omitzero"`
	Namespace string          `json:"namespace,omitzero"`
	Channel   string          `json:"channel,omitzero"`
}

// TPASpec configures the Trusted Profile Analyzer chart deployment.
type TPASpec struct {
	Toggle       ComponentToggle `json:"toggle,omitzero"`
	Namespace    string          `json:"namespace,omitzero"`
	ChartRepo    string          `json:"chartRepo,omitzero"`
	ChartVersion string          `json:"chartVersion,omitzero"`
}

// PipelinesSpec configures the OpenShift Pipelines operator deployment.
type PipelinesSpec struct {
	Toggle  ComponentToggle `json:"toggle,omitzero"`
	Channel string          `json:"channel,omitzero"`
}

// MLflowSpec configures the MLflow model registry chart deployment.
type MLflowSpec struct {
	Toggle       ComponentToggle `json:"toggle,omitzero"`
	Namespace    string          `json:"namespace,omitzero"`
	ChartRepo    string          `json:"chartRepo,omitzero"`
	ChartVersion string          `json:"chartVersion,omitzero"`
}

// DemoSpec configures the demo application deployment.
type DemoSpec struct {
	Toggle    ComponentToggle `json:"toggle,omitzero"`
	Namespace string          `json:"namespace,omitzero"`
	Image     string          `json:"image,omitzero"`
	Tag       string          `json:"tag,omitzero"`
	Replicas  int32           `json:"replicas,omitzero"`
}

// SigningSpec configures image signing and SBOM generation.
type SigningSpec struct {
	// KeyPath is the path to the cosign private key.
	KeyPath string `json:"keyPath,omitzero"`
	// SBOMFormat selects the SBOM document format produced by syft.
	SBOMFormat SBOMFormat `json:"sbomFormat,omitzero"`
}
