package v1alpha1

const (
	// DefaultKubeconfigPath is the default path to the kubeconfig file.
	DefaultKubeconfigPath = "~/.kube/config"
	// DefaultOrganization is the default Quay organization images are pushed to.
	DefaultOrganization = "secure-demo"

	// DefaultQuayNamespace is the default namespace for the Quay registry.
	DefaultQuayNamespace = "quay-registry"
	// DefaultQuayChannel is the default update channel for the Quay operator.
	DefaultQuayChannel = "stable-3.10"

	// DefaultACSNamespace is the default namespace for Advanced Cluster Security.
	DefaultACSNamespace = "stackrox"
	// DefaultACSChannel is the default update channel for the RHACS operator.
	DefaultACSChannel = "stable"

	// DefaultTPANamespace is the default namespace for the Trusted Profile Analyzer.
	DefaultTPANamespace = "trusted-profile-analyzer"
	// DefaultTPAChartRepo is the default Helm repository for the TPA chart.
	DefaultTPAChartRepo = "https://trustification.github.io/helm-charts"

	// DefaultPipelinesChannel is the default update channel for OpenShift Pipelines.
	DefaultPipelinesChannel = "latest"
	// PipelinesNamespace is where the Pipelines operator materializes its controllers.
	PipelinesNamespace = "openshift-pipelines"

	// DefaultMLflowNamespace is the default namespace for the MLflow model registry.
	DefaultMLflowNamespace = "mlflow"
	// DefaultMLflowChartRepo is the default Helm repository for the MLflow chart.
	DefaultMLflowChartRepo = "https://community-charts.github.io/helm-charts"

	// DefaultDemoNamespace is the default namespace for the demo application.
	DefaultDemoNamespace = "secure-demo"
	// DefaultDemoImage is the default demo application image name.
	DefaultDemoImage = "flask-app"
	// DefaultDemoTag is the default demo application image tag.
	DefaultDemoTag = "latest"
	// DefaultDemoReplicas is the default demo application replica count.
	DefaultDemoReplicas int32 = 1

	// DefaultCosignKeyPath is the default path to the cosign private key.
	DefaultCosignKeyPath = "cosign.key"
)

// DefaultNamespace returns the default namespace for a component.
func DefaultNamespace(component Component) string {
	switch component {
	case ComponentQuay:
		return DefaultQuayNamespace
	case ComponentACS:
		return DefaultACSNamespace
	case ComponentTPA:
		return DefaultTPANamespace
	case ComponentPipelines:
		return PipelinesNamespace
	case ComponentMLflow:
		return DefaultMLflowNamespace
	case ComponentDemo:
		return DefaultDemoNamespace
	default:
		return ""
	}
}
