package installer

import (
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/helm"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	acsinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/acs"
	demoinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/demo"
	mlflowinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/mlflow"
	pipelinesinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/pipelines"
	quayinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/quay"
	tpainstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/tpa"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// Factory creates installers based on stack configuration.
// It holds the shared dependencies required by installers.
type Factory struct {
	helmClient          helm.Interface
	clientset           kubernetes.Interface
	dynamicClient       dynamic.Interface
	apiextensionsClient apiextensionsclientset.Interface
	runner              runner.Runner
	timeout             time.Duration
}

// NewFactory creates a new installer factory with the required dependencies.
// The runner drives the external CLIs some installers shell out to (roxctl
// for the ACS init bundle).
func NewFactory(
	helmClient helm.Interface,
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	apiextensionsClient apiextensionsclientset.Interface,
	run runner.Runner,
	timeout time.Duration,
) *Factory {
	return &Factory{
		helmClient:          helmClient,
		clientset:           clientset,
		dynamicClient:       dynamicClient,
		apiextensionsClient: apiextensionsClient,
		runner:              run,
		timeout:             timeout,
	}
}

// CreateInstallersForSpec creates installers for all enabled components in the
// stack spec. Returns a map of component to installer; disabled components are
// omitted.
func (f *Factory) CreateInstallersForSpec(spec *v1alpha1.Spec) map[v1alpha1.Component]Installer {
	installers := make(map[v1alpha1.Component]Installer)
	components := spec.Components

	if components.Quay.Toggle.IsEnabled() {
		installers[v1alpha1.ComponentQuay] = quayinstaller.NewQuayInstaller(
			f.clientset, f.dynamicClient, f.apiextensionsClient,
			components.Quay, f.timeout,
		)
	}

	if components.ACS.Toggle.IsEnabled() {
		installers[v1alpha1.ComponentACS] = acsinstaller.NewACSInstaller(
			f.clientset, f.dynamicClient, f.apiextensionsClient, f.runner,
			components.ACS, f.timeout,
		)
	}

	if components.TPA.Toggle.IsEnabled() {
		installers[v1alpha1.ComponentTPA] = tpainstaller.NewTPAInstaller(
			f.helmClient, f.clientset, components.TPA, f.timeout,
		)
	}

	if components.Pipelines.Toggle.IsEnabled() {
		installers[v1alpha1.ComponentPipelines] = pipelinesinstaller.NewPipelinesInstaller(
			f.clientset, f.dynamicClient, components.Pipelines, f.timeout,
		)
	}

	if components.MLflow.Toggle.IsEnabled() {
		installers[v1alpha1.ComponentMLflow] = mlflowinstaller.NewMLflowInstaller(
			f.helmClient, f.clientset, components.MLflow, f.timeout,
		)
	}

	if components.Demo.Toggle.IsEnabled() {
		installers[v1alpha1.ComponentDemo] = demoinstaller.NewDemoInstaller(
			f.clientset, f.dynamicClient, spec.Registry,
			components.Quay.Namespace, components.Demo, f.timeout,
		)
	}

	return installers
}
