// Package pipelinesinstaller deploys OpenShift Pipelines via its operator.
package pipelinesinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/olm"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"github.com/rosa-labs/chainsail/pkg/svc/installer/internal/olmutil"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// operatorNamespace is where cluster-wide operators are subscribed on OpenShift.
const operatorNamespace = "openshift-operators"

// controllerChecks lists the Tekton controllers the operator materializes.
func controllerChecks() []readiness.Check {
	return []readiness.Check{
		{Type: "deployment", Namespace: v1alpha1.PipelinesNamespace, Name: "tekton-pipelines-controller"},
		{Type: "deployment", Namespace: v1alpha1.PipelinesNamespace, Name: "tekton-pipelines-webhook"},
		{Type: "deployment", Namespace: v1alpha1.PipelinesNamespace, Name: "tekton-triggers-controller"},
	}
}

// PipelinesInstaller deploys the OpenShift Pipelines operator cluster-wide.
type PipelinesInstaller struct {
	*olmutil.Base
}

// NewPipelinesInstaller creates a new OpenShift Pipelines installer instance.
func NewPipelinesInstaller(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	spec v1alpha1.PipelinesSpec,
	timeout time.Duration,
) *PipelinesInstaller {
	subscription := olm.Subscription{
		Name:                   "openshift-pipelines-operator-rh",
		Namespace:              operatorNamespace,
		Package:                "openshift-pipelines-operator-rh",
		Channel:                spec.Channel,
		CatalogSource:          "redhat-operators",
		CatalogSourceNamespace: "openshift-marketplace",
		AllNamespaces:          true,
	}

	return &PipelinesInstaller{
		Base: olmutil.NewBase("pipelines", clientset, dynamicClient, subscription, timeout),
	}
}

// Install deploys the Pipelines operator and blocks until the Tekton
// controllers it materializes are ready.
func (p *PipelinesInstaller) Install(ctx context.Context) error {
	err := p.Base.Install(ctx)
	if err != nil {
		return err
	}

	return p.Verify(ctx)
}

// Verify checks that the Tekton controllers are serving.
func (p *PipelinesInstaller) Verify(ctx context.Context) error {
	err := readiness.WaitForMultipleResources(ctx, p.Clientset(), controllerChecks(), p.Timeout())
	if err != nil {
		return fmt.Errorf("pipelines controllers are not ready: %w", err)
	}

	return nil
}
