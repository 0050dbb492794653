package stack

import (
	"context"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func readyDeployment(namespace, name string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status: appsv1.DeploymentStatus{
			Replicas:          1,
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
		},
	}
}

func TestBuildValidationSuiteCoversEnabledComponents(t *testing.T) {
	t.Parallel()

	cfg := &v1alpha1.Stack{Spec: defaultedSpec()}

	clientset := fake.NewClientset(
		readyDeployment(v1alpha1.DefaultACSNamespace, "central"),
		readyDeployment(v1alpha1.DefaultTPANamespace, "tpa-server"),
		readyDeployment(v1alpha1.PipelinesNamespace, "tekton-pipelines-controller"),
		readyDeployment(v1alpha1.DefaultMLflowNamespace, "mlflow"),
	)

	clients := &clusterClients{
		clientset: clientset,
		dynamic:   newRouteClient(),
	}

	suite := buildValidationSuite(context.Background(), cfg, clients, true)
	summary := suite.Run(context.Background())

	require.Len(t, summary.Results, 7)

	// Routes are missing from the fake cluster, so the three route-backed
	// checks fail while the workload checks pass.
	assert.ElementsMatch(t,
		[]string{"quay-route", "acs-route", "demo-health"},
		summary.Failed(),
	)
	require.Error(t, summary.Error())
}

func TestBuildValidationSuiteSkipsDisabledComponents(t *testing.T) {
	t.Parallel()

	spec := defaultedSpec()
	spec.Components.MLflow.Toggle = v1alpha1.ComponentToggleDisabled
	spec.Components.Demo.Toggle = v1alpha1.ComponentToggleDisabled

	cfg := &v1alpha1.Stack{Spec: spec}
	clients := &clusterClients{
		clientset: fake.NewClientset(
			readyDeployment(v1alpha1.DefaultACSNamespace, "central"),
			readyDeployment(v1alpha1.DefaultTPANamespace, "tpa-server"),
			readyDeployment(v1alpha1.PipelinesNamespace, "tekton-pipelines-controller"),
		),
		dynamic: newRouteClient(),
	}

	suite := buildValidationSuite(context.Background(), cfg, clients, true)
	summary := suite.Run(context.Background())

	for _, result := range summary.Results {
		assert.NotEqual(t, "mlflow", result.Name)
		assert.NotEqual(t, "demo-health", result.Name)
	}
}
