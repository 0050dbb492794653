package pipelinesinstaller_test

import (
	"context"
	"testing"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	pipelinesinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/pipelines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
)

func readyController(name string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: v1alpha1.PipelinesNamespace},
		Status: appsv1.DeploymentStatus{
			Replicas:          1,
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
		},
	}
}

func newInstaller(clientset *fake.Clientset, timeout time.Duration) *pipelinesinstaller.PipelinesInstaller {
	spec := v1alpha1.PipelinesSpec{Channel: v1alpha1.DefaultPipelinesChannel}
	dynamicClient := dynamicfake.NewSimpleDynamicClient(runtime.NewScheme())

	return pipelinesinstaller.NewPipelinesInstaller(clientset, dynamicClient, spec, timeout)
}

func TestName(t *testing.T) {
	t.Parallel()

	installer := newInstaller(fake.NewClientset(), time.Second)

	assert.Equal(t, "pipelines", installer.Name())
}

func TestVerifySucceedsWhenControllersReady(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		readyController("tekton-pipelines-controller"),
		readyController("tekton-pipelines-webhook"),
		readyController("tekton-triggers-controller"),
	)

	installer := newInstaller(clientset, time.Second)

	require.NoError(t, installer.Verify(context.Background()))
}

func TestVerifyFailsWhenControllerMissing(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		readyController("tekton-pipelines-controller"),
		readyController("tekton-pipelines-webhook"),
	)

	installer := newInstaller(clientset, 20*time.Millisecond)

	err := installer.Verify(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipelines controllers are not ready")
}
