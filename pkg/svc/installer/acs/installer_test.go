package acsinstaller_test

import (
	"context"
	"testing"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	acsinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/acs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apiextensionsfake "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset/fake"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
)

func newDynamicClient(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	scheme := runtime.NewScheme()

	listKinds := map[schema.GroupVersionResource]string{
		acsinstaller.CentralGVR:        "CentralList",
		acsinstaller.SecuredClusterGVR: "SecuredClusterList",
		k8s.RouteGVR:                   "RouteList",
	}

	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme, listKinds, objects...)
}

func readyDeployment(name string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: v1alpha1.DefaultACSNamespace,
		},
		Status: appsv1.DeploymentStatus{
			Replicas:          1,
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
		},
	}
}

func admittedCentralRoute() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "route.openshift.io/v1",
		"kind":       "Route",
		"metadata": map[string]any{
			"name":      "central",
			"namespace": v1alpha1.DefaultACSNamespace,
		},
		"spec": map[string]any{
			"host": "central-stackrox.apps.example.com",
		},
		"status": map[string]any{
			"ingress": []any{
				map[string]any{
					"conditions": []any{
						map[string]any{"type": "Admitted", "status": "True"},
					},
				},
			},
		},
	}}
}

func newInstaller(
	clientset kubernetes.Interface,
	dynamicClient *dynamicfake.FakeDynamicClient,
	run runner.Runner,
) *acsinstaller.ACSInstaller {
	spec := v1alpha1.ACSSpec{
		Namespace: v1alpha1.DefaultACSNamespace,
		Channel:   v1alpha1.DefaultACSChannel,
	}

	return acsinstaller.NewACSInstaller(
		clientset,
		dynamicClient,
		apiextensionsfake.NewSimpleClientset(),
		run,
		spec,
		time.Second,
	)
}

func TestVerifySucceedsWhenCentralReady(t *testing.T) {
	t.Parallel()

	clientset := fake.NewSimpleClientset(readyDeployment("central"), readyDeployment("scanner"))
	installer := newInstaller(clientset, newDynamicClient(admittedCentralRoute()), runner.NewMockRunner())

	err := installer.Verify(context.Background())

	require.NoError(t, err)
}

func TestEnsureSecuredClusterAppliesBundleAndCR(t *testing.T) {
	t.Parallel()

	initBundle := `
apiVersion: v1
kind: Secret
metadata:
  name: collector-tls
stringData:
  ca.pem: cert
---
apiVersion: v1
kind: Secret
metadata:
  name: sensor-tls
stringData:
  ca.pem: cert
`

	clientset := fake.NewSimpleClientset()
	dynamicClient := newDynamicClient()
	installer := newInstaller(clientset, dynamicClient, runner.NewMockRunner())

	err := installer.EnsureSecuredCluster(context.Background(), []byte(initBundle))

	require.NoError(t, err)

	for _, name := range []string{"collector-tls", "sensor-tls"} {
		_, err = clientset.CoreV1().
			Secrets(v1alpha1.DefaultACSNamespace).
			Get(context.Background(), name, metav1.GetOptions{})
		require.NoError(t, err)
	}

	securedCluster, err := dynamicClient.Resource(acsinstaller.SecuredClusterGVR).
		Namespace(v1alpha1.DefaultACSNamespace).
		Get(context.Background(), "production", metav1.GetOptions{})
	require.NoError(t, err)

	endpoint, _, err := unstructured.NestedString(securedCluster.Object, "spec", "centralEndpoint")
	require.NoError(t, err)
	assert.Equal(t, "central.stackrox.svc:443", endpoint)
}

func TestProvisionSecuredClusterGeneratesBundleAndAppliesCR(t *testing.T) {
	t.Parallel()

	initBundle := `
apiVersion: v1
kind: Secret
metadata:
  name: collector-tls
stringData:
  ca.pem: cert
---
apiVersion: v1
kind: Secret
metadata:
  name: sensor-tls
stringData:
  ca.pem: cert
`

	adminSecret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "central-htpasswd",
			Namespace: v1alpha1.DefaultACSNamespace,
		},
		Data: map[string][]byte{"password": []byte("s3cret")},
	}

	clientset := fake.NewSimpleClientset(adminSecret)
	dynamicClient := newDynamicClient(admittedCentralRoute())
	mockRunner := runner.NewMockRunner()
	mockRunner.Script("roxctl", runner.MockResponse{
		Result: runner.Result{Stdout: initBundle},
	})
	installer := newInstaller(clientset, dynamicClient, mockRunner)

	err := installer.ProvisionSecuredCluster(context.Background())

	require.NoError(t, err)

	for _, name := range []string{"collector-tls", "sensor-tls"} {
		_, err = clientset.CoreV1().
			Secrets(v1alpha1.DefaultACSNamespace).
			Get(context.Background(), name, metav1.GetOptions{})
		require.NoError(t, err)
	}

	_, err = dynamicClient.Resource(acsinstaller.SecuredClusterGVR).
		Namespace(v1alpha1.DefaultACSNamespace).
		Get(context.Background(), "production", metav1.GetOptions{})
	require.NoError(t, err)

	calls := mockRunner.CallsFor("roxctl")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].CommandLine(), "central init-bundles generate production --output-secrets -")
	assert.Contains(t, calls[0].CommandLine(), "--endpoint central-stackrox.apps.example.com:443")
	assert.Contains(t, calls[0].CommandLine(), "--insecure-skip-tls-verify")
	assert.NotContains(t, calls[0].Args, "s3cret")
}

func TestProvisionSecuredClusterFailsWithoutCentralRoute(t *testing.T) {
	t.Parallel()

	installer := newInstaller(fake.NewSimpleClientset(), newDynamicClient(), runner.NewMockRunner())

	err := installer.ProvisionSecuredCluster(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve acs central host")
}

func TestVerifyFailsWhenCentralNotReady(t *testing.T) {
	t.Parallel()

	installer := newInstaller(fake.NewSimpleClientset(), newDynamicClient(), runner.NewMockRunner())

	err := installer.Verify(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "acs central is not ready")
}

func TestCentralHost(t *testing.T) {
	t.Parallel()

	installer := newInstaller(
		fake.NewSimpleClientset(), newDynamicClient(admittedCentralRoute()), runner.NewMockRunner(),
	)

	host, err := installer.CentralHost(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "central-stackrox.apps.example.com", host)
}

func TestAdminPassword(t *testing.T) {
	t.Parallel()

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "central-htpasswd",
			Namespace: v1alpha1.DefaultACSNamespace,
		},
		Data: map[string][]byte{"password": []byte("s3cret")},
	}
	installer := newInstaller(fake.NewSimpleClientset(secret), newDynamicClient(), runner.NewMockRunner())

	password, err := installer.AdminPassword(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), password)
}

func TestAdminPasswordMissingSecret(t *testing.T) {
	t.Parallel()

	installer := newInstaller(fake.NewSimpleClientset(), newDynamicClient(), runner.NewMockRunner())

	_, err := installer.AdminPassword(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read acs admin password")
}
