package stack

import (
	"bytes"
	"context"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
)

func newRouteClient(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	listKinds := map[schema.GroupVersionResource]string{
		k8s.RouteGVR: "RouteList",
	}

	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(), listKinds, objects...,
	)
}

func routeObject(namespace, name, host string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "route.openshift.io/v1",
		"kind":       "Route",
		"metadata": map[string]any{
			"name":      name,
			"namespace": namespace,
		},
		"spec": map[string]any{
			"host": host,
		},
	}}
}

func TestComponentRouteResolvesQuayHost(t *testing.T) {
	t.Parallel()

	spec := defaultedSpec()
	client := newRouteClient(routeObject(
		v1alpha1.DefaultQuayNamespace, "registry-quay", "quay.apps.example.com",
	))

	host := componentRoute(context.Background(), client, &spec, v1alpha1.ComponentQuay)

	assert.Equal(t, "quay.apps.example.com", host)
}

func TestComponentRouteEmptyForRoutelessComponents(t *testing.T) {
	t.Parallel()

	spec := defaultedSpec()
	client := newRouteClient()

	assert.Empty(t, componentRoute(context.Background(), client, &spec, v1alpha1.ComponentTPA))
	assert.Empty(t, componentRoute(context.Background(), client, &spec, v1alpha1.ComponentQuay))
}

func TestWriteStatusesYAML(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	statuses := []componentStatus{
		{Component: "quay", Healthy: true, Route: "quay.apps.example.com"},
		{Component: "acs", Healthy: false, Detail: "central is not ready"},
	}

	require.NoError(t, writeStatuses(&out, statuses, "yaml"))

	rendered := out.String()
	assert.Contains(t, rendered, "component: quay")
	assert.Contains(t, rendered, "route: quay.apps.example.com")
	assert.Contains(t, rendered, "healthy: false")
	assert.Contains(t, rendered, "detail: central is not ready")
}

func TestWriteStatusesText(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	statuses := []componentStatus{
		{Component: "quay", Healthy: true, Route: "quay.apps.example.com"},
		{Component: "mlflow", Healthy: false, Detail: "deployment not found"},
	}

	require.NoError(t, writeStatuses(&out, statuses, ""))

	rendered := out.String()
	assert.Contains(t, rendered, "quay (quay.apps.example.com)")
	assert.Contains(t, rendered, "mlflow: deployment not found")
}
