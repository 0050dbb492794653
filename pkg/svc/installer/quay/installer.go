// Package quayinstaller deploys the Quay container registry via its operator.
package quayinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/olm"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"github.com/rosa-labs/chainsail/pkg/svc/installer/internal/olmutil"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

const (
	registryName = "registry"
	crdName      = "quayregistries.quay.redhat.com"
)

// QuayRegistryGVR identifies the QuayRegistry custom resource.
var QuayRegistryGVR = schema.GroupVersionResource{
	Group:    "quay.redhat.com",
	Version:  "v1",
	Resource: "quayregistries",
}

// QuayInstaller deploys the Quay operator and a QuayRegistry instance.
type QuayInstaller struct {
	*olmutil.Base

	apiextensionsClient apiextensionsclientset.Interface
	spec                v1alpha1.QuaySpec
}

// NewQuayInstaller creates a new Quay installer instance.
func NewQuayInstaller(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	apiextensionsClient apiextensionsclientset.Interface,
	spec v1alpha1.QuaySpec,
	timeout time.Duration,
) *QuayInstaller {
	subscription := olm.Subscription{
		Name:                   "quay-operator",
		Namespace:              spec.Namespace,
		Package:                "quay-operator",
		Channel:                spec.Channel,
		CatalogSource:          "redhat-operators",
		CatalogSourceNamespace: "openshift-marketplace",
	}

	return &QuayInstaller{
		Base:                olmutil.NewBase("quay", clientset, dynamicClient, subscription, timeout),
		apiextensionsClient: apiextensionsClient,
		spec:                spec,
	}
}

// Install deploys the Quay operator, applies a QuayRegistry instance, and
// blocks until the registry reports Available and its route is admitted.
func (q *QuayInstaller) Install(ctx context.Context) error {
	err := q.Base.Install(ctx)
	if err != nil {
		return err
	}

	err = q.WaitForCRD(ctx, q.apiextensionsClient, crdName)
	if err != nil {
		return err
	}

	err = q.ApplyCustomResource(ctx, QuayRegistryGVR, q.quayRegistry())
	if err != nil {
		return err
	}

	return q.Verify(ctx)
}

// Verify checks the QuayRegistry is Available and its route is admitted.
func (q *QuayInstaller) Verify(ctx context.Context) error {
	err := readiness.WaitForCustomResourceCondition(
		ctx,
		q.DynamicClient(),
		QuayRegistryGVR,
		q.spec.Namespace,
		registryName,
		"Available",
		"True",
		q.Timeout(),
	)
	if err != nil {
		return fmt.Errorf("quay registry is not available: %w", err)
	}

	err = readiness.WaitForRouteAdmitted(
		ctx,
		q.DynamicClient(),
		q.spec.Namespace,
		RouteName(),
		q.Timeout(),
	)
	if err != nil {
		return fmt.Errorf("quay route is not admitted: %w", err)
	}

	return nil
}

// RegistryHost returns the external host of the Quay registry route.
func (q *QuayInstaller) RegistryHost(ctx context.Context) (string, error) {
	return DiscoverRegistryHost(ctx, q.DynamicClient(), q.spec.Namespace)
}

// DiscoverRegistryHost resolves the Quay route host in the given namespace.
// Callers use it as the registry endpoint when no override is configured.
func DiscoverRegistryHost(
	ctx context.Context,
	dynamicClient dynamic.Interface,
	namespace string,
) (string, error) {
	host, err := k8s.RouteHost(ctx, dynamicClient, namespace, RouteName())
	if err != nil {
		return "", fmt.Errorf("failed to resolve quay registry host: %w", err)
	}

	return host, nil
}

// RouteName returns the name of the route the Quay operator creates for the
// registry instance.
func RouteName() string {
	return registryName + "-quay"
}

// quayRegistry renders the QuayRegistry custom resource. All managed
// components stay enabled so the operator provisions its own database and
// object storage.
func (q *QuayInstaller) quayRegistry() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "quay.redhat.com/v1",
		"kind":       "QuayRegistry",
		"metadata": map[string]any{
			"name":      registryName,
			"namespace": q.spec.Namespace,
		},
		"spec": map[string]any{
			"components": []any{
				map[string]any{"kind": "objectstorage", "managed": true},
				map[string]any{"kind": "postgres", "managed": true},
				map[string]any{"kind": "redis", "managed": true},
				map[string]any{"kind": "route", "managed": true},
				map[string]any{"kind": "monitoring", "managed": false},
			},
		},
	}}
}
