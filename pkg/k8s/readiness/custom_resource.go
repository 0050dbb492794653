package readiness

import (
	"context"
	"time"

	"github.com/rosa-labs/chainsail/pkg/k8s"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

// WaitForCustomResourceCondition polls until the named custom resource reports
// the given status condition with the given status value. This drives the
// readiness gates for operator-managed resources such as QuayRegistry
// (Available=True) and Central.
func WaitForCustomResourceCondition(
	ctx context.Context,
	client dynamic.Interface,
	gvr schema.GroupVersionResource,
	namespace, name string,
	conditionType, conditionStatus string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		resource, err := client.Resource(gvr).Namespace(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return hasCondition(resource, conditionType, conditionStatus), nil
	})
}

// WaitForCustomResourcePhase polls until the named custom resource reports the
// given status.phase value. Used for ClusterServiceVersions, which report
// "Succeeded" instead of standard conditions.
func WaitForCustomResourcePhase(
	ctx context.Context,
	client dynamic.Interface,
	gvr schema.GroupVersionResource,
	namespace, name string,
	phase string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		resource, err := client.Resource(gvr).Namespace(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		current, found, err := unstructured.NestedString(resource.Object, "status", "phase")
		if err != nil || !found {
			return false, nil
		}

		return current == phase, nil
	})
}

// WaitForRouteAdmitted polls until the named OpenShift route has an ingress
// with condition Admitted=True.
func WaitForRouteAdmitted(
	ctx context.Context,
	client dynamic.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		route, err := client.Resource(k8s.RouteGVR).Namespace(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return k8s.IsRouteAdmitted(route), nil
	})
}

// hasCondition returns true if the resource carries a status condition of the
// given type with the given status value.
func hasCondition(resource *unstructured.Unstructured, conditionType, status string) bool {
	conditions, found, err := unstructured.NestedSlice(resource.Object, "status", "conditions")
	if err != nil || !found {
		return false
	}

	for _, rawCondition := range conditions {
		condition, ok := rawCondition.(map[string]any)
		if !ok {
			continue
		}

		if condition["type"] == conditionType && condition["status"] == status {
			return true
		}
	}

	return false
}
