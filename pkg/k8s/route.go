package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

// RouteGVR is the GroupVersionResource for OpenShift routes.
var RouteGVR = schema.GroupVersionResource{
	Group:    "route.openshift.io",
	Version:  "v1",
	Resource: "routes",
}

// RouteHost returns the hostname of an OpenShift route.
// Returns ErrRouteHostEmpty if the route exists but has no host assigned yet.
func RouteHost(
	ctx context.Context,
	client dynamic.Interface,
	namespace, name string,
) (string, error) {
	route, err := client.Resource(RouteGVR).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("get route %s/%s: %w", namespace, name, err)
	}

	host, found, err := unstructured.NestedString(route.Object, "spec", "host")
	if err != nil {
		return "", fmt.Errorf("read route host: %w", err)
	}

	if !found || host == "" {
		return "", ErrRouteHostEmpty
	}

	return host, nil
}

// IsRouteAdmitted reports whether the route has an ingress with condition
// Admitted=True. Routes that exist but have not been admitted by a router
// are not reachable yet.
func IsRouteAdmitted(route *unstructured.Unstructured) bool {
	ingresses, found, err := unstructured.NestedSlice(route.Object, "status", "ingress")
	if err != nil || !found {
		return false
	}

	for _, rawIngress := range ingresses {
		ingress, ok := rawIngress.(map[string]any)
		if !ok {
			continue
		}

		conditions, found, err := unstructured.NestedSlice(ingress, "conditions")
		if err != nil || !found {
			continue
		}

		for _, rawCondition := range conditions {
			condition, ok := rawCondition.(map[string]any)
			if !ok {
				continue
			}

			if condition["type"] == "Admitted" && condition["status"] == "True" {
				return true
			}
		}
	}

	return false
}
