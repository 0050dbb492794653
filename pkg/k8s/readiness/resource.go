package readiness

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Check describes a single workload resource to wait for.
type Check struct {
	// Type is the resource type: "deployment", "statefulset", or "daemonset".
	Type string
	// Namespace is the namespace of the resource.
	Namespace string
	// Name is the name of the resource.
	Name string
}

// WaitForMultipleResources waits for all listed workload resources to become
// ready, sharing a single deadline across the checks.
func WaitForMultipleResources(
	ctx context.Context,
	clientset kubernetes.Interface,
	checks []Check,
	deadline time.Duration,
) error {
	waitCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	for _, check := range checks {
		err := waitForResource(waitCtx, clientset, check, deadline)
		if err != nil {
			return fmt.Errorf("wait for %s %s/%s: %w", check.Type, check.Namespace, check.Name, err)
		}
	}

	return nil
}

func waitForResource(
	ctx context.Context,
	clientset kubernetes.Interface,
	check Check,
	deadline time.Duration,
) error {
	switch check.Type {
	case "deployment":
		return WaitForDeploymentReady(ctx, clientset, check.Namespace, check.Name, deadline)
	case "statefulset":
		return WaitForStatefulSetReady(ctx, clientset, check.Namespace, check.Name, deadline)
	case "daemonset":
		return WaitForDaemonSetReady(ctx, clientset, check.Namespace, check.Name, deadline)
	default:
		return fmt.Errorf("%w: %s", errUnknownResourceType, check.Type)
	}
}

// WaitForDeploymentReady polls until the deployment has all replicas updated
// and available.
func WaitForDeploymentReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		deployment, err := clientset.AppsV1().Deployments(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return isDeploymentReady(deployment), nil
	})
}

// WaitForStatefulSetReady polls until the statefulset has all replicas ready.
func WaitForStatefulSetReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		statefulset, err := clientset.AppsV1().StatefulSets(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return isStatefulSetReady(statefulset), nil
	})
}

// WaitForDaemonSetReady polls until the daemonset has all scheduled pods
// updated and available.
func WaitForDaemonSetReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		daemonset, err := clientset.AppsV1().DaemonSets(namespace).
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return isDaemonSetReady(daemonset), nil
	})
}

// isDeploymentReady returns true when all desired replicas are updated and available.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	status := deployment.Status

	if status.Replicas == 0 {
		return false
	}

	return status.UpdatedReplicas == status.Replicas &&
		status.AvailableReplicas == status.Replicas
}

// isStatefulSetReady returns true when all desired replicas are ready.
func isStatefulSetReady(statefulset *appsv1.StatefulSet) bool {
	status := statefulset.Status

	if status.Replicas == 0 {
		return false
	}

	return status.ReadyReplicas == status.Replicas &&
		status.UpdatedReplicas == status.Replicas
}

// isDaemonSetReady returns true when all scheduled pods are updated and none
// are unavailable.
func isDaemonSetReady(daemonset *appsv1.DaemonSet) bool {
	status := daemonset.Status

	if status.DesiredNumberScheduled == 0 {
		return false
	}

	return status.UpdatedNumberScheduled == status.DesiredNumberScheduled &&
		status.NumberUnavailable == 0
}
