package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// managedLabels returns the labels stamped on every namespace ChainSail creates
// or adopts, so operators can identify stack-managed namespaces.
func managedLabels() map[string]string {
	return map[string]string{
		"app.kubernetes.io/managed-by": "chainsail",
	}
}

// EnsureNamespace creates the given namespace with ChainSail management labels,
// or patches an existing namespace to add them. Extra labels are merged on top
// of the management labels.
func EnsureNamespace(
	ctx context.Context,
	clientset kubernetes.Interface,
	name string,
	extraLabels map[string]string,
) error {
	labels := managedLabels()
	for key, value := range extraLabels {
		labels[key] = value
	}

	namespace, err := clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			newNS := &corev1.Namespace{
				ObjectMeta: metav1.ObjectMeta{
					Name:   name,
					Labels: labels,
				},
			}

			_, err = clientset.CoreV1().Namespaces().Create(ctx, newNS, metav1.CreateOptions{})
			if err != nil {
				return fmt.Errorf("create namespace: %w", err)
			}

			return nil
		}

		return fmt.Errorf("get namespace: %w", err)
	}

	// Namespace exists, adopt it by ensuring labels are set.
	if namespace.Labels == nil {
		namespace.Labels = make(map[string]string)
	}

	updated := false

	for key, value := range labels {
		if namespace.Labels[key] != value {
			namespace.Labels[key] = value
			updated = true
		}
	}

	if updated {
		_, err = clientset.CoreV1().Namespaces().Update(ctx, namespace, metav1.UpdateOptions{})
		if err != nil {
			return fmt.Errorf("update namespace labels: %w", err)
		}
	}

	return nil
}
