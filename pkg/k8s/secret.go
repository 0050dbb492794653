package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// SecretValue returns the decoded value of a single key from a secret.
// Returns ErrSecretKeyNotFound if the secret exists but the key is missing.
func SecretValue(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name, key string,
) ([]byte, error) {
	secret, err := clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get secret %s/%s: %w", namespace, name, err)
	}

	value, ok := secret.Data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s/%s", ErrSecretKeyNotFound, key, namespace, name)
	}

	return value, nil
}

// EnsureSecret creates the secret or replaces the data of an existing one.
// The secret type is preserved from the desired object.
func EnsureSecret(
	ctx context.Context,
	clientset kubernetes.Interface,
	desired *corev1.Secret,
) error {
	secrets := clientset.CoreV1().Secrets(desired.Namespace)

	existing, err := secrets.Get(ctx, desired.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			_, err = secrets.Create(ctx, desired, metav1.CreateOptions{})
			if err != nil {
				return fmt.Errorf("create secret %s/%s: %w", desired.Namespace, desired.Name, err)
			}

			return nil
		}

		return fmt.Errorf("get secret %s/%s: %w", desired.Namespace, desired.Name, err)
	}

	// Secret type is immutable, so only the data is refreshed on update.
	existing.Data = desired.Data

	_, err = secrets.Update(ctx, existing, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("update secret %s/%s: %w", desired.Namespace, desired.Name, err)
	}

	return nil
}
