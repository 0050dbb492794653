package k8s

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/yaml"
)

// ApplySecretManifests decodes a multi-document YAML stream of secrets and
// ensures each one in the given namespace. Used for operator init bundles
// that ship as secret manifests (e.g. roxctl cluster init bundles).
func ApplySecretManifests(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	manifests []byte,
) error {
	for _, doc := range strings.Split(string(manifests), "\n---") {
		if strings.TrimSpace(doc) == "" {
			continue
		}

		var secret corev1.Secret

		err := yaml.Unmarshal([]byte(doc), &secret)
		if err != nil {
			return fmt.Errorf("decode secret manifest: %w", err)
		}

		if secret.Name == "" {
			continue
		}

		secret.Namespace = namespace

		err = EnsureSecret(ctx, clientset, &secret)
		if err != nil {
			return err
		}
	}

	return nil
}
