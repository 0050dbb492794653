package k8s_test

import (
	"context"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestApplySecretManifestsCreatesAllDocuments(t *testing.T) {
	t.Parallel()

	manifests := `
apiVersion: v1
kind: Secret
metadata:
  name: sensor-tls
  namespace: ignored
data:
  ca.pem: Y2VydA==
---
apiVersion: v1
kind: Secret
metadata:
  name: collector-tls
data:
  ca.pem: Y2VydA==
`

	clientset := fake.NewSimpleClientset()

	err := k8s.ApplySecretManifests(context.Background(), clientset, "stackrox", []byte(manifests))

	require.NoError(t, err)

	for _, name := range []string{"sensor-tls", "collector-tls"} {
		secret, err := clientset.CoreV1().
			Secrets("stackrox").
			Get(context.Background(), name, metav1.GetOptions{})
		require.NoError(t, err)
		assert.Equal(t, []byte("cert"), secret.Data["ca.pem"])
	}
}

func TestApplySecretManifestsRejectsInvalidYAML(t *testing.T) {
	t.Parallel()

	err := k8s.ApplySecretManifests(
		context.Background(), fake.NewSimpleClientset(), "stackrox", []byte("{invalid"),
	)

	require.Error(t, err)
}
