package registryauth_test

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/svc/registryauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func testCredentials() registryauth.Credentials {
	return registryauth.Credentials{
		Username: "robot$deployer",
		Password: []byte("hunter2"),
	}
}

func TestLoginPipesPasswordThroughStdin(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	helper := registryauth.NewHelper(mock, fake.NewSimpleClientset())

	err := helper.Login(context.Background(), "registry.example.com", testCredentials(), true)

	require.NoError(t, err)

	calls := mock.CallsFor("podman")
	require.Len(t, calls, 1)
	assert.Equal(
		t,
		"podman login --username robot$deployer --password-stdin --tls-verify=false registry.example.com",
		calls[0].CommandLine(),
	)
	assert.Equal(t, "hunter2", calls[0].Stdin)
}

func TestLoginFallsBackToDocker(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	mock.MissingTools = []string{"podman"}
	helper := registryauth.NewHelper(mock, fake.NewSimpleClientset())

	err := helper.Login(context.Background(), "registry.example.com", testCredentials(), false)

	require.NoError(t, err)
	require.Len(t, mock.CallsFor("docker"), 1)
	assert.Empty(t, mock.CallsFor("podman"))
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Parallel()

	helper := registryauth.NewHelper(runner.NewMockRunner(), fake.NewSimpleClientset())

	err := helper.Login(context.Background(), "registry.example.com", registryauth.Credentials{}, false)

	require.ErrorIs(t, err, registryauth.ErrCredentialsRequired)
}

func TestDockerConfigJSON(t *testing.T) {
	t.Parallel()

	config, err := registryauth.DockerConfigJSON("registry.example.com", testCredentials())

	require.NoError(t, err)
	assert.Contains(t, string(config), `"registry.example.com"`)

	expectedAuth := base64.StdEncoding.EncodeToString([]byte("robot$deployer:hunter2"))
	assert.Contains(t, string(config), expectedAuth)
}

func TestEnsurePullSecretCreatesDockerConfigSecret(t *testing.T) {
	t.Parallel()

	clientset := fake.NewSimpleClientset()
	helper := registryauth.NewHelper(runner.NewMockRunner(), clientset)

	err := helper.EnsurePullSecret(
		context.Background(), "secure-demo", "registry-pull-secret",
		"registry.example.com", testCredentials(),
	)

	require.NoError(t, err)

	secret, err := clientset.CoreV1().
		Secrets("secure-demo").
		Get(context.Background(), "registry-pull-secret", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, corev1.SecretTypeDockerConfigJson, secret.Type)
	assert.Contains(t, string(secret.Data[corev1.DockerConfigJsonKey]), "registry.example.com")
}

func TestLinkToServiceAccount(t *testing.T) {
	t.Parallel()

	serviceAccount := &corev1.ServiceAccount{
		ObjectMeta: metav1.ObjectMeta{Name: "default", Namespace: "secure-demo"},
	}
	clientset := fake.NewSimpleClientset(serviceAccount)
	helper := registryauth.NewHelper(runner.NewMockRunner(), clientset)

	err := helper.LinkToServiceAccount(
		context.Background(), "secure-demo", "registry-pull-secret", "default",
	)
	require.NoError(t, err)

	// Linking again is a no-op, not a duplicate.
	err = helper.LinkToServiceAccount(
		context.Background(), "secure-demo", "registry-pull-secret", "default",
	)
	require.NoError(t, err)

	updated, err := clientset.CoreV1().
		ServiceAccounts("secure-demo").
		Get(context.Background(), "default", metav1.GetOptions{})
	require.NoError(t, err)
	require.Len(t, updated.ImagePullSecrets, 1)
	assert.Equal(t, "registry-pull-secret", updated.ImagePullSecrets[0].Name)
}
