// Package registryauth logs container tooling into the Quay registry and
// materializes pull secrets for workloads.
package registryauth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ErrCredentialsRequired is returned when a login runs without credentials.
var ErrCredentialsRequired = errors.New("registry credentials are required")

// Credentials holds a registry username and password. The password is kept as
// a byte slice and only ever written to a process stdin or a secret.
type Credentials struct {
	Username string
	Password []byte
}

// Helper performs registry logins and pull secret management.
type Helper struct {
	runner    runner.Runner
	clientset kubernetes.Interface
}

// NewHelper creates a registry auth helper.
func NewHelper(run runner.Runner, clientset kubernetes.Interface) *Helper {
	return &Helper{runner: run, clientset: clientset}
}

// Login authenticates the local container tooling against the registry.
// podman is preferred; docker is used when podman is not on PATH. The
// password is piped through stdin.
func (h *Helper) Login(ctx context.Context, endpoint string, creds Credentials, insecure bool) error {
	if creds.Username == "" || len(creds.Password) == 0 {
		return ErrCredentialsRequired
	}

	tool := "podman"
	if h.runner.LookPath(tool) != nil {
		tool = "docker"
	}

	args := []string{"login", "--username", creds.Username, "--password-stdin"}
	if insecure && tool == "podman" {
		args = append(args, "--tls-verify=false")
	}

	args = append(args, endpoint)

	_, err := h.runner.Run(ctx, runner.Command{
		Tool:  tool,
		Args:  args,
		Stdin: strings.NewReader(string(creds.Password)),
	})
	if err != nil {
		return fmt.Errorf("failed to log in to %s: %w", endpoint, err)
	}

	return nil
}

// DockerConfigJSON renders a dockerconfigjson document for the registry.
func DockerConfigJSON(endpoint string, creds Credentials) ([]byte, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(creds.Username + ":" + string(creds.Password)),
	)

	config := map[string]any{
		"auths": map[string]any{
			endpoint: map[string]any{
				"username": creds.Username,
				"auth":     auth,
			},
		},
	}

	data, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to render docker config: %w", err)
	}

	return data, nil
}

// EnsurePullSecret creates or updates a dockerconfigjson pull secret in the
// namespace.
func (h *Helper) EnsurePullSecret(
	ctx context.Context,
	namespace, name, endpoint string,
	creds Credentials,
) error {
	if creds.Username == "" || len(creds.Password) == 0 {
		return ErrCredentialsRequired
	}

	config, err := DockerConfigJSON(endpoint, creds)
	if err != nil {
		return err
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Type: corev1.SecretTypeDockerConfigJson,
		Data: map[string][]byte{
			corev1.DockerConfigJsonKey: config,
		},
	}

	err = k8s.EnsureSecret(ctx, h.clientset, secret)
	if err != nil {
		return fmt.Errorf("failed to ensure pull secret: %w", err)
	}

	return nil
}

// LinkToServiceAccount adds the pull secret to the service account's
// imagePullSecrets so pods pull without per-pod configuration.
func (h *Helper) LinkToServiceAccount(
	ctx context.Context,
	namespace, secretName, serviceAccountName string,
) error {
	serviceAccounts := h.clientset.CoreV1().ServiceAccounts(namespace)

	serviceAccount, err := serviceAccounts.Get(ctx, serviceAccountName, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get service account %s: %w", serviceAccountName, err)
	}

	for _, ref := range serviceAccount.ImagePullSecrets {
		if ref.Name == secretName {
			return nil
		}
	}

	serviceAccount.ImagePullSecrets = append(
		serviceAccount.ImagePullSecrets,
		corev1.LocalObjectReference{Name: secretName},
	)

	_, err = serviceAccounts.Update(ctx, serviceAccount, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to link pull secret to %s: %w", serviceAccountName, err)
	}

	return nil
}
