// Package registry implements the registry auth commands: login, secret, and
// verify.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	quayinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/quay"
	"github.com/rosa-labs/chainsail/pkg/svc/registryauth"
	"github.com/spf13/cobra"
)

// ErrPasswordRequired is returned when no password source is available.
var ErrPasswordRequired = errors.New(
	"registry password required: pass --password-stdin or set CHAINSAIL_REGISTRY_PASSWORD",
)

// passwordEnvVar is the fallback source for the registry password.
const passwordEnvVar = "CHAINSAIL_REGISTRY_PASSWORD"

// NewRegistryCmd creates the registry parent command.
func NewRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Authenticate against the Quay registry",
		Long: "Log container tooling into the Quay registry, materialize pull " +
			"secrets, and verify registry access. Passwords are read from stdin or " +
			"the environment and never appear in arguments or output.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()

			return nil
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewSecretCmd())
	cmd.AddCommand(NewVerifyCmd())

	return cmd
}

// registryEndpoint returns the configured registry endpoint, falling back to
// the Quay route host discovered from the cluster.
func registryEndpoint(ctx context.Context, cfg *v1alpha1.Stack) (string, error) {
	if cfg.Spec.Registry.Endpoint != "" {
		return cfg.Spec.Registry.Endpoint, nil
	}

	dynamicClient, err := k8s.NewDynamicClient(
		cfg.Spec.Connection.Kubeconfig,
		cfg.Spec.Connection.Context,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return quayinstaller.DiscoverRegistryHost(ctx, dynamicClient, cfg.Spec.Components.Quay.Namespace)
}

// resolveCredentials builds credentials from the username flag and a password
// read from stdin (when passwordStdin is set) or the environment.
func resolveCredentials(
	stdin io.Reader,
	username string,
	passwordStdin bool,
) (registryauth.Credentials, error) {
	var password []byte

	if passwordStdin {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return registryauth.Credentials{}, fmt.Errorf("failed to read password from stdin: %w", err)
		}

		password = []byte(strings.TrimRight(string(data), "\r\n"))
	} else if fromEnv := os.Getenv(passwordEnvVar); fromEnv != "" {
		password = []byte(fromEnv)
	}

	if len(password) == 0 {
		return registryauth.Credentials{}, ErrPasswordRequired
	}

	return registryauth.Credentials{Username: username, Password: password}, nil
}
