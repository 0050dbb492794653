// Package image implements the supply chain image commands: sign, verify,
// sbom, and scan.
package image

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	quayinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/quay"
	"github.com/spf13/cobra"
)

// cosignPasswordEnvVar is the source for the cosign key password.
const cosignPasswordEnvVar = "COSIGN_PASSWORD"

// NewImageCmd creates the image parent command.
func NewImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Sign, verify, and gate container images",
		Long: "Drive the supply chain tooling for a single image: cosign signing " +
			"and verification, syft SBOM generation, and ACS vulnerability scans. " +
			"Key and admin passwords come from the environment and never appear in " +
			"arguments or output.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()

			return nil
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewSignCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewSBOMCmd())
	cmd.AddCommand(NewScanCmd())

	return cmd
}

// resolveImageRef expands a short image name to a full reference on the
// configured registry. An empty configured endpoint is resolved from the Quay
// route in the cluster. References that already carry a registry host pass
// through untouched.
func resolveImageRef(ctx context.Context, cfg *v1alpha1.Stack, arg string) (string, error) {
	endpoint := cfg.Spec.Registry.Endpoint

	if endpoint == "" && !strings.Contains(arg, "/") {
		dynamicClient, err := k8s.NewDynamicClient(
			cfg.Spec.Connection.Kubeconfig,
			cfg.Spec.Connection.Context,
		)
		if err != nil {
			return "", fmt.Errorf("failed to create dynamic client: %w", err)
		}

		endpoint, err = quayinstaller.DiscoverRegistryHost(
			ctx, dynamicClient, cfg.Spec.Components.Quay.Namespace,
		)
		if err != nil {
			return "", err
		}
	}

	return expandImageRef(cfg, endpoint, arg), nil
}

// expandImageRef prefixes short names with the registry endpoint and
// organization and appends the default tag when the reference has none.
func expandImageRef(cfg *v1alpha1.Stack, endpoint, arg string) string {
	ref := arg
	if !strings.Contains(ref, "/") {
		ref = fmt.Sprintf("%s/%s/%s", endpoint, cfg.Spec.Registry.Organization, ref)
	}

	if !strings.Contains(ref[strings.LastIndex(ref, "/")+1:], ":") {
		ref += ":" + cfg.Spec.Components.Demo.Tag
	}

	return ref
}

// cosignPassword reads the cosign key password from the environment. An empty
// password is valid for keys generated without one.
func cosignPassword() []byte {
	return []byte(os.Getenv(cosignPasswordEnvVar))
}

// signingKeyPath returns the key path override, falling back to the
// configured one.
func signingKeyPath(cfg *v1alpha1.Stack, override string) string {
	if override != "" {
		return override
	}

	return cfg.Spec.Signing.KeyPath
}
