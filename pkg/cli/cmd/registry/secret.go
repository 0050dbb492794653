package registry

import (
	"fmt"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	demoinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/demo"
	"github.com/rosa-labs/chainsail/pkg/svc/registryauth"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
)

type secretOptions struct {
	username      string
	passwordStdin bool
	secretName    string
	linkSA        string
}

// NewSecretCmd creates the registry secret command.
func NewSecretCmd() *cobra.Command {
	options := &secretOptions{}

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Create a pull secret for the Quay registry",
		Long: "Render a dockerconfigjson pull secret in the demo namespace and " +
			"optionally link it to a service account so pods pull without per-pod " +
			"configuration.",
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&options.username, "username", "u", "",
		"Registry username (e.g. a Quay robot account)")
	cmd.Flags().BoolVar(&options.passwordStdin, "password-stdin", false,
		"Read the registry password from stdin")
	cmd.Flags().StringVar(&options.secretName, "secret-name", demoinstaller.PullSecretName,
		"Name of the pull secret")
	cmd.Flags().StringVar(&options.linkSA, "link-service-account", "default",
		"Service account to link the pull secret to (empty to skip linking)")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runSecret(cmd, manager, options)
	}

	return cmd
}

func runSecret(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *secretOptions,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := resolveCredentials(cmd.InOrStdin(), options.username, options.passwordStdin)
	if err != nil {
		return err
	}

	clientset, err := k8s.NewClientset(
		cfg.Spec.Connection.Kubeconfig,
		cfg.Spec.Connection.Context,
	)
	if err != nil {
		return fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	endpoint, err := registryEndpoint(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	namespace := cfg.Spec.Components.Demo.Namespace
	helper := registryauth.NewHelper(runner.NewRunner(), clientset)

	err = helper.EnsurePullSecret(
		cmd.Context(), namespace, options.secretName,
		endpoint, creds,
	)
	if err != nil {
		return err
	}

	if options.linkSA != "" {
		err = helper.LinkToServiceAccount(cmd.Context(), namespace, options.secretName, options.linkSA)
		if err != nil {
			return err
		}
	}

	notify.Successf(cmd.OutOrStdout(), "pull secret %s/%s ready", namespace, options.secretName)

	return nil
}
