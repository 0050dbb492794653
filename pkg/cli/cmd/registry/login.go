package registry

import (
	"fmt"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/svc/registryauth"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
)

type loginOptions struct {
	username      string
	passwordStdin bool
}

// NewLoginCmd creates the registry login command.
func NewLoginCmd() *cobra.Command {
	options := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log podman or docker into the Quay registry",
		Long: "Authenticate the local container tooling against the Quay registry. " +
			"podman is preferred; docker is used when podman is not installed. The " +
			"password is piped through stdin.",
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&options.username, "username", "u", "",
		"Registry username (e.g. a Quay robot account)")
	cmd.Flags().BoolVar(&options.passwordStdin, "password-stdin", false,
		"Read the registry password from stdin")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runLogin(cmd, manager, options)
	}

	return cmd
}

func runLogin(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *loginOptions,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := resolveCredentials(cmd.InOrStdin(), options.username, options.passwordStdin)
	if err != nil {
		return err
	}

	endpoint, err := registryEndpoint(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	// Login itself only drives the container CLI; the cluster is touched
	// solely when the endpoint has to be discovered.
	helper := registryauth.NewHelper(runner.NewRunner(), nil)

	err = helper.Login(cmd.Context(), endpoint, creds, cfg.Spec.Registry.Insecure)
	if err != nil {
		return err
	}

	notify.Successf(cmd.OutOrStdout(), "logged in to %s", endpoint)

	return nil
}
