package registry

import (
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/client/oci"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
)

// verifyTimeout bounds the whole access verification, retries included.
const verifyTimeout = 2 * time.Minute

type verifyOptions struct {
	username      string
	passwordStdin bool
	repository    string
}

// NewVerifyCmd creates the registry verify command.
func NewVerifyCmd() *cobra.Command {
	options := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify registry access with the configured credentials",
		Long: "Check that the Quay registry is reachable and the credentials grant " +
			"access to the target repository. A missing repository is fine since " +
			"the first push creates it.",
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&options.username, "username", "u", "",
		"Registry username (e.g. a Quay robot account)")
	cmd.Flags().BoolVar(&options.passwordStdin, "password-stdin", false,
		"Read the registry password from stdin")
	cmd.Flags().StringVar(&options.repository, "repository", "",
		"Repository to check (defaults to <organization>/<demo image>)")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runVerify(cmd, manager, options)
	}

	return cmd
}

func runVerify(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *verifyOptions,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := resolveCredentials(cmd.InOrStdin(), options.username, options.passwordStdin)
	if err != nil {
		return err
	}

	repository := options.repository
	if repository == "" {
		repository = fmt.Sprintf(
			"%s/%s",
			cfg.Spec.Registry.Organization,
			cfg.Spec.Components.Demo.Image,
		)
	}

	endpoint, err := registryEndpoint(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	err = oci.VerifyRegistryAccessWithTimeout(cmd.Context(), oci.VerifyOptions{
		RegistryEndpoint: endpoint,
		Repository:       repository,
		Username:         creds.Username,
		Password:         string(creds.Password),
		Insecure:         cfg.Spec.Registry.Insecure,
	}, verifyTimeout)
	if err != nil {
		return err
	}

	notify.Successf(
		cmd.OutOrStdout(),
		"access to %s/%s verified",
		endpoint,
		repository,
	)

	return nil
}
