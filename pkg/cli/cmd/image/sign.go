package image

import (
	"fmt"
	"path/filepath"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/svc/signer"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
)

type signOptions struct {
	keyPath     string
	generateKey bool
}

// NewSignCmd creates the image sign command.
func NewSignCmd() *cobra.Command {
	options := &signOptions{}

	cmd := &cobra.Command{
		Use:   "sign <image[:tag]>",
		Short: "Sign an image with cosign and push the signature",
		Long: "Sign the image with the configured cosign key pair. The key " +
			"password is read from COSIGN_PASSWORD.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&options.keyPath, "key", "",
		"Path to the cosign private key (defaults to the configured key)")
	cmd.Flags().BoolVar(&options.generateKey, "generate-key", false,
		"Generate a cosign key pair next to the key path before signing")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSign(cmd, manager, options, args[0])
	}

	return cmd
}

func runSign(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *signOptions,
	imageArg string,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	keyPath := signingKeyPath(cfg, options.keyPath)
	sgn := signer.NewSigner(runner.NewRunner(), keyPath, cosignPassword())

	if options.generateKey {
		err = sgn.GenerateKeyPair(cmd.Context(), filepath.Dir(keyPath))
		if err != nil {
			return err
		}

		notify.Successf(cmd.OutOrStdout(), "generated key pair for %s", keyPath)
	}

	imageRef, err := resolveImageRef(cmd.Context(), cfg, imageArg)
	if err != nil {
		return err
	}

	err = sgn.Sign(cmd.Context(), imageRef)
	if err != nil {
		return err
	}

	notify.Successf(cmd.OutOrStdout(), "signed %s", imageRef)

	return nil
}
