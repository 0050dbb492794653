package image

import (
	"fmt"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/svc/signer"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
)

type verifyOptions struct {
	keyPath       string
	showSignature bool
}

// NewVerifyCmd creates the image verify command.
func NewVerifyCmd() *cobra.Command {
	options := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <image[:tag]>",
		Short: "Verify an image signature against the public key",
		Args:  cobra.ExactArgs(1),

		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&options.keyPath, "key", "",
		"Path to the cosign private key (defaults to the configured key)")
	cmd.Flags().BoolVar(&options.showSignature, "show-signature", false,
		"Print the registry location of the signature object")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runVerifyImage(cmd, manager, options, args[0])
	}

	return cmd
}

func runVerifyImage(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *verifyOptions,
	imageArg string,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sgn := signer.NewSigner(runner.NewRunner(), signingKeyPath(cfg, options.keyPath), nil)

	imageRef, err := resolveImageRef(cmd.Context(), cfg, imageArg)
	if err != nil {
		return err
	}

	err = sgn.Verify(cmd.Context(), imageRef)
	if err != nil {
		return err
	}

	notify.Successf(cmd.OutOrStdout(), "signature verified for %s", imageRef)

	if options.showSignature {
		location, err := sgn.Triangulate(cmd.Context(), imageRef)
		if err != nil {
			return err
		}

		notify.Infof(cmd.OutOrStdout(), "signature stored at %s", location)
	}

	return nil
}
