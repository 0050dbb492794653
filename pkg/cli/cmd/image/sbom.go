package image

import (
	"fmt"
	"strings"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/svc/sbom"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
)

type sbomOptions struct {
	format   string
	output   string
	attach   bool
	download bool
}

// NewSBOMCmd creates the image sbom command.
func NewSBOMCmd() *cobra.Command {
	options := &sbomOptions{}

	cmd := &cobra.Command{
		Use:   "sbom <image[:tag]>",
		Short: "Generate an SBOM with syft and attach it to the image",
		Long: "Scan the image with syft, write the SBOM document, and push it to " +
			"the registry alongside the image. With --download the previously " +
			"attached SBOM is printed instead.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&options.format, "format", "",
		"SBOM format: spdx-json or cyclonedx-json (defaults to the configured format)")
	cmd.Flags().StringVar(&options.output, "output", "",
		"SBOM output path (defaults to <image>.sbom.json)")
	cmd.Flags().BoolVar(&options.attach, "attach", true,
		"Attach the generated SBOM to the image in the registry")
	cmd.Flags().BoolVar(&options.download, "download", false,
		"Download the SBOM attached to the image instead of generating one")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runSBOM(cmd, manager, options, args[0])
	}

	return cmd
}

func runSBOM(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *sbomOptions,
	imageArg string,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	format := cfg.Spec.Signing.SBOMFormat
	if options.format != "" {
		format = v1alpha1.SBOMFormat(options.format)
	}

	generator := sbom.NewGenerator(runner.NewRunner(), format)

	imageRef, err := resolveImageRef(cmd.Context(), cfg, imageArg)
	if err != nil {
		return err
	}

	if options.download {
		document, err := generator.Download(cmd.Context(), imageRef)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), document)

		return nil
	}

	outputPath := options.output
	if outputPath == "" {
		outputPath = sbomOutputPath(imageArg)
	}

	err = generator.Generate(cmd.Context(), imageRef, outputPath)
	if err != nil {
		return err
	}

	notify.Successf(cmd.OutOrStdout(), "wrote sbom to %s", outputPath)

	if options.attach {
		err = generator.Attach(cmd.Context(), imageRef, outputPath)
		if err != nil {
			return err
		}

		notify.Successf(cmd.OutOrStdout(), "attached sbom to %s", imageRef)
	}

	return nil
}

// sbomOutputPath derives a file name from the image argument, e.g.
// "flask-app:v1" becomes "flask-app.sbom.json".
func sbomOutputPath(imageArg string) string {
	name := imageArg

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	if idx := strings.Index(name, ":"); idx >= 0 {
		name = name[:idx]
	}

	return name + ".sbom.json"
}
