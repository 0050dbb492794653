// Package cmd assembles the ChainSail command tree.
package cmd

import (
	"fmt"

	"github.com/rosa-labs/chainsail/pkg/cli/cmd/image"
	"github.com/rosa-labs/chainsail/pkg/cli/cmd/registry"
	"github.com/rosa-labs/chainsail/pkg/cli/cmd/stack"
	"github.com/rosa-labs/chainsail/pkg/cli/flags"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chainsail",
		Short: "ChainSail deploys a secure software supply chain stack on OpenShift",
		Long: "ChainSail deploys and operates a secure software supply chain stack on " +
			"OpenShift: Quay registry, Advanced Cluster Security, Trusted Profile " +
			"Analyzer, OpenShift Pipelines, MLflow, and a demo workload wired for " +
			"image signing, SBOM attestation, and vulnerability gating.",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.PersistentFlags().Bool(
		flags.TimingFlagName,
		false,
		"Show per-activity timing output",
	)

	cmd.AddCommand(stack.NewStackCmd())
	cmd.AddCommand(registry.NewRegistryCmd())
	cmd.AddCommand(image.NewImageCmd())

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
