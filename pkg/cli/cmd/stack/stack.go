// Package stack implements the stack lifecycle commands: deploy, destroy,
// status, and validate.
package stack

import (
	"github.com/spf13/cobra"
)

// NewStackCmd creates the stack parent command.
func NewStackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Manage the supply chain stack",
		Long:  "Deploy, destroy, inspect, and validate the supply chain stack components.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()

			return nil
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewDeployCmd())
	cmd.AddCommand(NewDestroyCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewValidateCmd())

	return cmd
}
