package stack

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cli/flags"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/svc/installer"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/rosa-labs/chainsail/pkg/ui/timer"
	"github.com/spf13/cobra"
)

// ErrDestroyFailed is returned when one or more components failed to uninstall.
var ErrDestroyFailed = errors.New("some components failed to uninstall")

type destroyOptions struct {
	skips []string
}

// NewDestroyCmd creates the stack destroy command.
func NewDestroyCmd() *cobra.Command {
	options := &destroyOptions{}

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Uninstall the stack components in reverse order",
		Long: "Uninstall the deployed stack components in reverse dependency order. " +
			"Operator CRDs and custom resources are left in place to avoid data loss.",
		SilenceUsage: true,
	}

	cmd.Flags().StringSliceVar(&options.skips, "skip", nil,
		"Components to skip (quay, acs, tpa, pipelines, mlflow, demo)")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runDestroy(cmd, manager, options)
	}

	return cmd
}

func runDestroy(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *destroyOptions,
) error {
	tmr := timer.New()
	tmr.Start()

	outputTimer := flags.MaybeTimer(cmd, tmr)

	cfg, err := manager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	skips, err := v1alpha1.ParseComponents(options.skips)
	if err != nil {
		return err
	}

	components := v1alpha1.EnabledComponents(&cfg.Spec, skips)
	slices.Reverse(components)

	clients, err := newClusterClients(cfg)
	if err != nil {
		return err
	}

	factory := installer.NewFactory(
		clients.helm, clients.clientset, clients.dynamic, clients.apiextensions,
		runner.NewRunner(), componentTimeout(cfg),
	)
	installers := factory.CreateInstallersForSpec(&cfg.Spec)

	return uninstallComponents(cmd, components, installers, outputTimer)
}

func uninstallComponents(
	cmd *cobra.Command,
	components []v1alpha1.Component,
	installers map[v1alpha1.Component]installer.Installer,
	tmr timer.Timer,
) error {
	writer := cmd.OutOrStdout()

	var failed []string

	for _, component := range components {
		inst, ok := installers[component]
		if !ok {
			continue
		}

		if tmr != nil {
			tmr.NewStage()
		}

		notify.Activityf(writer, "uninstalling %s", component)

		err := inst.Uninstall(cmd.Context())
		if err != nil {
			failed = append(failed, string(component))
			notify.Errorf(writer, "%s failed: %v", component, err)

			continue
		}

		notify.SuccessWithTimerf(writer, tmr, "%s uninstalled", component)
	}

	return destroySummary(failed)
}

func destroySummary(failed []string) error {
	if len(failed) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrDestroyFailed, strings.Join(failed, ", "))
}
