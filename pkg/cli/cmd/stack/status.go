package stack

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/rosa-labs/chainsail/pkg/svc/installer"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
	"k8s.io/client-go/dynamic"
	"sigs.k8s.io/yaml"
)

// statusProbeTimeout bounds each component's health probe. Status is a quick
// inspection, not a deploy wait.
const statusProbeTimeout = 10 * time.Second

type statusOptions struct {
	output string
}

// componentStatus is one row of the stack status report.
type componentStatus struct {
	Component string `json:"component"`
	Healthy   bool   `json:"healthy"`
	Detail    string `json:"detail,omitempty"`
	Route     string `json:"route,omitempty"`
}

// NewStatusCmd creates the stack status command.
func NewStatusCmd() *cobra.Command {
	options := &statusOptions{}

	cmd := &cobra.Command{
		Use:          "status",
		Short:        "Show per-component health and routes",
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&options.output, "output", "o", "",
		"Output format (yaml for machine-readable output)")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runStatus(cmd, manager, options)
	}

	return cmd
}

func runStatus(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *statusOptions,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	clients, err := newClusterClients(cfg)
	if err != nil {
		return err
	}

	factory := installer.NewFactory(
		clients.helm, clients.clientset, clients.dynamic, clients.apiextensions,
		runner.NewRunner(), statusProbeTimeout,
	)
	installers := factory.CreateInstallersForSpec(&cfg.Spec)

	components := v1alpha1.EnabledComponents(&cfg.Spec, nil)
	statuses := make([]componentStatus, 0, len(components))

	for _, component := range components {
		inst, ok := installers[component]
		if !ok {
			continue
		}

		status := componentStatus{Component: string(component), Healthy: true}

		verifyErr := inst.Verify(cmd.Context())
		if verifyErr != nil {
			status.Healthy = false
			status.Detail = verifyErr.Error()
		}

		status.Route = componentRoute(cmd.Context(), clients.dynamic, &cfg.Spec, component)

		statuses = append(statuses, status)
	}

	return writeStatuses(cmd.OutOrStdout(), statuses, options.output)
}

// componentRoute resolves the external route host for components that expose
// one. Components without routes return an empty string.
func componentRoute(
	ctx context.Context,
	client dynamic.Interface,
	spec *v1alpha1.Spec,
	component v1alpha1.Component,
) string {
	var namespace, name string

	switch component {
	case v1alpha1.ComponentQuay:
		namespace, name = spec.Components.Quay.Namespace, "registry-quay"
	case v1alpha1.ComponentACS:
		namespace, name = spec.Components.ACS.Namespace, "central"
	case v1alpha1.ComponentDemo:
		namespace, name = spec.Components.Demo.Namespace, "flask-app"
	default:
		return ""
	}

	host, err := k8s.RouteHost(ctx, client, namespace, name)
	if err != nil {
		return ""
	}

	return host
}

func writeStatuses(writer io.Writer, statuses []componentStatus, output string) error {
	if output == "yaml" {
		rendered, err := yaml.Marshal(statuses)
		if err != nil {
			return fmt.Errorf("failed to render status: %w", err)
		}

		_, _ = fmt.Fprint(writer, string(rendered))

		return nil
	}

	for _, status := range statuses {
		line := status.Component
		if status.Route != "" {
			line += " (" + status.Route + ")"
		}

		if status.Healthy {
			notify.Successf(writer, "%s", line)
		} else {
			notify.Errorf(writer, "%s: %s", line, status.Detail)
		}
	}

	return nil
}
