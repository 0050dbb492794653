package stack

import (
	"context"
	"fmt"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/rosa-labs/chainsail/pkg/svc/validate"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
	"k8s.io/client-go/dynamic"
)

type validateOptions struct {
	insecure bool
}

// NewValidateCmd creates the stack validate command.
func NewValidateCmd() *cobra.Command {
	options := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run post-deploy health checks across the stack",
		Long: "Probe component routes and workloads. Every check runs even when " +
			"earlier ones fail; failures are aggregated into a final summary.",
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&options.insecure, "insecure-skip-tls-verify", true,
		"Accept the self-signed certificates OpenShift routers serve by default")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runValidate(cmd, manager, options)
	}

	return cmd
}

func runValidate(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *validateOptions,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	clients, err := newClusterClients(cfg)
	if err != nil {
		return err
	}

	suite := buildValidationSuite(cmd.Context(), cfg, clients, options.insecure)

	summary := suite.Run(cmd.Context())
	writer := cmd.OutOrStdout()

	for _, result := range summary.Results {
		if result.Err != nil {
			notify.Errorf(writer, "%s: %v", result.Name, result.Err)
		} else {
			notify.Successf(writer, "%s", result.Name)
		}
	}

	err = summary.Error()
	if err != nil {
		return err
	}

	notify.Successf(writer, "all %d checks passed", len(summary.Results))

	return nil
}

// buildValidationSuite assembles route and workload checks for every enabled
// component. Route checks only register when the route host resolves; an
// unresolvable route is itself recorded as a failing check.
func buildValidationSuite(
	ctx context.Context,
	cfg *v1alpha1.Stack,
	clients *clusterClients,
	insecure bool,
) *validate.Suite {
	suite := validate.NewSuite(insecure)
	spec := &cfg.Spec

	if spec.Components.Quay.Toggle.IsEnabled() {
		addRouteOrFailure(ctx, suite, clients.dynamic,
			"quay-route", spec.Components.Quay.Namespace, "registry-quay", "", "")
	}

	if spec.Components.ACS.Toggle.IsEnabled() {
		addRouteOrFailure(ctx, suite, clients.dynamic,
			"acs-route", spec.Components.ACS.Namespace, "central", "", "")
		suite.AddDeploymentCheck("acs-central", clients.clientset,
			spec.Components.ACS.Namespace, "central", statusProbeTimeout)
	}

	if spec.Components.TPA.Toggle.IsEnabled() {
		suite.AddDeploymentCheck("tpa-server", clients.clientset,
			spec.Components.TPA.Namespace, "tpa-server", statusProbeTimeout)
	}

	if spec.Components.Pipelines.Toggle.IsEnabled() {
		suite.AddDeploymentCheck("pipelines-controller", clients.clientset,
			v1alpha1.PipelinesNamespace, "tekton-pipelines-controller", statusProbeTimeout)
	}

	if spec.Components.MLflow.Toggle.IsEnabled() {
		suite.AddDeploymentCheck("mlflow", clients.clientset,
			spec.Components.MLflow.Namespace, "mlflow", statusProbeTimeout)
	}

	if spec.Components.Demo.Toggle.IsEnabled() {
		addRouteOrFailure(ctx, suite, clients.dynamic,
			"demo-health", spec.Components.Demo.Namespace, "flask-app", "/health", "healthy")
	}

	return suite
}

func addRouteOrFailure(
	ctx context.Context,
	suite *validate.Suite,
	client dynamic.Interface,
	checkName, namespace, routeName, path, expect string,
) {
	host, err := k8s.RouteHost(ctx, client, namespace, routeName)
	if err != nil {
		suite.Add(checkName, func(_ context.Context) error {
			return fmt.Errorf("route %s/%s not resolvable: %w", namespace, routeName, err)
		})

		return
	}

	suite.AddRouteCheck(checkName, "https://"+host+path, expect)
}
