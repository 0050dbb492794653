package stack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cli/flags"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"github.com/rosa-labs/chainsail/pkg/svc/installer"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/rosa-labs/chainsail/pkg/ui/timer"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// ErrDeployFailed is returned when one or more components failed to deploy.
var ErrDeployFailed = errors.New("some components failed to deploy")

type deployOptions struct {
	skips    []string
	parallel bool
	dryRun   bool
	timeout  time.Duration
}

// NewDeployCmd creates the stack deploy command.
func NewDeployCmd() *cobra.Command {
	options := &deployOptions{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the enabled stack components in order",
		Long: "Deploy the enabled stack components in dependency order. Component " +
			"failures are collected and reported at the end; the run continues past " +
			"them. Prerequisite failures (config, kubeconfig, unreachable API " +
			"server) abort immediately.",
		SilenceUsage: true,
	}

	cmd.Flags().StringSliceVar(&options.skips, "skip", nil,
		"Components to skip (quay, acs, tpa, pipelines, mlflow, demo)")
	cmd.Flags().BoolVar(&options.parallel, "parallel", false,
		"Deploy independent components in parallel")
	cmd.Flags().BoolVar(&options.dryRun, "dry-run", false,
		"Render the deploy plan without touching the cluster")
	cmd.Flags().DurationVar(&options.timeout, "timeout", 0,
		"Per-component timeout (defaults to the configured connection timeout)")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return runDeploy(cmd, manager, options)
	}

	return cmd
}

func runDeploy(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *deployOptions,
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
	if len(components) == 0 {
		notify.Warningf(cmd.OutOrStdout(), "no components enabled, nothing to deploy")

		return nil
	}

	if options.dryRun {
		return renderDeployPlan(cmd.OutOrStdout(), cfg, components)
	}

	clients, err := newClusterClients(cfg)
	if err != nil {
		return err
	}

	err = readiness.WaitForAPIServerReady(cmd.Context(), clients.clientset, apiServerProbeTimeout)
	if err != nil {
		return fmt.Errorf("cluster is not reachable: %w", err)
	}

	timeout := options.timeout
	if timeout == 0 {
		timeout = componentTimeout(cfg)
	}

	factory := installer.NewFactory(
		clients.helm, clients.clientset, clients.dynamic, clients.apiextensions,
		runner.NewRunner(), timeout,
	)
	installers := factory.CreateInstallersForSpec(&cfg.Spec)

	collector := &failureCollector{}

	if options.parallel {
		deployParallel(cmd, components, installers, collector, outputTimer)
	} else {
		deploySequential(cmd, components, installers, collector, outputTimer)
	}

	return collector.summarize(cmd.OutOrStdout())
}

func deploySequential(
	cmd *cobra.Command,
	components []v1alpha1.Component,
	installers map[v1alpha1.Component]installer.Installer,
	collector *failureCollector,
	tmr timer.Timer,
) {
	writer := cmd.OutOrStdout()

	for _, component := range components {
		inst, ok := installers[component]
		if !ok {
			continue
		}

		if tmr != nil {
			tmr.NewStage()
		}

		notify.Activityf(writer, "deploying %s", component)

		err := inst.Install(cmd.Context())
		if err != nil {
			collector.record(component, err)
			notify.Errorf(writer, "%s failed: %v", component, err)

			continue
		}

		notify.SuccessWithTimerf(writer, tmr, "%s deployed", component)
	}
}

func deployParallel(
	cmd *cobra.Command,
	components []v1alpha1.Component,
	installers map[v1alpha1.Component]installer.Installer,
	collector *failureCollector,
	tmr timer.Timer,
) {
	tasks := make([]notify.ProgressTask, 0, len(components))

	for _, component := range components {
		inst, ok := installers[component]
		if !ok {
			continue
		}

		tasks = append(tasks, notify.ProgressTask{
			Name: string(component),
			Fn: func(ctx context.Context) error {
				err := inst.Install(ctx)
				if err != nil {
					collector.record(component, err)
				}

				return err
			},
		})
	}

	group := notify.NewProgressGroup("Deploying components", "📦", cmd.OutOrStdout(), tmr)

	// The group marks failed tasks and keeps the others running; the group
	// error repeats what the collector already recorded, so the summary is the
	// single reporting path.
	_ = group.Run(cmd.Context(), tasks...)
}

// deployPlanEntry describes one component of a dry-run plan.
type deployPlanEntry struct {
	Component string `json:"component"`
	Method    string `json:"method"`
	Namespace string `json:"namespace"`
}

func renderDeployPlan(
	writer io.Writer,
	cfg *v1alpha1.Stack,
	components []v1alpha1.Component,
) error {
	plan := make([]deployPlanEntry, 0, len(components))

	for _, component := range components {
		plan = append(plan, deployPlanEntry{
			Component: string(component),
			Method:    deployMethod(component),
			Namespace: componentNamespace(&cfg.Spec, component),
		})
	}

	rendered, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to render deploy plan: %w", err)
	}

	notify.Generatef(writer, "deploy plan (dry run):")
	_, _ = fmt.Fprint(writer, string(rendered))

	return nil
}

func deployMethod(component v1alpha1.Component) string {
	switch component {
	case v1alpha1.ComponentQuay, v1alpha1.ComponentACS, v1alpha1.ComponentPipelines:
		return "olm-operator"
	case v1alpha1.ComponentTPA, v1alpha1.ComponentMLflow:
		return "helm-chart"
	case v1alpha1.ComponentDemo:
		return "manifests"
	default:
		return "unknown"
	}
}

func componentNamespace(spec *v1alpha1.Spec, component v1alpha1.Component) string {
	switch component {
	case v1alpha1.ComponentQuay:
		return spec.Components.Quay.Namespace
	case v1alpha1.ComponentACS:
		return spec.Components.ACS.Namespace
	case v1alpha1.ComponentTPA:
		return spec.Components.TPA.Namespace
	case v1alpha1.ComponentPipelines:
		return v1alpha1.PipelinesNamespace
	case v1alpha1.ComponentMLflow:
		return spec.Components.MLflow.Namespace
	case v1alpha1.ComponentDemo:
		return spec.Components.Demo.Namespace
	default:
		return ""
	}
}

// failureCollector aggregates component failures across a deploy run.
type failureCollector struct {
	mu       sync.Mutex
	failures []componentFailure
}

type componentFailure struct {
	component v1alpha1.Component
	err       error
}

func (c *failureCollector) record(component v1alpha1.Component, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = append(c.failures, componentFailure{component: component, err: err})
}

// summarize reports collected failures and returns ErrDeployFailed when any
// component failed.
func (c *failureCollector) summarize(writer io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.failures) == 0 {
		return nil
	}

	names := make([]string, 0, len(c.failures))
	for _, failure := range c.failures {
		names = append(names, string(failure.component))
		notify.Errorf(writer, "%s: %v", failure.component, failure.err)
	}

	return fmt.Errorf("%w: %s", ErrDeployFailed, strings.Join(names, ", "))
}
