// Package helmutil provides standard Helm chart lifecycle management for
// repository-based installers.
package helmutil

import (
	"context"
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/client/helm"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"k8s.io/client-go/kubernetes"
)

// Base manages a single chart from a named Helm repository. It implements the
// installer.Installer Install and Uninstall methods; embedding types supply
// Verify with component-specific readiness checks.
type Base struct {
	name      string
	client    helm.Interface
	clientset kubernetes.Interface
	timeout   time.Duration
	repo      helm.RepoConfig
	chart     helm.ChartConfig
	checks    []readiness.Check
}

// NewBase creates a new Base with the given configuration. The name parameter
// is used in error messages to identify the component (e.g. "tpa", "mlflow").
// The readiness checks back the Verify method.
func NewBase(
	name string,
	client helm.Interface,
	clientset kubernetes.Interface,
	timeout time.Duration,
	repo helm.RepoConfig,
	chart helm.ChartConfig,
	checks []readiness.Check,
) *Base {
	return &Base{
		name:      name,
		client:    client,
		clientset: clientset,
		timeout:   timeout,
		repo:      repo,
		chart:     chart,
		checks:    checks,
	}
}

// Name identifies the component in progress output and summaries.
func (b *Base) Name() string {
	return b.name
}

// Install registers the Helm repository and installs or upgrades the chart
// with retry on transient network errors.
func (b *Base) Install(ctx context.Context) error {
	return helm.InstallOrUpgradeChart(ctx, b.client, b.repo, b.chart, b.timeout)
}

// Uninstall removes the Helm release.
func (b *Base) Uninstall(ctx context.Context) error {
	err := b.client.UninstallRelease(ctx, b.chart.ReleaseName, b.chart.Namespace)
	if err != nil {
		return fmt.Errorf("failed to uninstall %s release: %w", b.name, err)
	}

	return nil
}

// Verify waits for the component's workloads to report ready.
func (b *Base) Verify(ctx context.Context) error {
	if len(b.checks) == 0 {
		return nil
	}

	err := readiness.WaitForMultipleResources(ctx, b.clientset, b.checks, b.timeout)
	if err != nil {
		return fmt.Errorf("%s is not healthy: %w", b.name, err)
	}

	return nil
}
