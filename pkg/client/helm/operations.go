package helm

import (
	"context"
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/client/netretry"
)

const (
	// ContextTimeoutBuffer is the additional time added to the Helm timeout to
	// ensure the Go context doesn't cancel prematurely while Helm's
	// status-watcher wait is running.
	ContextTimeoutBuffer = 5 * time.Minute

	// Retry configuration for chart installation. Transient 429/5xx errors
	// occur when many parallel installs hit the same chart registries.
	chartInstallMaxRetries    = 5
	chartInstallRetryBaseWait = 3 * time.Second
	chartInstallRetryMaxWait  = 30 * time.Second
)

// RepoConfig identifies a Helm repository to register before installing.
type RepoConfig struct {
	// Name is the local repository alias (e.g., "trustification").
	Name string
	// URL is the repository index URL.
	URL string
}

// ChartConfig describes a chart release for [InstallOrUpgradeChart].
type ChartConfig struct {
	ReleaseName     string
	ChartName       string
	Namespace       string
	Version         string
	RepoURL         string
	CreateNamespace bool
	SkipWait        bool
	ValuesYaml      string
	SetValues       map[string]string
}

// InstallOrUpgradeChart registers the repository and performs a Helm install
// or upgrade operation with retry on transient network errors.
func InstallOrUpgradeChart(
	ctx context.Context,
	client Interface,
	repoConfig RepoConfig,
	chartConfig ChartConfig,
	timeout time.Duration,
) error {
	repoEntry := &RepositoryEntry{
		Name: repoConfig.Name,
		URL:  repoConfig.URL,
	}

	addRepoErr := client.AddRepository(ctx, repoEntry)
	if addRepoErr != nil {
		return fmt.Errorf("failed to add %s repository: %w", repoConfig.Name, addRepoErr)
	}

	spec := &ChartSpec{
		ReleaseName:     chartConfig.ReleaseName,
		ChartName:       chartConfig.ChartName,
		Namespace:       chartConfig.Namespace,
		Version:         chartConfig.Version,
		RepoURL:         chartConfig.RepoURL,
		CreateNamespace: chartConfig.CreateNamespace,
		UpgradeCRDs:     true,
		Timeout:         timeout,
		Wait:            !chartConfig.SkipWait,
		WaitForJobs:     !chartConfig.SkipWait,
		ValuesYaml:      chartConfig.ValuesYaml,
		SetValues:       chartConfig.SetValues,
	}

	// Keep the context deadline longer than the Helm timeout so Helm's own
	// wait gets a chance to finish and report a precise error.
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout+ContextTimeoutBuffer)
	defer cancel()

	return InstallChartWithRetry(timeoutCtx, client, spec, repoConfig.Name)
}

// InstallChartWithRetry attempts to install a chart, retrying on transient
// network errors (429 rate limits, 5xx server errors, connection resets).
func InstallChartWithRetry(
	ctx context.Context,
	client Interface,
	spec *ChartSpec,
	repoName string,
) error {
	err := netretry.Do(
		ctx,
		chartInstallMaxRetries,
		chartInstallRetryBaseWait,
		chartInstallRetryMaxWait,
		func(ctx context.Context) error {
			_, installErr := client.InstallOrUpgradeChart(ctx, spec)

			return installErr
		},
	)
	if err != nil {
		return fmt.Errorf("failed to install %s chart: %w", repoName, err)
	}

	return nil
}
