package tpainstaller_test

import (
	"context"
	"testing"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/helm"
	tpainstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/tpa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"
)

type fakeHelmClient struct {
	addedRepos   []helm.RepositoryEntry
	installSpecs []helm.ChartSpec
	uninstalled  []string
	addRepoErr   error
	installErr   error
	uninstallErr error
}

func (c *fakeHelmClient) InstallChart(
	_ context.Context, spec *helm.ChartSpec,
) (*helm.ReleaseInfo, error) {
	c.installSpecs = append(c.installSpecs, *spec)

	return &helm.ReleaseInfo{Name: spec.ReleaseName}, c.installErr
}

func (c *fakeHelmClient) InstallOrUpgradeChart(
	_ context.Context, spec *helm.ChartSpec,
) (*helm.ReleaseInfo, error) {
	c.installSpecs = append(c.installSpecs, *spec)

	if c.installErr != nil {
		return nil, c.installErr
	}

	return &helm.ReleaseInfo{Name: spec.ReleaseName}, nil
}

func (c *fakeHelmClient) UninstallRelease(_ context.Context, releaseName, _ string) error {
	c.uninstalled = append(c.uninstalled, releaseName)

	return c.uninstallErr
}

func (c *fakeHelmClient) AddRepository(_ context.Context, entry *helm.RepositoryEntry) error {
	c.addedRepos = append(c.addedRepos, *entry)

	return c.addRepoErr
}

func tpaSpec() v1alpha1.TPASpec {
	return v1alpha1.TPASpec{
		Namespace: v1alpha1.DefaultTPANamespace,
		ChartRepo: v1alpha1.DefaultTPAChartRepo,
	}
}

func TestInstallRegistersRepoAndChart(t *testing.T) {
	t.Parallel()

	client := &fakeHelmClient{}
	installer := tpainstaller.NewTPAInstaller(client, fake.NewSimpleClientset(), tpaSpec(), 2*time.Minute)

	err := installer.Install(context.Background())

	require.NoError(t, err)
	require.Len(t, client.addedRepos, 1)
	assert.Equal(t, "trustification", client.addedRepos[0].Name)
	assert.Equal(t, v1alpha1.DefaultTPAChartRepo, client.addedRepos[0].URL)

	require.Len(t, client.installSpecs, 1)
	spec := client.installSpecs[0]
	assert.Equal(t, "tpa", spec.ReleaseName)
	assert.Equal(t, "trustification/trust", spec.ChartName)
	assert.Equal(t, v1alpha1.DefaultTPANamespace, spec.Namespace)
	assert.True(t, spec.CreateNamespace)
	assert.True(t, spec.Wait)
	assert.True(t, spec.WaitForJobs)
	assert.True(t, spec.UpgradeCRDs)
	assert.Equal(t, 2*time.Minute, spec.Timeout)
}

func TestInstallRepoError(t *testing.T) {
	t.Parallel()

	client := &fakeHelmClient{addRepoErr: assert.AnError}
	installer := tpainstaller.NewTPAInstaller(client, fake.NewSimpleClientset(), tpaSpec(), time.Minute)

	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add trustification repository")
	assert.Empty(t, client.installSpecs)
}

func TestUninstallRemovesRelease(t *testing.T) {
	t.Parallel()

	client := &fakeHelmClient{}
	installer := tpainstaller.NewTPAInstaller(client, fake.NewSimpleClientset(), tpaSpec(), time.Minute)

	err := installer.Uninstall(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"tpa"}, client.uninstalled)
}

func TestUninstallError(t *testing.T) {
	t.Parallel()

	client := &fakeHelmClient{uninstallErr: assert.AnError}
	installer := tpainstaller.NewTPAInstaller(client, fake.NewSimpleClientset(), tpaSpec(), time.Minute)

	err := installer.Uninstall(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to uninstall tpa release")
}
