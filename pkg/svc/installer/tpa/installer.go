// Package tpainstaller deploys the Trusted Profile Analyzer via Helm.
package tpainstaller

import (
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/helm"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"github.com/rosa-labs/chainsail/pkg/svc/installer/internal/helmutil"
	"k8s.io/client-go/kubernetes"
)

const (
	tpaRepoName  = "trustification"
	tpaRelease   = "tpa"
	tpaChartName = "trustification/trust"
)

// TPAInstaller installs or upgrades the Trusted Profile Analyzer chart.
type TPAInstaller struct {
	*helmutil.Base
}

// NewTPAInstaller creates a new Trusted Profile Analyzer installer instance.
func NewTPAInstaller(
	client helm.Interface,
	clientset kubernetes.Interface,
	spec v1alpha1.TPASpec,
	timeout time.Duration,
) *TPAInstaller {
	repo := helm.RepoConfig{Name: tpaRepoName, URL: spec.ChartRepo}

	chart := helm.ChartConfig{
		ReleaseName:     tpaRelease,
		ChartName:       tpaChartName,
		Namespace:       spec.Namespace,
		Version:         spec.ChartVersion,
		RepoURL:         spec.ChartRepo,
		CreateNamespace: true,
	}

	checks := []readiness.Check{
		{Type: "deployment", Namespace: spec.Namespace, Name: "tpa-server"},
	}

	return &TPAInstaller{
		Base: helmutil.NewBase("tpa", client, clientset, timeout, repo, chart, checks),
	}
}
