// Package mlflowinstaller deploys the MLflow model registry via Helm.
package mlflowinstaller

import (
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/helm"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"github.com/rosa-labs/chainsail/pkg/svc/installer/internal/helmutil"
	"k8s.io/client-go/kubernetes"
)

const (
	mlflowRepoName  = "community-charts"
	mlflowRelease   = "mlflow"
	mlflowChartName = "community-charts/mlflow"
)

// mlflowValues pins the tracking server to a persistent backend store so
// registered models survive pod restarts.
const mlflowValues = `
backendStore:
  databaseMigration: true
persistence:
  enabled: true
`

// MLflowInstaller installs or upgrades the MLflow chart.
type MLflowInstaller struct {
	*helmutil.Base
}

// NewMLflowInstaller creates a new MLflow installer instance.
func NewMLflowInstaller(
	client helm.Interface,
	clientset kubernetes.Interface,
	spec v1alpha1.MLflowSpec,
	timeout time.Duration,
) *MLflowInstaller {
	repo := helm.RepoConfig{Name: mlflowRepoName, URL: spec.ChartRepo}

	chart := helm.ChartConfig{
		ReleaseName:     mlflowRelease,
		ChartName:       mlflowChartName,
		Namespace:       spec.Namespace,
		Version:         spec.ChartVersion,
		RepoURL:         spec.ChartRepo,
		CreateNamespace: true,
		ValuesYaml:      mlflowValues,
	}

	checks := []readiness.Check{
		{Type: "deployment", Namespace: spec.Namespace, Name: "mlflow"},
	}

	return &MLflowInstaller{
		Base: helmutil.NewBase("mlflow", client, clientset, timeout, repo, chart, checks),
	}
}
