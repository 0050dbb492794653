// Package acsinstaller deploys Advanced Cluster Security via its operator.
package acsinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/client/olm"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"github.com/rosa-labs/chainsail/pkg/svc/installer/internal/olmutil"
	"github.com/rosa-labs/chainsail/pkg/svc/scanner"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

const (
	centralName         = "stackrox-central-services"
	centralDeployment   = "central"
	scannerDeployment   = "scanner"
	centralRouteName    = "central"
	centralCRDName      = "centrals.platform.stackrox.io"
	adminSecretName     = "central-htpasswd"
	adminSecretKey      = "password"
	securedClusterName  = "production"
	centralEndpointPort = 443
)

// CentralGVR identifies the Central custom resource.
var CentralGVR = schema.GroupVersionResource{
	Group:    "platform.stackrox.io",
	Version:  "v1alpha1",
	Resource: "centrals",
}

// SecuredClusterGVR identifies the SecuredCluster custom resource.
var SecuredClusterGVR = schema.GroupVersionResource{
	Group:    "platform.stackrox.io",
	Version:  "v1alpha1",
	Resource: "securedclusters",
}

// ACSInstaller deploys the RHACS operator and a Central instance.
type ACSInstaller struct {
	*olmutil.Base

	apiextensionsClient apiextensionsclientset.Interface
	runner              runner.Runner
	spec                v1alpha1.ACSSpec
}

// NewACSInstaller creates a new Advanced Cluster Security installer instance.
// The runner drives roxctl for init bundle generation once Central is up.
func NewACSInstaller(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	apiextensionsClient apiextensionsclientset.Interface,
	run runner.Runner,
	spec v1alpha1.ACSSpec,
	timeout time.Duration,
) *ACSInstaller {
	subscription := olm.Subscription{
		Name:                   "rhacs-operator",
		Namespace:              spec.Namespace,
		Package:                "rhacs-operator",
		Channel:                spec.Channel,
		CatalogSource:          "redhat-operators",
		CatalogSourceNamespace: "openshift-marketplace",
	}

	return &ACSInstaller{
		Base:                olmutil.NewBase("acs", clientset, dynamicClient, subscription, timeout),
		apiextensionsClient: apiextensionsClient,
		runner:              run,
		spec:                spec,
	}
}

// Install deploys the RHACS operator, applies a Central instance, waits for
// Central to serve, then generates an init bundle and applies a SecuredCluster
// so the local cluster reports into Central.
func (a *ACSInstaller) Install(ctx context.Context) error {
	err := a.Base.Install(ctx)
	if err != nil {
		return err
	}

	err = a.WaitForCRD(ctx, a.apiextensionsClient, centralCRDName)
	if err != nil {
		return err
	}

	err = a.ApplyCustomResource(ctx, CentralGVR, a.central())
	if err != nil {
		return err
	}

	err = a.verifyCentral(ctx)
	if err != nil {
		return err
	}

	err = a.ProvisionSecuredCluster(ctx)
	if err != nil {
		return err
	}

	return a.verifyScanner(ctx)
}

// ProvisionSecuredCluster generates an init bundle against Central with
// roxctl and applies its secrets together with a SecuredCluster resource. The
// bundle stays in memory and is never written to disk.
func (a *ACSInstaller) ProvisionSecuredCluster(ctx context.Context) error {
	host, err := a.CentralHost(ctx)
	if err != nil {
		return err
	}

	password, err := a.AdminPassword(ctx)
	if err != nil {
		return err
	}

	// Central serves a self-signed certificate until a custom one is wired
	// in, so TLS verification is skipped for the bundle generation call.
	scn := scanner.NewScanner(
		a.runner,
		fmt.Sprintf("%s:%d", host, centralEndpointPort),
		password,
		true,
	)

	initBundle, err := scn.GenerateInitBundle(ctx, securedClusterName)
	if err != nil {
		return err
	}

	return a.EnsureSecuredCluster(ctx, initBundle)
}

// EnsureSecuredCluster applies the init bundle secrets and a SecuredCluster
// custom resource so the local cluster reports into Central. The init bundle
// is the secret manifest stream produced by roxctl.
func (a *ACSInstaller) EnsureSecuredCluster(ctx context.Context, initBundle []byte) error {
	err := k8s.ApplySecretManifests(ctx, a.Clientset(), a.spec.Namespace, initBundle)
	if err != nil {
		return fmt.Errorf("failed to apply acs init bundle: %w", err)
	}

	err = a.ApplyCustomResource(ctx, SecuredClusterGVR, a.securedCluster())
	if err != nil {
		return err
	}

	return nil
}

// Verify checks that Central and the scanner are serving and the Central
// route is admitted.
func (a *ACSInstaller) Verify(ctx context.Context) error {
	err := a.verifyCentral(ctx)
	if err != nil {
		return err
	}

	return a.verifyScanner(ctx)
}

// verifyCentral waits for the Central deployment and its route. This is the
// readiness gate before roxctl can talk to Central.
func (a *ACSInstaller) verifyCentral(ctx context.Context) error {
	err := readiness.WaitForDeploymentReady(
		ctx,
		a.Clientset(),
		a.spec.Namespace,
		centralDeployment,
		a.Timeout(),
	)
	if err != nil {
		return fmt.Errorf("acs central is not ready: %w", err)
	}

	err = readiness.WaitForRouteAdmitted(
		ctx,
		a.DynamicClient(),
		a.spec.Namespace,
		centralRouteName,
		a.Timeout(),
	)
	if err != nil {
		return fmt.Errorf("acs central route is not admitted: %w", err)
	}

	return nil
}

// verifyScanner waits for the scanner deployment the SecuredCluster brings up.
func (a *ACSInstaller) verifyScanner(ctx context.Context) error {
	err := readiness.WaitForDeploymentReady(
		ctx,
		a.Clientset(),
		a.spec.Namespace,
		scannerDeployment,
		a.Timeout(),
	)
	if err != nil {
		return fmt.Errorf("acs scanner is not ready: %w", err)
	}

	return nil
}

// CentralHost returns the external host of the Central route.
func (a *ACSInstaller) CentralHost(ctx context.Context) (string, error) {
	host, err := k8s.RouteHost(ctx, a.DynamicClient(), a.spec.Namespace, centralRouteName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve acs central host: %w", err)
	}

	return host, nil
}

// AdminPassword reads the generated admin password from the operator-created
// secret. The value is handed to roxctl over stdin and never logged.
func (a *ACSInstaller) AdminPassword(ctx context.Context) ([]byte, error) {
	password, err := k8s.SecretValue(
		ctx,
		a.Clientset(),
		a.spec.Namespace,
		adminSecretName,
		adminSecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read acs admin password: %w", err)
	}

	return password, nil
}

// securedCluster renders the SecuredCluster custom resource pointing at the
// in-cluster Central service.
func (a *ACSInstaller) securedCluster() *unstructured.Unstructured {
	endpoint := fmt.Sprintf("central.%s.svc:%d", a.spec.Namespace, centralEndpointPort)

	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "platform.stackrox.io/v1alpha1",
		"kind":       "SecuredCluster",
		"metadata": map[string]any{
			"name":      securedClusterName,
			"namespace": a.spec.Namespace,
		},
		"spec": map[string]any{
			"clusterName":     securedClusterName,
			"centralEndpoint": endpoint,
		},
	}}
}

// central renders the Central custom resource with an exposed route.
func (a *ACSInstaller) central() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "platform.stackrox.io/v1alpha1",
		"kind":       "Central",
		"metadata": map[string]any{
			"name":      centralName,
			"namespace": a.spec.Namespace,
		},
		"spec": map[string]any{
			"central": map[string]any{
				"exposure": map[string]any{
					"route": map[string]any{"enabled": true},
				},
			},
		},
	}}
}
