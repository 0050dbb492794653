// Package olmutil provides standard OLM operator lifecycle management for
// operator-based installers.
package olmutil

import (
	"context"
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/client/olm"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

// Base manages an operator installed through OLM. It implements the
// installer.Installer Install and Uninstall methods; embedding types layer
// custom resources and Verify on top.
type Base struct {
	name          string
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	olmClient     *olm.Client
	subscription  olm.Subscription
	timeout       time.Duration
}

// NewBase creates a new Base for the given operator subscription.
func NewBase(
	name string,
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	subscription olm.Subscription,
	timeout time.Duration,
) *Base {
	return &Base{
		name:          name,
		clientset:     clientset,
		dynamicClient: dynamicClient,
		olmClient:     olm.NewClient(dynamicClient),
		subscription:  subscription,
		timeout:       timeout,
	}
}

// Name identifies the component in progress output and summaries.
func (b *Base) Name() string {
	return b.name
}

// Namespace returns the namespace the operator is installed into.
func (b *Base) Namespace() string {
	return b.subscription.Namespace
}

// DynamicClient returns the dynamic client shared with embedding installers.
func (b *Base) DynamicClient() dynamic.Interface {
	return b.dynamicClient
}

// Clientset returns the typed client shared with embedding installers.
func (b *Base) Clientset() kubernetes.Interface {
	return b.clientset
}

// Timeout returns the per-component timeout.
func (b *Base) Timeout() time.Duration {
	return b.timeout
}

// Install ensures the target namespace exists and runs the OLM install flow,
// blocking until the operator's CSV reports Succeeded.
func (b *Base) Install(ctx context.Context) error {
	err := k8s.EnsureNamespace(ctx, b.clientset, b.subscription.Namespace, nil)
	if err != nil {
		return fmt.Errorf("failed to prepare %s namespace: %w", b.name, err)
	}

	err = b.olmClient.InstallOperator(ctx, b.subscription, b.timeout)
	if err != nil {
		return fmt.Errorf("failed to install %s operator: %w", b.name, err)
	}

	return nil
}

// Uninstall removes the subscription and its resolved CSV. The operator's
// CRDs and custom resources are left in place; OLM does not garbage collect
// them and removing them here could destroy user data.
func (b *Base) Uninstall(ctx context.Context) error {
	csvName, err := b.installedCSVName(ctx)
	if err != nil {
		return err
	}

	err = b.dynamicClient.Resource(olm.SubscriptionGVR).
		Namespace(b.subscription.Namespace).
		Delete(ctx, b.subscription.Name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete %s subscription: %w", b.name, err)
	}

	if csvName != "" {
		err = b.dynamicClient.Resource(olm.ClusterServiceVersionGVR).
			Namespace(b.subscription.Namespace).
			Delete(ctx, csvName, metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to delete %s CSV: %w", b.name, err)
		}
	}

	return nil
}

// VerifyOperator checks that the subscription still resolves to a CSV in the
// Succeeded phase.
func (b *Base) VerifyOperator(ctx context.Context) error {
	csvName, err := b.installedCSVName(ctx)
	if err != nil {
		return err
	}

	if csvName == "" {
		return fmt.Errorf("%w: %s/%s", olm.ErrSubscriptionNotResolved,
			b.subscription.Namespace, b.subscription.Name)
	}

	err = b.olmClient.WaitForCSVSucceeded(ctx, b.subscription.Namespace, csvName, b.timeout)
	if err != nil {
		return fmt.Errorf("%s operator is not healthy: %w", b.name, err)
	}

	return nil
}

// ApplyCustomResource creates the custom resource if it does not exist yet.
// Existing resources are left untouched so user modifications survive
// repeated deploys.
func (b *Base) ApplyCustomResource(
	ctx context.Context,
	gvr schema.GroupVersionResource,
	obj *unstructured.Unstructured,
) error {
	_, err := b.dynamicClient.Resource(gvr).
		Namespace(obj.GetNamespace()).
		Create(ctx, obj, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create %s %s: %w", obj.GetKind(), obj.GetName(), err)
	}

	return nil
}

// WaitForCRD blocks until the named CRD is established. Operators register
// their CRDs asynchronously after the CSV succeeds.
func (b *Base) WaitForCRD(
	ctx context.Context,
	apiextensionsClient apiextensionsclientset.Interface,
	crdName string,
) error {
	err := readiness.WaitForCRDEstablished(ctx, apiextensionsClient, crdName, b.timeout)
	if err != nil {
		return fmt.Errorf("%s CRD %q not established: %w", b.name, crdName, err)
	}

	return nil
}

func (b *Base) installedCSVName(ctx context.Context) (string, error) {
	current, err := b.dynamicClient.Resource(olm.SubscriptionGVR).
		Namespace(b.subscription.Namespace).
		Get(ctx, b.subscription.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", nil
		}

		return "", fmt.Errorf("failed to read %s subscription: %w", b.name, err)
	}

	csvName, _, err := unstructured.NestedString(current.Object, "status", "installedCSV")
	if err != nil {
		return "", fmt.Errorf("failed to read %s installedCSV: %w", b.name, err)
	}

	return csvName, nil
}
