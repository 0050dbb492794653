// Package olm installs operators through the Operator Lifecycle Manager.
//
// Each install creates an OperatorGroup scoped to the target namespace and a
// Subscription against a catalog source, then waits for the resulting
// ClusterServiceVersion to reach the Succeeded phase.
package olm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
)

// ErrSubscriptionNotResolved is returned when a subscription never reports
// an installed CSV within the timeout.
var ErrSubscriptionNotResolved = errors.New("subscription did not resolve to a CSV")

// GroupVersionResources for the OLM API types.
var (
	OperatorGroupGVR = schema.GroupVersionResource{
		Group:    "operators.coreos.com",
		Version:  "v1",
		Resource: "operatorgroups",
	}
	SubscriptionGVR = schema.GroupVersionResource{
		Group:    "operators.coreos.com",
		Version:  "v1alpha1",
		Resource: "subscriptions",
	}
	ClusterServiceVersionGVR = schema.GroupVersionResource{
		Group:    "operators.coreos.com",
		Version:  "v1alpha1",
		Resource: "clusterserviceversions",
	}
)

// Subscription describes an operator to install from a catalog source.
type Subscription struct {
	// Name is the subscription name, conventionally the package name.
	Name string
	// Namespace is the namespace the operator is installed into.
	Namespace string
	// Package is the package name in the catalog (e.g., "quay-operator").
	Package string
	// Channel is the update channel (e.g., "stable-3.10").
	Channel string
	// CatalogSource is the catalog to resolve from (e.g., "redhat-operators").
	CatalogSource string
	// CatalogSourceNamespace is where the catalog lives, usually "openshift-marketplace".
	CatalogSourceNamespace string
	// AllNamespaces installs the operator cluster-wide instead of scoping
	// the OperatorGroup to the target namespace.
	AllNamespaces bool
}

// Client installs operators via OLM.
type Client struct {
	dynamicClient dynamic.Interface
}

// NewClient creates an OLM client backed by the given dynamic client.
func NewClient(dynamicClient dynamic.Interface) *Client {
	return &Client{dynamicClient: dynamicClient}
}

// EnsureOperatorGroup creates an OperatorGroup for the namespace if one does
// not already exist. OLM rejects namespaces with more than one OperatorGroup,
// so any existing group is left untouched.
func (c *Client) EnsureOperatorGroup(ctx context.Context, namespace string, allNamespaces bool) error {
	existing, err := c.dynamicClient.Resource(OperatorGroupGVR).
		Namespace(namespace).
		List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list operator groups in %q: %w", namespace, err)
	}

	if len(existing.Items) > 0 {
		return nil
	}

	group := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "operators.coreos.com/v1",
		"kind":       "OperatorGroup",
		"metadata": map[string]any{
			"name":      namespace + "-group",
			"namespace": namespace,
		},
	}}

	if !allNamespaces {
		group.Object["spec"] = map[string]any{
			"targetNamespaces": []any{namespace},
		}
	}

	_, err = c.dynamicClient.Resource(OperatorGroupGVR).
		Namespace(namespace).
		Create(ctx, group, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create operator group in %q: %w", namespace, err)
	}

	return nil
}

// EnsureSubscription creates the subscription if it does not already exist.
func (c *Client) EnsureSubscription(ctx context.Context, sub Subscription) error {
	obj := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "operators.coreos.com/v1alpha1",
		"kind":       "Subscription",
		"metadata": map[string]any{
			"name":      sub.Name,
			"namespace": sub.Namespace,
		},
		"spec": map[string]any{
			"name":            sub.Package,
			"channel":         sub.Channel,
			"source":          sub.CatalogSource,
			"sourceNamespace": sub.CatalogSourceNamespace,
			"installPlanApproval": "Automatic",
		},
	}}

	_, err := c.dynamicClient.Resource(SubscriptionGVR).
		Namespace(sub.Namespace).
		Create(ctx, obj, metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create subscription %q: %w", sub.Name, err)
	}

	return nil
}

// InstalledCSV returns the name of the CSV the subscription resolved to,
// polling until the status field is populated.
func (c *Client) InstalledCSV(ctx context.Context, sub Subscription, timeout time.Duration) (string, error) {
	var csvName string

	err := readiness.PollForReadiness(ctx, timeout, func(ctx context.Context) (bool, error) {
		current, err := c.dynamicClient.Resource(SubscriptionGVR).
			Namespace(sub.Namespace).
			Get(ctx, sub.Name, metav1.GetOptions{})
		if err != nil {
			//nolint:nilerr // transient errors keep the poll going until timeout
			return false, nil
		}

		name, found, err := unstructured.NestedString(current.Object, "status", "installedCSV")
		if err != nil || !found || name == "" {
			return false, nil
		}

		csvName = name

		return true, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s", ErrSubscriptionNotResolved, sub.Namespace, sub.Name)
	}

	return csvName, nil
}

// WaitForCSVSucceeded waits for the named CSV to reach the Succeeded phase.
func (c *Client) WaitForCSVSucceeded(
	ctx context.Context,
	namespace, csvName string,
	timeout time.Duration,
) error {
	err := readiness.WaitForCustomResourcePhase(
		ctx,
		c.dynamicClient,
		ClusterServiceVersionGVR,
		namespace,
		csvName,
		"Succeeded",
		timeout,
	)
	if err != nil {
		return fmt.Errorf("CSV %q did not succeed: %w", csvName, err)
	}

	return nil
}

// InstallOperator runs the full OLM install flow for the subscription and
// blocks until the operator's CSV reports Succeeded.
func (c *Client) InstallOperator(ctx context.Context, sub Subscription, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	err := c.EnsureOperatorGroup(ctx, sub.Namespace, sub.AllNamespaces)
	if err != nil {
		return err
	}

	err = c.EnsureSubscription(ctx, sub)
	if err != nil {
		return err
	}

	csvName, err := c.InstalledCSV(ctx, sub, time.Until(deadline))
	if err != nil {
		return err
	}

	return c.WaitForCSVSucceeded(ctx, sub.Namespace, csvName, time.Until(deadline))
}

// SubscriptionCSVPrefix extracts the operator name from a CSV name such as
// "quay-operator.v3.10.0".
func SubscriptionCSVPrefix(csvName string) string {
	if idx := strings.Index(csvName, ".v"); idx > 0 {
		return csvName[:idx]
	}

	return csvName
}
