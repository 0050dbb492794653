package readiness

import (
	"context"
	"time"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	apiextensionsclientset "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// WaitForCRDEstablished polls until the named CustomResourceDefinition has
// condition Established=True. Operators register their CRDs asynchronously
// after the CSV succeeds, so custom resources must not be applied before the
// definition is established.
func WaitForCRDEstablished(
	ctx context.Context,
	client apiextensionsclientset.Interface,
	name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		crd, err := client.ApiextensionsV1().CustomResourceDefinitions().
			Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return isCRDEstablished(crd), nil
	})
}

// isCRDEstablished returns true if the CRD has condition Established=True.
func isCRDEstablished(crd *apiextensionsv1.CustomResourceDefinition) bool {
	for _, cond := range crd.Status.Conditions {
		if cond.Type == apiextensionsv1.Established {
			return cond.Status == apiextensionsv1.ConditionTrue
		}
	}

	return false
}
