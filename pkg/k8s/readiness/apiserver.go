package readiness

import (
	"context"
	"time"

	"k8s.io/client-go/kubernetes"
)

// WaitForAPIServerReady waits for the Kubernetes API server to respond.
//
// This polls the API server by performing a ServerVersion request until it
// responds without errors. It is used as a prerequisite check before any
// component deployment starts, so an unreachable cluster aborts the run
// immediately instead of failing one component at a time.
func WaitForAPIServerReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(_ context.Context) (bool, error) {
		// Use ServerVersion as a lightweight health check
		_, err := clientset.Discovery().ServerVersion()
		if err != nil {
			// Continue polling on any error - the API server is not ready yet
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return true, nil
	})
}
