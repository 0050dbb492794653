// Package validate runs post-deploy health checks across the stack. Checks
// are non-fatal: every check runs and failures are aggregated into a summary.
package validate

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	"k8s.io/client-go/kubernetes"
)

// ErrValidationFailed is returned by Summary.Error when any check failed.
var ErrValidationFailed = errors.New("validation failed")

// ErrUnexpectedResponse is returned when a route answers but not as expected.
var ErrUnexpectedResponse = errors.New("unexpected response")

// DefaultHTTPTimeout bounds each route probe.
const DefaultHTTPTimeout = 30 * time.Second

// CheckFunc performs a single health check.
type CheckFunc func(ctx context.Context) error

// Check is a named health check.
type Check struct {
	Name string
	Run  CheckFunc
}

// Result records the outcome of one check.
type Result struct {
	Name string
	Err  error
}

// Summary aggregates the outcomes of a validation run.
type Summary struct {
	Results []Result
}

// Failed returns the names of all failed checks.
func (s Summary) Failed() []string {
	var failed []string

	for _, result := range s.Results {
		if result.Err != nil {
			failed = append(failed, result.Name)
		}
	}

	return failed
}

// Error returns nil when all checks passed, or ErrValidationFailed naming the
// failed checks.
func (s Summary) Error() error {
	failed := s.Failed()
	if len(failed) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(failed, ", "))
}

// Suite collects checks and runs them sequentially.
type Suite struct {
	checks     []Check
	httpClient *http.Client
}

// NewSuite creates an empty validation suite. When insecure is set, route
// probes accept the self-signed certificates OpenShift routers serve by
// default.
func NewSuite(insecure bool) *Suite {
	transport := &http.Transport{}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // self-signed router certs
	}

	return &Suite{
		httpClient: &http.Client{
			Timeout:   DefaultHTTPTimeout,
			Transport: transport,
		},
	}
}

// Add appends a named check to the suite.
func (s *Suite) Add(name string, check CheckFunc) {
	s.checks = append(s.checks, Check{Name: name, Run: check})
}

// AddRouteCheck probes the URL and requires a non-error status. When
// expectSubstring is non-empty the response body must contain it.
func (s *Suite) AddRouteCheck(name, url, expectSubstring string) {
	s.Add(name, func(ctx context.Context) error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request for %s: %w", url, err)
		}

		response, err := s.httpClient.Do(request)
		if err != nil {
			return fmt.Errorf("probe %s: %w", url, err)
		}
		defer func() { _ = response.Body.Close() }()

		if response.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%w: %s returned %s", ErrUnexpectedResponse, url, response.Status)
		}

		if expectSubstring == "" {
			return nil
		}

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return fmt.Errorf("read response from %s: %w", url, err)
		}

		if !strings.Contains(string(body), expectSubstring) {
			return fmt.Errorf("%w: %s response missing %q", ErrUnexpectedResponse, url, expectSubstring)
		}

		return nil
	})
}

// AddDeploymentCheck requires the deployment to be ready within the timeout.
func (s *Suite) AddDeploymentCheck(
	name string,
	clientset kubernetes.Interface,
	namespace, deployment string,
	timeout time.Duration,
) {
	s.Add(name, func(ctx context.Context) error {
		return readiness.WaitForDeploymentReady(ctx, clientset, namespace, deployment, timeout)
	})
}

// Run executes every check, collecting failures instead of stopping at the
// first one.
func (s *Suite) Run(ctx context.Context) Summary {
	summary := Summary{Results: make([]Result, 0, len(s.checks))}

	for _, check := range s.checks {
		summary.Results = append(summary.Results, Result{
			Name: check.Name,
			Err:  check.Run(ctx),
		})
	}

	return summary
}
