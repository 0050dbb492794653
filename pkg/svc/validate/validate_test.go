package validate_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rosa-labs/chainsail/pkg/svc/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestRouteCheckPasses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer server.Close()

	suite := validate.NewSuite(false)
	suite.AddRouteCheck("demo-app", server.URL, "healthy")

	summary := suite.Run(context.Background())

	require.NoError(t, summary.Error())
	assert.Empty(t, summary.Failed())
}

func TestRouteCheckFailsOnStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	suite := validate.NewSuite(false)
	suite.AddRouteCheck("quay", server.URL, "")

	summary := suite.Run(context.Background())

	require.ErrorIs(t, summary.Error(), validate.ErrValidationFailed)
	assert.Equal(t, []string{"quay"}, summary.Failed())
}

func TestRouteCheckFailsOnMissingSubstring(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("maintenance page"))
	}))
	defer server.Close()

	suite := validate.NewSuite(false)
	suite.AddRouteCheck("mlflow", server.URL, "MLflow")

	summary := suite.Run(context.Background())

	require.Len(t, summary.Results, 1)
	require.ErrorIs(t, summary.Results[0].Err, validate.ErrUnexpectedResponse)
}

func TestRunCollectsAllFailures(t *testing.T) {
	t.Parallel()

	suite := validate.NewSuite(false)
	suite.Add("first", func(_ context.Context) error { return errors.New("boom") })
	suite.Add("second", func(_ context.Context) error { return nil })
	suite.Add("third", func(_ context.Context) error { return errors.New("boom") })

	summary := suite.Run(context.Background())

	assert.Len(t, summary.Results, 3)
	assert.Equal(t, []string{"first", "third"}, summary.Failed())
	require.Error(t, summary.Error())
	assert.Contains(t, summary.Error().Error(), "first, third")
}

func TestDeploymentCheck(t *testing.T) {
	t.Parallel()

	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "central", Namespace: "stackrox"},
		Status: appsv1.DeploymentStatus{
			Replicas:          1,
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
		},
	}
	clientset := fake.NewSimpleClientset(deployment)

	suite := validate.NewSuite(false)
	suite.AddDeploymentCheck("acs", clientset, "stackrox", "central", time.Second)
	suite.AddDeploymentCheck("missing", clientset, "stackrox", "absent", 20*time.Millisecond)

	summary := suite.Run(context.Background())

	assert.Equal(t, []string{"missing"}, summary.Failed())
}
