package installer_test

import (
	"testing"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/svc/installer"
	"github.com/stretchr/testify/assert"
	apiextensionsfake "k8s.io/apiextensions-apiserver/pkg/client/clientset/clientset/fake"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
)

func newTestFactory(t *testing.T) *installer.Factory {
	t.Helper()

	return installer.NewFactory(
		nil,
		fake.NewSimpleClientset(),
		dynamicfake.NewSimpleDynamicClient(runtime.NewScheme()),
		apiextensionsfake.NewSimpleClientset(),
		runner.NewMockRunner(),
		5*time.Minute,
	)
}

func TestCreateInstallersForSpecDefault(t *testing.T) {
	t.Parallel()

	factory := newTestFactory(t)
	spec := v1alpha1.NewStackSpec()

	installers := factory.CreateInstallersForSpec(&spec)

	assert.Len(t, installers, len(v1alpha1.ValidComponents()))

	for _, component := range v1alpha1.ValidComponents() {
		assert.Contains(t, installers, component)
	}
}

func TestCreateInstallersForSpecSkipsDisabled(t *testing.T) {
	t.Parallel()

	factory := newTestFactory(t)
	spec := v1alpha1.NewStackSpec()
	spec.Components.MLflow.Toggle = v1alpha1.ComponentToggleDisabled
	spec.Components.Demo.Toggle = v1alpha1.ComponentToggleDisabled

	installers := factory.CreateInstallersForSpec(&spec)

	assert.NotContains(t, installers, v1alpha1.ComponentMLflow)
	assert.NotContains(t, installers, v1alpha1.ComponentDemo)
	assert.Contains(t, installers, v1alpha1.ComponentQuay)
	assert.Contains(t, installers, v1alpha1.ComponentACS)
	assert.Contains(t, installers, v1alpha1.ComponentTPA)
	assert.Contains(t, installers, v1alpha1.ComponentPipelines)
}
