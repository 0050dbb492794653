package stack

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/svc/installer"
	"github.com/rosa-labs/chainsail/pkg/ui/timer"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInstall = errors.New("install blew up")

// callRecorder collects call descriptions across goroutines.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, call)
}

func (r *callRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}

// fakeInstaller records calls and returns canned errors.
type fakeInstaller struct {
	name         string
	installErr   error
	uninstallErr error
	recorder     *callRecorder
}

func (f *fakeInstaller) Name() string { return f.name }

func (f *fakeInstaller) Install(_ context.Context) error {
	f.recorder.add("install " + f.name)

	return f.installErr
}

func (f *fakeInstaller) Uninstall(_ context.Context) error {
	f.recorder.add("uninstall " + f.name)

	return f.uninstallErr
}

func (f *fakeInstaller) Verify(_ context.Context) error { return nil }

// defaultedSpec mirrors the namespaces the config loader fills in through
// field selectors.
func defaultedSpec() v1alpha1.Spec {
	spec := v1alpha1.NewStackSpec()
	spec.Components.Quay.Namespace = v1alpha1.DefaultQuayNamespace
	spec.Components.ACS.Namespace = v1alpha1.DefaultACSNamespace
	spec.Components.TPA.Namespace = v1alpha1.DefaultTPANamespace
	spec.Components.MLflow.Namespace = v1alpha1.DefaultMLflowNamespace
	spec.Components.Demo.Namespace = v1alpha1.DefaultDemoNamespace

	return spec
}

func newTestCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetContext(context.Background())

	return cmd
}

func TestDeployMethod(t *testing.T) {
	t.Parallel()

	cases := map[v1alpha1.Component]string{
		v1alpha1.ComponentQuay:      "olm-operator",
		v1alpha1.ComponentACS:       "olm-operator",
		v1alpha1.ComponentPipelines: "olm-operator",
		v1alpha1.ComponentTPA:       "helm-chart",
		v1alpha1.ComponentMLflow:    "helm-chart",
		v1alpha1.ComponentDemo:      "manifests",
	}

	for component, want := range cases {
		assert.Equal(t, want, deployMethod(component), "component %s", component)
	}
}

func TestComponentNamespace(t *testing.T) {
	t.Parallel()

	spec := defaultedSpec()

	assert.Equal(t, v1alpha1.DefaultQuayNamespace, componentNamespace(&spec, v1alpha1.ComponentQuay))
	assert.Equal(t, v1alpha1.PipelinesNamespace, componentNamespace(&spec, v1alpha1.ComponentPipelines))
	assert.Equal(t, v1alpha1.DefaultDemoNamespace, componentNamespace(&spec, v1alpha1.ComponentDemo))
}

func TestFailureCollectorEmptySummarizesToNil(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	collector := &failureCollector{}

	require.NoError(t, collector.summarize(&out))
	assert.Empty(t, out.String())
}

func TestFailureCollectorReportsAllFailures(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	collector := &failureCollector{}
	collector.record(v1alpha1.ComponentQuay, errInstall)
	collector.record(v1alpha1.ComponentMLflow, errInstall)

	err := collector.summarize(&out)

	require.ErrorIs(t, err, ErrDeployFailed)
	assert.Contains(t, err.Error(), "quay, mlflow")
	assert.Contains(t, out.String(), "install blew up")
}

func TestRenderDeployPlan(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cfg := &v1alpha1.Stack{Spec: defaultedSpec()}
	components := []v1alpha1.Component{v1alpha1.ComponentQuay, v1alpha1.ComponentTPA}

	require.NoError(t, renderDeployPlan(&out, cfg, components))

	rendered := out.String()
	assert.Contains(t, rendered, "component: quay")
	assert.Contains(t, rendered, "method: olm-operator")
	assert.Contains(t, rendered, "namespace: quay-registry")
	assert.Contains(t, rendered, "component: tpa")
	assert.Contains(t, rendered, "method: helm-chart")
}

func TestDeploySequentialContinuesPastFailures(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	recorder := &callRecorder{}

	installers := map[v1alpha1.Component]installer.Installer{
		v1alpha1.ComponentQuay: &fakeInstaller{name: "quay", installErr: errInstall, recorder: recorder},
		v1alpha1.ComponentACS:  &fakeInstaller{name: "acs", recorder: recorder},
	}

	collector := &failureCollector{}
	components := []v1alpha1.Component{v1alpha1.ComponentQuay, v1alpha1.ComponentACS}

	tmr := timer.New()
	tmr.Start()

	deploySequential(newTestCmd(&out), components, installers, collector, tmr)

	assert.Equal(t, []string{"install quay", "install acs"}, recorder.all())
	require.ErrorIs(t, collector.summarize(&out), ErrDeployFailed)
}

func TestDeploySequentialOmitsTimingWithoutTimer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	recorder := &callRecorder{}

	installers := map[v1alpha1.Component]installer.Installer{
		v1alpha1.ComponentQuay: &fakeInstaller{name: "quay", recorder: recorder},
	}

	deploySequential(
		newTestCmd(&out),
		[]v1alpha1.Component{v1alpha1.ComponentQuay},
		installers,
		&failureCollector{},
		nil,
	)

	assert.Contains(t, out.String(), "quay deployed")
	assert.NotContains(t, out.String(), "⏲")
}

func TestDeployParallelCollectsFailuresWithoutCancelling(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	recorder := &callRecorder{}

	installers := map[v1alpha1.Component]installer.Installer{
		v1alpha1.ComponentTPA:    &fakeInstaller{name: "tpa", installErr: errInstall, recorder: recorder},
		v1alpha1.ComponentMLflow: &fakeInstaller{name: "mlflow", recorder: recorder},
	}

	collector := &failureCollector{}
	components := []v1alpha1.Component{v1alpha1.ComponentTPA, v1alpha1.ComponentMLflow}

	deployParallel(newTestCmd(&out), components, installers, collector, nil)

	assert.Len(t, recorder.all(), 2)

	summaryErr := collector.summarize(&out)
	require.ErrorIs(t, summaryErr, ErrDeployFailed)
	assert.Contains(t, summaryErr.Error(), "tpa")
	assert.NotContains(t, summaryErr.Error(), "mlflow")
}

func TestDeployParallelReportsFailureInsteadOfSuccess(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	recorder := &callRecorder{}

	installers := map[v1alpha1.Component]installer.Installer{
		v1alpha1.ComponentTPA: &fakeInstaller{name: "tpa", installErr: errInstall, recorder: recorder},
	}

	deployParallel(
		newTestCmd(&out),
		[]v1alpha1.Component{v1alpha1.ComponentTPA},
		installers,
		&failureCollector{},
		nil,
	)

	assert.Contains(t, out.String(), "failed to deploy")
	assert.NotContains(t, out.String(), "tpa deployed")
}

func TestDeployDryRunRendersPlanWithoutCluster(t *testing.T) {
	var out bytes.Buffer

	cmd := NewDeployCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--dry-run"})

	require.NoError(t, cmd.Execute())

	rendered := out.String()
	assert.Contains(t, rendered, "deploy plan (dry run)")
	assert.Contains(t, rendered, "component: quay")
	assert.Contains(t, rendered, "component: demo")
}

func TestDeployRejectsUnknownSkip(t *testing.T) {
	var out bytes.Buffer

	cmd := NewDeployCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--dry-run", "--skip", "gitea"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gitea")
}
