package stack

import (
	"bytes"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/svc/installer"
	"github.com/rosa-labs/chainsail/pkg/ui/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestroySummaryEmpty(t *testing.T) {
	t.Parallel()

	require.NoError(t, destroySummary(nil))
}

func TestDestroySummaryNamesFailures(t *testing.T) {
	t.Parallel()

	err := destroySummary([]string{"acs", "quay"})

	require.ErrorIs(t, err, ErrDestroyFailed)
	assert.Contains(t, err.Error(), "acs, quay")
}

func TestUninstallComponentsContinuesPastFailures(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	recorder := &callRecorder{}

	installers := map[v1alpha1.Component]installer.Installer{
		v1alpha1.ComponentDemo: &fakeInstaller{name: "demo", uninstallErr: errInstall, recorder: recorder},
		v1alpha1.ComponentQuay: &fakeInstaller{name: "quay", recorder: recorder},
	}

	components := []v1alpha1.Component{v1alpha1.ComponentDemo, v1alpha1.ComponentQuay}

	tmr := timer.New()
	tmr.Start()

	err := uninstallComponents(newTestCmd(&out), components, installers, tmr)

	require.ErrorIs(t, err, ErrDestroyFailed)
	assert.Equal(t, []string{"uninstall demo", "uninstall quay"}, recorder.all())
	assert.Contains(t, err.Error(), "demo")
	assert.NotContains(t, err.Error(), "quay")
}

func TestUninstallComponentsOmitsTimingWithoutTimer(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	recorder := &callRecorder{}

	installers := map[v1alpha1.Component]installer.Installer{
		v1alpha1.ComponentQuay: &fakeInstaller{name: "quay", recorder: recorder},
	}

	err := uninstallComponents(
		newTestCmd(&out),
		[]v1alpha1.Component{v1alpha1.ComponentQuay},
		installers,
		nil,
	)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "quay uninstalled")
	assert.NotContains(t, out.String(), "⏲")
}

func TestUninstallComponentsSkipsMissingInstallers(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	recorder := &callRecorder{}

	installers := map[v1alpha1.Component]installer.Installer{
		v1alpha1.ComponentQuay: &fakeInstaller{name: "quay", recorder: recorder},
	}

	components := []v1alpha1.Component{v1alpha1.ComponentDemo, v1alpha1.ComponentQuay}

	tmr := timer.New()
	tmr.Start()

	err := uninstallComponents(newTestCmd(&out), components, installers, tmr)

	require.NoError(t, err)
	assert.Equal(t, []string{"uninstall quay"}, recorder.all())
}
