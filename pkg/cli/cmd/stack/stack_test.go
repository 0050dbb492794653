package stack_test

import (
	"bytes"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/cli/cmd/stack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStackCmdHasLifecycleSubcommands(t *testing.T) {
	t.Parallel()

	cmd := stack.NewStackCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.ElementsMatch(t, []string{"deploy", "destroy", "status", "validate"}, names)
}

func TestStackCmdShowsHelpWithoutSubcommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	cmd := stack.NewStackCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "deploy")
}

func TestDeployCmdFlags(t *testing.T) {
	t.Parallel()

	cmd := stack.NewDeployCmd()

	for _, name := range []string{"skip", "parallel", "dry-run", "timeout"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "expected flag %q", name)
	}

	parallel, err := cmd.Flags().GetBool("parallel")
	require.NoError(t, err)
	assert.False(t, parallel)
}

func TestStatusCmdOutputFlag(t *testing.T) {
	t.Parallel()

	cmd := stack.NewStatusCmd()

	assert.NotNil(t, cmd.Flags().Lookup("output"))
	assert.NotNil(t, cmd.Flags().ShorthandLookup("o"))
}

func TestValidateCmdInsecureDefaultsTrue(t *testing.T) {
	t.Parallel()

	cmd := stack.NewValidateCmd()

	insecure, err := cmd.Flags().GetBool("insecure-skip-tls-verify")
	require.NoError(t, err)
	assert.True(t, insecure)
}
