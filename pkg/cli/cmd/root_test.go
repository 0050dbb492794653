package cmd_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/cli/cmd"
	"github.com/rosa-labs/chainsail/pkg/cli/flags"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRootTest = errors.New("boom")

func TestNewRootCmdVersionFormatting(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("1.2.3", "abc123", "2026-08-31")

	assert.Equal(t, "1.2.3 (Built on 2026-08-31 from Git SHA abc123)", root.Version)
}

func TestNewRootCmdHasSubcommands(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("", "", "")

	names := make([]string, 0, len(root.Commands()))
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}

	assert.Subset(t, names, []string{"stack", "registry", "image"})
}

func TestNewRootCmdTimingFlagDefaultsFalse(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("", "", "")

	timing, err := root.PersistentFlags().GetBool(flags.TimingFlagName)
	require.NoError(t, err)
	assert.False(t, timing)
}

func TestExecuteShowsHelpWithoutArgs(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	root := cmd.NewRootCmd("", "", "")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(nil)

	require.NoError(t, cmd.Execute(root))
	assert.Contains(t, out.String(), "chainsail")
	assert.Contains(t, out.String(), "stack")
}

func TestExecuteWrapsSubcommandError(t *testing.T) {
	t.Parallel()

	failing := &cobra.Command{
		Use:          "fail",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return errRootTest
		},
	}

	root := cmd.NewRootCmd("", "", "")
	root.AddCommand(failing)
	root.SetArgs([]string{"fail"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := cmd.Execute(root)

	require.ErrorIs(t, err, errRootTest)
	assert.Contains(t, err.Error(), "command execution failed")
}

func TestExecuteUnknownCommandFails(t *testing.T) {
	t.Parallel()

	root := cmd.NewRootCmd("", "", "")
	root.SetArgs([]string{"nonexistent"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	require.Error(t, cmd.Execute(root))
}
