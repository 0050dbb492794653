package runner_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCapturesStdout(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewRunner()

	result, err := execRunner.Run(context.Background(), runner.Command{
		Tool: "sh",
		Args: []string{"-c", "echo hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.Stdout)
}

func TestRunPipesStdin(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewRunner()

	result, err := execRunner.Run(context.Background(), runner.Command{
		Tool:  "cat",
		Stdin: strings.NewReader("token-from-stdin"),
	})

	require.NoError(t, err)
	assert.Equal(t, "token-from-stdin", result.Stdout)
}

func TestRunWrapsNonZeroExitWithStderr(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewRunner()

	_, err := execRunner.Run(context.Background(), runner.Command{
		Tool: "sh",
		Args: []string{"-c", "echo boom >&2; exit 3"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	execRunner := runner.NewRunner()

	_, err := execRunner.Run(ctx, runner.Command{
		Tool: "sleep",
		Args: []string{"10"},
	})

	require.Error(t, err)
}

func TestLookPathMissingTool(t *testing.T) {
	t.Parallel()

	execRunner := runner.NewRunner()

	err := execRunner.LookPath("definitely-not-a-real-binary-name")

	require.ErrorIs(t, err, runner.ErrToolNotFound)
}

func TestRequireToolsAggregatesMissing(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	mock.MissingTools = []string{"cosign", "roxctl"}

	err := runner.RequireTools(mock, "cosign", "syft", "roxctl")

	require.ErrorIs(t, err, runner.ErrToolNotFound)
	assert.Contains(t, err.Error(), "cosign, roxctl")
}

func TestMockRunnerReplaysScriptedResponses(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	mock.Script("cosign", runner.MockResponse{Result: runner.Result{Stdout: "signed"}})

	result, err := mock.Run(context.Background(), runner.Command{
		Tool:  "cosign",
		Args:  []string{"sign", "--key", "cosign.key", "quay.example.com/secure-demo/flask-app:latest"},
		Stdin: strings.NewReader("y"),
	})

	require.NoError(t, err)
	assert.Equal(t, "signed", result.Stdout)

	calls := mock.CallsFor("cosign")
	require.Len(t, calls, 1)
	assert.Equal(t, "y", calls[0].Stdin)
	assert.Contains(t, calls[0].CommandLine(), "cosign sign")
}
