// Package runner executes supply chain tooling (cosign, syft, roxctl, podman)
// as external processes with context-aware cancellation.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrToolNotFound is returned when a required binary is not on PATH.
var ErrToolNotFound = errors.New("required tool not found on PATH")

// Command describes a single external tool invocation.
type Command struct {
	// Tool is the binary name (e.g., "cosign", "syft", "roxctl", "podman").
	Tool string
	// Args are the command line arguments.
	Args []string
	// Stdin is optional input piped to the process. Credentials are always
	// passed through stdin, never as arguments.
	Stdin io.Reader
	// Env is appended to the inherited environment.
	Env []string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

// Result captures the output of a completed tool invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes external tools.
type Runner interface {
	// Run executes the command and returns its output. A non-zero exit
	// status is returned as an error wrapping the stderr tail.
	Run(ctx context.Context, cmd Command) (Result, error)

	// LookPath reports whether the tool is available on PATH.
	LookPath(tool string) error
}

// execRunner is the default Runner backed by os/exec.
type execRunner struct{}

// NewRunner creates the default process-based runner.
func NewRunner() Runner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	execCmd := exec.CommandContext(ctx, cmd.Tool, cmd.Args...)
	execCmd.Stdin = cmd.Stdin
	execCmd.Dir = cmd.Dir

	if len(cmd.Env) > 0 {
		execCmd.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer

	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	runErr := execCmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runErr != nil {
		return result, fmt.Errorf(
			"%s %s: %w: %s",
			cmd.Tool,
			strings.Join(cmd.Args, " "),
			runErr,
			lastLines(result.Stderr, errorTailLines),
		)
	}

	return result, nil
}

func (r *execRunner) LookPath(tool string) error {
	_, err := exec.LookPath(tool)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrToolNotFound, tool)
	}

	return nil
}

// errorTailLines bounds how much stderr is folded into error messages.
const errorTailLines = 5

// lastLines returns the trailing lines of output for error context.
func lastLines(output string, count int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "(no output)"
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) > count {
		lines = lines[len(lines)-count:]
	}

	return strings.Join(lines, "\n")
}

// RequireTools checks that every named binary is on PATH, aggregating all
// missing tools into one error so the user fixes them in one pass.
func RequireTools(runner Runner, tools ...string) error {
	var missing []string

	for _, tool := range tools {
		if err := runner.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrToolNotFound, strings.Join(missing, ", "))
	}

	return nil
}
