package runner

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
)

// MockCall records a single invocation seen by the mock.
type MockCall struct {
	Tool  string
	Args  []string
	Stdin string
}

// MockResponse scripts the mock's reply for a matching invocation.
type MockResponse struct {
	Result Result
	Err    error
}

// MockRunner is a scriptable Runner for tests. Responses are matched by tool
// name and consumed in order; unmatched calls return an empty result.
type MockRunner struct {
	mu           sync.Mutex
	calls        []MockCall
	responses    map[string][]MockResponse
	MissingTools []string
}

var _ Runner = (*MockRunner)(nil)

// NewMockRunner creates an empty mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{responses: make(map[string][]MockResponse)}
}

// Script appends a response for the next invocation of the given tool.
func (m *MockRunner) Script(tool string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[tool] = append(m.responses[tool], response)
}

// Run records the call and replays the next scripted response for the tool.
func (m *MockRunner) Run(_ context.Context, cmd Command) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := MockCall{Tool: cmd.Tool, Args: slices.Clone(cmd.Args)}

	if cmd.Stdin != nil {
		data, _ := io.ReadAll(cmd.Stdin)
		call.Stdin = string(data)
	}

	m.calls = append(m.calls, call)

	queued := m.responses[cmd.Tool]
	if len(queued) == 0 {
		return Result{}, nil
	}

	response := queued[0]
	m.responses[cmd.Tool] = queued[1:]

	return response.Result, response.Err
}

// LookPath reports tools listed in MissingTools as absent.
func (m *MockRunner) LookPath(tool string) error {
	if slices.Contains(m.MissingTools, tool) {
		return ErrToolNotFound
	}

	return nil
}

// Calls returns all recorded invocations.
func (m *MockRunner) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.calls)
}

// CallsFor returns recorded invocations of the given tool.
func (m *MockRunner) CallsFor(tool string) []MockCall {
	var matched []MockCall

	for _, call := range m.Calls() {
		if call.Tool == tool {
			matched = append(matched, call)
		}
	}

	return matched
}

// CommandLine renders a recorded call for assertion convenience.
func (c MockCall) CommandLine() string {
	return strings.Join(append([]string{c.Tool}, c.Args...), " ")
}
