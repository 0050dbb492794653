package sbom_test

import (
	"context"
	"testing"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/svc/sbom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsesConfiguredFormat(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	generator := sbom.NewGenerator(mock, v1alpha1.SBOMFormatCycloneDXJSON)

	err := generator.Generate(context.Background(), "registry.example.com/org/app:v1", "app.sbom.json")

	require.NoError(t, err)

	calls := mock.CallsFor("syft")
	require.Len(t, calls, 1)
	assert.Equal(
		t,
		"syft registry.example.com/org/app:v1 -o cyclonedx-json=app.sbom.json",
		calls[0].CommandLine(),
	)
}

func TestGenerateDefaultsToSPDX(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	generator := sbom.NewGenerator(mock, "")

	err := generator.Generate(context.Background(), "registry.example.com/org/app:v1", "app.sbom.json")

	require.NoError(t, err)

	calls := mock.CallsFor("syft")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].CommandLine(), "spdx-json=app.sbom.json")
}

func TestAttachMapsFormatToCosignType(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	generator := sbom.NewGenerator(mock, v1alpha1.SBOMFormatSPDXJSON)

	err := generator.Attach(context.Background(), "registry.example.com/org/app:v1", "app.sbom.json")

	require.NoError(t, err)

	calls := mock.CallsFor("cosign")
	require.Len(t, calls, 1)
	assert.Equal(
		t,
		"cosign attach sbom --sbom app.sbom.json --type spdx registry.example.com/org/app:v1",
		calls[0].CommandLine(),
	)
}

func TestDownloadReturnsStdout(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	mock.Script("cosign", runner.MockResponse{
		Result: runner.Result{Stdout: `{"spdxVersion":"SPDX-2.3"}`},
	})
	generator := sbom.NewGenerator(mock, v1alpha1.SBOMFormatSPDXJSON)

	document, err := generator.Download(context.Background(), "registry.example.com/org/app:v1")

	require.NoError(t, err)
	assert.Contains(t, document, "SPDX-2.3")
}

func TestGenerateWrapsToolFailure(t *testing.T) {
	t.Parallel()

	mock := runner.NewMockRunner()
	mock.Script("syft", runner.MockResponse{Err: assert.AnError})
	generator := sbom.NewGenerator(mock, v1alpha1.SBOMFormatSPDXJSON)

	err := generator.Generate(context.Background(), "registry.example.com/org/app:v1", "out.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate sbom")
}
