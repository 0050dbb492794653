// Package sbom generates software bills of materials with syft and attaches
// them to images with cosign.
package sbom

import (
	"context"
	"fmt"
	"strings"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
)

// Generator produces and publishes SBOMs for container images.
type Generator struct {
	runner runner.Runner
	format v1alpha1.SBOMFormat
}

// NewGenerator creates a generator for the given SBOM format. An empty format
// defaults to SPDX JSON.
func NewGenerator(run runner.Runner, format v1alpha1.SBOMFormat) *Generator {
	if format == "" {
		format = v1alpha1.SBOMFormatSPDXJSON
	}

	return &Generator{runner: run, format: format}
}

// Generate scans the image with syft and writes the SBOM to outputPath.
func (g *Generator) Generate(ctx context.Context, imageRef, outputPath string) error {
	_, err := g.runner.Run(ctx, runner.Command{
		Tool: "syft",
		Args: []string{imageRef, "-o", fmt.Sprintf("%s=%s", g.format, outputPath)},
	})
	if err != nil {
		return fmt.Errorf("failed to generate sbom for %s: %w", imageRef, err)
	}

	return nil
}

// Attach pushes the SBOM to the registry alongside the image.
func (g *Generator) Attach(ctx context.Context, imageRef, sbomPath string) error {
	_, err := g.runner.Run(ctx, runner.Command{
		Tool: "cosign",
		Args: []string{"attach", "sbom", "--sbom", sbomPath, "--type", g.attachType(), imageRef},
	})
	if err != nil {
		return fmt.Errorf("failed to attach sbom to %s: %w", imageRef, err)
	}

	return nil
}

// Download fetches the SBOM previously attached to the image.
func (g *Generator) Download(ctx context.Context, imageRef string) (string, error) {
	result, err := g.runner.Run(ctx, runner.Command{
		Tool: "cosign",
		Args: []string{"download", "sbom", imageRef},
	})
	if err != nil {
		return "", fmt.Errorf("failed to download sbom for %s: %w", imageRef, err)
	}

	return result.Stdout, nil
}

// attachType maps the SBOM format to cosign's --type value.
func (g *Generator) attachType() string {
	return strings.TrimSuffix(string(g.format), "-json")
}
