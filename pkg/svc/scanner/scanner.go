// Package scanner gates images through ACS Central with roxctl.
package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
)

// ErrSeverityThresholdExceeded is returned when a scan finds vulnerabilities
// at or above the configured severity threshold.
var ErrSeverityThresholdExceeded = errors.New("vulnerabilities at or above severity threshold")

// ErrUnknownSeverity is returned for severity names outside the ACS set.
var ErrUnknownSeverity = errors.New("unknown severity")

// Severity orders ACS vulnerability severities from least to most severe.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityModerate
	SeverityImportant
	SeverityCritical
)

// ParseSeverity maps an ACS severity name to its rank.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "LOW":
		return SeverityLow, nil
	case "MODERATE":
		return SeverityModerate, nil
	case "IMPORTANT":
		return SeverityImportant, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownSeverity, name)
	}
}

// ScanSummary aggregates vulnerability counts by severity.
type ScanSummary struct {
	Low       int
	Moderate  int
	Important int
	Critical  int
}

// CountAtOrAbove returns the number of vulnerabilities at or above the
// given severity.
func (s ScanSummary) CountAtOrAbove(threshold Severity) int {
	count := 0

	if threshold <= SeverityLow {
		count += s.Low
	}

	if threshold <= SeverityModerate {
		count += s.Moderate
	}

	if threshold <= SeverityImportant {
		count += s.Important
	}

	if threshold <= SeverityCritical {
		count += s.Critical
	}

	return count
}

// Scanner talks to ACS Central through the roxctl CLI. The admin password is
// passed through the ROX_ADMIN_PASSWORD environment variable and never appears
// in arguments or output.
type Scanner struct {
	runner   runner.Runner
	endpoint string
	password []byte
	insecure bool
}

// NewScanner creates a scanner against the given Central endpoint
// (host:port).
func NewScanner(run runner.Runner, endpoint string, password []byte, insecure bool) *Scanner {
	return &Scanner{
		runner:   run,
		endpoint: endpoint,
		password: password,
		insecure: insecure,
	}
}

// ScanImage scans the image and returns the per-severity vulnerability counts
// along with the raw JSON report.
func (s *Scanner) ScanImage(ctx context.Context, imageRef string) (ScanSummary, string, error) {
	result, err := s.runner.Run(ctx, runner.Command{
		Tool: "roxctl",
		Args: s.withConnectionFlags("image", "scan", "--image", imageRef, "--output", "json"),
		Env:  s.passwordEnv(),
	})
	if err != nil {
		return ScanSummary{}, "", fmt.Errorf("failed to scan %s: %w", imageRef, err)
	}

	summary, err := parseScanSummary(result.Stdout)
	if err != nil {
		return ScanSummary{}, result.Stdout, err
	}

	return summary, result.Stdout, nil
}

// CheckImage runs the image through Central's build-time policies. A policy
// violation surfaces as a non-zero roxctl exit and is returned as an error.
func (s *Scanner) CheckImage(ctx context.Context, imageRef string) error {
	_, err := s.runner.Run(ctx, runner.Command{
		Tool: "roxctl",
		Args: s.withConnectionFlags("image", "check", "--image", imageRef),
		Env:  s.passwordEnv(),
	})
	if err != nil {
		return fmt.Errorf("policy check failed for %s: %w", imageRef, err)
	}

	return nil
}

// GateImage scans the image and fails when vulnerabilities at or above the
// threshold are present.
func (s *Scanner) GateImage(ctx context.Context, imageRef string, threshold Severity) error {
	summary, _, err := s.ScanImage(ctx, imageRef)
	if err != nil {
		return err
	}

	count := summary.CountAtOrAbove(threshold)
	if count > 0 {
		return fmt.Errorf("%w: %d found in %s", ErrSeverityThresholdExceeded, count, imageRef)
	}

	return nil
}

// GenerateInitBundle creates a cluster init bundle and returns its secret
// manifests for the SecuredCluster installation.
func (s *Scanner) GenerateInitBundle(ctx context.Context, name string) ([]byte, error) {
	result, err := s.runner.Run(ctx, runner.Command{
		Tool: "roxctl",
		Args: s.withConnectionFlags(
			"central", "init-bundles", "generate", name, "--output-secrets", "-",
		),
		Env: s.passwordEnv(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate init bundle %s: %w", name, err)
	}

	return []byte(result.Stdout), nil
}

func (s *Scanner) withConnectionFlags(args ...string) []string {
	args = append(args, "--endpoint", s.endpoint)
	if s.insecure {
		args = append(args, "--insecure-skip-tls-verify")
	}

	return args
}

func (s *Scanner) passwordEnv() []string {
	return []string{"ROX_ADMIN_PASSWORD=" + string(s.password)}
}

// scanReport mirrors the parts of roxctl's JSON output the gate needs.
type scanReport struct {
	Result struct {
		Summary map[string]int `json:"summary"`
	} `json:"result"`
}

func parseScanSummary(raw string) (ScanSummary, error) {
	var report scanReport

	err := json.Unmarshal([]byte(raw), &report)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("failed to parse scan report: %w", err)
	}

	return ScanSummary{
		Low:       report.Result.Summary["LOW"],
		Moderate:  report.Result.Summary["MODERATE"],
		Important: report.Result.Summary["IMPORTANT"],
		Critical:  report.Result.Summary["CRITICAL"],
	}, nil
}
