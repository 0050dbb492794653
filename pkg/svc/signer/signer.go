// Package signer signs and verifies container images with cosign.
package signer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
)

// ErrKeyPathRequired is returned when a signing operation runs without a key.
var ErrKeyPathRequired = errors.New("cosign key path is required")

// Signer wraps the cosign CLI for key-pair based signing. The key password is
// handed to cosign through COSIGN_PASSWORD and never appears in arguments or
// output.
type Signer struct {
	runner   runner.Runner
	keyPath  string
	password []byte
}

// NewSigner creates a signer using the given private key path.
func NewSigner(run runner.Runner, keyPath string, password []byte) *Signer {
	return &Signer{
		runner:   run,
		keyPath:  keyPath,
		password: password,
	}
}

// GenerateKeyPair creates cosign.key and cosign.pub in the given directory.
// Existing keys are not overwritten; cosign refuses and the error surfaces.
func (s *Signer) GenerateKeyPair(ctx context.Context, dir string) error {
	_, err := s.runner.Run(ctx, runner.Command{
		Tool: "cosign",
		Args: []string{"generate-key-pair"},
		Dir:  dir,
		Env:  s.passwordEnv(),
	})
	if err != nil {
		return fmt.Errorf("failed to generate cosign key pair: %w", err)
	}

	return nil
}

// Sign signs the image by digest and pushes the signature to the registry.
func (s *Signer) Sign(ctx context.Context, imageRef string) error {
	if s.keyPath == "" {
		return ErrKeyPathRequired
	}

	_, err := s.runner.Run(ctx, runner.Command{
		Tool: "cosign",
		Args: []string{"sign", "--key", s.keyPath, "--yes", imageRef},
		Env:  s.passwordEnv(),
	})
	if err != nil {
		return fmt.Errorf("failed to sign %s: %w", imageRef, err)
	}

	return nil
}

// Verify checks the image signature against the public key.
func (s *Signer) Verify(ctx context.Context, imageRef string) error {
	if s.keyPath == "" {
		return ErrKeyPathRequired
	}

	_, err := s.runner.Run(ctx, runner.Command{
		Tool: "cosign",
		Args: []string{"verify", "--key", s.PublicKeyPath(), imageRef},
	})
	if err != nil {
		return fmt.Errorf("signature verification failed for %s: %w", imageRef, err)
	}

	return nil
}

// Triangulate resolves the registry location of the image's signature object.
func (s *Signer) Triangulate(ctx context.Context, imageRef string) (string, error) {
	result, err := s.runner.Run(ctx, runner.Command{
		Tool: "cosign",
		Args: []string{"triangulate", imageRef},
	})
	if err != nil {
		return "", fmt.Errorf("failed to triangulate %s: %w", imageRef, err)
	}

	return strings.TrimSpace(result.Stdout), nil
}

// PublicKeyPath derives the public key path from the private key path.
func (s *Signer) PublicKeyPath() string {
	return strings.TrimSuffix(s.keyPath, ".key") + ".pub"
}

func (s *Signer) passwordEnv() []string {
	return []string{"COSIGN_PASSWORD=" + string(s.password)}
}
