// Package oci verifies access to OCI registries such as an in-cluster Quay.
package oci

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/rosa-labs/chainsail/pkg/client/netretry"
)

// RegistryVerifier checks access to OCI registries.
type RegistryVerifier interface {
	// VerifyAccess checks if the registry is accessible and the credentials
	// grant access to the repository.
	// Returns nil if access is verified, or an actionable error if not.
	VerifyAccess(ctx context.Context, opts VerifyOptions) error

	// ImageExists checks if an image with the given tag exists in the repository.
	// Returns true if the image exists, false if it doesn't exist.
	// Returns an error if the registry check fails for reasons other than "not found".
	ImageExists(ctx context.Context, opts ImageExistsOptions) (bool, error)
}

// VerifyOptions contains options for verifying registry access.
type VerifyOptions struct {
	// RegistryEndpoint is the registry host[:port] (e.g., the Quay route host).
	RegistryEndpoint string
	// Repository is the repository path to check access for (e.g., "secure-demo/flask-app").
	Repository string
	// Username is the optional username for authentication.
	Username string
	// Password is the optional password/token for authentication.
	Password string
	// Insecure allows HTTP connections and self-signed certificates.
	Insecure bool
}

// ImageExistsOptions contains options for checking if an image exists.
type ImageExistsOptions struct {
	// RegistryEndpoint is the registry host[:port].
	RegistryEndpoint string
	// Repository is the repository path.
	Repository string
	// Tag is the image tag to check (e.g., "latest", "v1.2.0").
	Tag string
	// Username is the optional username for authentication.
	Username string
	// Password is the optional password/token for authentication.
	Password string
	// Insecure allows HTTP connections and self-signed certificates.
	Insecure bool
}

// verifier implements RegistryVerifier.
type verifier struct{}

// NewRegistryVerifier creates a new registry verifier.
func NewRegistryVerifier() RegistryVerifier {
	return &verifier{}
}

// VerifyAccess checks if we can access the registry and the credentials work.
// It lists tags in the repository, which exercises the auth flow end to end;
// a missing repository is fine since the first push creates it.
func (v *verifier) VerifyAccess(ctx context.Context, opts VerifyOptions) error {
	if opts.RegistryEndpoint == "" {
		return ErrRegistryEndpointRequired
	}

	repo, err := buildRepository(opts.RegistryEndpoint, opts.Repository, opts.Insecure)
	if err != nil {
		return err
	}

	remoteOpts := buildRemoteOptions(ctx, opts.Username, opts.Password)

	_, err = remote.List(repo, remoteOpts...)
	if err != nil {
		return classifyRegistryError(err)
	}

	return nil
}

// ImageExists checks if an image with the given tag exists in the repository.
// Returns true if the image exists, false if it doesn't exist or the repo doesn't exist.
// Returns an error only for unexpected failures (network issues, auth failures).
func (v *verifier) ImageExists(ctx context.Context, opts ImageExistsOptions) (bool, error) {
	if opts.RegistryEndpoint == "" {
		return false, ErrRegistryEndpointRequired
	}

	if opts.Tag == "" {
		return false, ErrTagRequired
	}

	ref, err := buildReference(opts)
	if err != nil {
		return false, err
	}

	remoteOpts := buildRemoteOptions(ctx, opts.Username, opts.Password)

	_, err = remote.Head(ref, remoteOpts...)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}

		return false, classifyRegistryError(err)
	}

	return true, nil
}

// buildReference creates a tagged reference from image exists options.
func buildReference(opts ImageExistsOptions) (name.Reference, error) {
	refStr := fmt.Sprintf("%s/%s:%s", opts.RegistryEndpoint, opts.Repository, opts.Tag)

	nameOpts := []name.Option{name.WeakValidation}
	if opts.Insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}

	ref, err := name.ParseReference(refStr, nameOpts...)
	if err != nil {
		return nil, fmt.Errorf("parse reference: %w", err)
	}

	return ref, nil
}

// buildRepository creates a repository reference.
func buildRepository(endpoint, repository string, insecure bool) (name.Repository, error) {
	refStr := fmt.Sprintf("%s/%s", endpoint, repository)

	nameOpts := []name.Option{name.WeakValidation}
	if insecure {
		nameOpts = append(nameOpts, name.Insecure)
	}

	repo, err := name.NewRepository(refStr, nameOpts...)
	if err != nil {
		return name.Repository{}, fmt.Errorf("parse repository reference: %w", err)
	}

	return repo, nil
}

// buildRemoteOptions creates remote options with optional basic auth.
func buildRemoteOptions(ctx context.Context, username, password string) []remote.Option {
	remoteOpts := []remote.Option{
		remote.WithContext(ctx),
	}

	if username != "" || password != "" {
		auth := &authn.Basic{
			Username: username,
			Password: password,
		}
		remoteOpts = append(remoteOpts, remote.WithAuth(auth))
	}

	return remoteOpts
}

// isNotFoundError checks if the error indicates the image doesn't exist.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		if transportErr.StatusCode == http.StatusNotFound {
			return true
		}
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "manifest unknown") ||
		strings.Contains(errStr, "name_unknown") ||
		strings.Contains(errStr, "name unknown")
}

// classifyTransportError handles HTTP transport errors.
func classifyTransportError(transportErr *transport.Error) error {
	switch transportErr.StatusCode {
	case http.StatusUnauthorized:
		return ErrRegistryAuthRequired
	case http.StatusForbidden:
		return ErrRegistryPermissionDenied
	case http.StatusNotFound:
		// 404 for a tags list is OK, the repo might not exist yet.
		return nil
	default:
		return nil
	}
}

// classifyErrorByMessage checks error message patterns.
// Returns:
//   - matched=true, error: if the error matches a known error pattern
//   - matched=true, nil: if the error matches an "acceptable" pattern (e.g., repo doesn't exist yet)
//   - matched=false, nil: if no pattern matched
func classifyErrorByMessage(errStr string) (bool, error) {
	lowerErr := strings.ToLower(errStr)

	switch {
	case strings.Contains(lowerErr, "unauthorized"),
		strings.Contains(lowerErr, "authentication required"):
		return true, ErrRegistryAuthRequired

	case strings.Contains(lowerErr, "denied"),
		strings.Contains(lowerErr, "forbidden"):
		return true, ErrRegistryPermissionDenied

	case strings.Contains(lowerErr, "no such host"),
		strings.Contains(lowerErr, "connection refused"),
		strings.Contains(lowerErr, "dial tcp"):
		return true, fmt.Errorf("%w: %s", ErrRegistryUnreachable, extractErrorDetail(errStr))

	case strings.Contains(lowerErr, "not found"),
		strings.Contains(lowerErr, "name_unknown"),
		strings.Contains(lowerErr, "name unknown"):
		return true, nil

	default:
		return false, nil
	}
}

// classifyRegistryError converts low-level registry errors to actionable errors.
func classifyRegistryError(err error) error {
	if err == nil {
		return nil
	}

	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		classifiedErr := classifyTransportError(transportErr)
		if classifiedErr != nil {
			return classifiedErr
		}
	}

	matched, classifiedErr := classifyErrorByMessage(err.Error())
	if matched {
		return classifiedErr
	}

	return fmt.Errorf("registry access check failed: %w", err)
}

// extractErrorDetail extracts the most useful part of an error message.
func extractErrorDetail(errStr string) string {
	if idx := strings.Index(errStr, ": "); idx > 0 {
		return errStr[idx+2:]
	}

	return errStr
}

// Registry verification retry constants.
const (
	verifyMaxRetries    = 3
	verifyRetryBaseWait = 2 * time.Second
	verifyRetryMaxWait  = 10 * time.Second
)

// VerifyRegistryAccessWithTimeout verifies registry access with a per-attempt
// timeout, retrying transient network errors with exponential backoff. A fresh
// Quay route often returns 503 while the serving certificate propagates.
func VerifyRegistryAccessWithTimeout(
	ctx context.Context,
	opts VerifyOptions,
	timeout time.Duration,
) error {
	return VerifyWithRetry(ctx, NewRegistryVerifier(), opts, timeout)
}

// VerifyWithRetry runs the given verifier with the package retry policy.
func VerifyWithRetry(
	ctx context.Context,
	verifier RegistryVerifier,
	opts VerifyOptions,
	timeout time.Duration,
) error {
	err := netretry.Do(
		ctx,
		verifyMaxRetries,
		verifyRetryBaseWait,
		verifyRetryMaxWait,
		func(ctx context.Context) error {
			verifyCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return verifier.VerifyAccess(verifyCtx, opts)
		},
	)
	if err != nil {
		return fmt.Errorf("registry access verification failed: %w", err)
	}

	return nil
}
