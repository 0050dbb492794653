// Package installer provides component installers for the supply chain stack.
package installer

import "context"

// Installer defines methods for deploying and removing stack components.
type Installer interface {
	// Name identifies the component in progress output and summaries.
	Name() string

	// Install deploys the component and blocks until it is ready.
	Install(ctx context.Context) error

	// Uninstall removes the component.
	Uninstall(ctx context.Context) error

	// Verify checks that an installed component is healthy. It performs
	// read-only checks and is safe to run repeatedly.
	Verify(ctx context.Context) error
}
