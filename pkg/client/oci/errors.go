package oci

import "errors"

// Registry option validation errors.
var (
	// ErrRegistryEndpointRequired indicates that the registry endpoint is missing.
	ErrRegistryEndpointRequired = errors.New("registry endpoint is required")
	// ErrTagRequired indicates that no image tag was provided.
	ErrTagRequired = errors.New("image tag is required")
)

// Registry verification errors.
var (
	// ErrRegistryUnreachable is returned when the registry cannot be reached.
	ErrRegistryUnreachable = errors.New("registry is unreachable")
	// ErrRegistryAuthRequired is returned when authentication is required but not provided.
	ErrRegistryAuthRequired = errors.New(
		"registry requires authentication\n" +
			"  - run 'chainsail registry login' to store credentials",
	)
	// ErrRegistryPermissionDenied is returned when credentials are invalid or lack push access.
	ErrRegistryPermissionDenied = errors.New(
		"registry access denied\n" +
			"  - check the robot account has write permission to the organization",
	)
)
