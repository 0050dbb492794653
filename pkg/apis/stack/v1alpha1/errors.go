package v1alpha1

import "errors"

var (
	// ErrUnknownComponent is returned when a component name is not recognized.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrDuplicateComponent is returned when a component is listed twice.
	ErrDuplicateComponent = errors.New("duplicate component")
	// ErrInvalidComponentToggle is returned for unrecognized toggle values.
	ErrInvalidComponentToggle = errors.New("invalid component toggle")
	// ErrInvalidSBOMFormat is returned for unrecognized SBOM format values.
	ErrInvalidSBOMFormat = errors.New("invalid SBOM format")
	// ErrOrganizationNameTooLong is returned when the organization name exceeds the maximum length.
	ErrOrganizationNameTooLong = errors.New("organization name too long")
	// ErrOrganizationNameInvalid is returned when the organization name is not DNS-1123 compliant.
	ErrOrganizationNameInvalid = errors.New("invalid organization name")
	// ErrAPIVersionInvalid is returned when a config file declares an unexpected apiVersion.
	ErrAPIVersionInvalid = errors.New("invalid apiVersion")
	// ErrKindInvalid is returned when a config file declares an unexpected kind.
	ErrKindInvalid = errors.New("invalid kind")
)
