package v1alpha1

import (
	"fmt"
	"regexp"
)

// organizationNameRegex matches DNS-1123 subdomain names: lowercase
// alphanumeric with optional hyphens. Quay organization names share these
// constraints because they appear in image references.
var organizationNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$|^[a-z]$`)

// OrganizationNameMaxLength is the maximum length for a Quay organization name.
const OrganizationNameMaxLength = 63

// ValidateOrganizationName validates that a Quay organization name can be
// used in image references.
//
// Returns nil if the name is valid, or an error describing the validation failure.
func ValidateOrganizationName(name string) error {
	if name == "" {
		return nil // Empty names are allowed (means use default)
	}

	if len(name) > OrganizationNameMaxLength {
		return fmt.Errorf(
			"%w: %q exceeds max %d characters (got %d)",
			ErrOrganizationNameTooLong, name, OrganizationNameMaxLength, len(name),
		)
	}

	if !organizationNameRegex.MatchString(name) {
		return fmt.Errorf(
			"%w: %q must be DNS-1123 compliant "+
				"(lowercase letters, numbers, and hyphens; must start with a letter; "+
				"must not end with a hyphen)",
			ErrOrganizationNameInvalid, name,
		)
	}

	return nil
}

// ValidateTypeMeta validates the apiVersion and kind declared by a config file.
func ValidateTypeMeta(stack *Stack) error {
	if stack.APIVersion != APIVersion {
		return fmt.Errorf(
			"%w: %q (expected %q)",
			ErrAPIVersionInvalid, stack.APIVersion, APIVersion,
		)
	}

	if stack.Kind != Kind {
		return fmt.Errorf("%w: %q (expected %q)", ErrKindInvalid, stack.Kind, Kind)
	}

	return nil
}

// EnabledComponents returns the components enabled by the spec in deployment
// order, minus any explicitly skipped components.
func EnabledComponents(spec *Spec, skips []Component) []Component {
	toggles := map[Component]ComponentToggle{
		ComponentQuay:      spec.Components.Quay.Toggle,
		ComponentACS:       spec.Components.ACS.Toggle,
		ComponentTPA:       spec.Components.TPA.Toggle,
		ComponentPipelines: spec.Components.Pipelines.Toggle,
		ComponentMLflow:    spec.Components.MLflow.Toggle,
		ComponentDemo:      spec.Components.Demo.Toggle,
	}

	skipped := make(map[Component]bool, len(skips))
	for _, component := range skips {
		skipped[component] = true
	}

	var enabled []Component

	for _, component := range ValidComponents() {
		if toggles[component].IsEnabled() && !skipped[component] {
			enabled = append(enabled, component)
		}
	}

	return enabled
}
