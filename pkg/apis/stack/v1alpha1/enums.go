package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// --- Enum Interface ---

// EnumValuer is implemented by string-based enum types to provide their valid values.
type EnumValuer interface {
	// ValidValues returns all valid string values for this enum type.
	ValidValues() []string
}

// --- Component Toggle ---

// ComponentToggle controls whether a stack component is deployed.
// The empty value means Enabled so a minimal config deploys the full stack.
type ComponentToggle string

const (
	// ComponentToggleEnabled deploys the component.
	ComponentToggleEnabled ComponentToggle = "Enabled"
	// ComponentToggleDisabled skips the component.
	ComponentToggleDisabled ComponentToggle = "Disabled"
)

// IsEnabled reports whether the component should be deployed.
func (t ComponentToggle) IsEnabled() bool {
	return t != ComponentToggleDisabled
}

// ValidValues returns all valid string values for ComponentToggle.
func (t ComponentToggle) ValidValues() []string {
	return []string{string(ComponentToggleEnabled), string(ComponentToggleDisabled)}
}

// String returns the string representation.
func (t ComponentToggle) String() string {
	return string(t)
}

// Set parses a ComponentToggle from a flag value.
func (t *ComponentToggle) Set(value string) error {
	for _, valid := range t.ValidValues() {
		if strings.EqualFold(value, valid) {
			*t = ComponentToggle(valid)

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %q (valid values: %s)",
		ErrInvalidComponentToggle, value, strings.Join(t.ValidValues(), ", "),
	)
}

// Type returns the flag type name for pflag.
func (t *ComponentToggle) Type() string {
	return "ComponentToggle"
}

// --- Component Names ---

// Component identifies a deployable stack component.
type Component string

const (
	// ComponentQuay is the Quay container registry.
	ComponentQuay Component = "quay"
	// ComponentACS is Advanced Cluster Security.
	ComponentACS Component = "acs"
	// ComponentTPA is the Trusted Profile Analyzer.
	ComponentTPA Component = "tpa"
	// ComponentPipelines is OpenShift Pipelines (Tekton).
	ComponentPipelines Component = "pipelines"
	// ComponentMLflow is the MLflow model registry.
	ComponentMLflow Component = "mlflow"
	// ComponentDemo is the demo application.
	ComponentDemo Component = "demo"
)

// ValidComponents returns all deployable components in deployment order.
// Quay comes first because later components push to and scan from it.
func ValidComponents() []Component {
	return []Component{
		ComponentQuay,
		ComponentACS,
		ComponentTPA,
		ComponentPipelines,
		ComponentMLflow,
		ComponentDemo,
	}
}

// ValidValues returns all valid string values for Component.
func (c Component) ValidValues() []string {
	components := ValidComponents()
	values := make([]string, 0, len(components))

	for _, component := range components {
		values = append(values, string(component))
	}

	return values
}

// String returns the string representation.
func (c Component) String() string {
	return string(c)
}

// ParseComponent parses a component name, case-insensitively.
func ParseComponent(name string) (Component, error) {
	lower := strings.ToLower(strings.TrimSpace(name))

	if slices.Contains(ValidComponents(), Component(lower)) {
		return Component(lower), nil
	}

	return "", fmt.Errorf(
		"%w: %q (valid values: %s)",
		ErrUnknownComponent, name, strings.Join(Component("").ValidValues(), ", "),
	)
}

// ParseComponents parses a list of component names, rejecting duplicates.
func ParseComponents(names []string) ([]Component, error) {
	components := make([]Component, 0, len(names))

	for _, name := range names {
		component, err := ParseComponent(name)
		if err != nil {
			return nil, err
		}

		if slices.Contains(components, component) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateComponent, name)
		}

		components = append(components, component)
	}

	return components, nil
}

// --- SBOM Format ---

// SBOMFormat selects the SBOM document format produced by syft.
type SBOMFormat string

const (
	// SBOMFormatSPDXJSON is the SPDX 2.x JSON format.
	SBOMFormatSPDXJSON SBOMFormat = "spdx-json"
	// SBOMFormatCycloneDXJSON is the CycloneDX 1.x JSON format.
	SBOMFormatCycloneDXJSON SBOMFormat = "cyclonedx-json"
)

// ValidValues returns all valid string values for SBOMFormat.
func (f SBOMFormat) ValidValues() []string {
	return []string{string(SBOMFormatSPDXJSON), string(SBOMFormatCycloneDXJSON)}
}

// String returns the string representation.
func (f SBOMFormat) String() string {
	return string(f)
}

// Set parses an SBOMFormat from a flag value.
func (f *SBOMFormat) Set(value string) error {
	for _, valid := range f.ValidValues() {
		if strings.EqualFold(value, valid) {
			*f = SBOMFormat(valid)

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %q (valid values: %s)",
		ErrInvalidSBOMFormat, value, strings.Join(f.ValidValues(), ", "),
	)
}

// Type returns the flag type name for pflag.
func (f *SBOMFormat) Type() string {
	return "SBOMFormat"
}
