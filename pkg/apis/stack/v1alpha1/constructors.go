package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// NewStack creates a new Stack instance with minimal required structure.
// Remaining default values are handled by the configuration system via
// field selectors.
func NewStack() *Stack {
	return &Stack{
		TypeMeta: metav1.TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
		Spec: NewStackSpec(),
	}
}

// NewStackSpec creates a new Spec with default values.
func NewStackSpec() Spec {
	return Spec{
		Connection: NewStackConnection(),
		Registry:   NewRegistrySpec(),
		Components: NewComponentsSpec(),
		Signing:    NewSigningSpec(),
	}
}

// NewStackConnection creates a new Connection with default values.
func NewStackConnection() Connection {
	return Connection{
		Kubeconfig: "",
		Context:    "",
		Timeout:    metav1.Duration{Duration: 0},
	}
}

// NewRegistrySpec creates a new RegistrySpec with default values.
func NewRegistrySpec() RegistrySpec {
	return RegistrySpec{
		Endpoint:     "",
		Organization: "",
		Insecure:     false,
	}
}

// NewComponentsSpec creates a new ComponentsSpec with default values.
func NewComponentsSpec() ComponentsSpec {
	return ComponentsSpec{
		Quay:      QuaySpec{},
		ACS:       ACSSpec{},
		TPA:       TPASpec{},
		Pipelines: PipelinesSpec{},
		MLflow:    MLflowSpec{},
		Demo:      DemoSpec{},
	}
}

// NewSigningSpec creates a new SigningSpec with default values.
func NewSigningSpec() SigningSpec {
	return SigningSpec{
		KeyPath:    "",
		SBOMFormat: "",
	}
}
