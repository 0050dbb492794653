package configmanager

import (
	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
)

// FieldSelector defines a field and its metadata for configuration management.
type FieldSelector[T any] struct {
	Selector     func(*T) any // Function that returns a pointer to the field
	FlagName     string       // CLI flag name bound to the field
	Description  string       // Human-readable description for CLI flags
	DefaultValue any          // Default value for the field
}

// DefaultKubeconfigFieldSelector creates a standard field selector for kubeconfig.
func DefaultKubeconfigFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Connection.Kubeconfig },
		FlagName:     "kubeconfig",
		Description:  "Path to kubeconfig file",
		DefaultValue: v1alpha1.DefaultKubeconfigPath,
	}
}

// DefaultContextFieldSelector creates a standard field selector for the kube context.
func DefaultContextFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:    func(s *v1alpha1.Stack) any { return &s.Spec.Connection.Context },
		FlagName:    "context",
		Description: "Kubernetes context of the target cluster",
	}
}

// DefaultRegistryEndpointFieldSelector creates a selector for the registry endpoint override.
func DefaultRegistryEndpointFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector: func(s *v1alpha1.Stack) any { return &s.Spec.Registry.Endpoint },
		FlagName: "registry-endpoint",
		Description: "Registry host override " +
			"(defaults to the Quay route host discovered from the cluster)",
	}
}

// DefaultOrganizationFieldSelector creates a selector for the Quay organization.
func DefaultOrganizationFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Registry.Organization },
		FlagName:     "organization",
		Description:  "Quay organization images are pushed to",
		DefaultValue: v1alpha1.DefaultOrganization,
	}
}

// DefaultQuayNamespaceFieldSelector creates a selector for the Quay namespace.
func DefaultQuayNamespaceFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.Quay.Namespace },
		FlagName:     "quay-namespace",
		Description:  "Namespace the Quay registry is deployed into",
		DefaultValue: v1alpha1.DefaultQuayNamespace,
	}
}

// DefaultQuayChannelFieldSelector creates a selector for the Quay operator channel.
func DefaultQuayChannelFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.Quay.Channel },
		FlagName:     "quay-channel",
		Description:  "Update channel for the Quay operator",
		DefaultValue: v1alpha1.DefaultQuayChannel,
	}
}

// DefaultACSNamespaceFieldSelector creates a selector for the ACS namespace.
func DefaultACSNamespaceFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.ACS.Namespace },
		FlagName:     "acs-namespace",
		Description:  "Namespace Advanced Cluster Security is deployed into",
		DefaultValue: v1alpha1.DefaultACSNamespace,
	}
}

// DefaultACSChannelFieldSelector creates a selector for the RHACS operator channel.
func DefaultACSChannelFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.ACS.Channel },
		FlagName:     "acs-channel",
		Description:  "Update channel for the RHACS operator",
		DefaultValue: v1alpha1.DefaultACSChannel,
	}
}

// DefaultTPANamespaceFieldSelector creates a selector for the TPA namespace.
func DefaultTPANamespaceFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.TPA.Namespace },
		FlagName:     "tpa-namespace",
		Description:  "Namespace the Trusted Profile Analyzer is deployed into",
		DefaultValue: v1alpha1.DefaultTPANamespace,
	}
}

// DefaultTPAChartRepoFieldSelector creates a selector for the TPA chart repository.
func DefaultTPAChartRepoFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.TPA.ChartRepo },
		FlagName:     "tpa-chart-repo",
		Description:  "Helm repository for the Trusted Profile Analyzer chart",
		DefaultValue: v1alpha1.DefaultTPAChartRepo,
	}
}

// DefaultPipelinesChannelFieldSelector creates a selector for the Pipelines operator channel.
func DefaultPipelinesChannelFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.Pipelines.Channel },
		FlagName:     "pipelines-channel",
		Description:  "Update channel for the OpenShift Pipelines operator",
		DefaultValue: v1alpha1.DefaultPipelinesChannel,
	}
}

// DefaultMLflowNamespaceFieldSelector creates a selector for the MLflow namespace.
func DefaultMLflowNamespaceFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.MLflow.Namespace },
		FlagName:     "mlflow-namespace",
		Description:  "Namespace the MLflow model registry is deployed into",
		DefaultValue: v1alpha1.DefaultMLflowNamespace,
	}
}

// DefaultMLflowChartRepoFieldSelector creates a selector for the MLflow chart repository.
func DefaultMLflowChartRepoFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.MLflow.ChartRepo },
		FlagName:     "mlflow-chart-repo",
		Description:  "Helm repository for the MLflow chart",
		DefaultValue: v1alpha1.DefaultMLflowChartRepo,
	}
}

// DefaultDemoNamespaceFieldSelector creates a selector for the demo app namespace.
func DefaultDemoNamespaceFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.Demo.Namespace },
		FlagName:     "demo-namespace",
		Description:  "Namespace the demo application is deployed into",
		DefaultValue: v1alpha1.DefaultDemoNamespace,
	}
}

// DefaultDemoImageFieldSelector creates a selector for the demo image name.
func DefaultDemoImageFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.Demo.Image },
		FlagName:     "demo-image",
		Description:  "Demo application image name within the Quay organization",
		DefaultValue: v1alpha1.DefaultDemoImage,
	}
}

// DefaultDemoTagFieldSelector creates a selector for the demo image tag.
func DefaultDemoTagFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.Demo.Tag },
		FlagName:     "demo-tag",
		Description:  "Demo application image tag",
		DefaultValue: v1alpha1.DefaultDemoTag,
	}
}

// DefaultDemoReplicasFieldSelector creates a selector for the demo replica count.
func DefaultDemoReplicasFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Components.Demo.Replicas },
		FlagName:     "demo-replicas",
		Description:  "Demo application replica count",
		DefaultValue: v1alpha1.DefaultDemoReplicas,
	}
}

// DefaultSigningKeyFieldSelector creates a selector for the cosign key path.
func DefaultSigningKeyFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Signing.KeyPath },
		FlagName:     "signing-key",
		Description:  "Path to the cosign private key",
		DefaultValue: v1alpha1.DefaultCosignKeyPath,
	}
}

// DefaultSBOMFormatFieldSelector creates a selector for the SBOM format.
func DefaultSBOMFormatFieldSelector() FieldSelector[v1alpha1.Stack] {
	return FieldSelector[v1alpha1.Stack]{
		Selector:     func(s *v1alpha1.Stack) any { return &s.Spec.Signing.SBOMFormat },
		FlagName:     "sbom-format",
		Description:  "SBOM document format produced by syft",
		DefaultValue: v1alpha1.SBOMFormatSPDXJSON,
	}
}

// DefaultStackFieldSelectors returns the field selectors shared by stack commands.
func DefaultStackFieldSelectors() []FieldSelector[v1alpha1.Stack] {
	return []FieldSelector[v1alpha1.Stack]{
		DefaultKubeconfigFieldSelector(),
		DefaultContextFieldSelector(),
		DefaultRegistryEndpointFieldSelector(),
		DefaultOrganizationFieldSelector(),
		DefaultQuayNamespaceFieldSelector(),
		DefaultQuayChannelFieldSelector(),
		DefaultACSNamespaceFieldSelector(),
		DefaultACSChannelFieldSelector(),
		DefaultTPANamespaceFieldSelector(),
		DefaultTPAChartRepoFieldSelector(),
		DefaultPipelinesChannelFieldSelector(),
		DefaultMLflowNamespaceFieldSelector(),
		DefaultMLflowChartRepoFieldSelector(),
		DefaultDemoNamespaceFieldSelector(),
		DefaultDemoImageFieldSelector(),
		DefaultDemoTagFieldSelector(),
		DefaultDemoReplicasFieldSelector(),
		DefaultSigningKeyFieldSelector(),
		DefaultSBOMFormatFieldSelector(),
	}
}
