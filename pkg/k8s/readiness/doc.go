// Package readiness provides Kubernetes resource readiness polling utilities.
//
// This package offers reusable utilities for waiting until Kubernetes and
// OpenShift resources become ready. It supports deployments, statefulsets,
// daemonsets, CRDs, routes, arbitrary custom resource conditions, and the API
// server, and provides a generic polling mechanism that can be extended.
//
// Key features:
//   - Generic polling mechanism (PollForReadiness)
//   - Workload readiness polling (WaitForDeploymentReady, WaitForStatefulSetReady,
//     WaitForDaemonSetReady)
//   - Multi-resource coordination (WaitForMultipleResources)
//   - CRD establishment polling (WaitForCRDEstablished)
//   - Custom resource condition polling (WaitForCustomResourceCondition)
//   - Route admission polling (WaitForRouteAdmitted)
//   - API server readiness polling (WaitForAPIServerReady)
package readiness
