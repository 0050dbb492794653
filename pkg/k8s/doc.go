// Package k8s provides Kubernetes client plumbing shared by ChainSail services.
//
// It covers REST config and client construction from kubeconfig paths,
// namespace adoption, and OpenShift route and secret lookups used to surface
// component endpoints and credentials after deployment.
package k8s
