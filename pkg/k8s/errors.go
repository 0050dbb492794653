package k8s

import "errors"

// ErrKubeconfigPathEmpty is returned when kubeconfig path is empty.
var ErrKubeconfigPathEmpty = errors.New("kubeconfig path is empty")

// ErrRouteHostEmpty is returned when an admitted route reports no host.
var ErrRouteHostEmpty = errors.New("route host is empty")

// ErrSecretKeyNotFound is returned when a secret does not contain the requested key.
var ErrSecretKeyNotFound = errors.New("secret key not found")
