// Package demoinstaller deploys the sample application that exercises the
// supply chain end to end. The app image is pulled from the in-cluster Quay
// registry, so the installer wires a pull secret into the workload.
package demoinstaller

import (
	"context"
	"fmt"
	"time"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/rosa-labs/chainsail/pkg/k8s/readiness"
	quayinstaller "github.com/rosa-labs/chainsail/pkg/svc/installer/quay"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
)

const (
	appName        = "flask-app"
	appPort        = 8080
	PullSecretName = "registry-pull-secret"
)

// DemoInstaller deploys the sample Flask application with a Deployment,
// Service, and Route.
type DemoInstaller struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	registry      v1alpha1.RegistrySpec
	quayNamespace string
	spec          v1alpha1.DemoSpec
	timeout       time.Duration
}

// NewDemoInstaller creates a new demo application installer instance. The
// quayNamespace locates the Quay route used as the registry endpoint when the
// registry spec carries no endpoint override.
func NewDemoInstaller(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	registry v1alpha1.RegistrySpec,
	quayNamespace string,
	spec v1alpha1.DemoSpec,
	timeout time.Duration,
) *DemoInstaller {
	return &DemoInstaller{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		registry:      registry,
		quayNamespace: quayNamespace,
		spec:          spec,
		timeout:       timeout,
	}
}

// Name identifies the component in progress output and summaries.
func (d *DemoInstaller) Name() string {
	return "demo"
}

// ImageRef returns the fully qualified reference the workload pulls, built
// from the registry endpoint, organization, image name, and tag. An empty
// endpoint is resolved from the Quay route in the cluster.
func (d *DemoInstaller) ImageRef(ctx context.Context) (string, error) {
	endpoint := d.registry.Endpoint
	if endpoint == "" {
		host, err := quayinstaller.DiscoverRegistryHost(ctx, d.dynamicClient, d.quayNamespace)
		if err != nil {
			return "", err
		}

		endpoint = host
	}

	return fmt.Sprintf("%s/%s/%s:%s",
		endpoint, d.registry.Organization, d.spec.Image, d.spec.Tag), nil
}

// Install creates or updates the demo Deployment, Service, and Route, then
// blocks until the rollout completes and the route is admitted.
func (d *DemoInstaller) Install(ctx context.Context) error {
	err := k8s.EnsureNamespace(ctx, d.clientset, d.spec.Namespace, map[string]string{
		"app.kubernetes.io/part-of": appName,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure demo namespace: %w", err)
	}

	err = d.applyDeployment(ctx)
	if err != nil {
		return err
	}

	err = d.applyService(ctx)
	if err != nil {
		return err
	}

	err = d.applyRoute(ctx)
	if err != nil {
		return err
	}

	return d.Verify(ctx)
}

// Uninstall deletes the demo namespace and everything in it.
func (d *DemoInstaller) Uninstall(ctx context.Context) error {
	err := d.clientset.CoreV1().Namespaces().Delete(ctx, d.spec.Namespace, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete demo namespace: %w", err)
	}

	return nil
}

// Verify checks that the demo deployment is ready and its route is admitted.
func (d *DemoInstaller) Verify(ctx context.Context) error {
	err := readiness.WaitForDeploymentReady(ctx, d.clientset, d.spec.Namespace, appName, d.timeout)
	if err != nil {
		return fmt.Errorf("demo app is not ready: %w", err)
	}

	err = readiness.WaitForRouteAdmitted(ctx, d.dynamicClient, d.spec.Namespace, appName, d.timeout)
	if err != nil {
		return fmt.Errorf("demo app route is not admitted: %w", err)
	}

	return nil
}

// AppHost returns the external host of the demo application route.
func (d *DemoInstaller) AppHost(ctx context.Context) (string, error) {
	host, err := k8s.RouteHost(ctx, d.dynamicClient, d.spec.Namespace, appName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve demo app host: %w", err)
	}

	return host, nil
}

func (d *DemoInstaller) applyDeployment(ctx context.Context) error {
	imageRef, err := d.ImageRef(ctx)
	if err != nil {
		return err
	}

	deployments := d.clientset.AppsV1().Deployments(d.spec.Namespace)
	desired := d.deployment(imageRef)

	existing, err := deployments.Get(ctx, appName, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			_, err = deployments.Create(ctx, desired, metav1.CreateOptions{})
			if err != nil {
				return fmt.Errorf("failed to create demo deployment: %w", err)
			}

			return nil
		}

		return fmt.Errorf("failed to get demo deployment: %w", err)
	}

	existing.Spec = desired.Spec

	_, err = deployments.Update(ctx, existing, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("failed to update demo deployment: %w", err)
	}

	return nil
}

func (d *DemoInstaller) applyService(ctx context.Context) error {
	services := d.clientset.CoreV1().Services(d.spec.Namespace)

	_, err := services.Create(ctx, d.service(), metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create demo service: %w", err)
	}

	return nil
}

func (d *DemoInstaller) applyRoute(ctx context.Context) error {
	routes := d.dynamicClient.Resource(k8s.RouteGVR).Namespace(d.spec.Namespace)

	_, err := routes.Create(ctx, d.route(), metav1.CreateOptions{})
	if err != nil && !apierrors.IsAlreadyExists(err) {
		return fmt.Errorf("failed to create demo route: %w", err)
	}

	return nil
}

func (d *DemoInstaller) labels() map[string]string {
	return map[string]string{"app": appName}
}

func (d *DemoInstaller) deployment(imageRef string) *appsv1.Deployment {
	replicas := d.spec.Replicas

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      appName,
			Namespace: d.spec.Namespace,
			Labels:    d.labels(),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: d.labels()},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: d.labels()},
				Spec: corev1.PodSpec{
					ImagePullSecrets: []corev1.LocalObjectReference{
						{Name: PullSecretName},
					},
					Containers: []corev1.Container{
						{
							Name:  appName,
							Image: imageRef,
							Ports: []corev1.ContainerPort{
								{ContainerPort: appPort, Name: "http"},
							},
							ReadinessProbe: &corev1.Probe{
								ProbeHandler: corev1.ProbeHandler{
									HTTPGet: &corev1.HTTPGetAction{
										Path: "/health",
										Port: intstr.FromInt32(appPort),
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

func (d *DemoInstaller) service() *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      appName,
			Namespace: d.spec.Namespace,
			Labels:    d.labels(),
		},
		Spec: corev1.ServiceSpec{
			Selector: d.labels(),
			Ports: []corev1.ServicePort{
				{
					Name:       "http",
					Port:       appPort,
					TargetPort: intstr.FromInt32(appPort),
				},
			},
		},
	}
}

func (d *DemoInstaller) route() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "route.openshift.io/v1",
		"kind":       "Route",
		"metadata": map[string]any{
			"name":      appName,
			"namespace": d.spec.Namespace,
			"labels":    map[string]any{"app": appName},
		},
		"spec": map[string]any{
			"to": map[string]any{
				"kind": "Service",
				"name": appName,
			},
			"port": map[string]any{"targetPort": "http"},
			"tls": map[string]any{
				"termination":                   "edge",
				"insecureEdgeTerminationPolicy": "Redirect",
			},
		},
	}}
}
