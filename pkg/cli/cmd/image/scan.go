package image

import (
	"context"
	"fmt"
	"os"

	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/cmd/runner"
	"github.com/rosa-labs/chainsail/pkg/io/configmanager"
	"github.com/rosa-labs/chainsail/pkg/k8s"
	"github.com/rosa-labs/chainsail/pkg/svc/scanner"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/spf13/cobra"
)

// roxPasswordEnvVar is the preferred source for the Central admin password.
// When unset the password is read from the central-htpasswd secret.
const roxPasswordEnvVar = "ROX_ADMIN_PASSWORD"

const (
	centralRouteName  = "central"
	centralSecretName = "central-htpasswd"
	centralSecretKey  = "password"
)

type scanOptions struct {
	endpoint string
	severity string
	check    bool
	insecure bool
}

// NewScanCmd creates the image scan command.
func NewScanCmd() *cobra.Command {
	options := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <image[:tag]>",
		Short: "Scan an image through ACS Central and gate on severity",
		Long: "Scan the image with roxctl against ACS Central and fail when " +
			"vulnerabilities at or above the severity threshold are found. The " +
			"admin password comes from ROX_ADMIN_PASSWORD or the central-htpasswd " +
			"secret.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&options.endpoint, "central-endpoint", "",
		"Central endpoint as host:port (defaults to the central route host)")
	cmd.Flags().StringVar(&options.severity, "severity", "CRITICAL",
		"Severity threshold: LOW, MODERATE, IMPORTANT, or CRITICAL")
	cmd.Flags().BoolVar(&options.check, "check", false,
		"Also run the image through Central's build-time policies")
	cmd.Flags().BoolVar(&options.insecure, "insecure-skip-tls-verify", true,
		"Accept the self-signed certificate Central serves by default")

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultStackFieldSelectors())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, manager, options, args[0])
	}

	return cmd
}

func runScan(
	cmd *cobra.Command,
	manager *configmanager.ConfigManager,
	options *scanOptions,
	imageArg string,
) error {
	cfg, err := manager.LoadConfigSilent()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	threshold, err := scanner.ParseSeverity(options.severity)
	if err != nil {
		return err
	}

	endpoint, password, err := resolveCentralAccess(cmd.Context(), cfg, options.endpoint)
	if err != nil {
		return err
	}

	scn := scanner.NewScanner(runner.NewRunner(), endpoint, password, options.insecure)

	imageRef, err := resolveImageRef(cmd.Context(), cfg, imageArg)
	if err != nil {
		return err
	}

	summary, _, err := scn.ScanImage(cmd.Context(), imageRef)
	if err != nil {
		return err
	}

	writer := cmd.OutOrStdout()
	notify.Infof(writer, "critical=%d important=%d moderate=%d low=%d",
		summary.Critical, summary.Important, summary.Moderate, summary.Low)

	count := summary.CountAtOrAbove(threshold)
	if count > 0 {
		return fmt.Errorf(
			"%w: %d found in %s",
			scanner.ErrSeverityThresholdExceeded, count, imageRef,
		)
	}

	if options.check {
		err = scn.CheckImage(cmd.Context(), imageRef)
		if err != nil {
			return err
		}

		notify.Successf(writer, "policy check passed for %s", imageRef)
	}

	notify.Successf(writer, "%s is below the %s threshold", imageRef, options.severity)

	return nil
}

// resolveCentralAccess determines the Central endpoint and admin password.
// Both fall back to cluster lookups so a freshly deployed stack works without
// extra flags.
func resolveCentralAccess(
	ctx context.Context,
	cfg *v1alpha1.Stack,
	endpointOverride string,
) (string, []byte, error) {
	if fromEnv := os.Getenv(roxPasswordEnvVar); endpointOverride != "" && fromEnv != "" {
		return endpointOverride, []byte(fromEnv), nil
	}

	kubeconfig := cfg.Spec.Connection.Kubeconfig
	kubeContext := cfg.Spec.Connection.Context
	namespace := cfg.Spec.Components.ACS.Namespace

	endpoint := endpointOverride
	if endpoint == "" {
		dynamicClient, err := k8s.NewDynamicClient(kubeconfig, kubeContext)
		if err != nil {
			return "", nil, fmt.Errorf("failed to create dynamic client: %w", err)
		}

		host, err := k8s.RouteHost(ctx, dynamicClient, namespace, centralRouteName)
		if err != nil {
			return "", nil, fmt.Errorf("failed to resolve central endpoint: %w", err)
		}

		endpoint = host + ":443"
	}

	password := []byte(os.Getenv(roxPasswordEnvVar))
	if len(password) == 0 {
		clientset, err := k8s.NewClientset(kubeconfig, kubeContext)
		if err != nil {
			return "", nil, fmt.Errorf("failed to create kubernetes client: %w", err)
		}

		password, err = k8s.SecretValue(ctx, clientset, namespace, centralSecretName, centralSecretKey)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read central admin password: %w", err)
		}
	}

	return endpoint, password, nil
}
