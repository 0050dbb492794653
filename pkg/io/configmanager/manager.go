package configmanager

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/rosa-labs/chainsail/pkg/apis/stack/v1alpha1"
	"github.com/rosa-labs/chainsail/pkg/ui/notify"
	"github.com/rosa-labs/chainsail/pkg/ui/timer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConfigManager implements configuration management for v1alpha1.Stack configurations.
type ConfigManager struct {
	Viper           *viper.Viper
	fieldSelectors  []FieldSelector[v1alpha1.Stack]
	Config          *v1alpha1.Stack
	configLoaded    bool
	configFileFound bool
	Writer          io.Writer
	command         *cobra.Command
}

// NewConfigManager creates a new configuration manager with the specified field selectors.
// Initializes Viper with all configuration including paths and environment handling.
func NewConfigManager(
	writer io.Writer,
	fieldSelectors ...FieldSelector[v1alpha1.Stack],
) *ConfigManager {
	return &ConfigManager{
		Viper:          InitializeViper(),
		fieldSelectors: fieldSelectors,
		Config:         v1alpha1.NewStack(),
		configLoaded:   false,
		Writer:         writer,
	}
}

// NewCommandConfigManager constructs a ConfigManager bound to the provided
// Cobra command. It registers the supplied field selectors, binds flags from
// them, and writes output to the command's standard output writer.
func NewCommandConfigManager(
	cmd *cobra.Command,
	selectors []FieldSelector[v1alpha1.Stack],
) *ConfigManager {
	manager := NewConfigManager(cmd.OutOrStdout(), selectors...)
	manager.command = cmd
	manager.AddFlagsFromFields(cmd)

	return manager
}

// InitializeViper creates a Viper instance wired for chainsail.yaml discovery
// and CHAINSAIL_* environment variables. The legacy QUAY_NAMESPACE and
// IMAGE_REGISTRY variables stay supported as aliases.
func InitializeViper() *viper.Viper {
	viperInstance := viper.New()

	viperInstance.SetConfigName("chainsail")
	viperInstance.SetConfigType("yaml")
	viperInstance.AddConfigPath(".")

	viperInstance.SetEnvPrefix("CHAINSAIL")
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	_ = viperInstance.BindEnv(
		"spec.registry.organization",
		"CHAINSAIL_SPEC_REGISTRY_ORGANIZATION",
		"QUAY_NAMESPACE",
	)
	_ = viperInstance.BindEnv(
		"spec.registry.endpoint",
		"CHAINSAIL_SPEC_REGISTRY_ENDPOINT",
		"IMAGE_REGISTRY",
	)

	return viperInstance
}

// AddFlagsFromFields registers a CLI flag for every field selector.
func (m *ConfigManager) AddFlagsFromFields(cmd *cobra.Command) {
	flags := cmd.Flags()

	for _, selector := range m.fieldSelectors {
		if selector.FlagName == "" || flags.Lookup(selector.FlagName) != nil {
			continue
		}

		defaultValue := ""
		if selector.DefaultValue != nil {
			defaultValue = fmt.Sprintf("%v", selector.DefaultValue)
		}

		flags.String(selector.FlagName, defaultValue, selector.Description)
	}
}

// LoadConfig loads the configuration from files and environment variables.
// Returns the loaded config (either freshly loaded or previously cached) and
// an error if loading failed.
// Configuration priority: defaults < config file < environment variables < flags.
// If timer is provided, timing information will be included in the success notification.
func (m *ConfigManager) LoadConfig(tmr timer.Timer) (*v1alpha1.Stack, error) {
	return m.loadConfigWithOptions(tmr, false)
}

// LoadConfigSilent loads the configuration without outputting notifications.
// Returns the loaded config, either freshly loaded or previously cached.
func (m *ConfigManager) LoadConfigSilent() (*v1alpha1.Stack, error) {
	return m.loadConfigWithOptions(nil, true)
}

func (m *ConfigManager) loadConfigWithOptions(
	tmr timer.Timer,
	silent bool,
) (*v1alpha1.Stack, error) {
	if m.configLoaded {
		if !silent {
			m.notifyConfigReused()
		}

		return m.Config, nil
	}

	err := m.readConfig(silent)
	if err != nil {
		return nil, err
	}

	flagOverrides := m.captureChangedFlagValues()

	err = m.unmarshalAndApplyDefaults()
	if err != nil {
		return nil, err
	}

	err = m.applyFlagOverrides(flagOverrides)
	if err != nil {
		return nil, err
	}

	err = m.validateConfig()
	if err != nil {
		return nil, err
	}

	if !silent {
		m.notifyLoadingComplete(tmr)
	}

	m.configLoaded = true

	return m.Config, nil
}

func (m *ConfigManager) readConfig(silent bool) error {
	err := m.Viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		m.configFileFound = false
		if !silent {
			m.notifyUsingDefaults()
		}
	} else {
		m.configFileFound = true
		if !silent {
			m.notifyConfigFound()
		}
	}

	return nil
}

func (m *ConfigManager) unmarshalAndApplyDefaults() error {
	decoderConfig := func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			metav1DurationDecodeHook(),
		)
	}

	// Reset TypeMeta fields only if a config file was found. This allows
	// validation to catch incorrect values from config files while
	// preserving defaults when loading from environment variables only.
	if m.configFileFound {
		m.Config.APIVersion = ""
		m.Config.Kind = ""
	}

	err := m.Viper.Unmarshal(m.Config, decoderConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Apply field selector defaults for empty fields
	for _, fieldSelector := range m.fieldSelectors {
		fieldPtr := fieldSelector.Selector(m.Config)
		if fieldPtr != nil && isFieldEmpty(fieldPtr) {
			setFieldValue(fieldPtr, fieldSelector.DefaultValue)
		}
	}

	return nil
}

func (m *ConfigManager) captureChangedFlagValues() map[string]string {
	if m.command == nil {
		return nil
	}

	overrides := make(map[string]string)

	m.command.Flags().Visit(func(f *pflag.Flag) {
		overrides[f.Name] = f.Value.String()
	})

	return overrides
}

func (m *ConfigManager) applyFlagOverrides(overrides map[string]string) error {
	if overrides == nil {
		return nil
	}

	for _, selector := range m.fieldSelectors {
		fieldPtr := selector.Selector(m.Config)
		if fieldPtr == nil || selector.FlagName == "" {
			continue
		}

		value, ok := overrides[selector.FlagName]
		if !ok {
			continue
		}

		err := setFieldValueFromFlag(fieldPtr, value)
		if err != nil {
			return fmt.Errorf("failed to apply flag override for %s: %w", selector.FlagName, err)
		}
	}

	return nil
}

func (m *ConfigManager) validateConfig() error {
	if m.configFileFound {
		err := v1alpha1.ValidateTypeMeta(m.Config)
		if err != nil {
			m.notifyValidationError(err)

			return err
		}
	}

	err := v1alpha1.ValidateOrganizationName(m.Config.Spec.Registry.Organization)
	if err != nil {
		m.notifyValidationError(err)

		return err
	}

	return nil
}

// metav1DurationDecodeHook converts duration strings like "30m" into
// metav1.Duration values during unmarshalling.
func metav1DurationDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(metav1.Duration{}) {
			return data, nil
		}

		raw, _ := data.(string)
		if raw == "" {
			return metav1.Duration{}, nil
		}

		duration := metav1.Duration{}

		err := duration.UnmarshalJSON([]byte(fmt.Sprintf("%q", raw)))
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", raw, err)
		}

		return duration, nil
	}
}

// isFieldEmpty checks if a field pointer points to an empty/zero value.
func isFieldEmpty(fieldPtr any) bool {
	if fieldPtr == nil {
		return true
	}

	fieldVal := reflect.ValueOf(fieldPtr)
	if fieldVal.Kind() != reflect.Ptr || fieldVal.IsNil() {
		return true
	}

	return fieldVal.Elem().IsZero()
}

// setFieldValue assigns a default value to the field behind the pointer.
func setFieldValue(fieldPtr any, value any) {
	if fieldPtr == nil || value == nil {
		return
	}

	fieldVal := reflect.ValueOf(fieldPtr)
	if fieldVal.Kind() != reflect.Ptr || fieldVal.IsNil() {
		return
	}

	target := fieldVal.Elem()
	source := reflect.ValueOf(value)

	if source.Type().ConvertibleTo(target.Type()) {
		target.Set(source.Convert(target.Type()))
	}
}

func (m *ConfigManager) notifyConfigReused() {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config already loaded, reusing existing config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyUsingDefaults() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "using default config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyConfigFound() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "'%s' found",
		Args:    []any{m.Viper.ConfigFileUsed()},
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyLoadingComplete(tmr timer.Timer) {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config loaded",
		Timer:   tmr,
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyValidationError(err error) {
	notify.WriteMessage(notify.Message{
		Type:    notify.ErrorType,
		Content: "%v",
		Args:    []any{err},
		Writer:  m.Writer,
	})
}
