package deployconfig

import "strings"

const (
	environmentRootConfigKeyConstant     = "env_root"
	defaultEnvironmentConfigKeyConstant  = "default_environment"
	defaultOutputFormatConfigKeyConstant = "default_output_format"
	configurationKeySeparatorConstant    = "."
	defaultEnvironmentRootConstant       = "./env"
	defaultEnvironmentNameConstant       = "develop"
)

// ToolConfiguration captures the parse command settings.
type ToolConfiguration struct {
	EnvironmentRoot     string `mapstructure:"env_root"`
	DefaultEnvironment  string `mapstructure:"default_environment"`
	DefaultOutputFormat string `mapstructure:"default_output_format"`
}

// DefaultToolConfiguration provides baseline parse settings.
func DefaultToolConfiguration() ToolConfiguration {
	return ToolConfiguration{
		EnvironmentRoot:     defaultEnvironmentRootConstant,
		DefaultEnvironment:  defaultEnvironmentNameConstant,
		DefaultOutputFormat: string(OutputModeServices),
	}
}

// DefaultConfigurationValues exposes the defaults keyed under prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultToolConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + environmentRootConfigKeyConstant:     defaults.EnvironmentRoot,
		prefix + configurationKeySeparatorConstant + defaultEnvironmentConfigKeyConstant:  defaults.DefaultEnvironment,
		prefix + configurationKeySeparatorConstant + defaultOutputFormatConfigKeyConstant: defaults.DefaultOutputFormat,
	}
}

// Sanitize trims values and restores defaults for blank settings.
func (configuration ToolConfiguration) Sanitize() ToolConfiguration {
	defaults := DefaultToolConfiguration()
	sanitized := ToolConfiguration{
		EnvironmentRoot:     strings.TrimSpace(configuration.EnvironmentRoot),
		DefaultEnvironment:  strings.TrimSpace(configuration.DefaultEnvironment),
		DefaultOutputFormat: strings.TrimSpace(configuration.DefaultOutputFormat),
	}
	if len(sanitized.EnvironmentRoot) == 0 {
		sanitized.EnvironmentRoot = defaults.EnvironmentRoot
	}
	if len(sanitized.DefaultEnvironment) == 0 {
		sanitized.DefaultEnvironment = defaults.DefaultEnvironment
	}
	if len(sanitized.DefaultOutputFormat) == 0 {
		sanitized.DefaultOutputFormat = defaults.DefaultOutputFormat
	}
	return sanitized
}

// FilterOptions converts the configuration into Filter options.
func (configuration ToolConfiguration) FilterOptions() Options {
	return Options{
		EnvironmentRoot:    configuration.EnvironmentRoot,
		DefaultEnvironment: configuration.DefaultEnvironment,
	}
}
