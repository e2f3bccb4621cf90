package reposync

import "strings"

const (
	servicesRootConfigKeyConstant          = "services_root"
	configFilterCommandConfigKeyConstant   = "config_filter_command"
	disableTerminalPromptConfigKeyConstant = "disable_terminal_prompt"
	configurationKeySeparatorConstant      = "."
	defaultServicesRootConstant            = "services"
)

// ToolConfiguration captures the sync command settings.
type ToolConfiguration struct {
	ServicesRoot          string `mapstructure:"services_root"`
	ConfigFilterCommand   string `mapstructure:"config_filter_command"`
	DisableTerminalPrompt bool   `mapstructure:"disable_terminal_prompt"`
}

// DefaultToolConfiguration provides baseline sync settings.
func DefaultToolConfiguration() ToolConfiguration {
	return ToolConfiguration{
		ServicesRoot:          defaultServicesRootConstant,
		ConfigFilterCommand:   "",
		DisableTerminalPrompt: false,
	}
}

// DefaultConfigurationValues exposes the defaults keyed under prefix for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultToolConfiguration()
	return map[string]any{
		prefix + configurationKeySeparatorConstant + servicesRootConfigKeyConstant:          defaults.ServicesRoot,
		prefix + configurationKeySeparatorConstant + configFilterCommandConfigKeyConstant:   defaults.ConfigFilterCommand,
		prefix + configurationKeySeparatorConstant + disableTerminalPromptConfigKeyConstant: defaults.DisableTerminalPrompt,
	}
}

// Sanitize trims values and restores the default services root when blank.
func (configuration ToolConfiguration) Sanitize() ToolConfiguration {
	sanitized := configuration
	sanitized.ServicesRoot = strings.TrimSpace(configuration.ServicesRoot)
	sanitized.ConfigFilterCommand = strings.TrimSpace(configuration.ConfigFilterCommand)
	if len(sanitized.ServicesRoot) == 0 {
		sanitized.ServicesRoot = defaultServicesRootConstant
	}
	return sanitized
}
