package deployconfig

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/deploysync/internal/repos/shared"
)

const (
	environmentFilePathTemplateConstant    = "%s/%s/%s.env"
	pathSeparatorConstant                  = "/"
	unknownOutputModeTemplateConstant      = "unknown output mode %q"
	environmentFileMissingMessageConstant  = "Environment file not found, skipping service"
	serviceSettingsInvalidMessageConstant  = "Service settings unreadable, skipping service"
	enabledServicesResolvedMessageConstant = "Resolved enabled services"
	logFieldServiceConstant                = "service"
	logFieldPathConstant                   = "path"
	logFieldModeConstant                   = "mode"
	logFieldEnabledCountConstant           = "enabled_count"
	logFieldTotalCountConstant             = "total_count"
)

// OutputMode selects how the enabled service set is reported.
type OutputMode string

// Supported output modes.
const (
	OutputModeServices OutputMode = "services"
	OutputModeEnvPaths OutputMode = "env_paths"
	OutputModeFull     OutputMode = "full"
)

// SupportedOutputModes lists the accepted output modes with the default first.
func SupportedOutputModes() []string {
	return []string{string(OutputModeServices), string(OutputModeEnvPaths), string(OutputModeFull)}
}

// ParseOutputMode validates a requested output mode. An empty value selects services.
func ParseOutputMode(requestedMode string) (OutputMode, error) {
	trimmedMode := strings.TrimSpace(requestedMode)
	if len(trimmedMode) == 0 {
		return OutputModeServices, nil
	}
	for _, supportedMode := range SupportedOutputModes() {
		if trimmedMode == supportedMode {
			return OutputMode(supportedMode), nil
		}
	}
	return "", ConfigError{Message: fmt.Sprintf(unknownOutputModeTemplateConstant, trimmedMode)}
}

// Options tunes environment file path computation.
type Options struct {
	EnvironmentRoot    string
	DefaultEnvironment string
}

// Dependencies enumerates collaborators required by Filter.
type Dependencies struct {
	Logger     *zap.Logger
	FileSystem shared.FileSystem
}

// EnvPath associates a service with its environment file path.
type EnvPath struct {
	Service string
	Path    string
}

// EnvPaths is an ordered service-to-environment-file mapping.
type EnvPaths []EnvPath

// Services returns the service names in order.
func (envPaths EnvPaths) Services() []string {
	services := make([]string, 0, len(envPaths))
	for _, envPath := range envPaths {
		services = append(services, envPath.Service)
	}
	return services
}

// Result is the outcome of applying a Filter in one output mode.
type Result struct {
	Mode     OutputMode
	Services []string
	EnvPaths EnvPaths
	Records  []ServiceEntry
}

// Filter computes the enabled service set of a descriptor.
type Filter struct {
	logger             *zap.Logger
	fileSystem         shared.FileSystem
	environmentRoot    string
	defaultEnvironment string
}

// NewFilter constructs a Filter. Empty options fall back to DefaultToolConfiguration values.
func NewFilter(options Options, dependencies Dependencies) (*Filter, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}

	defaults := DefaultToolConfiguration()
	environmentRoot := strings.TrimRight(strings.TrimSpace(options.EnvironmentRoot), pathSeparatorConstant)
	if len(environmentRoot) == 0 {
		environmentRoot = defaults.EnvironmentRoot
	}
	defaultEnvironment := strings.TrimSpace(options.DefaultEnvironment)
	if len(defaultEnvironment) == 0 {
		defaultEnvironment = defaults.DefaultEnvironment
	}

	return &Filter{
		logger:             dependencies.Logger,
		fileSystem:         dependencies.FileSystem,
		environmentRoot:    environmentRoot,
		defaultEnvironment: defaultEnvironment,
	}, nil
}

// Apply filters descriptor down to its enabled services and shapes the result for mode.
func (filter *Filter) Apply(descriptor Descriptor, mode OutputMode) (Result, error) {
	validatedMode, modeError := ParseOutputMode(string(mode))
	if modeError != nil {
		return Result{}, modeError
	}

	enabledEntries := descriptor.Enabled()
	filter.logger.Debug(
		enabledServicesResolvedMessageConstant,
		zap.String(logFieldModeConstant, string(validatedMode)),
		zap.Int(logFieldEnabledCountConstant, len(enabledEntries)),
		zap.Int(logFieldTotalCountConstant, len(descriptor.Entries)),
	)

	result := Result{Mode: validatedMode}
	switch validatedMode {
	case OutputModeServices:
		result.Services = make([]string, 0, len(enabledEntries))
		for _, entry := range enabledEntries {
			result.Services = append(result.Services, entry.Name)
		}
	case OutputModeEnvPaths:
		result.EnvPaths = filter.existingEnvironmentFiles(enabledEntries)
	case OutputModeFull:
		result.Records = enabledEntries
	}
	return result, nil
}

// EnvironmentFilePath computes <environment root>/<env>/<service>.env for entry.
func (filter *Filter) EnvironmentFilePath(entry ServiceEntry) (string, error) {
	settings, settingsError := entry.Settings()
	if settingsError != nil {
		return "", settingsError
	}
	environment := settings.Environment
	if len(environment) == 0 {
		environment = filter.defaultEnvironment
	}
	return fmt.Sprintf(environmentFilePathTemplateConstant, filter.environmentRoot, environment, entry.Name), nil
}

func (filter *Filter) existingEnvironmentFiles(enabledEntries []ServiceEntry) EnvPaths {
	envPaths := make(EnvPaths, 0, len(enabledEntries))
	for _, entry := range enabledEntries {
		environmentFilePath, pathError := filter.EnvironmentFilePath(entry)
		if pathError != nil {
			filter.logger.Warn(
				serviceSettingsInvalidMessageConstant,
				zap.String(logFieldServiceConstant, entry.Name),
				zap.Error(pathError),
			)
			continue
		}
		if _, statError := filter.fileSystem.Stat(environmentFilePath); statError != nil {
			filter.logger.Warn(
				environmentFileMissingMessageConstant,
				zap.String(logFieldServiceConstant, entry.Name),
				zap.String(logFieldPathConstant, environmentFilePath),
			)
			continue
		}
		envPaths = append(envPaths, EnvPath{Service: entry.Name, Path: environmentFilePath})
	}
	return envPaths
}

// Run loads the descriptor at descriptorPath, applies the filter and renders the payload.
func (filter *Filter) Run(descriptorPath string, mode OutputMode) (string, error) {
	validatedMode, modeError := ParseOutputMode(string(mode))
	if modeError != nil {
		return "", modeError
	}

	descriptor, loadError := LoadDescriptor(descriptorPath)
	if loadError != nil {
		return "", loadError
	}

	result, applyError := filter.Apply(descriptor, validatedMode)
	if applyError != nil {
		return "", applyError
	}

	return result.Render()
}
