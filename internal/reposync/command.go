package reposync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/deploysync/internal/deployconfig"
	"github.com/temirov/deploysync/internal/repos/dependencies"
	"github.com/temirov/deploysync/internal/repos/shared"
	pathutils "github.com/temirov/deploysync/internal/utils/path"
)

const (
	commandUseConstant                  = "sync <config_file>"
	commandShortDescriptionConstant     = "Clone or update the repository of every enabled service"
	commandLongDescriptionConstant      = "sync reads a deployment descriptor, resolves the environment file of every enabled service, and clones or updates one git working tree per service under the services root."
	commandExampleConstant              = "  deploysync sync deployment.yaml\n  DEPLOYSYNC_TOOLS_SYNC_SERVICES_ROOT=/srv/services deploysync sync deployment.yaml"
	configFileArgumentMessageConstant   = "config file argument is required"
	summaryTemplateConstant             = "Updated %d of %d repositories\n"
	syncIncompleteErrorTemplateConstant = "%w: failed services %s"
	failedServicesSeparatorConstant     = ", "
	envPathsResolvedMessageConstant     = "Resolved environment files"
	logFieldDescriptorConstant          = "descriptor"
	logFieldServicesConstant            = "services"
	logFieldServicesRootConstant        = "services_root"
	servicesRootResolvedMessageConstant = "Synchronizing into services root"
	logFieldSourceConstant              = "source"
	sourceCommandLabelConstant          = "command"
	sourceFilterLabelConstant           = "in-process"
)

// ErrConfigFileArgumentRequired indicates the descriptor path argument was omitted.
var ErrConfigFileArgumentRequired = errors.New(configFileArgumentMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider              LoggerProvider
	ConfigurationProvider       func() ToolConfiguration
	FilterConfigurationProvider func() deployconfig.ToolConfiguration
	GitExecutor                 shared.GitExecutor
	CommandExecutor             shared.CommandExecutor
	FileSystem                  shared.FileSystem
	HomeExpander                *pathutils.HomeExpander
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Example:      commandExampleConstant,
		Args:         validateArguments,
		RunE:         builder.run,
		SilenceUsage: true,
	}
	return command, nil
}

func validateArguments(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		_ = command.Usage()
		return ErrConfigFileArgumentRequired
	}
	return nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()
	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	descriptorPath := builder.HomeExpander.Expand(strings.TrimSpace(arguments[0]))

	gitExecutor, commandExecutor, executorError := builder.resolveExecutors(logger)
	if executorError != nil {
		return executorError
	}

	source, sourceLabel, sourceError := builder.resolveSource(configuration, logger, fileSystem, commandExecutor)
	if sourceError != nil {
		return sourceError
	}

	envPaths, envPathsError := source.EnvPaths(command.Context(), descriptorPath)
	if envPathsError != nil {
		return envPathsError
	}
	logger.Info(
		envPathsResolvedMessageConstant,
		zap.String(logFieldDescriptorConstant, descriptorPath),
		zap.String(logFieldSourceConstant, sourceLabel),
		zap.Strings(logFieldServicesConstant, envPaths.Services()),
	)
	if len(envPaths) == 0 {
		return ErrNoEnabledServices
	}

	syncService, serviceError := NewService(
		Options{
			ServicesRoot:          builder.HomeExpander.Expand(configuration.ServicesRoot),
			DisableTerminalPrompt: configuration.DisableTerminalPrompt,
		},
		Dependencies{GitExecutor: gitExecutor, FileSystem: fileSystem, Logger: logger},
	)
	if serviceError != nil {
		return serviceError
	}

	logger.Debug(servicesRootResolvedMessageConstant, zap.String(logFieldServicesRootConstant, syncService.ServicesRoot()))
	summary := syncService.SyncAll(command.Context(), envPaths)

	reporter := shared.NewWriterReporter(command.ErrOrStderr())
	if !summary.Succeeded() {
		reporter.Failuref(summaryTemplateConstant, summary.SuccessCount, summary.TotalCount)
		return fmt.Errorf(syncIncompleteErrorTemplateConstant, ErrSyncIncomplete, strings.Join(summary.FailedServices(), failedServicesSeparatorConstant))
	}
	reporter.Successf(summaryTemplateConstant, summary.SuccessCount, summary.TotalCount)
	return nil
}

func (builder *CommandBuilder) resolveExecutors(logger *zap.Logger) (shared.GitExecutor, shared.CommandExecutor, error) {
	if builder.GitExecutor != nil && builder.CommandExecutor != nil {
		return builder.GitExecutor, builder.CommandExecutor, nil
	}

	shellExecutor, executorError := dependencies.ResolveShellExecutor(nil, logger)
	if executorError != nil {
		return nil, nil, executorError
	}

	var gitExecutor shared.GitExecutor = shellExecutor
	if builder.GitExecutor != nil {
		gitExecutor = builder.GitExecutor
	}
	var commandExecutor shared.CommandExecutor = shellExecutor
	if builder.CommandExecutor != nil {
		commandExecutor = builder.CommandExecutor
	}
	return gitExecutor, commandExecutor, nil
}

func (builder *CommandBuilder) resolveSource(configuration ToolConfiguration, logger *zap.Logger, fileSystem shared.FileSystem, commandExecutor shared.CommandExecutor) (EnvPathsSource, string, error) {
	if len(configuration.ConfigFilterCommand) > 0 {
		return CommandEnvPathsSource{CommandLine: configuration.ConfigFilterCommand, Executor: commandExecutor}, sourceCommandLabelConstant, nil
	}

	filterConfiguration := deployconfig.DefaultToolConfiguration()
	if builder.FilterConfigurationProvider != nil {
		filterConfiguration = builder.FilterConfigurationProvider().Sanitize()
	}
	filter, filterError := deployconfig.NewFilter(filterConfiguration.FilterOptions(), deployconfig.Dependencies{Logger: logger, FileSystem: fileSystem})
	if filterError != nil {
		return nil, "", filterError
	}
	return FilterEnvPathsSource{Filter: filter}, sourceFilterLabelConstant, nil
}

func (builder *CommandBuilder) resolveConfiguration() ToolConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultToolConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
