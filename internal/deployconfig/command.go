package deployconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/deploysync/internal/repos/dependencies"
	"github.com/temirov/deploysync/internal/repos/shared"
	"github.com/temirov/deploysync/internal/utils"
	"github.com/temirov/deploysync/internal/utils/flags"
	pathutils "github.com/temirov/deploysync/internal/utils/path"
)

const (
	commandUseConstant                    = "parse <config_file> [output_format]"
	commandShortDescriptionConstant       = "List enabled services of a deployment descriptor"
	commandLongDescriptionConstant        = "parse reads a YAML deployment descriptor and prints the enabled services, their environment file paths, or their full records."
	outputFormatDescriptionConstant       = "Output format of the payload written to standard output."
	commandExampleTemplateConstant        = "  deploysync parse deployment.yaml\n  deploysync parse deployment.yaml env_paths\n\noutput_format: %s"
	configFileArgumentMessageConstant     = "config file argument is required"
	tooManyArgumentsTemplateConstant      = "accepts at most 2 arguments, received %d"
	descriptorFilterFailedMessageConstant = "Unable to filter deployment descriptor"
	logFieldDescriptorConstant            = "descriptor"
	maximumArgumentCountConstant          = 2
)

// ErrConfigFileArgumentRequired indicates the descriptor path argument was omitted.
var ErrConfigFileArgumentRequired = errors.New(configFileArgumentMessageConstant)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the parse command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() ToolConfiguration
	FileSystem            shared.FileSystem
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the parse command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:          commandUseConstant,
		Short:        commandShortDescriptionConstant,
		Long:         commandLongDescriptionConstant,
		Example:      fmt.Sprintf(commandExampleTemplateConstant, flags.FormatChoiceUsage(string(OutputModeServices), SupportedOutputModes(), outputFormatDescriptionConstant)),
		Args:         validateArguments,
		RunE:         builder.run,
		SilenceUsage: true,
	}
	return command, nil
}

func validateArguments(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		_ = command.Usage()
		return ErrConfigFileArgumentRequired
	}
	if len(arguments) > maximumArgumentCountConstant {
		return fmt.Errorf(tooManyArgumentsTemplateConstant, len(arguments))
	}
	return nil
}

// run writes the payload on success. Descriptor and mode failures are logged and leave
// standard output empty without failing the command.
func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	descriptorPath := builder.HomeExpander.Expand(strings.TrimSpace(arguments[0]))
	requestedMode := configuration.DefaultOutputFormat
	if len(arguments) > 1 {
		requestedMode = arguments[1]
	}

	filter, filterError := NewFilter(configuration.FilterOptions(), Dependencies{
		Logger:     logger,
		FileSystem: dependencies.ResolveFileSystem(builder.FileSystem),
	})
	if filterError != nil {
		return filterError
	}

	payload, runError := filter.Run(descriptorPath, OutputMode(requestedMode))
	if runError != nil {
		logger.Error(
			descriptorFilterFailedMessageConstant,
			zap.String(logFieldDescriptorConstant, descriptorPath),
			zap.String(logFieldModeConstant, requestedMode),
			zap.Error(runError),
		)
		return nil
	}

	_, writeError := fmt.Fprint(utils.NewFlushingWriter(command.OutOrStdout()), payload)
	return writeError
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
