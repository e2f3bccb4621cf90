package reposync

import (
	"context"
	"fmt"

	"github.com/mattn/go-shellwords"

	"github.com/temirov/deploysync/internal/deployconfig"
	"github.com/temirov/deploysync/internal/execshell"
	"github.com/temirov/deploysync/internal/repos/shared"
)

const (
	filterRunErrorTemplateConstant          = "unable to filter deployment descriptor: %w"
	filterCommandParseErrorTemplateConstant = "unable to parse config filter command %q: %w"
	filterCommandRunErrorTemplateConstant   = "config filter command failed: %w"
)

// EnvPathsSource obtains the ordered service-to-environment-file mapping for a descriptor.
type EnvPathsSource interface {
	EnvPaths(executionContext context.Context, descriptorPath string) (deployconfig.EnvPaths, error)
}

// FilterEnvPathsSource runs the descriptor filter in process and decodes its env_paths payload.
type FilterEnvPathsSource struct {
	Filter *deployconfig.Filter
}

// EnvPaths renders the env_paths payload and decodes it the same way an external payload is decoded.
func (source FilterEnvPathsSource) EnvPaths(_ context.Context, descriptorPath string) (deployconfig.EnvPaths, error) {
	if source.Filter == nil {
		return nil, ErrFilterNotConfigured
	}
	payload, runError := source.Filter.Run(descriptorPath, deployconfig.OutputModeEnvPaths)
	if runError != nil {
		return nil, fmt.Errorf(filterRunErrorTemplateConstant, runError)
	}
	return deployconfig.ParseEnvPaths([]byte(payload))
}

// CommandEnvPathsSource runs an external filter command as "<command line> <descriptor> env_paths"
// and decodes its standard output.
type CommandEnvPathsSource struct {
	CommandLine string
	Executor    shared.CommandExecutor
}

// EnvPaths executes the configured command and decodes the payload it prints.
func (source CommandEnvPathsSource) EnvPaths(executionContext context.Context, descriptorPath string) (deployconfig.EnvPaths, error) {
	if source.Executor == nil {
		return nil, ErrCommandExecutorNotConfigured
	}

	commandWords, parseError := shellwords.Parse(source.CommandLine)
	if parseError != nil {
		return nil, fmt.Errorf(filterCommandParseErrorTemplateConstant, source.CommandLine, parseError)
	}
	if len(commandWords) == 0 {
		return nil, ErrFilterCommandNotConfigured
	}

	arguments := append(commandWords[1:len(commandWords):len(commandWords)], descriptorPath, string(deployconfig.OutputModeEnvPaths))
	executionResult, executionError := source.Executor.Execute(executionContext, execshell.ShellCommand{
		Name:    execshell.CommandName(commandWords[0]),
		Details: execshell.CommandDetails{Arguments: arguments},
	})
	if executionError != nil {
		return nil, fmt.Errorf(filterCommandRunErrorTemplateConstant, executionError)
	}

	return deployconfig.ParseEnvPaths([]byte(executionResult.StandardOutput))
}
