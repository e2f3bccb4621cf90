package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const (
	environmentAssignmentSeparatorConstant = "="
)

// OSCommandRunner executes commands using the operating system facilities.
// Commands inherit the caller's environment; CommandDetails.EnvironmentVariables
// override or extend it.
type OSCommandRunner struct {
	environmentProvider func() []string
}

// NewOSCommandRunner constructs a runner backed by os/exec and the process environment.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{environmentProvider: os.Environ}
}

// Run executes the supplied command and waits for it to exit. No deadline is
// applied beyond the one carried by executionContext.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), append([]string{}, command.Details.Arguments...)...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		environmentProvider := runner.environmentProvider
		if environmentProvider == nil {
			environmentProvider = os.Environ
		}
		executable.Env = MergeEnvironment(environmentProvider(), command.Details.EnvironmentVariables)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	executionResult := ExecutionResult{}
	runError := executable.Run()
	if runError != nil {
		exitError := &exec.ExitError{}
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		executionResult.ExitCode = exitError.ExitCode()
	}

	executionResult.StandardOutput = standardOutputBuffer.String()
	executionResult.StandardError = standardErrorBuffer.String()
	return executionResult, nil
}

// MergeEnvironment overlays overrides onto a KEY=VALUE environment list.
// Existing keys are replaced in place and new keys are appended in sorted order.
func MergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	mergedEnvironment := make([]string, 0, len(baseEnvironment)+len(overrides))
	appliedOverrides := make(map[string]struct{}, len(overrides))

	for _, assignment := range baseEnvironment {
		environmentKey, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if overrideValue, overridden := overrides[environmentKey]; overridden {
			mergedEnvironment = append(mergedEnvironment, environmentKey+environmentAssignmentSeparatorConstant+overrideValue)
			appliedOverrides[environmentKey] = struct{}{}
			continue
		}
		mergedEnvironment = append(mergedEnvironment, assignment)
	}

	remainingKeys := make([]string, 0, len(overrides))
	for environmentKey := range overrides {
		if _, applied := appliedOverrides[environmentKey]; applied {
			continue
		}
		remainingKeys = append(remainingKeys, environmentKey)
	}
	sort.Strings(remainingKeys)

	for _, environmentKey := range remainingKeys {
		mergedEnvironment = append(mergedEnvironment, environmentKey+environmentAssignmentSeparatorConstant+overrides[environmentKey])
	}

	return mergedEnvironment
}
