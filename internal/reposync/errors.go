package reposync

import (
	"errors"
	"fmt"
)

const (
	gitExecutorMissingMessageConstant     = "git executor not configured"
	fileSystemMissingMessageConstant      = "file system not configured"
	loggerMissingMessageConstant          = "logger not configured"
	commandExecutorMissingMessageConstant = "command executor not configured"
	filterMissingMessageConstant          = "descriptor filter not configured"
	filterCommandMissingMessageConstant   = "config filter command is empty"
	serviceNameInvalidMessageConstant     = "service name must be a single path element"
	noEnabledServicesMessageConstant      = "no enabled services found in configuration"
	syncIncompleteMessageConstant         = "not every repository was updated"
	missingFieldErrorTemplateConstant     = "required field %s missing in %s"
	subprocessErrorTemplateConstant       = "%s failed for service %s: %v"
)

// ErrGitExecutorNotConfigured indicates the service was constructed without a git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the service was constructed without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrLoggerNotConfigured indicates the service was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrCommandExecutorNotConfigured indicates a command source has no executor.
var ErrCommandExecutorNotConfigured = errors.New(commandExecutorMissingMessageConstant)

// ErrFilterNotConfigured indicates an in-process source has no filter.
var ErrFilterNotConfigured = errors.New(filterMissingMessageConstant)

// ErrFilterCommandNotConfigured indicates a command source has an empty command line.
var ErrFilterCommandNotConfigured = errors.New(filterCommandMissingMessageConstant)

// ErrInvalidServiceName indicates a service name that would escape the services root.
var ErrInvalidServiceName = errors.New(serviceNameInvalidMessageConstant)

// ErrNoEnabledServices indicates the descriptor yielded nothing to synchronize.
var ErrNoEnabledServices = errors.New(noEnabledServicesMessageConstant)

// ErrSyncIncomplete indicates at least one service failed to synchronize.
var ErrSyncIncomplete = errors.New(syncIncompleteMessageConstant)

// Step names a stage of the per-service pipeline.
type Step string

// Pipeline stages.
const (
	StepValidateName    Step = "validate service name"
	StepLoadEnvironment Step = "load environment"
	StepPrepareRoot     Step = "prepare services root"
	StepFetch           Step = "git fetch"
	StepRemoveStale     Step = "remove stale directory"
	StepClone           Step = "git clone"
	StepCheckoutBranch  Step = "git checkout branch"
	StepPull            Step = "git pull"
	StepCheckoutTag     Step = "git checkout tag"
)

// MissingFieldError reports a required environment file key that is absent or empty.
type MissingFieldError struct {
	Field       string
	EnvFilePath string
}

// Error describes the missing field.
func (missingFieldError MissingFieldError) Error() string {
	return fmt.Sprintf(missingFieldErrorTemplateConstant, missingFieldError.Field, missingFieldError.EnvFilePath)
}

// SubprocessError reports a git command that failed while synchronizing a service.
type SubprocessError struct {
	Step    Step
	Service string
	Cause   error
}

// Error describes the failed step.
func (subprocessError SubprocessError) Error() string {
	return fmt.Sprintf(subprocessErrorTemplateConstant, subprocessError.Step, subprocessError.Service, subprocessError.Cause)
}

// Unwrap exposes the underlying command error.
func (subprocessError SubprocessError) Unwrap() error {
	return subprocessError.Cause
}
