package deployconfig

import (
	"errors"
	"fmt"
)

const (
	configErrorTemplateConstant                = "%s"
	configErrorWithSourceTemplateConstant      = "%s: %s"
	configErrorWithCauseTemplateConstant       = "%s: %v"
	configErrorWithSourceCauseTemplateConstant = "%s: %s: %v"
	loggerMissingMessageConstant               = "logger not configured"
	fileSystemMissingMessageConstant           = "file system not configured"
	invalidEnvPathsPayloadMessageConstant      = "invalid env_paths payload"
)

// ErrLoggerNotConfigured indicates the filter was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filter was constructed without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrInvalidEnvPathsPayload indicates an env_paths payload could not be decoded.
var ErrInvalidEnvPathsPayload = errors.New(invalidEnvPathsPayloadMessageConstant)

// ConfigError reports an unreadable, unparseable or empty descriptor, or an unknown output mode.
type ConfigError struct {
	Source  string
	Message string
	Cause   error
}

// Error describes the configuration failure.
func (configError ConfigError) Error() string {
	switch {
	case len(configError.Source) > 0 && configError.Cause != nil:
		return fmt.Sprintf(configErrorWithSourceCauseTemplateConstant, configError.Source, configError.Message, configError.Cause)
	case len(configError.Source) > 0:
		return fmt.Sprintf(configErrorWithSourceTemplateConstant, configError.Source, configError.Message)
	case configError.Cause != nil:
		return fmt.Sprintf(configErrorWithCauseTemplateConstant, configError.Message, configError.Cause)
	default:
		return fmt.Sprintf(configErrorTemplateConstant, configError.Message)
	}
}

// Unwrap exposes the underlying cause.
func (configError ConfigError) Unwrap() error {
	return configError.Cause
}
