// Package utils holds the ambient plumbing shared by the deploysync commands.
//
// ConfigurationLoader layers the embedded defaults, an optional configuration
// file and DEPLOYSYNC_ environment overrides through Viper. LoggerFactory builds
// zap loggers in structured or console form.
package utils
