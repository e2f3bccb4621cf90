package deployconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/deploysync/internal/deployconfig"
	"github.com/temirov/deploysync/internal/repos/filesystem"
)

const (
	testDescriptorContentsConstant = "web:\n  enabled: true\n  env: production\n  replicas: 2\napi:\n  enabled: true\nworker:\n  enabled: false\n  env: production\ncache:\n  enabled: true\n  env: staging\n"
)

type filterFixture struct {
	filter          *deployconfig.Filter
	environmentRoot string
	observedLogs    *observer.ObservedLogs
}

func newFilterFixture(testInstance *testing.T, existingEnvironmentFiles ...string) filterFixture {
	testInstance.Helper()

	environmentRoot := filepath.Join(testInstance.TempDir(), "env")
	for _, relativePath := range existingEnvironmentFiles {
		absolutePath := filepath.Join(environmentRoot, relativePath)
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), 0o755))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte("REPOSITORY_URL=https://example.com/r.git\n"), 0o600))
	}

	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	filter, filterError := deployconfig.NewFilter(
		deployconfig.Options{EnvironmentRoot: environmentRoot},
		deployconfig.Dependencies{Logger: zap.New(observedCore), FileSystem: filesystem.OSFileSystem{}},
	)
	require.NoError(testInstance, filterError)

	return filterFixture{filter: filter, environmentRoot: environmentRoot, observedLogs: observedLogs}
}

func parseTestDescriptor(testInstance *testing.T, contents string) deployconfig.Descriptor {
	testInstance.Helper()
	descriptor, parseError := deployconfig.ParseDescriptor(testDescriptorSourceConstant, []byte(contents))
	require.NoError(testInstance, parseError)
	return descriptor
}

func TestNewFilterValidatesDependencies(testInstance *testing.T) {
	_, loggerError := deployconfig.NewFilter(deployconfig.Options{}, deployconfig.Dependencies{FileSystem: filesystem.OSFileSystem{}})
	require.ErrorIs(testInstance, loggerError, deployconfig.ErrLoggerNotConfigured)

	_, fileSystemError := deployconfig.NewFilter(deployconfig.Options{}, deployconfig.Dependencies{Logger: zap.NewNop()})
	require.ErrorIs(testInstance, fileSystemError, deployconfig.ErrFileSystemNotConfigured)
}

func TestFilterServicesMode(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance)
	descriptor := parseTestDescriptor(testInstance, testDescriptorContentsConstant)

	result, applyError := fixture.filter.Apply(descriptor, deployconfig.OutputModeServices)
	require.NoError(testInstance, applyError)
	require.Equal(testInstance, []string{"web", "api", "cache"}, result.Services)

	rendered, renderError := result.Render()
	require.NoError(testInstance, renderError)
	require.Equal(testInstance, "web api cache", rendered)
}

func TestFilterDefaultModeIsServices(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance)
	descriptor := parseTestDescriptor(testInstance, testDescriptorContentsConstant)

	result, applyError := fixture.filter.Apply(descriptor, "")
	require.NoError(testInstance, applyError)
	require.Equal(testInstance, deployconfig.OutputModeServices, result.Mode)
}

func TestFilterEnvPathsModeOmitsMissingFiles(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance, "production/web.env", "develop/api.env", "production/worker.env")
	descriptor := parseTestDescriptor(testInstance, testDescriptorContentsConstant)

	result, applyError := fixture.filter.Apply(descriptor, deployconfig.OutputModeEnvPaths)
	require.NoError(testInstance, applyError)

	expectedEnvPaths := deployconfig.EnvPaths{
		{Service: "web", Path: fixture.environmentRoot + "/production/web.env"},
		{Service: "api", Path: fixture.environmentRoot + "/develop/api.env"},
	}
	require.Equal(testInstance, expectedEnvPaths, result.EnvPaths)

	warnings := fixture.observedLogs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(testInstance, warnings, 1)
	require.Equal(testInstance, "cache", warnings[0].ContextMap()["service"])
	require.Equal(testInstance, fixture.environmentRoot+"/staging/cache.env", warnings[0].ContextMap()["path"])

	rendered, renderError := result.Render()
	require.NoError(testInstance, renderError)
	require.Equal(testInstance, `{"web":"`+fixture.environmentRoot+`/production/web.env","api":"`+fixture.environmentRoot+`/develop/api.env"}`, rendered)
}

func TestFilterEnvironmentFilePathUsesDefaults(testInstance *testing.T) {
	filter, filterError := deployconfig.NewFilter(deployconfig.Options{}, deployconfig.Dependencies{Logger: zap.NewNop(), FileSystem: filesystem.OSFileSystem{}})
	require.NoError(testInstance, filterError)

	descriptor := parseTestDescriptor(testInstance, "api:\n  enabled: true\nweb:\n  enabled: true\n  env: production\n")

	apiPath, apiError := filter.EnvironmentFilePath(descriptor.Entries[0])
	require.NoError(testInstance, apiError)
	require.Equal(testInstance, "./env/develop/api.env", apiPath)

	webPath, webError := filter.EnvironmentFilePath(descriptor.Entries[1])
	require.NoError(testInstance, webError)
	require.Equal(testInstance, "./env/production/web.env", webPath)
}

func TestFilterEnvPathsModeSkipsUnreadableSettings(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance, "develop/web.env")
	descriptor := parseTestDescriptor(testInstance, "api:\n  enabled: true\n  env: [a, b]\nweb:\n  enabled: true\n")

	result, applyError := fixture.filter.Apply(descriptor, deployconfig.OutputModeEnvPaths)
	require.NoError(testInstance, applyError)
	require.Equal(testInstance, []string{"web"}, result.EnvPaths.Services())
	require.Equal(testInstance, 1, fixture.observedLogs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestFilterFullModeRendersEnabledRecordsVerbatim(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance)
	descriptor := parseTestDescriptor(testInstance, testDescriptorContentsConstant+"search:\n  enabled: true\n  ports: [80, 443]\n  labels: {tier: \"<edge>\", weight: 0.5, note: null}\n")

	result, applyError := fixture.filter.Apply(descriptor, deployconfig.OutputModeFull)
	require.NoError(testInstance, applyError)

	rendered, renderError := result.Render()
	require.NoError(testInstance, renderError)
	require.Equal(
		testInstance,
		`{"web":{"enabled":true,"env":"production","replicas":2},"api":{"enabled":true},"cache":{"enabled":true,"env":"staging"},"search":{"enabled":true,"ports":[80,443],"labels":{"tier":"<edge>","weight":0.5,"note":null}}}`,
		rendered,
	)
}

func TestFilterAppliesMergeKeys(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance, "prod/api.env", "prod/web.env")
	descriptor := parseTestDescriptor(testInstance, "base: &base\n  enabled: false\n  env: prod\napi:\n  <<: *base\n  enabled: true\nweb:\n  <<: {enabled: true, env: prod}\n")

	servicesResult, servicesError := fixture.filter.Apply(descriptor, deployconfig.OutputModeServices)
	require.NoError(testInstance, servicesError)
	require.Equal(testInstance, []string{"api", "web"}, servicesResult.Services)

	envPathsResult, envPathsError := fixture.filter.Apply(descriptor, deployconfig.OutputModeEnvPaths)
	require.NoError(testInstance, envPathsError)
	require.Equal(
		testInstance,
		deployconfig.EnvPaths{
			{Service: "api", Path: fixture.environmentRoot + "/prod/api.env"},
			{Service: "web", Path: fixture.environmentRoot + "/prod/web.env"},
		},
		envPathsResult.EnvPaths,
	)

	fullResult, fullError := fixture.filter.Apply(descriptor, deployconfig.OutputModeFull)
	require.NoError(testInstance, fullError)
	rendered, renderError := fullResult.Render()
	require.NoError(testInstance, renderError)
	require.Equal(testInstance, `{"api":{"enabled":true,"env":"prod"},"web":{"enabled":true,"env":"prod"}}`, rendered)
}

func TestFilterFullModeRendersLegacyBooleans(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance)
	descriptor := parseTestDescriptor(testInstance, "api:\n  enabled: yes\n  on: 1\n  debug: Off\n  flag: 'yes'\n")

	result, applyError := fixture.filter.Apply(descriptor, deployconfig.OutputModeFull)
	require.NoError(testInstance, applyError)

	rendered, renderError := result.Render()
	require.NoError(testInstance, renderError)
	require.Equal(testInstance, `{"api":{"enabled":true,"true":1,"debug":false,"flag":"yes"}}`, rendered)
}

func TestFilterFullModeEmptyWhenNothingEnabled(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance)
	descriptor := parseTestDescriptor(testInstance, "api:\n  enabled: false\n")

	result, applyError := fixture.filter.Apply(descriptor, deployconfig.OutputModeFull)
	require.NoError(testInstance, applyError)

	rendered, renderError := result.Render()
	require.NoError(testInstance, renderError)
	require.Equal(testInstance, "{}", rendered)
}

func TestFilterRejectsUnknownMode(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance)
	descriptor := parseTestDescriptor(testInstance, testDescriptorContentsConstant)

	_, applyError := fixture.filter.Apply(descriptor, deployconfig.OutputMode("yaml"))

	var configError deployconfig.ConfigError
	require.True(testInstance, errors.As(applyError, &configError))
	require.Equal(testInstance, `unknown output mode "yaml"`, applyError.Error())
}

func TestFilterRun(testInstance *testing.T) {
	fixture := newFilterFixture(testInstance)
	descriptorPath := filepath.Join(testInstance.TempDir(), testDescriptorSourceConstant)
	require.NoError(testInstance, os.WriteFile(descriptorPath, []byte(testDescriptorContentsConstant), 0o600))

	payload, runError := fixture.filter.Run(descriptorPath, deployconfig.OutputModeServices)
	require.NoError(testInstance, runError)
	require.Equal(testInstance, "web api cache", payload)

	_, missingError := fixture.filter.Run(filepath.Join(testInstance.TempDir(), "missing.yaml"), deployconfig.OutputModeServices)
	require.Error(testInstance, missingError)
}
