package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "services",
			choices:        []string{"services", "env_paths", "full"},
			description:    "Output format.",
			expectedOutput: "`<SERVICES|env_paths|full>` Output format.",
		},
		{
			name:           "DefaultLaterChoice",
			defaultChoice:  "console",
			choices:        []string{"structured", "console"},
			description:    "Log encoding.",
			expectedOutput: "`<structured|CONSOLE>` Log encoding.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "info",
			choices:        []string{"debug", "info"},
			expectedOutput: "`<debug|INFO>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "full",
			choices:        []string{"full", "full", "services"},
			description:    "Pick one.",
			expectedOutput: "`<FULL|services>` Pick one.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestNormalizeChoice(t *testing.T) {
	normalized, normalizeError := NormalizeChoice(" ENV_PATHS ", []string{"services", "env_paths", "full"})
	require.NoError(t, normalizeError)
	require.Equal(t, "env_paths", normalized)

	_, unsupportedError := NormalizeChoice("yaml", []string{"services", "env_paths", "full"})
	require.EqualError(t, unsupportedError, `unsupported value "yaml" (expected one of services, env_paths, full)`)
}

func TestBindChoiceFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	choiceValue := BindChoiceFlag(flagSet, "log-format", "structured", []string{"structured", "console"}, "Log encoding.")

	require.Equal(t, "structured", choiceValue.String())
	require.NoError(t, flagSet.Parse([]string{"--log-format", "Console"}))
	require.Equal(t, "console", choiceValue.String())
	require.Error(t, flagSet.Parse([]string{"--log-format", "xml"}))
	require.Equal(t, "`<STRUCTURED|console>` Log encoding.", flagSet.Lookup("log-format").Usage)
}
