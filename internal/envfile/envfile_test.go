package envfile_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/deploysync/internal/envfile"
)

func TestParse(testInstance *testing.T) {
	testCases := []struct {
		name           string
		contents       string
		expectedValues envfile.Values
	}{
		{
			name:     "keys_and_values",
			contents: "REPOSITORY_URL=https://github.com/acme/api.git\nBRANCH=main\n",
			expectedValues: envfile.Values{
				envfile.KeyRepositoryURL: "https://github.com/acme/api.git",
				envfile.KeyBranch:        "main",
			},
		},
		{
			name:     "comments_and_blank_lines_skipped",
			contents: "# credentials\n\n   \nGIT_TOKEN=abc\n  # indented comment\n",
			expectedValues: envfile.Values{
				envfile.KeyGitToken: "abc",
			},
		},
		{
			name:     "value_keeps_later_separators",
			contents: "GIT_TOKEN=abc=def==\n",
			expectedValues: envfile.Values{
				envfile.KeyGitToken: "abc=def==",
			},
		},
		{
			name:     "empty_value",
			contents: "TAG=\n",
			expectedValues: envfile.Values{
				envfile.KeyTag: "",
			},
		},
		{
			name:     "line_without_separator_yields_empty_value",
			contents: "BRANCH\n",
			expectedValues: envfile.Values{
				envfile.KeyBranch: "",
			},
		},
		{
			name:     "surrounding_whitespace_trimmed_and_quotes_literal",
			contents: "  GIT_USERNAME=\"deployer\"  \r\nGIT_TOKEN=${SECRET}\n",
			expectedValues: envfile.Values{
				envfile.KeyGitUsername: "\"deployer\"",
				envfile.KeyGitToken:    "${SECRET}",
			},
		},
		{
			name:     "last_duplicate_wins",
			contents: "BRANCH=main\nBRANCH=release\n",
			expectedValues: envfile.Values{
				envfile.KeyBranch: "release",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			values, parseError := envfile.Parse(strings.NewReader(testCase.contents))
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedValues, values)
		})
	}
}
