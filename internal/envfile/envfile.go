// Package envfile reads per-service KEY=VALUE environment files.
//
// Values are taken literally: quotes, "export" prefixes and ${} references are
// not interpreted, so tokens containing those characters survive unchanged.
package envfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const (
	commentPrefixConstant          = "#"
	keyValueSeparatorConstant      = "="
	scanFileErrorTemplateConstant  = "unable to scan environment file: %w"
	maximumLineLengthBytesConstant = 1024 * 1024
)

// Well-known keys read by the repository syncer.
const (
	KeyRepositoryURL = "REPOSITORY_URL"
	KeyBranch        = "BRANCH"
	KeyTag           = "TAG"
	KeyGitToken      = "GIT_TOKEN"
	KeyGitUsername   = "GIT_USERNAME"
)

// Values is a flat mapping of environment file keys to their raw values.
type Values map[string]string

// Lookup returns the value stored under key, or the empty string.
func (values Values) Lookup(key string) string {
	return values[key]
}

// Parse reads KEY=VALUE lines from reader. Blank lines and lines starting with "#"
// are skipped, surrounding whitespace is trimmed, the value is everything after
// the first "=", and a line without "=" yields its key with an empty value.
// A repeated key keeps its last value.
func Parse(reader io.Reader) (Values, error) {
	values := Values{}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maximumLineLengthBytesConstant)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if len(trimmedLine) == 0 || strings.HasPrefix(trimmedLine, commentPrefixConstant) {
			continue
		}

		key, value, _ := strings.Cut(trimmedLine, keyValueSeparatorConstant)
		values[key] = value
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(scanFileErrorTemplateConstant, scanError)
	}

	return values, nil
}

// ParseBytes parses environment file contents already held in memory.
func ParseBytes(contents []byte) (Values, error) {
	return Parse(bytes.NewReader(contents))
}
