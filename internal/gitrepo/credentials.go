package gitrepo

import (
	"regexp"
	"strings"
)

const (
	httpsProtocolPrefixConstant           = "https://"
	credentialDelimiterConstant           = "@"
	credentialSeparatorConstant           = ":"
	redactedCredentialReplacementConstant = "${1}:xxxxx@"
	askPassEnvironmentNameConstant        = "GIT_ASKPASS"
	askPassResponderConstant              = "echo"
	usernameEnvironmentNameConstant       = "GIT_USERNAME"
	passwordEnvironmentNameConstant       = "GIT_PASSWORD"
	terminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant   = "0"
)

var embeddedCredentialPattern = regexp.MustCompile(`(://[^/\s:@]+):[^/\s@]+@`)

// InjectCredentials embeds username and token into an HTTPS remote URL.
//
// The remote is returned unchanged unless both username and token are non-empty,
// the remote uses the https scheme, and it does not already contain credentials.
func InjectCredentials(remoteURL string, username string, token string) string {
	if len(username) == 0 || len(token) == 0 {
		return remoteURL
	}
	if !strings.HasPrefix(remoteURL, httpsProtocolPrefixConstant) {
		return remoteURL
	}
	if strings.Contains(remoteURL, credentialDelimiterConstant) {
		return remoteURL
	}

	hostAndPath := strings.TrimPrefix(remoteURL, httpsProtocolPrefixConstant)
	return httpsProtocolPrefixConstant + username + credentialSeparatorConstant + token + credentialDelimiterConstant + hostAndPath
}

// CredentialEnvironment returns the variables that let git authenticate without prompting.
// An empty token yields an empty environment so the caller's environment is used untouched.
func CredentialEnvironment(username string, token string) map[string]string {
	if len(token) == 0 {
		return map[string]string{}
	}
	return map[string]string{
		askPassEnvironmentNameConstant:  askPassResponderConstant,
		usernameEnvironmentNameConstant: username,
		passwordEnvironmentNameConstant: token,
	}
}

// DisableTerminalPrompt adds the variable that stops git from prompting on the terminal.
func DisableTerminalPrompt(environment map[string]string) map[string]string {
	if environment == nil {
		environment = map[string]string{}
	}
	environment[terminalPromptEnvironmentNameConstant] = terminalPromptDisabledValueConstant
	return environment
}

// RedactCredentials masks passwords embedded in URLs anywhere within the provided text.
func RedactCredentials(text string) string {
	if !strings.Contains(text, credentialDelimiterConstant) {
		return text
	}
	return embeddedCredentialPattern.ReplaceAllString(text, redactedCredentialReplacementConstant)
}
