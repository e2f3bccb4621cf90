package shared

import (
	"context"
	"io/fs"

	"github.com/temirov/deploysync/internal/execshell"
)

const (
	// GitMetadataDirectoryNameConstant is the entry that marks a directory as a git working tree.
	GitMetadataDirectoryNameConstant = ".git"
)

// GitExecutor exposes the subset of shell execution used by repository services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandExecutor runs arbitrary external commands.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// FileSystem exposes filesystem operations required by repository services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	MkdirAll(path string, permissions fs.FileMode) error
	RemoveAll(path string) error
	ReadFile(path string) ([]byte, error)
	Abs(path string) (string, error)
}
