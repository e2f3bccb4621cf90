package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/deploysync/internal/execshell"
	"github.com/temirov/deploysync/internal/repos/filesystem"
	"github.com/temirov/deploysync/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveShellExecutor returns the provided executor or constructs a shell-backed default.
func ResolveShellExecutor(existing *execshell.ShellExecutor, logger *zap.Logger) (*execshell.ShellExecutor, error) {
	if existing != nil {
		return existing, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}
