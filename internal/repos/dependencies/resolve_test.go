package dependencies_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/deploysync/internal/execshell"
	"github.com/temirov/deploysync/internal/repos/dependencies"
	"github.com/temirov/deploysync/internal/repos/filesystem"
)

func TestResolveFileSystemDefaultsToOperatingSystem(t *testing.T) {
	require.Equal(t, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))
}

func TestResolveShellExecutor(t *testing.T) {
	constructed, constructionError := dependencies.ResolveShellExecutor(nil, nil)
	require.NoError(t, constructionError)
	require.NotNil(t, constructed)

	existing, existingError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(t, existingError)

	resolved, resolveError := dependencies.ResolveShellExecutor(existing, zap.NewNop())
	require.NoError(t, resolveError)
	require.Same(t, existing, resolved)
}
