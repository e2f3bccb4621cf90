package reposync_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/deploysync/internal/execshell"
	"github.com/temirov/deploysync/internal/repos/filesystem"
	"github.com/temirov/deploysync/internal/reposync"
)

const (
	integrationGitExecutableConstant    = "git"
	integrationServiceNameConstant      = "billing"
	integrationBranchConstant           = "main"
	integrationTagConstant              = "v0.1.0"
	integrationInitialFileNameConstant  = "README.md"
	integrationUpdatedFileNameConstant  = "CHANGELOG.md"
	integrationEnvFileTemplateConstant  = "REPOSITORY_URL=%s\nBRANCH=" + integrationBranchConstant + "\n"
	integrationTaggedEnvFileTemplate    = "REPOSITORY_URL=%s\nBRANCH=" + integrationBranchConstant + "\nTAG=" + integrationTagConstant + "\n"
	integrationRepositoryURLPlaceholder = "%s"
)

var integrationGitIdentityEnvironment = []string{
	"GIT_AUTHOR_NAME=deploysync",
	"GIT_AUTHOR_EMAIL=deploysync@example.com",
	"GIT_COMMITTER_NAME=deploysync",
	"GIT_COMMITTER_EMAIL=deploysync@example.com",
	"GIT_TERMINAL_PROMPT=0",
}

func TestSyncServiceIntegration(testInstance *testing.T) {
	if _, lookupError := exec.LookPath(integrationGitExecutableConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	workspace := testInstance.TempDir()
	originDirectory := filepath.Join(workspace, "origin")
	require.NoError(testInstance, os.MkdirAll(originDirectory, 0o755))

	runIntegrationGit(testInstance, originDirectory, "init", "--initial-branch="+integrationBranchConstant)
	commitIntegrationFile(testInstance, originDirectory, integrationInitialFileNameConstant)
	runIntegrationGit(testInstance, originDirectory, "tag", integrationTagConstant)

	envFilePath := filepath.Join(workspace, "env", "develop", integrationServiceNameConstant+".env")
	writeIntegrationEnvFile(testInstance, envFilePath, integrationEnvFileTemplateConstant, originDirectory)

	shellExecutor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)

	service, serviceError := reposync.NewService(
		reposync.Options{ServicesRoot: filepath.Join(workspace, "services"), DisableTerminalPrompt: true},
		reposync.Dependencies{GitExecutor: shellExecutor, FileSystem: filesystem.OSFileSystem{}, Logger: zap.NewNop()},
	)
	require.NoError(testInstance, serviceError)

	firstResult, firstError := service.SyncService(context.Background(), integrationServiceNameConstant, envFilePath)
	require.NoError(testInstance, firstError)
	require.True(testInstance, firstResult.Cloned)
	require.FileExists(testInstance, filepath.Join(firstResult.WorkingTree, integrationInitialFileNameConstant))
	require.DirExists(testInstance, filepath.Join(firstResult.WorkingTree, ".git"))

	commitIntegrationFile(testInstance, originDirectory, integrationUpdatedFileNameConstant)

	secondResult, secondError := service.SyncService(context.Background(), integrationServiceNameConstant, envFilePath)
	require.NoError(testInstance, secondError)
	require.False(testInstance, secondResult.Cloned)
	require.FileExists(testInstance, filepath.Join(secondResult.WorkingTree, integrationUpdatedFileNameConstant))

	writeIntegrationEnvFile(testInstance, envFilePath, integrationTaggedEnvFileTemplate, originDirectory)

	taggedResult, taggedError := service.SyncService(context.Background(), integrationServiceNameConstant, envFilePath)
	require.NoError(testInstance, taggedError)
	require.Equal(testInstance, integrationTagConstant, taggedResult.Tag)
	require.NoFileExists(testInstance, filepath.Join(taggedResult.WorkingTree, integrationUpdatedFileNameConstant))
	require.Equal(
		testInstance,
		runIntegrationGit(testInstance, originDirectory, "rev-parse", integrationTagConstant+"^{commit}"),
		runIntegrationGit(testInstance, taggedResult.WorkingTree, "rev-parse", "HEAD"),
	)
}

func commitIntegrationFile(testInstance *testing.T, repositoryDirectory string, fileName string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryDirectory, fileName), []byte(fileName+"\n"), 0o644))
	runIntegrationGit(testInstance, repositoryDirectory, "add", fileName)
	runIntegrationGit(testInstance, repositoryDirectory, "commit", "-m", "add "+fileName)
}

func writeIntegrationEnvFile(testInstance *testing.T, envFilePath string, template string, repositoryURL string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(envFilePath), 0o755))
	contents := strings.Replace(template, integrationRepositoryURLPlaceholder, repositoryURL, 1)
	require.NoError(testInstance, os.WriteFile(envFilePath, []byte(contents), 0o600))
}

func runIntegrationGit(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()
	command := exec.Command(integrationGitExecutableConstant, arguments...)
	command.Dir = workingDirectory
	command.Env = append(append([]string{}, os.Environ()...), integrationGitIdentityEnvironment...)
	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
	return strings.TrimSpace(string(outputBytes))
}
