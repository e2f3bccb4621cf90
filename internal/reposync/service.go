package reposync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/deploysync/internal/deployconfig"
	"github.com/temirov/deploysync/internal/envfile"
	"github.com/temirov/deploysync/internal/execshell"
	"github.com/temirov/deploysync/internal/gitrepo"
	"github.com/temirov/deploysync/internal/repos/shared"
)

const (
	servicesRootPermissionsConstant           = 0o755
	currentDirectoryElementConstant           = "."
	parentDirectoryElementConstant            = ".."
	gitFetchSubcommandConstant                = "fetch"
	gitFetchAllFlagConstant                   = "--all"
	gitCloneSubcommandConstant                = "clone"
	gitCheckoutSubcommandConstant             = "checkout"
	gitPullSubcommandConstant                 = "pull"
	servicesRootResolveErrorTemplateConstant  = "unable to resolve services root %s: %w"
	environmentFileReadErrorTemplateConstant  = "unable to read environment file %s: %w"
	environmentFileParseErrorTemplateConstant = "unable to parse environment file %s: %w"
	stepErrorTemplateConstant                 = "%s failed for service %s: %w"
	serviceUpdateStartedMessageConstant       = "Updating repository"
	serviceUpdateSucceededMessageConstant     = "Repository updated"
	serviceUpdateFailedMessageConstant        = "Repository update failed"
	existingRepositoryMessageConstant         = "Repository exists, fetching updates"
	cloneRequiredMessageConstant              = "Repository missing, cloning"
	staleDirectoryMessageConstant             = "Removing directory without git metadata"
	tagCheckedOutMessageConstant              = "Tag checked out in detached state"
	logFieldServiceConstant                   = "service"
	logFieldEnvFileConstant                   = "env_file"
	logFieldWorkingTreeConstant               = "working_tree"
	logFieldBranchConstant                    = "branch"
	logFieldTagConstant                       = "tag"
	logFieldClonedConstant                    = "cloned"
)

// Options tunes repository synchronization.
type Options struct {
	ServicesRoot          string
	DisableTerminalPrompt bool
}

// Dependencies enumerates collaborators required by Service.
type Dependencies struct {
	GitExecutor shared.GitExecutor
	FileSystem  shared.FileSystem
	Logger      *zap.Logger
}

// ServiceResult captures the observable outcome of one service synchronization.
type ServiceResult struct {
	Service     string
	WorkingTree string
	Cloned      bool
	Branch      string
	Tag         string
}

// Service synchronizes service working trees beneath a services root.
type Service struct {
	executor              shared.GitExecutor
	fileSystem            shared.FileSystem
	logger                *zap.Logger
	servicesRoot          string
	disableTerminalPrompt bool
}

// NewService constructs a Service. The services root is resolved to an absolute path.
func NewService(options Options, dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}

	servicesRoot := strings.TrimSpace(options.ServicesRoot)
	if len(servicesRoot) == 0 {
		servicesRoot = defaultServicesRootConstant
	}
	absoluteServicesRoot, resolveError := dependencies.FileSystem.Abs(servicesRoot)
	if resolveError != nil {
		return nil, fmt.Errorf(servicesRootResolveErrorTemplateConstant, servicesRoot, resolveError)
	}

	return &Service{
		executor:              dependencies.GitExecutor,
		fileSystem:            dependencies.FileSystem,
		logger:                dependencies.Logger,
		servicesRoot:          absoluteServicesRoot,
		disableTerminalPrompt: options.DisableTerminalPrompt,
	}, nil
}

// ServicesRoot reports the absolute directory holding the working trees.
func (service *Service) ServicesRoot() string {
	return service.servicesRoot
}

type syncState struct {
	serviceName string
	envFilePath string
	remoteURL   string
	cloneURL    string
	username    string
	token       string
	environment map[string]string
	result      ServiceResult
}

type syncStep func(executionContext context.Context, state *syncState) error

// SyncService clones or updates the working tree of one service using the settings in envFilePath.
// The first failing step ends the update and its error is returned with the partial result.
func (service *Service) SyncService(executionContext context.Context, serviceName string, envFilePath string) (ServiceResult, error) {
	state := &syncState{
		serviceName: serviceName,
		envFilePath: envFilePath,
		result:      ServiceResult{Service: serviceName},
	}

	pipeline := []syncStep{
		service.validateServiceName,
		service.loadEnvironment,
		service.injectCredentials,
		service.prepareServicesRoot,
		service.acquireWorkingTree,
		service.checkoutBranch,
		service.checkoutTag,
	}
	for _, step := range pipeline {
		if stepError := step(executionContext, state); stepError != nil {
			return state.result, stepError
		}
	}
	return state.result, nil
}

// SyncAll synchronizes every service of envPaths in order and tallies the outcomes.
func (service *Service) SyncAll(executionContext context.Context, envPaths deployconfig.EnvPaths) Summary {
	summary := Summary{TotalCount: len(envPaths), Outcomes: make([]ServiceOutcome, 0, len(envPaths))}

	for _, envPath := range envPaths {
		service.logger.Info(
			serviceUpdateStartedMessageConstant,
			zap.String(logFieldServiceConstant, envPath.Service),
			zap.String(logFieldEnvFileConstant, envPath.Path),
		)

		result, syncError := service.SyncService(executionContext, envPath.Service, envPath.Path)
		summary.Outcomes = append(summary.Outcomes, ServiceOutcome{Result: result, Error: syncError})
		if syncError != nil {
			service.logger.Error(
				serviceUpdateFailedMessageConstant,
				zap.String(logFieldServiceConstant, envPath.Service),
				zap.Error(syncError),
			)
			continue
		}

		summary.SuccessCount++
		service.logger.Info(
			serviceUpdateSucceededMessageConstant,
			zap.String(logFieldServiceConstant, result.Service),
			zap.String(logFieldWorkingTreeConstant, result.WorkingTree),
			zap.Bool(logFieldClonedConstant, result.Cloned),
			zap.String(logFieldBranchConstant, result.Branch),
			zap.String(logFieldTagConstant, result.Tag),
		)
	}

	return summary
}

func (service *Service) validateServiceName(_ context.Context, state *syncState) error {
	name := state.serviceName
	if len(strings.TrimSpace(name)) == 0 || name == currentDirectoryElementConstant || name == parentDirectoryElementConstant || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf(stepErrorTemplateConstant, StepValidateName, name, ErrInvalidServiceName)
	}
	state.result.WorkingTree = filepath.Join(service.servicesRoot, name)
	return nil
}

func (service *Service) loadEnvironment(_ context.Context, state *syncState) error {
	contents, readError := service.fileSystem.ReadFile(state.envFilePath)
	if readError != nil {
		return fmt.Errorf(environmentFileReadErrorTemplateConstant, state.envFilePath, readError)
	}
	values, parseError := envfile.ParseBytes(contents)
	if parseError != nil {
		return fmt.Errorf(environmentFileParseErrorTemplateConstant, state.envFilePath, parseError)
	}

	state.remoteURL = strings.TrimSpace(values.Lookup(envfile.KeyRepositoryURL))
	if len(state.remoteURL) == 0 {
		return MissingFieldError{Field: envfile.KeyRepositoryURL, EnvFilePath: state.envFilePath}
	}

	state.result.Branch = strings.TrimSpace(values.Lookup(envfile.KeyBranch))
	state.result.Tag = strings.TrimSpace(values.Lookup(envfile.KeyTag))
	state.username = values.Lookup(envfile.KeyGitUsername)
	state.token = values.Lookup(envfile.KeyGitToken)
	return nil
}

func (service *Service) injectCredentials(_ context.Context, state *syncState) error {
	state.cloneURL = gitrepo.InjectCredentials(state.remoteURL, state.username, state.token)
	state.environment = gitrepo.CredentialEnvironment(state.username, state.token)
	if service.disableTerminalPrompt {
		state.environment = gitrepo.DisableTerminalPrompt(state.environment)
	}
	return nil
}

func (service *Service) prepareServicesRoot(_ context.Context, state *syncState) error {
	if mkdirError := service.fileSystem.MkdirAll(service.servicesRoot, servicesRootPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(stepErrorTemplateConstant, StepPrepareRoot, state.serviceName, mkdirError)
	}
	return nil
}

func (service *Service) acquireWorkingTree(executionContext context.Context, state *syncState) error {
	workingTree := state.result.WorkingTree

	if service.isRepository(workingTree) {
		service.logger.Debug(existingRepositoryMessageConstant, zap.String(logFieldServiceConstant, state.serviceName), zap.String(logFieldWorkingTreeConstant, workingTree))
		return service.runGit(executionContext, state, StepFetch, workingTree, gitFetchSubcommandConstant, gitFetchAllFlagConstant)
	}

	if _, statError := service.fileSystem.Stat(workingTree); statError == nil {
		service.logger.Warn(staleDirectoryMessageConstant, zap.String(logFieldServiceConstant, state.serviceName), zap.String(logFieldWorkingTreeConstant, workingTree))
		if removeError := service.fileSystem.RemoveAll(workingTree); removeError != nil {
			return fmt.Errorf(stepErrorTemplateConstant, StepRemoveStale, state.serviceName, removeError)
		}
	}

	service.logger.Debug(cloneRequiredMessageConstant, zap.String(logFieldServiceConstant, state.serviceName), zap.String(logFieldWorkingTreeConstant, workingTree))
	if cloneError := service.runGit(executionContext, state, StepClone, "", gitCloneSubcommandConstant, state.cloneURL, workingTree); cloneError != nil {
		return cloneError
	}
	state.result.Cloned = true
	return nil
}

func (service *Service) checkoutBranch(executionContext context.Context, state *syncState) error {
	if len(state.result.Branch) == 0 {
		return nil
	}
	if checkoutError := service.runGit(executionContext, state, StepCheckoutBranch, state.result.WorkingTree, gitCheckoutSubcommandConstant, state.result.Branch); checkoutError != nil {
		return checkoutError
	}
	return service.runGit(executionContext, state, StepPull, state.result.WorkingTree, gitPullSubcommandConstant)
}

func (service *Service) checkoutTag(executionContext context.Context, state *syncState) error {
	if len(state.result.Tag) == 0 {
		return nil
	}
	if checkoutError := service.runGit(executionContext, state, StepCheckoutTag, state.result.WorkingTree, gitCheckoutSubcommandConstant, state.result.Tag); checkoutError != nil {
		return checkoutError
	}
	service.logger.Debug(tagCheckedOutMessageConstant, zap.String(logFieldServiceConstant, state.serviceName), zap.String(logFieldTagConstant, state.result.Tag))
	return nil
}

func (service *Service) isRepository(workingTree string) bool {
	_, statError := service.fileSystem.Stat(filepath.Join(workingTree, shared.GitMetadataDirectoryNameConstant))
	return statError == nil
}

func (service *Service) runGit(executionContext context.Context, state *syncState, step Step, workingDirectory string, arguments ...string) error {
	environment := make(map[string]string, len(state.environment))
	for name, value := range state.environment {
		environment[name] = value
	}

	_, executionError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: environment,
	})
	if executionError != nil {
		return SubprocessError{Step: step, Service: state.serviceName, Cause: executionError}
	}
	return nil
}
