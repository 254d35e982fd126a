package tools_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/report"
	"deploy-planner/internal/tools"
	"deploy-planner/internal/usecases"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockCommandRunner for testing
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, cmd domain.Command) (*domain.CommandResult, error) {
	args := m.Called(ctx, cmd)
	if res, ok := args.Get(0).(*domain.CommandResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Resolve(
	ctx context.Context, repository, branch string, forceRefresh bool,
) (*domain.RepositoryHandle, error) {
	args := m.Called(ctx, repository, branch, forceRefresh)
	if h, ok := args.Get(0).(*domain.RepositoryHandle); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyzer) Execute(
	ctx context.Context, repository, branch string, forceRefresh bool,
) (*domain.RepositoryAnalysis, error) {
	args := m.Called(ctx, repository, branch, forceRefresh)
	if a, ok := args.Get(0).(*domain.RepositoryAnalysis); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyzer) Analyze(ctx context.Context, handle *domain.RepositoryHandle) (*domain.RepositoryAnalysis, error) {
	args := m.Called(ctx, handle)
	if a, ok := args.Get(0).(*domain.RepositoryAnalysis); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

const nodeManifest = `{
	"dependencies": {"express": "^4.18.2"},
	"scripts": {"build": "tsc", "start": "node dist/index.js", "test": "jest"}
}`

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	}
	return root
}

func newRegistry(t *testing.T, runner domain.CommandRunner) *tools.Registry {
	t.Helper()
	analyzer, err := usecases.NewAnalyzeUseCase(nil, 8, zap.NewNop())
	require.NoError(t, err)
	return tools.NewRegistry(analyzer, runner, tools.Settings{}, zap.NewNop())
}

func TestRegistry_Invoke_InputErrors(t *testing.T) {
	t.Parallel()

	registry := newRegistry(t, nil)
	root := writeRepo(t, map[string]string{"package.json": nodeManifest})

	tests := []struct {
		name      string
		operation string
		args      map[string]any
		contains  string
	}{
		{
			name:      "unknown operation",
			operation: "deploy-everything",
			args:      map[string]any{"repository": root},
			contains:  "unknown operation",
		},
		{
			name:      "missing repository",
			operation: tools.OpAnalyzeRepository,
			args:      nil,
			contains:  "repository is required",
		},
		{
			name:      "unknown argument",
			operation: tools.OpAnalyzeRepository,
			args:      map[string]any{"repository": root, "colour": "blue"},
			contains:  "invalid input",
		},
		{
			name:      "months out of range",
			operation: tools.OpEstimateCost,
			args:      map[string]any{"repository": root, "months": 500},
			contains:  "months must be between 1 and 120",
		},
		{
			name:      "timeout out of range",
			operation: tools.OpExecuteBuild,
			args:      map[string]any{"repository": root, "timeout_seconds": -5},
			contains:  "timeout_seconds must be between",
		},
		{
			name:      "execution not configured",
			operation: tools.OpExecuteTest,
			args:      map[string]any{"repository": root},
			contains:  "command execution is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := registry.Invoke(context.Background(), tt.operation, tt.args)

			assert.False(t, result.Success)
			assert.Contains(t, result.Error, tt.contains)
			assert.Equal(t, tt.operation, result.Operation)
			assert.NotEmpty(t, result.RequestID)
			assert.Nil(t, result.Data)
		})
	}
}

func TestRegistry_Invoke_Analysis(t *testing.T) {
	t.Parallel()

	registry := newRegistry(t, nil)
	root := writeRepo(t, map[string]string{
		"package.json": nodeManifest,
		".env.example": "DB_PASSWORD=\nPORT=3000\n",
	})

	result := registry.Invoke(context.Background(), tools.OpAnalyzeRepository, map[string]any{"repository": root})
	require.True(t, result.Success, result.Error)
	analysis, ok := result.Data.(*domain.RepositoryAnalysis)
	require.True(t, ok)
	assert.Equal(t, "express", analysis.TechStack.Framework)

	result = registry.Invoke(context.Background(), tools.OpEstimateCost, map[string]any{
		"repository": root,
		"months":     "3",
	})
	require.True(t, result.Success, result.Error)
	cost, ok := result.Data.(report.CostReport)
	require.True(t, ok)
	assert.Equal(t, 3, cost.Months)
	assert.InDelta(t, cost.Monthly*3, cost.Total, 0.01)

	result = registry.Invoke(context.Background(), tools.OpValidate, map[string]any{
		"repository":  root,
		"environment": map[string]any{"PORT": "8080"},
	})
	require.True(t, result.Success, result.Error)
	validation, ok := result.Data.(report.ValidationReport)
	require.True(t, ok)
	assert.False(t, validation.Valid)

	result = registry.Invoke(context.Background(), tools.OpGeneratePlan, map[string]any{"repository": root})
	require.True(t, result.Success, result.Error)
	plan, ok := result.Data.(report.DeploymentPlan)
	require.True(t, ok)
	assert.Len(t, plan.Strategy.Steps, 7)

	result = registry.Invoke(context.Background(), tools.OpSecurityIssues, map[string]any{"repository": root})
	require.True(t, result.Success, result.Error)
	_, ok = result.Data.(report.SecurityReport)
	assert.True(t, ok)
}

func TestRegistry_Invoke_ExecuteClone_Local(t *testing.T) {
	t.Parallel()

	registry := newRegistry(t, nil)
	root := writeRepo(t, map[string]string{"go.mod": "module example.com/app\n"})

	result := registry.Invoke(context.Background(), tools.OpExecuteClone, map[string]any{"repository": root})

	require.True(t, result.Success, result.Error)
	handle, ok := result.Data.(*domain.RepositoryHandle)
	require.True(t, ok)
	assert.Equal(t, "local", handle.Branch)
	assert.True(t, handle.ExpiryTime.IsZero())
}

func TestRegistry_Invoke_ExecuteBuild(t *testing.T) {
	t.Parallel()

	root := writeRepo(t, map[string]string{"package.json": nodeManifest})
	runner := &MockCommandRunner{}
	runner.On("Run", mock.Anything, mock.MatchedBy(func(cmd domain.Command) bool {
		return cmd.Line == "npm install && npm run build --if-present" &&
			cmd.Timeout == 600*time.Second &&
			cmd.Env["NODE_ENV"] == "production"
	})).Return(&domain.CommandResult{Stdout: "built", ExitCode: 0}, nil)
	registry := newRegistry(t, runner)

	result := registry.Invoke(context.Background(), tools.OpExecuteBuild, map[string]any{
		"repository":  root,
		"environment": map[string]any{"NODE_ENV": "production"},
	})

	require.True(t, result.Success, result.Error)
	exec, ok := result.Data.(tools.ExecutionResult)
	require.True(t, ok)
	assert.Equal(t, "built", exec.Result.Stdout)
	runner.AssertExpectations(t)
}

func TestRegistry_Invoke_ExecuteTest_NonZeroExit(t *testing.T) {
	t.Parallel()

	root := writeRepo(t, map[string]string{"package.json": nodeManifest})
	runner := &MockCommandRunner{}
	runner.On("Run", mock.Anything, mock.MatchedBy(func(cmd domain.Command) bool {
		return cmd.Line == "make check" && cmd.Timeout == 30*time.Second
	})).Return(nil, &domain.NonZeroExitError{Command: "make check", ExitCode: 2, Stderr: "boom"})
	registry := newRegistry(t, runner)

	result := registry.Invoke(context.Background(), tools.OpExecuteTest, map[string]any{
		"repository":      root,
		"command":         "make check",
		"timeout_seconds": 30,
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "test failed")
	assert.Contains(t, result.Error, "boom")
}

func TestRegistry_Invoke_RecoversPanics(t *testing.T) {
	t.Parallel()

	root := writeRepo(t, map[string]string{"package.json": nodeManifest})
	runner := &MockCommandRunner{}
	runner.On("Run", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("runner exploded")
	})
	registry := newRegistry(t, runner)

	result := registry.Invoke(context.Background(), tools.OpExecutePackage, map[string]any{"repository": root})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "runner exploded")
	assert.Equal(t, tools.OpExecutePackage, result.Operation)
	assert.GreaterOrEqual(t, result.ElapsedMs, int64(0))
}

func TestRegistry_Invoke_ForwardsToAnalyzer(t *testing.T) {
	t.Parallel()

	const repo = "https://gitlab.example.com/team/api.git"
	tests := []struct {
		name      string
		operation string
		args      map[string]any
		branch    string
		force     bool
	}{
		{
			name:      "analysis uses the default branch",
			operation: tools.OpAnalyzeRepository,
			args:      map[string]any{"repository": repo},
			branch:    "develop",
		},
		{
			name:      "clone forwards branch and refresh",
			operation: tools.OpExecuteClone,
			args:      map[string]any{"repository": repo, "branch": "release", "force_refresh": true},
			branch:    "release",
			force:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analyzer := new(MockAnalyzer)
			handle := &domain.RepositoryHandle{URL: repo, Branch: tt.branch, LocalPath: t.TempDir()}
			analyzer.On("Resolve", mock.Anything, repo, tt.branch, tt.force).Return(handle, nil).Maybe()
			analyzer.On("Execute", mock.Anything, repo, tt.branch, tt.force).
				Return(&domain.RepositoryAnalysis{Repository: *handle}, nil).Maybe()

			registry := tools.NewRegistry(analyzer, nil, tools.Settings{DefaultBranch: "develop"}, zap.NewNop())
			result := registry.Invoke(context.Background(), tt.operation, tt.args)

			require.True(t, result.Success, result.Error)
			assert.Len(t, analyzer.Calls, 1)
			analyzer.AssertExpectations(t)
		})
	}
}

func TestOperations(t *testing.T) {
	t.Parallel()

	names := []string{}
	for _, op := range tools.Operations() {
		names = append(names, op.Name)
		require.NotEmpty(t, op.Params)
		assert.Equal(t, "repository", op.Params[0].Name)
		assert.True(t, op.Params[0].Required)
	}

	assert.Equal(t, []string{
		tools.OpAnalyzeRepository,
		tools.OpGeneratePlan,
		tools.OpValidate,
		tools.OpEstimateCost,
		tools.OpSecurityIssues,
		tools.OpExecuteClone,
		tools.OpExecuteBuild,
		tools.OpExecuteTest,
		tools.OpExecutePackage,
	}, names)
}
