package tools

import (
	"context"
	"fmt"
	"time"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/report"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Operation names.
const (
	OpAnalyzeRepository = "analyze-repository"
	OpGeneratePlan      = "generate-deployment-plan"
	OpValidate          = "validate-deployment"
	OpEstimateCost      = "estimate-deployment-cost"
	OpSecurityIssues    = "detect-security-issues"
	OpExecuteClone      = "execute-clone"
	OpExecuteBuild      = "execute-build"
	OpExecuteTest       = "execute-test"
	OpExecutePackage    = "execute-package"
)

// ToolResult is the envelope every operation returns, successful or not.
type ToolResult struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Operation string `json:"operation"`
	ElapsedMs int64  `json:"elapsed_ms"`
	RequestID string `json:"request_id"`
	Data      any    `json:"data,omitempty"`
}

// Settings holds the defaults applied to missing arguments.
type Settings struct {
	DefaultBranch  string
	TimeoutSeconds int
}

// ExecutionResult is the data of the execute-build, execute-test and execute-package operations.
type ExecutionResult struct {
	Repository string                `json:"repository"`
	Command    string                `json:"command"`
	Result     *domain.CommandResult `json:"result"`
}

type handler func(r *Registry, ctx context.Context, args map[string]any) (any, error)

// Registry dispatches named operations to the analysis core and the execution collaborator
type Registry struct {
	analyzer domain.RepositoryAnalyzer
	runner   domain.CommandRunner
	settings Settings
	now      func() time.Time
	logger   *zap.Logger
}

// NewRegistry creates a new operation registry
func NewRegistry(
	analyzer domain.RepositoryAnalyzer,
	runner domain.CommandRunner,
	settings Settings,
	logger *zap.Logger,
) *Registry {
	if settings.DefaultBranch == "" {
		settings.DefaultBranch = "main"
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = 600
	}
	return &Registry{
		analyzer: analyzer,
		runner:   runner,
		settings: settings,
		now:      time.Now,
		logger:   logger,
	}
}

// Invoke runs one operation. Every failure, panics included, is reported in
// the result instead of being returned.
func (r *Registry) Invoke(ctx context.Context, operation string, args map[string]any) (result ToolResult) {
	start := r.now()
	result = ToolResult{
		Operation: operation,
		RequestID: uuid.NewString(),
	}
	logger := r.logger.With(
		zap.String("operation", operation),
		zap.String("request_id", result.RequestID))

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("Operation panicked", zap.Any("panic", recovered))
			result.Success = false
			result.Data = nil
			result.Error = fmt.Sprintf("internal error: %v", recovered)
		}
		result.ElapsedMs = r.now().Sub(start).Milliseconds()
	}()

	config, ok := lookup(operation)
	if !ok {
		result.Error = domain.InvalidInputf("unknown operation %q", operation).Error()
		return result
	}
	if args == nil {
		args = map[string]any{}
	}

	logger.Debug("Invoking operation", zap.Any("args", redact(args)))
	data, err := config.handler(r, ctx, args)
	if err != nil {
		logger.Warn("Operation failed", zap.Error(err))
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Data = data
	logger.Debug("Operation completed")
	return result
}

func (r *Registry) analyze(ctx context.Context, args RepositoryArgs) (*domain.RepositoryAnalysis, error) {
	return r.analyzer.Execute(ctx, args.Repository, args.Branch, args.ForceRefresh)
}

func (r *Registry) analyzeRepository(ctx context.Context, input map[string]any) (any, error) {
	var args AnalyzeArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}
	if err := args.normalize(r.settings.DefaultBranch); err != nil {
		return nil, err
	}
	return r.analyze(ctx, args.RepositoryArgs)
}

func (r *Registry) generatePlan(ctx context.Context, input map[string]any) (any, error) {
	var args AnalyzeArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}
	if err := args.normalize(r.settings.DefaultBranch); err != nil {
		return nil, err
	}
	analysis, err := r.analyze(ctx, args.RepositoryArgs)
	if err != nil {
		return nil, err
	}
	return report.Plan(analysis), nil
}

func (r *Registry) validateDeployment(ctx context.Context, input map[string]any) (any, error) {
	var args ValidateArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}
	if err := args.normalize(r.settings.DefaultBranch); err != nil {
		return nil, err
	}
	analysis, err := r.analyze(ctx, args.RepositoryArgs)
	if err != nil {
		return nil, err
	}
	return report.Validate(analysis, args.Environment), nil
}

func (r *Registry) estimateCost(ctx context.Context, input map[string]any) (any, error) {
	var args CostArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}
	if err := args.normalize(r.settings.DefaultBranch); err != nil {
		return nil, err
	}
	analysis, err := r.analyze(ctx, args.RepositoryArgs)
	if err != nil {
		return nil, err
	}
	return report.EstimateCost(analysis, args.Months), nil
}

func (r *Registry) detectSecurityIssues(ctx context.Context, input map[string]any) (any, error) {
	var args AnalyzeArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}
	if err := args.normalize(r.settings.DefaultBranch); err != nil {
		return nil, err
	}
	analysis, err := r.analyze(ctx, args.RepositoryArgs)
	if err != nil {
		return nil, err
	}
	return report.DetectSecurityIssues(analysis), nil
}

func (r *Registry) executeClone(ctx context.Context, input map[string]any) (any, error) {
	var args AnalyzeArgs
	if err := decodeArgs(input, &args); err != nil {
		return nil, err
	}
	if err := args.normalize(r.settings.DefaultBranch); err != nil {
		return nil, err
	}
	return r.analyzer.Resolve(ctx, args.Repository, args.Branch, args.ForceRefresh)
}

func executeKind(kind string) handler {
	return func(r *Registry, ctx context.Context, input map[string]any) (any, error) {
		var args ExecArgs
		if err := decodeArgs(input, &args); err != nil {
			return nil, err
		}
		if err := args.normalize(r.settings.DefaultBranch, r.settings.TimeoutSeconds); err != nil {
			return nil, err
		}
		if r.runner == nil {
			return nil, fmt.Errorf("%w: command execution is not configured", domain.ErrUnsupported)
		}

		analysis, err := r.analyze(ctx, args.RepositoryArgs)
		if err != nil {
			return nil, err
		}
		line := args.Command
		if line == "" {
			line, err = DefaultCommand(kind, analysis, args.Tag)
			if err != nil {
				return nil, err
			}
		}

		res, err := r.runner.Run(ctx, domain.Command{
			Line:    line,
			Dir:     analysis.Repository.LocalPath,
			Env:     args.Environment,
			Timeout: time.Duration(args.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w", kind, err)
		}
		return ExecutionResult{
			Repository: analysis.Repository.URL,
			Command:    line,
			Result:     res,
		}, nil
	}
}

// redact hides environment values before arguments are logged.
func redact(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if k == "environment" {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v
	}
	return out
}
