package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"deploy-planner/internal/config"
	"deploy-planner/internal/domain"
	"deploy-planner/internal/executor"
	"deploy-planner/internal/generator"
	"deploy-planner/internal/gitclient"
	"deploy-planner/internal/gitlab"
	"deploy-planner/internal/logger"
	"deploy-planner/internal/snapshot"
	"deploy-planner/internal/tools"
	"deploy-planner/internal/usecases"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

var (
	configFile     string
	debug          bool
	branch         string
	format         string
	outputFile     string
	forceRefresh   bool
	months         int
	envPairs       []string
	commandLine    string
	timeoutSeconds int
	tag            string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "deploy-planner",
	Short: "Deploy Planner - Infer a repository's stack and synthesize a deployment plan",
	Long: `A command-line tool that inspects a repository (a local directory or a remote
Git/GitLab URL), infers its technology stack, dependencies, build configuration and
runtime requirements, and synthesizes a deployment plan with infrastructure sizing,
security posture, rollout steps, a cost estimate and basic security findings.
The same operations are served to agents over MCP with the serve command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <repository>",
	Short: "Analyze a repository and print or write the full analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var planCmd = &cobra.Command{
	Use:   "plan <repository>",
	Short: "Generate the ordered deployment plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

var costCmd = &cobra.Command{
	Use:   "cost <repository>",
	Short: "Estimate the hosting cost of the recommended infrastructure",
	Args:  cobra.ExactArgs(1),
	RunE:  runCost,
}

var validateCmd = &cobra.Command{
	Use:   "validate <repository>",
	Short: "Check deployment readiness against the provided environment",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var securityCmd = &cobra.Command{
	Use:   "security <repository>",
	Short: "Report static security findings",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecurity,
}

var execCmd = &cobra.Command{
	Use:       "exec <clone|build|test|package> <repository>",
	Short:     "Acquire a snapshot or run a build, test or package command inside it",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"clone", "build", "test", "package"},
	RunE:      runExec,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve every operation as an MCP tool over stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

//nolint:gochecknoglobals // exec subcommand to operation mapping
var execOperations = map[string]string{
	"clone":   tools.OpExecuteClone,
	"build":   tools.OpExecuteBuild,
	"test":    tools.OpExecuteTest,
	"package": tools.OpExecutePackage,
}

func setupCommands() {
	rootCmd.AddCommand(analyzeCmd, planCmd, costCmd, validateCmd, securityCmd, execCmd, serveCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging with verbose output")

	for _, cmd := range []*cobra.Command{analyzeCmd, planCmd, costCmd, validateCmd, securityCmd, execCmd} {
		cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch to analyze (overrides config)")
		cmd.Flags().BoolVar(&forceRefresh, "refresh", false, "Re-acquire the snapshot even if it is fresh")
	}
	for _, cmd := range []*cobra.Command{analyzeCmd, planCmd, costCmd, validateCmd, securityCmd} {
		cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json, yaml (html, csv for analyze)")
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the report to a file instead of stdout")
	}

	costCmd.Flags().IntVarP(&months, "months", "m", tools.DefaultMonths, "Number of months to estimate")
	validateCmd.Flags().StringArrayVarP(&envPairs, "env", "e", nil, "Provided environment variable NAME=VALUE (repeatable)")
	execCmd.Flags().StringArrayVarP(&envPairs, "env", "e", nil, "Environment variable NAME=VALUE for the command (repeatable)")
	execCmd.Flags().StringVar(&commandLine, "command", "", "Command line to run instead of the stack default")
	execCmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Command timeout in seconds (overrides config)")
	execCmd.Flags().StringVar(&tag, "tag", "", "Image tag or archive suffix for package")
}

func main() {
	setupCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the wired object graph shared by every subcommand.
type app struct {
	cfg      *config.Config
	registry *tools.Registry
	gitlab   *gitlab.Client
	logger   *zap.Logger
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if debug {
		logger.SetLevel(zap.DebugLevel)
	}
	l := logger.GetLogger()

	runner := executor.NewExecutor(l)
	a := &app{cfg: cfg, logger: l}

	var acquirer domain.Acquirer
	switch cfg.Acquisition.Provider {
	case config.ProviderGitLab:
		client, err := gitlab.NewClient(cfg.GitLab.BaseURL, cfg.GitLab.Token, l)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitLab client: %w", err)
		}
		a.gitlab = client
		acquirer = client
	default:
		acquirer = gitclient.NewClient(runner, time.Duration(cfg.Execution.CloneTimeoutSeconds)*time.Second, l)
	}

	store := snapshot.NewStore(
		filepath.Join(cfg.Cache.Dir, "snapshots"),
		acquirer,
		l,
		snapshot.WithTTL(time.Duration(cfg.Cache.SnapshotTTLMinutes)*time.Minute),
	)

	analyzer, err := usecases.NewAnalyzeUseCase(store, cfg.Cache.AnalysisEntries, l)
	if err != nil {
		return nil, err
	}

	a.registry = tools.NewRegistry(analyzer, runner, tools.Settings{
		DefaultBranch:  cfg.Acquisition.DefaultBranch,
		TimeoutSeconds: cfg.Execution.TimeoutSeconds,
	}, l)
	return a, nil
}

// checkAccess verifies GitLab credentials before a remote repository is fetched.
func (a *app) checkAccess(ctx context.Context, repository string) error {
	if a.gitlab == nil || snapshot.IsLocalPath(repository) {
		return nil
	}
	if err := a.gitlab.CheckPermissions(ctx); err != nil {
		return fmt.Errorf("failed to access GitLab: %w", err)
	}
	return nil
}

// invoke runs one registry operation for the command line and unwraps its result.
func (a *app) invoke(ctx context.Context, operation, repository string, extra map[string]any) (any, error) {
	if err := a.checkAccess(ctx, repository); err != nil {
		return nil, err
	}

	args := map[string]any{"repository": repository}
	if branch != "" {
		args["branch"] = branch
	}
	if forceRefresh {
		args["force_refresh"] = true
	}
	for k, v := range extra {
		args[k] = v
	}

	result := a.registry.Invoke(ctx, operation, args)
	a.logger.Debug("Operation finished",
		zap.String("operation", result.Operation),
		zap.String("request_id", result.RequestID),
		zap.Int64("elapsed_ms", result.ElapsedMs),
		zap.Bool("success", result.Success))
	if !result.Success {
		return nil, errors.New(result.Error)
	}
	return result.Data, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// outputFormat resolves the format flag, falling back to the configured default
// only when an output file is requested.
func outputFormat(cfg *config.Config) (generator.Format, bool, error) {
	switch {
	case format != "":
		f, err := generator.ParseFormat(format)
		return f, true, err
	case outputFile != "" || cfg.Output.File != "":
		f, err := generator.ParseFormat(cfg.Output.Format)
		return f, true, err
	default:
		return "", false, nil
	}
}

// emit renders value in the requested format to stdout or the output file.
// It reports false when no machine-readable format was requested.
func emit(cfg *config.Config, value any) (bool, error) {
	f, requested, err := outputFormat(cfg)
	if err != nil || !requested {
		return false, err
	}

	path := outputFile
	if path == "" {
		path = cfg.Output.File
	}
	analysis, isAnalysis := value.(*domain.RepositoryAnalysis)

	if path == "" {
		if isAnalysis {
			return true, generator.RenderAnalysis(os.Stdout, f, analysis)
		}
		return true, generator.Render(os.Stdout, f, value)
	}

	if isAnalysis {
		gen := generator.NewGenerator(path, logger.GetLogger())
		if err := gen.Generate(context.Background(), f, analysis); err != nil {
			return true, err
		}
	} else {
		if err := writeFile(path, f, value); err != nil {
			return true, err
		}
	}
	printSuccess(fmt.Sprintf("Report written to %s", path))
	return true, nil
}

func writeFile(path string, f generator.Format, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()
	return generator.Render(file, f, value)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	data, err := a.invoke(ctx, tools.OpAnalyzeRepository, args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to analyze repository: %w", err)
	}
	analysis, ok := data.(*domain.RepositoryAnalysis)
	if !ok {
		return fmt.Errorf("unexpected analysis result %T", data)
	}

	if done, err := emit(a.cfg, analysis); done || err != nil {
		return err
	}
	return printAnalysis(analysis)
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	data, err := a.invoke(ctx, tools.OpGeneratePlan, args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to generate deployment plan: %w", err)
	}
	if done, err := emit(a.cfg, data); done || err != nil {
		return err
	}
	return printTypedResult(data)
}

func runCost(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	data, err := a.invoke(ctx, tools.OpEstimateCost, args[0], map[string]any{"months": months})
	if err != nil {
		return fmt.Errorf("failed to estimate cost: %w", err)
	}
	if done, err := emit(a.cfg, data); done || err != nil {
		return err
	}
	return printTypedResult(data)
}

func runValidate(cmd *cobra.Command, args []string) error {
	env, err := parseEnvPairs(envPairs)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	data, err := a.invoke(ctx, tools.OpValidate, args[0], map[string]any{"environment": env})
	if err != nil {
		return fmt.Errorf("failed to validate deployment: %w", err)
	}
	done, err := emit(a.cfg, data)
	if err != nil {
		return err
	}
	if !done {
		if err := printTypedResult(data); err != nil {
			return err
		}
	}
	return validationError(data)
}

func runSecurity(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	data, err := a.invoke(ctx, tools.OpSecurityIssues, args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to detect security issues: %w", err)
	}
	if done, err := emit(a.cfg, data); done || err != nil {
		return err
	}
	return printTypedResult(data)
}

func runExec(cmd *cobra.Command, args []string) error {
	operation, ok := execOperations[args[0]]
	if !ok {
		return fmt.Errorf("unknown exec action %q: expected clone, build, test or package", args[0])
	}
	env, err := parseEnvPairs(envPairs)
	if err != nil {
		return err
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	extra := map[string]any{}
	if operation != tools.OpExecuteClone {
		extra["environment"] = env
		if commandLine != "" {
			extra["command"] = commandLine
		}
		if timeoutSeconds > 0 {
			extra["timeout_seconds"] = timeoutSeconds
		}
		if tag != "" {
			extra["tag"] = tag
		}
	}

	data, err := a.invoke(ctx, operation, args[1], extra)
	if err != nil {
		return fmt.Errorf("%s failed: %w", args[0], err)
	}
	return printTypedResult(data)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if a.gitlab != nil {
		ctx, cancel := signalContext()
		defer cancel()
		if err := a.gitlab.CheckPermissions(ctx); err != nil {
			return fmt.Errorf("failed to access GitLab: %w", err)
		}
	}

	a.logger.Info("Serving MCP tools over stdio", zap.Int("tools", len(tools.Operations())))
	return tools.ServeStdio(tools.NewMCPServer(a.registry, version, a.logger))
}

// parseEnvPairs turns repeated NAME=VALUE flags into a map. Later pairs win.
func parseEnvPairs(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid environment pair %q: expected NAME=VALUE", pair)
		}
		env[name] = value
	}
	return env, nil
}
