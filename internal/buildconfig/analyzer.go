package buildconfig

import (
	"bufio"
	"context"
	"strings"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/manifest"

	"go.uber.org/zap"
)

// Analyzer detects containerization config, scripts and environment variables
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates a new build-config analyzer
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		logger: logger,
	}
}

// Analyze builds the BuildConfig of a repository. Missing files are not errors:
// the result then has HasDockerfile=false and an empty environment.
func (a *Analyzer) Analyze(ctx context.Context, set *manifest.Set) domain.BuildConfig {
	config := domain.BuildConfig{
		Environment: []domain.EnvironmentVariable{},
	}

	if set.Has(manifest.Dockerfile) {
		config.HasDockerfile = true
		config.Dockerfile = AnalyzeDockerfile(set.Text(manifest.Dockerfile))
	}

	if set.Node != nil {
		config.BuildScript = set.Node.Scripts["build"]
		config.StartScript = set.Node.Scripts["start"]
		config.TestScript = set.Node.Scripts["test"]
	}
	if config.StartScript == "" {
		config.StartScript = procfileWeb(set.Text(manifest.Procfile))
	}

	if name, text, ok := set.EnvExample(); ok {
		config.Environment = ParseEnvExample(text)
		a.logger.Debug("Parsed example environment",
			zap.String("file", name),
			zap.Int("variables_count", len(config.Environment)))
	}

	a.logger.Debug("Analyzed build config",
		zap.Bool("has_dockerfile", config.HasDockerfile),
		zap.Bool("has_start_script", config.StartScript != ""),
		zap.Bool("has_test_script", config.TestScript != ""))

	return config
}

// procfileWeb returns the command of the `web:` process type.
func procfileWeb(text string) string {
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		kind, command, ok := strings.Cut(scanner.Text(), ":")
		if ok && strings.TrimSpace(kind) == "web" {
			return strings.TrimSpace(command)
		}
	}
	return ""
}
