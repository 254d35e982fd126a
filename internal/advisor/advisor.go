package advisor

import (
	"context"
	"fmt"

	"deploy-planner/internal/domain"

	"go.uber.org/zap"
)

// Confidence bounds and per-signal deltas.
const (
	BaseConfidence = 50
	MaxConfidence  = 95

	knownStackBonus   = 20
	frameworkBonus    = 15
	dockerfileBonus   = 15
	startScriptBonus  = 10
	dependenciesBonus = 10
)

// Warning and recommendation texts.
const (
	WarnUnknownStack    = "Heuristics could not determine primary technology stack; manual configuration required"
	WarnNoEntrypoint    = "No Dockerfile or start script found; the application entrypoint must be configured manually"
	WarnNoDependencies  = "No dependencies were detected; the dependency manifest may be missing"
	warnSecretNoDefault = "Sensitive environment variable %s has no default and must be provided at deploy time"

	RecommendDockerfile     = "Add a Dockerfile to enable reproducible containerized deployments"
	RecommendProcessManager = "Add a process manager such as pm2 to keep the Node.js process running"
	RecommendTests          = "Add a test script so deployments can be verified automatically"
	RecommendTLS            = "Enable TLS certificates for all public endpoints"
	RecommendBackups        = "Configure automated backups for persistent data"
	RecommendMonitoring     = "Implement monitoring and alerting for the deployed service"
)

//nolint:gochecknoglobals // lookup table
var processManagers = []string{"pm2", "forever"}

// Findings is everything the advisor looks at.
type Findings struct {
	Stack        domain.TechStack
	Dependencies []domain.Dependency
	Build        domain.BuildConfig
}

// Advice is the advisor's output.
type Advice struct {
	Confidence      int
	Warnings        []string
	Recommendations []string
}

// Advisor derives confidence, warnings and recommendations from analysis findings
type Advisor struct {
	logger *zap.Logger
}

// NewAdvisor creates a new advisor
func NewAdvisor(logger *zap.Logger) *Advisor {
	return &Advisor{
		logger: logger,
	}
}

// Advise evaluates the fixed checklists. Warnings and recommendations are independent.
func (a *Advisor) Advise(ctx context.Context, f Findings) Advice {
	advice := Advice{
		Confidence:      Confidence(f),
		Warnings:        warnings(f),
		Recommendations: recommendations(f),
	}

	a.logger.Debug("Generated advice",
		zap.Int("confidence", advice.Confidence),
		zap.Int("warnings_count", len(advice.Warnings)),
		zap.Int("recommendations_count", len(advice.Recommendations)))

	return advice
}

// Confidence starts at 50, adds a fixed delta per positive signal and is capped at 95.
func Confidence(f Findings) int {
	score := BaseConfidence
	if f.Stack.Primary != domain.LanguageUnknown && f.Stack.Primary != "" {
		score += knownStackBonus
	}
	if f.Stack.Framework != "" {
		score += frameworkBonus
	}
	if f.Build.HasDockerfile {
		score += dockerfileBonus
	}
	if f.Build.StartScript != "" {
		score += startScriptBonus
	}
	if len(f.Dependencies) > 0 {
		score += dependenciesBonus
	}
	return min(score, MaxConfidence)
}

func warnings(f Findings) []string {
	out := []string{}
	if f.Stack.Primary == domain.LanguageUnknown || f.Stack.Primary == "" {
		out = append(out, WarnUnknownStack)
	}
	if !f.Build.HasDockerfile && f.Build.StartScript == "" {
		out = append(out, WarnNoEntrypoint)
	}
	if len(f.Dependencies) == 0 {
		out = append(out, WarnNoDependencies)
	}
	for _, variable := range f.Build.Environment {
		if variable.Sensitive && variable.DefaultValue == nil {
			out = append(out, fmt.Sprintf(warnSecretNoDefault, variable.Name))
		}
	}
	return out
}

func recommendations(f Findings) []string {
	out := []string{}
	if !f.Build.HasDockerfile {
		out = append(out, RecommendDockerfile)
	}
	if f.Stack.Runtime == domain.RuntimeNode && !hasAny(f.Dependencies, processManagers) {
		out = append(out, RecommendProcessManager)
	}
	if f.Build.TestScript == "" {
		out = append(out, RecommendTests)
	}
	return append(out, RecommendTLS, RecommendBackups, RecommendMonitoring)
}

func hasAny(dependencies []domain.Dependency, names []string) bool {
	for _, dep := range dependencies {
		for _, name := range names {
			if dep.Name == name {
				return true
			}
		}
	}
	return false
}
