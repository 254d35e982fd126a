package strategy

import (
	"context"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/requirements"

	"go.uber.org/zap"
)

// Synthesizer maps stack, build config and requirements to a deployment strategy
type Synthesizer struct {
	logger *zap.Logger
}

// NewSynthesizer creates a new strategy synthesizer
func NewSynthesizer(logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		logger: logger,
	}
}

// Synthesize picks a containerized plan when a Dockerfile exists and a native
// server plan otherwise. Security, monitoring and rollback are fixed templates.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	stack domain.TechStack,
	build domain.BuildConfig,
	reqs domain.Requirements,
) domain.DeploymentStrategy {
	strategy := domain.DeploymentStrategy{
		Infrastructure: s.infrastructure(reqs),
		Security:       security(build),
		Monitoring:     monitoring(),
		Rollback:       rollback(),
	}

	if build.HasDockerfile {
		strategy.Type = domain.StrategyContainer
		strategy.Approach = domain.ApproachDocker
		strategy.Steps = containerPlan.steps()
	} else {
		strategy.Type = domain.StrategyServer
		strategy.Approach = domain.ApproachSystemd
		if stack.Runtime == domain.RuntimeNode {
			strategy.Approach = domain.ApproachPM2
		}
		template, ok := serverPlans[stack.Runtime]
		if !ok {
			template = defaultPlan
		}
		strategy.Steps = template.steps()
	}

	s.logger.Debug("Synthesized deployment strategy",
		zap.String("type", string(strategy.Type)),
		zap.String("approach", string(strategy.Approach)),
		zap.Int("steps_count", len(strategy.Steps)),
		zap.String("tier", strategy.Infrastructure.Tier))

	return strategy
}

// infrastructure evaluates the tier table in order: large memory, then large CPU, then base.
func (s *Synthesizer) infrastructure(reqs domain.Requirements) domain.InfrastructureRecommendation {
	memoryMB, err := requirements.SizeMB(reqs.Memory.Recommended)
	if err != nil {
		s.logger.Warn("Unreadable memory requirement, using base tier",
			zap.String("memory", reqs.Memory.Recommended),
			zap.Error(err))
	}

	selected := baseTier
	switch {
	case memoryMB >= largeMemoryMB:
		selected = midTier
	case reqs.CPU.Recommended >= largeCPUCount:
		selected = topTier
	}

	return domain.InfrastructureRecommendation{
		Provider: provider,
		Tier:     selected.name,
		Instance: selected.instance,
		Cost: domain.CostEstimate{
			Monthly:  selected.monthly,
			Currency: currency,
			Breakdown: map[string]float64{
				"instance":  selected.monthly,
				"bandwidth": 0,
			},
		},
	}
}

func security(build domain.BuildConfig) domain.SecurityConfiguration {
	secrets := []string{}
	for _, variable := range build.Environment {
		if variable.Sensitive {
			secrets = append(secrets, variable.Name)
		}
	}
	return domain.SecurityConfiguration{
		HTTPS: true,
		FirewallRules: []domain.FirewallRule{
			{Port: 22, Protocol: "tcp", Action: "allow", Description: "SSH"},
			{Port: 80, Protocol: "http", Action: "allow", Description: "HTTP"},
			{Port: 443, Protocol: "https", Action: "allow", Description: "HTTPS"},
		},
		Secrets: secrets,
		Backups: domain.BackupPolicy{
			Enabled:       true,
			Frequency:     "daily",
			RetentionDays: 7,
			Type:          "incremental",
		},
	}
}

func monitoring() domain.MonitoringConfiguration {
	return domain.MonitoringConfiguration{
		HealthCheck: domain.HealthCheck{
			Endpoint: "/health",
			Interval: 30,
			Timeout:  5,
		},
		Metrics: []string{"cpu", "memory", "disk", "network"},
		Logging: domain.LoggingPolicy{
			Level:         "info",
			RetentionDays: 7,
		},
	}
}

func rollback() domain.RollbackStrategy {
	return domain.RollbackStrategy{
		Type:     "manual",
		Triggers: []string{"health_check_failed", "deployment_timeout"},
		Steps: []string{
			"Stop the current deployment",
			"Restore the previous release",
			"Verify application health",
		},
		Timeout: rollbackWindow,
	}
}
