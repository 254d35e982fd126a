package strategy_test

import (
	"context"
	"testing"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func baseRequirements() domain.Requirements {
	return domain.Requirements{
		CPU:    domain.CPURequirement{Min: 1, Recommended: 1},
		Memory: domain.MemoryRequirement{Min: "512MB", Recommended: "1GB"},
	}
}

func TestSynthesizer_Synthesize_Plans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		runtime   string
		build     domain.BuildConfig
		strategy  domain.StrategyType
		approach  domain.Approach
		stepCount int
		timeout   int
	}{
		{
			name:      "dockerfile selects container plan",
			runtime:   domain.RuntimeNode,
			build:     domain.BuildConfig{HasDockerfile: true, Dockerfile: &domain.DockerfileAnalysis{}},
			strategy:  domain.StrategyContainer,
			approach:  domain.ApproachDocker,
			stepCount: 6,
			timeout:   1200,
		},
		{
			name:      "node runs under pm2",
			runtime:   domain.RuntimeNode,
			strategy:  domain.StrategyServer,
			approach:  domain.ApproachPM2,
			stepCount: 7,
			timeout:   1800,
		},
		{
			name:      "python runs under systemd with migrations",
			runtime:   domain.RuntimePython,
			strategy:  domain.StrategyServer,
			approach:  domain.ApproachSystemd,
			stepCount: 8,
			timeout:   1620,
		},
		{
			name:      "other runtimes use the generic plan",
			runtime:   domain.RuntimeGo,
			strategy:  domain.StrategyServer,
			approach:  domain.ApproachSystemd,
			stepCount: 5,
			timeout:   1140,
		},
		{
			name:      "unknown stack uses the generic plan",
			runtime:   "",
			strategy:  domain.StrategyServer,
			approach:  domain.ApproachSystemd,
			stepCount: 5,
			timeout:   1140,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := strategy.NewSynthesizer(zap.NewNop()).Synthesize(
				context.Background(),
				domain.TechStack{Runtime: tt.runtime},
				tt.build,
				baseRequirements(),
			)

			assert.Equal(t, tt.strategy, result.Type)
			assert.Equal(t, tt.approach, result.Approach)
			require.Len(t, result.Steps, tt.stepCount)
			for i, step := range result.Steps {
				assert.Equal(t, i+1, step.Order)
				assert.NotEmpty(t, step.Name)
				assert.Positive(t, step.Timeout)
			}
			assert.Equal(t, tt.timeout, result.TotalTimeout())
		})
	}
}

func TestSynthesizer_Synthesize_PythonPlanIncludesVirtualenvAndMigrations(t *testing.T) {
	t.Parallel()

	result := strategy.NewSynthesizer(zap.NewNop()).Synthesize(
		context.Background(),
		domain.TechStack{Runtime: domain.RuntimePython},
		domain.BuildConfig{},
		baseRequirements(),
	)

	names := make([]string, 0, len(result.Steps))
	for _, step := range result.Steps {
		names = append(names, step.Name)
	}
	assert.Contains(t, names, "virtualenv")
	assert.Contains(t, names, "migrations")
}

func TestSynthesizer_Synthesize_Infrastructure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		reqs     domain.Requirements
		tier     string
		instance string
		monthly  float64
	}{
		{"base tier", baseRequirements(), "base", "t3.small", 17},
		{
			"large memory selects mid tier before cpu",
			domain.Requirements{
				CPU:    domain.CPURequirement{Min: 2, Recommended: 4},
				Memory: domain.MemoryRequirement{Min: "2GB", Recommended: "4GB"},
			},
			"mid", "t3.large", 67,
		},
		{
			"large cpu selects top tier",
			domain.Requirements{
				CPU:    domain.CPURequirement{Min: 2, Recommended: 4},
				Memory: domain.MemoryRequirement{Min: "1GB", Recommended: "2GB"},
			},
			"top", "c5.xlarge", 124,
		},
		{
			"unreadable memory falls back to cpu check",
			domain.Requirements{
				CPU:    domain.CPURequirement{Min: 1, Recommended: 1},
				Memory: domain.MemoryRequirement{Recommended: "lots"},
			},
			"base", "t3.small", 17,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := strategy.NewSynthesizer(zap.NewNop()).Synthesize(
				context.Background(), domain.TechStack{}, domain.BuildConfig{}, tt.reqs)

			infra := result.Infrastructure
			assert.Equal(t, "aws", infra.Provider)
			assert.Equal(t, tt.tier, infra.Tier)
			assert.Equal(t, tt.instance, infra.Instance.Type)
			assert.InDelta(t, tt.monthly, infra.Cost.Monthly, 0.001)
			assert.Equal(t, "USD", infra.Cost.Currency)
			assert.Equal(t, map[string]float64{"instance": tt.monthly, "bandwidth": 0}, infra.Cost.Breakdown)
		})
	}
}

func TestSynthesizer_Synthesize_Templates(t *testing.T) {
	t.Parallel()

	build := domain.BuildConfig{
		Environment: []domain.EnvironmentVariable{
			{Name: "PORT"},
			{Name: "DB_PASSWORD", Sensitive: true, Required: true},
			{Name: "API_KEY", Sensitive: true},
		},
	}
	result := strategy.NewSynthesizer(zap.NewNop()).Synthesize(
		context.Background(), domain.TechStack{}, build, baseRequirements())

	sec := result.Security
	assert.True(t, sec.HTTPS)
	require.Len(t, sec.FirewallRules, 3)
	assert.Equal(t, []int{22, 80, 443}, []int{sec.FirewallRules[0].Port, sec.FirewallRules[1].Port, sec.FirewallRules[2].Port})
	assert.Equal(t, []string{"DB_PASSWORD", "API_KEY"}, sec.Secrets)
	assert.Equal(t, domain.BackupPolicy{Enabled: true, Frequency: "daily", RetentionDays: 7, Type: "incremental"}, sec.Backups)

	mon := result.Monitoring
	assert.Equal(t, domain.HealthCheck{Endpoint: "/health", Interval: 30, Timeout: 5}, mon.HealthCheck)
	assert.Equal(t, []string{"cpu", "memory", "disk", "network"}, mon.Metrics)
	assert.Equal(t, domain.LoggingPolicy{Level: "info", RetentionDays: 7}, mon.Logging)

	rb := result.Rollback
	assert.Equal(t, "manual", rb.Type)
	assert.Equal(t, []string{"health_check_failed", "deployment_timeout"}, rb.Triggers)
	assert.Len(t, rb.Steps, 3)
	assert.Equal(t, 300, rb.Timeout)
}

func TestSynthesizer_Synthesize_StepsAreIndependentCopies(t *testing.T) {
	t.Parallel()

	s := strategy.NewSynthesizer(zap.NewNop())
	first := s.Synthesize(context.Background(), domain.TechStack{}, domain.BuildConfig{}, baseRequirements())
	first.Steps[0].Name = "mutated"

	second := s.Synthesize(context.Background(), domain.TechStack{}, domain.BuildConfig{}, baseRequirements())
	assert.Equal(t, "clone", second.Steps[0].Name)
}
