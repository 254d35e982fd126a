package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"deploy-planner/internal/config"
	"deploy-planner/internal/domain"
	"deploy-planner/internal/generator"
	"deploy-planner/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pairs    []string
		expected map[string]string
		wantErr  bool
	}{
		{
			name:     "empty",
			expected: map[string]string{},
		},
		{
			name:     "values with equals signs",
			pairs:    []string{"DATABASE_URL=postgres://u:p@h/db?sslmode=disable", "TOKEN=a=b"},
			expected: map[string]string{"DATABASE_URL": "postgres://u:p@h/db?sslmode=disable", "TOKEN": "a=b"},
		},
		{
			name:     "later pairs win",
			pairs:    []string{"PORT=3000", "PORT=8080", "EMPTY="},
			expected: map[string]string{"PORT": "8080", "EMPTY": ""},
		},
		{name: "missing separator", pairs: []string{"PORT"}, wantErr: true},
		{name: "missing name", pairs: []string{"=value"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, err := parseEnvPairs(tt.pairs)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "expected NAME=VALUE")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, env)
		})
	}
}

func TestStepRows(t *testing.T) {
	t.Parallel()

	rows := stepRows([]domain.DeploymentStep{
		{Order: 1, Name: "Install dependencies", Command: "npm ci", Timeout: 300},
		{Order: 2, Name: "Start application", Command: "pm2 start", Timeout: 60},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#", "Step", "Command", "Timeout"}, rows[0])
	assert.Equal(t, []string{"1", "Install dependencies", "npm ci", "300s"}, rows[1])
	assert.Equal(t, []string{"2", "Start application", "pm2 start", "60s"}, rows[2])
}

func TestStackRows_SkipsEmptyValues(t *testing.T) {
	t.Parallel()

	analysis := &domain.RepositoryAnalysis{
		TechStack: domain.TechStack{
			Primary:        domain.LanguageJavaScript,
			Framework:      "express",
			PackageManager: "npm",
		},
		Strategy: domain.DeploymentStrategy{Type: domain.StrategyServer, Approach: domain.ApproachPM2},
	}

	rows := stackRows(analysis)

	assert.Equal(t, []string{"Property", "Value"}, rows[0])
	assert.Contains(t, rows, []string{"Primary", "javascript"})
	assert.Contains(t, rows, []string{"Framework", "express"})
	assert.Contains(t, rows, []string{"Strategy", "server / pm2"})
	for _, row := range rows {
		assert.NotEqual(t, "Build tool", row[0])
	}
}

func TestRequirementRows(t *testing.T) {
	t.Parallel()

	rows := requirementRows(domain.Requirements{
		CPU:     domain.CPURequirement{Min: 1, Recommended: 2},
		Memory:  domain.MemoryRequirement{Min: "512MB", Recommended: "1GB"},
		Storage: domain.StorageRequirement{Min: "10GB", Type: "ssd"},
		Network: domain.NetworkRequirement{Ports: []int{3000, 443}, Protocols: []string{"http", "https"}},
		Services: []domain.ExternalService{
			{Name: "postgresql", Type: domain.ServiceDatabase, Required: true},
			{Name: "redis", Type: domain.ServiceCache},
		},
	})

	assert.Contains(t, rows, []string{"CPU", "1", "2"})
	assert.Contains(t, rows, []string{"Memory", "512MB", "1GB"})
	assert.Contains(t, rows, []string{"Service postgresql", "database", "required"})
	assert.Contains(t, rows, []string{"Service redis", "cache", "optional"})
}

func TestCostRows_SortedWithTotals(t *testing.T) {
	t.Parallel()

	rows := costRows(report.CostReport{
		Currency:    "USD",
		Monthly:     40,
		Months:      3,
		Total:       120,
		Breakdown:   map[string]float64{"storage": 10, "compute": 30},
		Percentages: map[string]float64{"storage": 25, "compute": 75},
	})

	require.Len(t, rows, 5)
	assert.Equal(t, []string{"compute", "30.00 USD", "75.0%"}, rows[1])
	assert.Equal(t, []string{"storage", "10.00 USD", "25.0%"}, rows[2])
	assert.Equal(t, []string{"Monthly total", "40.00 USD", ""}, rows[3])
	assert.Equal(t, []string{"Total (3 months)", "120.00 USD", ""}, rows[4])
}

func TestCheckAndFindingRows(t *testing.T) {
	t.Parallel()

	checks := checkRows([]report.Check{
		{Name: "dockerfile", Passed: true, Severity: report.SeverityWarning, Message: "Dockerfile present"},
		{Name: "env:DATABASE_URL", Passed: false, Severity: report.SeverityError, Message: "missing"},
	})
	assert.Equal(t, []string{"dockerfile", "pass", "warning", "Dockerfile present"}, checks[1])
	assert.Equal(t, []string{"env:DATABASE_URL", "fail", "error", "missing"}, checks[2])

	findings := findingRows([]report.Finding{
		{ID: "SEC-001", Severity: report.SeverityHigh, Category: "container", Title: "Runs as root"},
	})
	assert.Equal(t, []string{"SEC-001", "high", "container", "Runs as root"}, findings[1])
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, validationError(report.ValidationReport{Valid: false}), errValidationFailed)
	require.NoError(t, validationError(report.ValidationReport{Valid: true}))
	require.NoError(t, validationError(report.CostReport{}))
}

//nolint:paralleltest // mutates the package-level flag variables
func TestOutputFormat(t *testing.T) {
	defer func() { format, outputFile = "", "" }()

	cfg := &config.Config{Output: config.OutputConfig{Format: "yaml"}}

	format, outputFile = "", ""
	_, requested, err := outputFormat(cfg)
	require.NoError(t, err)
	assert.False(t, requested, "terminal tables are the default")

	outputFile = "report.out"
	f, requested, err := outputFormat(cfg)
	require.NoError(t, err)
	assert.True(t, requested)
	assert.Equal(t, generator.FormatYAML, f)

	format = "csv"
	f, _, err = outputFormat(cfg)
	require.NoError(t, err)
	assert.Equal(t, generator.FormatCSV, f)

	format = "pdf"
	_, _, err = outputFormat(cfg)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

//nolint:paralleltest // drives the package-level command tree
func TestCommands(t *testing.T) {
	setupCommands()

	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range []string{"analyze", "plan", "cost", "validate", "security", "exec", "serve"} {
		assert.True(t, names[name], "missing command %s", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, costCmd.Flags().Lookup("months"))
	assert.NotNil(t, execCmd.Flags().Lookup("command"))

	t.Setenv("DEPLOY_PLANNER_CACHE_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "package.json"), []byte(`{
  "name": "api",
  "scripts": {"start": "node index.js"},
  "dependencies": {"express": "^4.18.2"}
}`), 0o600))

	t.Run("analyze writes json report", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "reports", "analysis.json")
		rootCmd.SetArgs([]string{"analyze", repo, "--format", "json", "--output", out})
		require.NoError(t, rootCmd.Execute())

		content, err := os.ReadFile(out)
		require.NoError(t, err)

		var analysis domain.RepositoryAnalysis
		require.NoError(t, json.Unmarshal(content, &analysis))
		assert.Equal(t, domain.LanguageJavaScript, analysis.TechStack.Primary)
		assert.Equal(t, "express", analysis.TechStack.Framework)
	})

	t.Run("cost writes yaml report", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "cost.yaml")
		rootCmd.SetArgs([]string{"cost", repo, "--months", "6", "--format", "yaml", "--output", out})
		require.NoError(t, rootCmd.Execute())

		content, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(content), "months: 6")
	})

	t.Run("invalid env pair", func(t *testing.T) {
		rootCmd.SetArgs([]string{"validate", repo, "--env", "NOPE"})
		err := rootCmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid environment pair")
	})

	t.Run("unknown exec action", func(t *testing.T) {
		envPairs = nil
		rootCmd.SetArgs([]string{"exec", "deploy", repo})
		err := rootCmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown exec action")
	})
}
