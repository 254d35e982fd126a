package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deploy-planner/internal/domain"

	"github.com/spf13/viper"
)

// Acquisition providers.
const (
	ProviderGit    = "git"
	ProviderGitLab = "gitlab"
)

// Config represents the main configuration structure
type Config struct {
	Cache       CacheConfig       `yaml:"cache"       mapstructure:"cache"`
	Acquisition AcquisitionConfig `yaml:"acquisition" mapstructure:"acquisition"`
	GitLab      GitLabConfig      `yaml:"gitlab"      mapstructure:"gitlab"`
	Execution   ExecutionConfig   `yaml:"execution"   mapstructure:"execution"`
	Logging     LoggingConfig     `yaml:"logging"     mapstructure:"logging"`
	Output      OutputConfig      `yaml:"output"      mapstructure:"output"`
}

// CacheConfig represents snapshot and analysis cache settings
type CacheConfig struct {
	Dir                string `yaml:"dir"                  mapstructure:"dir"`
	SnapshotTTLMinutes int    `yaml:"snapshot_ttl_minutes" mapstructure:"snapshot_ttl_minutes"`
	AnalysisEntries    int    `yaml:"analysis_entries"     mapstructure:"analysis_entries"`
}

// AcquisitionConfig selects how remote repositories are materialized
type AcquisitionConfig struct {
	Provider      string `yaml:"provider"       mapstructure:"provider"`
	DefaultBranch string `yaml:"default_branch" mapstructure:"default_branch"`
}

// GitLabConfig represents GitLab connection settings
type GitLabConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Token   string `yaml:"token"    mapstructure:"token"`
}

// ExecutionConfig represents command execution settings
type ExecutionConfig struct {
	TimeoutSeconds      int `yaml:"timeout_seconds"       mapstructure:"timeout_seconds"`
	CloneTimeoutSeconds int `yaml:"clone_timeout_seconds" mapstructure:"clone_timeout_seconds"`
}

// LoggingConfig represents logging settings
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// OutputConfig represents output settings
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file"   mapstructure:"file"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty path uses defaults and the environment only.
func LoadConfig(configPath string) (*Config, error) {
	// Create a new Viper instance to avoid data races in concurrent tests
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaultValues(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("gitlab.base_url", "GITLAB_BASE_URL")
	_ = v.BindEnv("gitlab.token", "GITLAB_TOKEN")
	_ = v.BindEnv("cache.dir", "DEPLOY_PLANNER_CACHE_DIR")
	_ = v.BindEnv("acquisition.provider", "DEPLOY_PLANNER_PROVIDER")
	_ = v.BindEnv("execution.timeout_seconds", "DEPLOY_PLANNER_TIMEOUT_SECONDS")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaultValues sets default configuration values
func setDefaultValues(v *viper.Viper) {
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.snapshot_ttl_minutes", 60)
	v.SetDefault("cache.analysis_entries", 128)

	v.SetDefault("acquisition.provider", ProviderGit)
	v.SetDefault("acquisition.default_branch", "main")

	v.SetDefault("gitlab.base_url", "https://gitlab.com")

	v.SetDefault("execution.timeout_seconds", 600)
	v.SetDefault("execution.clone_timeout_seconds", 300)

	v.SetDefault("logging.level", "info")

	v.SetDefault("output.format", "json")
	v.SetDefault("output.file", "")
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "deploy-planner")
	}
	return filepath.Join(os.TempDir(), "deploy-planner")
}

// validateConfig validates the configuration
func validateConfig(config Config) error {
	if config.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}

	if config.Cache.SnapshotTTLMinutes <= 0 {
		return fmt.Errorf("cache.snapshot_ttl_minutes must be positive")
	}

	if config.Cache.AnalysisEntries <= 0 {
		return fmt.Errorf("cache.analysis_entries must be positive")
	}

	switch config.Acquisition.Provider {
	case ProviderGit:
	case ProviderGitLab:
		if config.GitLab.BaseURL == "" {
			return fmt.Errorf("gitlab.base_url is required for the gitlab provider")
		}
		if config.GitLab.Token == "" {
			return fmt.Errorf("gitlab.token is required for the gitlab provider")
		}
	default:
		return fmt.Errorf("acquisition.provider must be %q or %q, got %q",
			ProviderGit, ProviderGitLab, config.Acquisition.Provider)
	}

	if config.Acquisition.DefaultBranch == "" {
		return fmt.Errorf("acquisition.default_branch is required")
	}

	if config.Execution.TimeoutSeconds <= 0 {
		return fmt.Errorf("execution.timeout_seconds must be positive")
	}
	if config.Execution.TimeoutSeconds > domain.MaxCommandTimeoutSeconds {
		return fmt.Errorf("execution.timeout_seconds must be at most %d, got %d",
			domain.MaxCommandTimeoutSeconds, config.Execution.TimeoutSeconds)
	}

	if config.Execution.CloneTimeoutSeconds <= 0 {
		return fmt.Errorf("execution.clone_timeout_seconds must be positive")
	}

	switch strings.ToLower(config.Output.Format) {
	case "json", "yaml", "yml", "html", "csv":
	default:
		return fmt.Errorf("output.format must be one of json, yaml, html, csv, got %q", config.Output.Format)
	}

	return nil
}
