package tools

import (
	"fmt"
	"strings"

	"deploy-planner/internal/domain"

	"github.com/go-viper/mapstructure/v2"
)

const (
	DefaultMonths  = 1
	MaxMonths      = 120
	MaxTimeoutSecs = domain.MaxCommandTimeoutSeconds
)

// RepositoryArgs identifies the repository every operation works on.
type RepositoryArgs struct {
	Repository   string `mapstructure:"repository"`
	Branch       string `mapstructure:"branch"`
	ForceRefresh bool   `mapstructure:"force_refresh"`
}

type AnalyzeArgs struct {
	RepositoryArgs `mapstructure:",squash"`
}

type ValidateArgs struct {
	RepositoryArgs `mapstructure:",squash"`
	Environment    map[string]string `mapstructure:"environment"`
}

type CostArgs struct {
	RepositoryArgs `mapstructure:",squash"`
	Months         int `mapstructure:"months"`
}

// ExecArgs configures execute-build, execute-test and execute-package.
// An empty Command selects the stack's default command line.
type ExecArgs struct {
	RepositoryArgs `mapstructure:",squash"`
	Command        string            `mapstructure:"command"`
	Environment    map[string]string `mapstructure:"environment"`
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	Tag            string            `mapstructure:"tag"`
}

// decodeArgs maps a flat argument record onto target. Unknown keys are rejected.
func decodeArgs(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to create argument decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return domain.InvalidInputf("%v", err)
	}
	return nil
}

func (a *RepositoryArgs) normalize(defaultBranch string) error {
	a.Repository = strings.TrimSpace(a.Repository)
	a.Branch = strings.TrimSpace(a.Branch)
	if a.Repository == "" {
		return domain.InvalidInputf("repository is required")
	}
	if a.Branch == "" {
		a.Branch = defaultBranch
	}
	return nil
}

func (a *CostArgs) normalize(defaultBranch string) error {
	if err := a.RepositoryArgs.normalize(defaultBranch); err != nil {
		return err
	}
	if a.Months == 0 {
		a.Months = DefaultMonths
	}
	if a.Months < 1 || a.Months > MaxMonths {
		return domain.InvalidInputf("months must be between 1 and %d, got %d", MaxMonths, a.Months)
	}
	return nil
}

func (a *ExecArgs) normalize(defaultBranch string, defaultTimeout int) error {
	if err := a.RepositoryArgs.normalize(defaultBranch); err != nil {
		return err
	}
	a.Command = strings.TrimSpace(a.Command)
	if a.TimeoutSeconds == 0 {
		a.TimeoutSeconds = defaultTimeout
	}
	if a.TimeoutSeconds < 1 || a.TimeoutSeconds > MaxTimeoutSecs {
		return domain.InvalidInputf("timeout_seconds must be between 1 and %d, got %d",
			MaxTimeoutSecs, a.TimeoutSeconds)
	}
	return nil
}
