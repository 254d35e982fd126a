package report

import (
	"fmt"

	"deploy-planner/internal/domain"
)

// DeploymentPlan is the strategy together with the sizing it was derived from.
type DeploymentPlan struct {
	Repository       string                    `json:"repository"`
	Branch           string                    `json:"branch"`
	Summary          string                    `json:"summary"`
	Strategy         domain.DeploymentStrategy `json:"strategy"`
	Requirements     domain.Requirements       `json:"requirements"`
	EstimatedSeconds int                       `json:"estimated_seconds"`
	Confidence       int                       `json:"confidence"`
	Warnings         []string                  `json:"warnings"`
}

// Plan projects an analysis onto its deployment plan.
func Plan(analysis *domain.RepositoryAnalysis) DeploymentPlan {
	strategy := analysis.Strategy
	return DeploymentPlan{
		Repository:       analysis.Repository.URL,
		Branch:           analysis.Repository.Branch,
		Summary:          Summary(analysis),
		Strategy:         strategy,
		Requirements:     analysis.Requirements,
		EstimatedSeconds: strategy.TotalTimeout(),
		Confidence:       analysis.Confidence,
		Warnings:         analysis.Warnings,
	}
}

// Summary is a one-line description of the plan.
func Summary(analysis *domain.RepositoryAnalysis) string {
	stack := string(analysis.TechStack.Primary)
	if analysis.TechStack.Framework != "" {
		stack += "/" + analysis.TechStack.Framework
	}
	strategy := analysis.Strategy
	return fmt.Sprintf("%s %s deployment via %s in %d steps on %s %s (~$%.2f/month)",
		stack, strategy.Type, strategy.Approach, len(strategy.Steps),
		strategy.Infrastructure.Provider, strategy.Infrastructure.Instance.Type,
		strategy.Infrastructure.Cost.Monthly)
}
