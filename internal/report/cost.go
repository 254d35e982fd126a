package report

import (
	"math"

	"deploy-planner/internal/domain"
)

// CostReport projects the infrastructure recommendation over a number of months.
type CostReport struct {
	Provider     string             `json:"provider"`
	Tier         string             `json:"tier"`
	InstanceType string             `json:"instance_type"`
	Currency     string             `json:"currency"`
	Monthly      float64            `json:"monthly"`
	Months       int                `json:"months"`
	Total        float64            `json:"total"`
	Breakdown    map[string]float64 `json:"breakdown"`
	Percentages  map[string]float64 `json:"percentages"`
	Assumptions  []string           `json:"assumptions"`
}

// EstimateCost multiplies the monthly estimate by months. It is a static
// heuristic, not a pricing lookup.
func EstimateCost(analysis *domain.RepositoryAnalysis, months int) CostReport {
	infra := analysis.Strategy.Infrastructure
	cost := infra.Cost

	breakdown := make(map[string]float64, len(cost.Breakdown))
	percentages := make(map[string]float64, len(cost.Breakdown))
	for item, amount := range cost.Breakdown {
		breakdown[item] = round2(amount * float64(months))
		percentages[item] = 0
		if cost.Monthly > 0 {
			percentages[item] = round2(amount / cost.Monthly * 100)
		}
	}

	return CostReport{
		Provider:     infra.Provider,
		Tier:         infra.Tier,
		InstanceType: infra.Instance.Type,
		Currency:     cost.Currency,
		Monthly:      cost.Monthly,
		Months:       months,
		Total:        round2(cost.Monthly * float64(months)),
		Breakdown:    breakdown,
		Percentages:  percentages,
		Assumptions: []string{
			"On-demand pricing for a single instance",
			"Bandwidth within the free tier",
			"Managed databases and caches are not included",
		},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
