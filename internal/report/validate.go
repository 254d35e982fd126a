package report

import (
	"fmt"
	"slices"

	"deploy-planner/internal/domain"
)

type Severity string

// Validation severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Security finding severities.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Check is one validation rule outcome.
type Check struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ValidationReport is valid when no error-severity check failed.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Checks   []Check  `json:"checks"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate checks that an analysis is deployable given the environment the caller
// will provide. Only names in providedEnv matter, values are never inspected.
func Validate(analysis *domain.RepositoryAnalysis, providedEnv map[string]string) ValidationReport {
	build := analysis.BuildConfig
	checks := []Check{
		check("stack_detected", analysis.TechStack.Primary != domain.LanguageUnknown, SeverityError,
			fmt.Sprintf("primary stack is %s", analysis.TechStack.Primary),
			"primary technology stack could not be determined"),
		check("entrypoint", build.HasDockerfile || build.StartScript != "", SeverityError,
			"application entrypoint found",
			"no Dockerfile or start script defines how to run the application"),
		check("dependencies_declared", len(analysis.Dependencies) > 0, SeverityWarning,
			fmt.Sprintf("%d dependencies declared", len(analysis.Dependencies)),
			"no dependencies declared"),
	}

	for _, variable := range build.Environment {
		if !variable.Sensitive || !variable.Required {
			continue
		}
		_, ok := providedEnv[variable.Name]
		checks = append(checks, check("secrets_provided", ok, SeverityError,
			fmt.Sprintf("secret %s provided", variable.Name),
			fmt.Sprintf("required secret %s is not provided", variable.Name)))
	}

	if build.HasDockerfile {
		healthy := build.Dockerfile != nil && build.Dockerfile.Healthcheck
		checks = append(checks, check("healthcheck", healthy, SeverityWarning,
			"container declares a HEALTHCHECK",
			"container image declares no HEALTHCHECK"))
	}

	ports := analysis.Requirements.Network.Ports
	checks = append(checks, check("ports", slices.Contains(ports, 80) && slices.Contains(ports, 443), SeverityError,
		"ports 80 and 443 are open",
		"ports 80 and 443 must both be exposed"))

	report := ValidationReport{
		Valid:    true,
		Checks:   checks,
		Errors:   []string{},
		Warnings: []string{},
	}
	for _, c := range checks {
		if c.Passed {
			continue
		}
		if c.Severity == SeverityError {
			report.Valid = false
			report.Errors = append(report.Errors, c.Message)
		} else {
			report.Warnings = append(report.Warnings, c.Message)
		}
	}
	return report
}

func check(name string, passed bool, severity Severity, ok, failed string) Check {
	message := ok
	if !passed {
		message = failed
	}
	return Check{Name: name, Passed: passed, Severity: severity, Message: message}
}
