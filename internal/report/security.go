package report

import (
	"fmt"
	"strings"

	"deploy-planner/internal/domain"

	"github.com/Masterminds/semver/v3"
)

const maxSecurityScore = 100

//nolint:gochecknoglobals // scoring and lookup tables
var (
	severityWeights = map[Severity]int{
		SeverityCritical: 25,
		SeverityHigh:     15,
		SeverityMedium:   10,
		SeverityLow:      5,
	}

	// devOnlyPackages should never be production dependencies.
	devOnlyPackages = map[string]bool{
		"nodemon": true, "ts-node-dev": true, "webpack-dev-server": true,
	}

	// farFutureVersion is accepted only by constraints with no upper bound.
	farFutureVersion = semver.MustParse("99999.0.0")

	rootUsers = map[string]bool{"": true, "root": true, "0": true, "0:0": true}
)

// Finding is one static security observation. It is not a vulnerability scan result.
type Finding struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}

// SecurityReport lists findings with per-severity counts and a 0-100 score.
type SecurityReport struct {
	Score    int              `json:"score"`
	Findings []Finding        `json:"findings"`
	Counts   map[Severity]int `json:"counts"`
}

// DetectSecurityIssues runs the static checklist against an analysis.
func DetectSecurityIssues(analysis *domain.RepositoryAnalysis) SecurityReport {
	findings := []Finding{}
	findings = append(findings, secretFindings(analysis.BuildConfig)...)
	findings = append(findings, containerFindings(analysis.BuildConfig)...)
	findings = append(findings, dependencyFindings(analysis.Dependencies)...)

	report := SecurityReport{
		Score:    maxSecurityScore,
		Findings: findings,
		Counts: map[Severity]int{
			SeverityCritical: 0,
			SeverityHigh:     0,
			SeverityMedium:   0,
			SeverityLow:      0,
		},
	}
	for _, f := range findings {
		report.Counts[f.Severity]++
		report.Score -= severityWeights[f.Severity]
	}
	report.Score = max(report.Score, 0)
	return report
}

func secretFindings(build domain.BuildConfig) []Finding {
	var findings []Finding
	for _, variable := range build.Environment {
		if !variable.Sensitive || variable.DefaultValue == nil {
			continue
		}
		findings = append(findings, Finding{
			ID:       "SEC001",
			Severity: SeverityHigh,
			Category: "secrets",
			Title:    "Example environment file contains a secret value",
			Detail:   fmt.Sprintf("%s has a value in the example environment file; use a placeholder instead", variable.Name),
		})
	}
	return findings
}

func containerFindings(build domain.BuildConfig) []Finding {
	if !build.HasDockerfile || build.Dockerfile == nil {
		return []Finding{{
			ID:       "SEC005",
			Severity: SeverityLow,
			Category: "configuration",
			Title:    "No Dockerfile",
			Detail:   "the application runs directly on the host without container isolation",
		}}
	}

	docker := build.Dockerfile
	var findings []Finding
	if rootUsers[strings.ToLower(docker.User)] {
		findings = append(findings, Finding{
			ID:       "SEC002",
			Severity: SeverityMedium,
			Category: "container",
			Title:    "Container runs as root",
			Detail:   "add a USER instruction with an unprivileged user",
		})
	}
	if unpinnedImage(docker.BaseImage) {
		findings = append(findings, Finding{
			ID:       "SEC003",
			Severity: SeverityMedium,
			Category: "container",
			Title:    "Base image is not pinned",
			Detail:   fmt.Sprintf("base image %q uses the latest tag or no tag", docker.BaseImage),
		})
	}
	if !docker.Healthcheck {
		findings = append(findings, Finding{
			ID:       "SEC004",
			Severity: SeverityLow,
			Category: "container",
			Title:    "No HEALTHCHECK instruction",
			Detail:   "the orchestrator cannot detect an unhealthy container",
		})
	}
	return findings
}

// unpinnedImage reports references like "node", "node:latest" or "registry:5000/app".
func unpinnedImage(image string) bool {
	if image == "" || strings.EqualFold(image, "scratch") || strings.Contains(image, "@") {
		return false
	}
	name := image[strings.LastIndex(image, "/")+1:]
	_, tag, ok := strings.Cut(name, ":")
	return !ok || tag == "" || strings.EqualFold(tag, domain.LatestVersion)
}

func dependencyFindings(dependencies []domain.Dependency) []Finding {
	var findings []Finding
	var unpinned []string
	for _, dep := range dependencies {
		if dep.Type == domain.DependencyProduction && devOnlyPackages[dep.Name] {
			findings = append(findings, Finding{
				ID:       "SEC007",
				Severity: SeverityLow,
				Category: "dependencies",
				Title:    "Development tool declared as production dependency",
				Detail:   fmt.Sprintf("%s (%s) should be a development dependency", dep.Name, dep.Source),
			})
		}
		if dep.Type != domain.DependencyDevelopment && UnpinnedVersion(declaredVersion(dep)) {
			unpinned = append(unpinned, dep.Name)
		}
	}
	if len(unpinned) > 0 {
		findings = append(findings, Finding{
			ID:       "SEC006",
			Severity: SeverityLow,
			Category: "dependencies",
			Title:    "Unpinned dependency versions",
			Detail:   fmt.Sprintf("%d dependencies accept any future version: %s", len(unpinned), strings.Join(unpinned, ", ")),
		})
	}
	return findings
}

// declaredVersion prefers the constraint as written in the manifest.
func declaredVersion(dep domain.Dependency) string {
	if dep.Constraint != "" {
		return dep.Constraint
	}
	return dep.Version
}

// UnpinnedVersion reports versions with no upper bound. Strings that are not
// semver constraints (git URLs, Ruby pessimistic operators) are not judged.
func UnpinnedVersion(version string) bool {
	v := strings.TrimSpace(version)
	switch strings.ToLower(v) {
	case "", "*", "x", domain.LatestVersion:
		return true
	}
	constraint, err := semver.NewConstraint(v)
	if err != nil {
		return false
	}
	return constraint.Check(farFutureVersion)
}
