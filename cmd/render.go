package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/generator"
	"deploy-planner/internal/report"
	"deploy-planner/internal/tools"

	"github.com/pterm/pterm"
)

// errValidationFailed is returned after a failed readiness report is printed.
var errValidationFailed = errors.New("deployment validation failed")

func printHeader(title string) {
	pterm.DefaultHeader.
		WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println(title)
}

func printTable(title string, data pterm.TableData) error {
	if len(data) <= 1 {
		return nil
	}
	pterm.DefaultSection.Println(title)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printSuccess(msg string) {
	pterm.Success.Println(msg)
}

func printNotes(warnings, recommendations []string) {
	for _, w := range warnings {
		pterm.Warning.Println(w)
	}
	for _, r := range recommendations {
		pterm.Info.Println(r)
	}
}

func printAnalysis(a *domain.RepositoryAnalysis) error {
	printHeader(fmt.Sprintf("Analysis of %s (%s)", a.Repository.URL, a.Repository.Branch))

	if err := printTable("Technology stack", stackRows(a)); err != nil {
		return err
	}
	if err := printTable("Requirements", requirementRows(a.Requirements)); err != nil {
		return err
	}
	if err := printTable("Deployment steps", stepRows(a.Strategy.Steps)); err != nil {
		return err
	}
	if err := printTable("Dependencies", dependencyRows(a.Dependencies)); err != nil {
		return err
	}

	printNotes(a.Warnings, a.Recommendations)
	pterm.Info.Printfln("Confidence: %d%%", a.Confidence)
	return nil
}

// printTypedResult prints the terminal summary of any non-analysis operation result.
func printTypedResult(data any) error {
	switch v := data.(type) {
	case report.DeploymentPlan:
		printHeader("Deployment plan for " + v.Repository)
		pterm.Println(v.Summary)
		if err := printTable("Steps", stepRows(v.Strategy.Steps)); err != nil {
			return err
		}
		printNotes(v.Warnings, nil)
		pterm.Info.Printfln("Estimated duration: %ds, confidence: %d%%", v.EstimatedSeconds, v.Confidence)
	case report.CostReport:
		printHeader(fmt.Sprintf("Cost estimate: %s %s (%s)", v.Provider, v.InstanceType, v.Tier))
		if err := printTable("Breakdown", costRows(v)); err != nil {
			return err
		}
		printNotes(nil, v.Assumptions)
	case report.ValidationReport:
		printHeader("Deployment readiness")
		if err := printTable("Checks", checkRows(v.Checks)); err != nil {
			return err
		}
		if v.Valid {
			printSuccess("Repository is ready to deploy")
		} else {
			for _, e := range v.Errors {
				pterm.Error.Println(e)
			}
		}
		printNotes(v.Warnings, nil)
	case report.SecurityReport:
		printHeader(fmt.Sprintf("Security score: %d/100", v.Score))
		if err := printTable("Findings", findingRows(v.Findings)); err != nil {
			return err
		}
		if len(v.Findings) == 0 {
			printSuccess("No security findings")
		}
	case *domain.RepositoryHandle:
		printSuccess(fmt.Sprintf("Snapshot of %s (%s) at %s", v.URL, v.Branch, v.LocalPath))
	case tools.ExecutionResult:
		return printExecution(v)
	default:
		return generator.Render(os.Stdout, generator.FormatJSON, data)
	}
	return nil
}

func printExecution(v tools.ExecutionResult) error {
	pterm.DefaultSection.Println(v.Command)
	if v.Result == nil {
		return nil
	}
	if v.Result.Stdout != "" {
		pterm.Println(v.Result.Stdout)
	}
	if v.Result.Stderr != "" {
		pterm.Warning.Println(v.Result.Stderr)
	}
	printSuccess(fmt.Sprintf("exit code %d in %s", v.Result.ExitCode, v.Result.Duration))
	return nil
}

// validationError turns a failed readiness report into a non-zero exit.
func validationError(data any) error {
	if v, ok := data.(report.ValidationReport); ok && !v.Valid {
		return errValidationFailed
	}
	return nil
}

func stackRows(a *domain.RepositoryAnalysis) pterm.TableData {
	s := a.TechStack
	rows := pterm.TableData{{"Property", "Value"}}
	add := func(name, value string) {
		if value != "" {
			rows = append(rows, []string{name, value})
		}
	}
	add("Primary", string(s.Primary))
	add("Framework", s.Framework)
	add("Variant", s.Variant)
	add("Version", s.Version)
	add("Package manager", s.PackageManager)
	add("Build tool", s.BuildTool)
	add("Runtime", s.Runtime)
	add("Secondary", strings.Join(s.Secondary, ", "))
	add("Test frameworks", strings.Join(s.TestFrameworks, ", "))
	add("Strategy", fmt.Sprintf("%s / %s", a.Strategy.Type, a.Strategy.Approach))
	return rows
}

func requirementRows(r domain.Requirements) pterm.TableData {
	rows := pterm.TableData{
		{"Resource", "Minimum", "Recommended"},
		{"CPU", strconv.Itoa(r.CPU.Min), strconv.Itoa(r.CPU.Recommended)},
		{"Memory", r.Memory.Min, r.Memory.Recommended},
		{"Storage", r.Storage.Min, r.Storage.Type},
		{"Ports", generator.FormatPorts(r.Network.Ports), strings.Join(r.Network.Protocols, ", ")},
	}
	for _, svc := range r.Services {
		required := "optional"
		if svc.Required {
			required = "required"
		}
		rows = append(rows, []string{"Service " + svc.Name, string(svc.Type), required})
	}
	return rows
}

func stepRows(steps []domain.DeploymentStep) pterm.TableData {
	rows := pterm.TableData{{"#", "Step", "Command", "Timeout"}}
	for _, s := range steps {
		rows = append(rows, []string{
			strconv.Itoa(s.Order),
			s.Name,
			s.Command,
			fmt.Sprintf("%ds", s.Timeout),
		})
	}
	return rows
}

func dependencyRows(deps []domain.Dependency) pterm.TableData {
	rows := pterm.TableData{{"Name", "Version", "Type", "Source"}}
	for _, d := range generator.SortDependencies(deps) {
		rows = append(rows, []string{d.Name, d.Version, string(d.Type), d.Source})
	}
	return rows
}

func costRows(c report.CostReport) pterm.TableData {
	rows := pterm.TableData{{"Item", "Monthly", "Share"}}
	for _, item := range slices.Sorted(maps.Keys(c.Breakdown)) {
		rows = append(rows, []string{
			item,
			fmt.Sprintf("%.2f %s", c.Breakdown[item], c.Currency),
			fmt.Sprintf("%.1f%%", c.Percentages[item]),
		})
	}
	rows = append(rows,
		[]string{"Monthly total", fmt.Sprintf("%.2f %s", c.Monthly, c.Currency), ""},
		[]string{fmt.Sprintf("Total (%d months)", c.Months), fmt.Sprintf("%.2f %s", c.Total, c.Currency), ""},
	)
	return rows
}

func checkRows(checks []report.Check) pterm.TableData {
	rows := pterm.TableData{{"Check", "Result", "Severity", "Message"}}
	for _, c := range checks {
		result := "fail"
		if c.Passed {
			result = "pass"
		}
		rows = append(rows, []string{c.Name, result, string(c.Severity), c.Message})
	}
	return rows
}

func findingRows(findings []report.Finding) pterm.TableData {
	rows := pterm.TableData{{"ID", "Severity", "Category", "Title"}}
	for _, f := range findings {
		rows = append(rows, []string{f.ID, string(f.Severity), f.Category, f.Title})
	}
	return rows
}
