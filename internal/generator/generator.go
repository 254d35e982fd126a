package generator

import (
	"context"
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/requirements"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed template.html
var templateContent string

// Format is an output rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts json, yaml (or yml), html and csv in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html":
		return FormatHTML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", domain.InvalidInputf("unsupported output format %q", s)
	}
}

//nolint:gochecknoglobals // report ordering
var dependencyTypeOrder = map[domain.DependencyType]int{
	domain.DependencyProduction:  0,
	domain.DependencyPeer:        1,
	domain.DependencyOptional:    2,
	domain.DependencyDevelopment: 3,
}

// Generator renders repository analyses to a file
type Generator struct {
	outputPath string
	logger     *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(outputPath string, logger *zap.Logger) *Generator {
	return &Generator{
		outputPath: outputPath,
		logger:     logger,
	}
}

// OutputPath returns the output path
func (g *Generator) OutputPath() string {
	return g.outputPath
}

// Generate writes the analysis to the output path in the given format
func (g *Generator) Generate(ctx context.Context, format Format, analysis *domain.RepositoryAnalysis) error {
	dir := filepath.Dir(g.outputPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(g.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := RenderAnalysis(file, format, analysis); err != nil {
		return err
	}

	g.logger.Debug("Report written",
		zap.String("path", g.outputPath),
		zap.String("format", string(format)))
	return nil
}

// RenderAnalysis writes an analysis in any supported format.
func RenderAnalysis(w io.Writer, format Format, analysis *domain.RepositoryAnalysis) error {
	switch format {
	case FormatHTML:
		return renderHTML(w, analysis)
	case FormatCSV:
		return renderCSV(w, analysis)
	default:
		return Render(w, format, analysis)
	}
}

// Render writes any JSON-taggable value as JSON or YAML. YAML keys follow the JSON tags.
func Render(w io.Writer, format Format, value any) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		return renderYAML(w, value)
	default:
		return fmt.Errorf("%w: %s rendering is only available for analyses", domain.ErrUnsupported, format)
	}
}

func renderYAML(w io.Writer, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(tree); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// GenerateSummary creates aggregated statistics of an analysis
func GenerateSummary(analysis *domain.RepositoryAnalysis) map[string]any {
	byType := make(map[string]int)
	for _, dep := range analysis.Dependencies {
		byType[string(dep.Type)]++
	}
	services := make([]string, 0, len(analysis.Requirements.Services))
	for _, service := range analysis.Requirements.Services {
		services = append(services, service.Name)
	}

	return map[string]any{
		"total_dependencies": len(analysis.Dependencies),
		"dependency_types":   byType,
		"services":           services,
		"ports":              analysis.Requirements.Network.Ports,
		"steps":              len(analysis.Strategy.Steps),
		"estimated_seconds":  analysis.Strategy.TotalTimeout(),
		"monthly_cost":       analysis.Strategy.Infrastructure.Cost.Monthly,
		"confidence":         analysis.Confidence,
	}
}

// SortDependencies orders dependencies by type (production first) and then by name.
func SortDependencies(dependencies []domain.Dependency) []domain.Dependency {
	sorted := make([]domain.Dependency, len(dependencies))
	copy(sorted, dependencies)
	sort.SliceStable(sorted, func(i, j int) bool {
		oi, oj := dependencyTypeOrder[sorted[i].Type], dependencyTypeOrder[sorted[j].Type]
		if oi != oj {
			return oi < oj
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func renderHTML(w io.Writer, analysis *domain.RepositoryAnalysis) error {
	tmpl, err := template.New("report").
		Funcs(template.FuncMap{"ports": FormatPorts}).
		Parse(templateContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	data := struct {
		Title        string
		Analysis     *domain.RepositoryAnalysis
		Dependencies []domain.Dependency
		Summary      map[string]any
	}{
		Title:        "Deployment Plan: " + analysis.Repository.URL,
		Analysis:     analysis,
		Dependencies: SortDependencies(analysis.Dependencies),
		Summary:      GenerateSummary(analysis),
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

func renderCSV(w io.Writer, analysis *domain.RepositoryAnalysis) error {
	writer := csv.NewWriter(w)

	header := []string{
		"Repository",
		"Branch",
		"Primary",
		"Framework",
		"Dependency Name",
		"Version",
		"Type",
		"Source",
		"Service",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, dep := range SortDependencies(analysis.Dependencies) {
		record := []string{
			analysis.Repository.URL,
			analysis.Repository.Branch,
			string(analysis.TechStack.Primary),
			analysis.TechStack.Framework,
			dep.Name,
			dep.Version,
			string(dep.Type),
			dep.Source,
			serviceOf(dep),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// serviceOf names the external service a dependency implies, if any.
func serviceOf(dep domain.Dependency) string {
	services := requirements.DetectServices([]domain.Dependency{dep})
	if len(services) == 0 {
		return ""
	}
	return services[0].Name
}

// FormatPorts joins ports for display.
func FormatPorts(ports []int) string {
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}
