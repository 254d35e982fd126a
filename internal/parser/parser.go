package parser

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/manifest"

	"github.com/BurntSushi/toml"
	"github.com/aquasecurity/trivy/pkg/dependency/parser/golang/mod"
	"github.com/aquasecurity/trivy/pkg/dependency/parser/python/pyproject"
	ftypes "github.com/aquasecurity/trivy/pkg/fanal/types"
	xio "github.com/aquasecurity/trivy/pkg/x/io"
	"go.uber.org/zap"
)

// Parser extracts declared (direct) dependencies from manifests
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new dependency parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// source extracts the dependencies of one manifest file.
type source struct {
	file    string
	extract func(*Parser, *manifest.Set) ([]domain.Dependency, error)
}

//nolint:gochecknoglobals // extraction order
var sources = []source{
	{manifest.PackageJSON, (*Parser).extractNode},
	{manifest.Requirements, (*Parser).extractRequirements},
	{manifest.Pyproject, (*Parser).extractPyproject},
	{manifest.Pipfile, (*Parser).extractPipfile},
	{manifest.Gemfile, (*Parser).extractGemfile},
	{manifest.GoMod, (*Parser).extractGoMod},
	{manifest.PomXML, (*Parser).extractPom},
	{manifest.CargoToml, (*Parser).extractCargo},
	{manifest.ComposerJSON, (*Parser).extractComposer},
}

// ExtractDependencies returns the flat dependency list of every present manifest.
// Entries from different manifests are never merged. A manifest that fails to
// parse contributes nothing and does not abort the others.
func (p *Parser) ExtractDependencies(ctx context.Context, set *manifest.Set) []domain.Dependency {
	dependencies := []domain.Dependency{}
	for _, src := range sources {
		if !set.Has(src.file) {
			continue
		}
		if src.file == manifest.Pyproject && set.Has(manifest.Requirements) {
			continue
		}
		deps, err := src.extract(p, set)
		if err != nil {
			p.logger.Warn("Failed to extract dependencies",
				zap.String("file", src.file),
				zap.Error(err))
			continue
		}
		p.logger.Debug("Extracted dependencies",
			zap.String("file", src.file),
			zap.Int("dependencies_count", len(deps)))
		dependencies = append(dependencies, deps...)
	}
	return dependencies
}

func (p *Parser) extractNode(set *manifest.Set) ([]domain.Dependency, error) {
	node := set.Node
	c := newCollector(manifest.PackageJSON)
	for _, group := range []struct {
		deps map[string]string
		kind domain.DependencyType
	}{
		{node.Dependencies, domain.DependencyProduction},
		{node.DevDependencies, domain.DependencyDevelopment},
		{node.PeerDependencies, domain.DependencyPeer},
		{node.OptionalDependencies, domain.DependencyOptional},
	} {
		for _, name := range manifest.SortedKeys(group.deps) {
			c.add(name, group.deps[name], group.kind)
		}
	}
	return c.result(), nil
}

func (p *Parser) extractRequirements(set *manifest.Set) ([]domain.Dependency, error) {
	c := newCollector(manifest.Requirements)
	for _, req := range manifest.ParseRequirements(set.Text(manifest.Requirements)) {
		c.addConstrained(req.Name, req.Version, req.Constraint(), domain.DependencyProduction)
	}
	return c.result(), nil
}

// extractPyproject parses pyproject.toml with Trivy; versions are not resolved.
func (p *Parser) extractPyproject(set *manifest.Set) ([]domain.Dependency, error) {
	content, _ := set.Raw(manifest.Pyproject)
	parsed, err := pyproject.NewParser().Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("pyproject.toml parser error: %w", err)
	}

	names := parsed.MainDeps().Items()
	sort.Strings(names)
	c := newCollector(manifest.Pyproject)
	for _, name := range names {
		if strings.EqualFold(name, "python") {
			continue
		}
		c.add(name, "", domain.DependencyProduction)
	}
	return c.result(), nil
}

type pipfile struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

func (p *Parser) extractPipfile(set *manifest.Set) ([]domain.Dependency, error) {
	var parsed pipfile
	if _, err := toml.Decode(set.Text(manifest.Pipfile), &parsed); err != nil {
		return nil, fmt.Errorf("pipfile parser error: %w", err)
	}
	c := newCollector(manifest.Pipfile)
	for _, name := range manifest.SortedKeys(parsed.Packages) {
		c.add(name, tableVersion(parsed.Packages[name]), domain.DependencyProduction)
	}
	for _, name := range manifest.SortedKeys(parsed.DevPackages) {
		c.add(name, tableVersion(parsed.DevPackages[name]), domain.DependencyDevelopment)
	}
	return c.result(), nil
}

func (p *Parser) extractGemfile(set *manifest.Set) ([]domain.Dependency, error) {
	c := newCollector(manifest.Gemfile)
	for _, gem := range manifest.ParseGemfile(set.Text(manifest.Gemfile)) {
		kind := domain.DependencyProduction
		for _, group := range gem.Groups {
			if group == "development" || group == "test" {
				kind = domain.DependencyDevelopment
			}
		}
		c.add(gem.Name, gem.Version, kind)
	}
	return c.result(), nil
}

// extractGoMod parses go.mod with Trivy, keeping direct requirements only.
func (p *Parser) extractGoMod(set *manifest.Set) ([]domain.Dependency, error) {
	content, _ := set.Raw(manifest.GoMod)
	reader, err := xio.NewReadSeekerAt(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	packages, _, err := mod.NewParser(false, false).Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("go.mod parser error: %w", err)
	}

	sort.Slice(packages, func(i, j int) bool { return packages[i].Name < packages[j].Name })
	c := newCollector(manifest.GoMod)
	for i := range packages {
		pkg := &packages[i]
		if pkg.Relationship == ftypes.RelationshipRoot ||
			pkg.Relationship == ftypes.RelationshipIndirect ||
			pkg.Name == "stdlib" {
			continue
		}
		c.add(pkg.Name, pkg.Version, domain.DependencyProduction)
	}
	return c.result(), nil
}

func (p *Parser) extractPom(set *manifest.Set) ([]domain.Dependency, error) {
	c := newCollector(manifest.PomXML)
	for _, dep := range set.Pom.Dependencies {
		kind := domain.DependencyProduction
		if strings.EqualFold(dep.Scope, "test") {
			kind = domain.DependencyDevelopment
		}
		version := dep.Version
		if strings.HasPrefix(version, "${") {
			version = ""
		}
		c.add(dep.Coordinate(), version, kind)
	}
	return c.result(), nil
}

func (p *Parser) extractCargo(set *manifest.Set) ([]domain.Dependency, error) {
	c := newCollector(manifest.CargoToml)
	for _, name := range manifest.SortedKeys(set.Cargo.Dependencies) {
		c.add(name, tableVersion(set.Cargo.Dependencies[name]), domain.DependencyProduction)
	}
	for _, name := range manifest.SortedKeys(set.Cargo.DevDependencies) {
		c.add(name, tableVersion(set.Cargo.DevDependencies[name]), domain.DependencyDevelopment)
	}
	return c.result(), nil
}

func (p *Parser) extractComposer(set *manifest.Set) ([]domain.Dependency, error) {
	c := newCollector(manifest.ComposerJSON)
	add := func(deps map[string]string, kind domain.DependencyType) {
		for _, name := range manifest.SortedKeys(deps) {
			if isPlatformPackage(name) {
				continue
			}
			c.add(name, deps[name], kind)
		}
	}
	add(set.Composer.Require, domain.DependencyProduction)
	add(set.Composer.RequireDev, domain.DependencyDevelopment)
	return c.result(), nil
}

// isPlatformPackage reports composer entries that describe the PHP runtime itself.
func isPlatformPackage(name string) bool {
	return name == "php" || strings.HasPrefix(name, "ext-") || strings.HasPrefix(name, "lib-")
}

// tableVersion reads a TOML dependency value that is either "1.0" or { version = "1.0", ... }.
func tableVersion(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if version, ok := v["version"].(string); ok {
			return version
		}
	}
	return ""
}

// collector keeps one entry per (name, type) within a single source file.
// Later declarations overwrite the version of earlier ones in place.
type collector struct {
	file  string
	index map[string]int
	deps  []domain.Dependency
}

func newCollector(file string) *collector {
	return &collector{file: file, index: make(map[string]int)}
}

func (c *collector) add(name, version string, kind domain.DependencyType) {
	c.addConstrained(name, version, "", kind)
}

// addConstrained records a dependency whose version was split from its
// operator; constraint keeps the declared form.
func (c *collector) addConstrained(name, version, constraint string, kind domain.DependencyType) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	version = strings.TrimSpace(version)
	if version == "" {
		version = domain.LatestVersion
	}
	key := name + "\x00" + string(kind)
	if i, ok := c.index[key]; ok {
		c.deps[i].Version = version
		c.deps[i].Constraint = constraint
		return
	}
	c.index[key] = len(c.deps)
	c.deps = append(c.deps, domain.Dependency{
		Name:       name,
		Version:    version,
		Type:       kind,
		Constraint: constraint,
		Source:     c.file,
	})
}

func (c *collector) result() []domain.Dependency {
	return c.deps
}
