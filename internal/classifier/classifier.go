package classifier

import (
	"context"
	"strings"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/manifest"

	"go.uber.org/zap"
)

// branch is one entry of the ordered decision list.
type branch struct {
	language domain.Language
	detect   func(*manifest.Set) bool
	classify func(*manifest.Set) domain.TechStack
}

// decisionList is evaluated top to bottom; the first detecting branch wins.
// Polyglot repositories are therefore classified by their highest-priority manifest only.
//
//nolint:gochecknoglobals // decision table
var decisionList = []branch{
	{domain.LanguageJavaScript, hasNode, classifyNode},
	{domain.LanguagePython, hasPython, classifyPython},
	{domain.LanguageRuby, hasRuby, classifyRuby},
	{domain.LanguageGo, hasGo, classifyGo},
	{domain.LanguageJava, hasJava, classifyJava},
	{domain.LanguageRust, hasRust, classifyRust},
	{domain.LanguagePHP, hasPHP, classifyPHP},
	{domain.LanguageStatic, hasHTML, classifyStatic},
}

// Classifier determines the technology stack of a repository
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier creates a new stack classifier
func NewClassifier(logger *zap.Logger) *Classifier {
	return &Classifier{
		logger: logger,
	}
}

// Classify runs the decision list against the manifest set. It never fails:
// repositories matching no branch are classified as unknown.
func (c *Classifier) Classify(ctx context.Context, set *manifest.Set) domain.TechStack {
	for _, b := range decisionList {
		if !b.detect(set) {
			continue
		}
		stack := b.classify(set)
		if set.HasAny(manifest.Dockerfile) {
			stack.Secondary = appendUnique(stack.Secondary, "docker")
		}
		if set.HasAny(manifest.DockerCompose, manifest.DockerComposeYA) {
			stack.Secondary = appendUnique(stack.Secondary, "docker-compose")
		}
		c.logger.Debug("Classified repository",
			zap.String("branch", string(b.language)),
			zap.String("primary", string(stack.Primary)),
			zap.String("framework", stack.Framework),
			zap.String("runtime", stack.Runtime))
		return stack
	}

	c.logger.Debug("No classification branch matched", zap.String("root", set.Root))
	return newStack(domain.LanguageUnknown)
}

func newStack(language domain.Language) domain.TechStack {
	return domain.TechStack{
		Primary:        language,
		Secondary:      []string{},
		Variant:        string(language),
		TestFrameworks: []string{},
	}
}

func hasNode(s *manifest.Set) bool { return s.Has(manifest.PackageJSON) }

func hasPython(s *manifest.Set) bool {
	return s.HasAny(manifest.Requirements, manifest.AppPy, manifest.MainPy,
		manifest.Pipfile, manifest.Pyproject, manifest.SetupPy)
}

func hasRuby(s *manifest.Set) bool { return s.Has(manifest.Gemfile) }
func hasGo(s *manifest.Set) bool   { return s.Has(manifest.GoMod) }

func hasJava(s *manifest.Set) bool {
	return s.HasAny(manifest.PomXML, manifest.BuildGradle, manifest.BuildGradleKts)
}

func hasRust(s *manifest.Set) bool { return s.Has(manifest.CargoToml) }
func hasPHP(s *manifest.Set) bool  { return s.Has(manifest.ComposerJSON) }
func hasHTML(s *manifest.Set) bool { return len(s.HTMLFiles) > 0 }

func classifyNode(s *manifest.Set) domain.TechStack {
	names := s.Node.AllDependencyNames()

	stack := newStack(domain.LanguageJavaScript)
	if firstMatch(typeScriptIndicators, names) != "" {
		stack.Primary = domain.LanguageTypeScript
		stack.Variant = string(domain.LanguageTypeScript)
	}
	stack.Framework = firstMatch(nodeFrameworks, names)
	stack.BuildTool = firstMatch(nodeBuildTools, names)
	if stack.BuildTool == "" && strings.Contains(s.Node.Scripts["build"], "tsc") {
		stack.BuildTool = "tsc"
	}
	stack.TestFrameworks = allMatches(nodeTestFrameworks, names)
	stack.Secondary = allMatches(nodeSecondary, names)
	stack.Version = s.Node.Engines["node"]
	stack.Runtime = domain.RuntimeNode

	switch {
	case s.Has(manifest.YarnLock):
		stack.PackageManager = "yarn"
	case s.Has(manifest.PnpmLock):
		stack.PackageManager = "pnpm"
	case s.Has(manifest.BunLock):
		stack.PackageManager = "bun"
	default:
		stack.PackageManager = "npm"
	}
	return stack
}

func classifyPython(s *manifest.Set) domain.TechStack {
	names := pythonNames(s)

	stack := newStack(domain.LanguagePython)
	stack.Variant = "python3"
	stack.Framework = firstMatch(pythonFrameworks, names)
	if stack.Framework == "" && s.Has(manifest.ManagePy) {
		stack.Framework = "django"
	}
	stack.TestFrameworks = allMatches(pythonTestFrameworks, names)
	stack.Secondary = allMatches(pythonSecondary, names)
	stack.Runtime = domain.RuntimePython

	poetry := s.Has(manifest.PoetryLock) || strings.Contains(s.Text(manifest.Pyproject), "[tool.poetry]")
	switch {
	case s.Has(manifest.Pipfile):
		stack.PackageManager = "pipenv"
	case poetry:
		stack.PackageManager = "poetry"
	default:
		stack.PackageManager = "pip"
	}
	switch {
	case poetry:
		stack.BuildTool = "poetry"
	case s.Has(manifest.SetupPy):
		stack.BuildTool = "setuptools"
	}
	return stack
}

// pythonNames prefers the requirements listing and falls back to tokens of
// the other Python manifests.
func pythonNames(s *manifest.Set) []string {
	var names []string
	for _, req := range manifest.ParseRequirements(s.Text(manifest.Requirements)) {
		names = append(names, normalizePythonName(req.Name))
	}
	if len(names) > 0 {
		return names
	}
	for _, name := range []string{manifest.Pyproject, manifest.Pipfile, manifest.SetupPy} {
		for _, token := range manifest.Tokens(s.Text(name)) {
			names = append(names, normalizePythonName(token))
		}
	}
	return names
}

func normalizePythonName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

func classifyRuby(s *manifest.Set) domain.TechStack {
	var names []string
	for _, gem := range manifest.ParseGemfile(s.Text(manifest.Gemfile)) {
		names = append(names, gem.Name)
	}

	stack := newStack(domain.LanguageRuby)
	stack.Framework = firstMatch(rubyFrameworks, names)
	stack.TestFrameworks = allMatches(rubyTestFrameworks, names)
	stack.Secondary = allMatches(rubySecondary, names)
	stack.PackageManager = "bundler"
	stack.BuildTool = "bundler"
	stack.Runtime = domain.RuntimeRuby
	return stack
}

func classifyGo(s *manifest.Set) domain.TechStack {
	text := s.Text(manifest.GoMod)
	names := manifest.GoRequires(text)

	stack := newStack(domain.LanguageGo)
	stack.Framework = firstMatch(goFrameworks, names)
	stack.TestFrameworks = append([]string{"testing"}, allMatches(goTestFrameworks, names)...)
	stack.Secondary = allMatches(goSecondary, names)
	stack.Version = manifest.GoVersion(text)
	stack.PackageManager = "go-modules"
	stack.BuildTool = "go"
	stack.Runtime = domain.RuntimeGo
	return stack
}

func classifyJava(s *manifest.Set) domain.TechStack {
	var names []string
	if s.Pom != nil {
		if s.Pom.Parent.ArtifactID != "" {
			names = append(names, s.Pom.Parent.GroupID+":"+s.Pom.Parent.ArtifactID)
		}
		for _, dep := range s.Pom.Dependencies {
			names = append(names, dep.Coordinate())
		}
	}
	names = append(names, manifest.Tokens(s.Text(manifest.BuildGradle))...)
	names = append(names, manifest.Tokens(s.Text(manifest.BuildGradleKts))...)

	stack := newStack(domain.LanguageJava)
	stack.Framework = firstMatch(javaFrameworks, names)
	stack.TestFrameworks = allMatches(javaTestFrameworks, names)
	stack.Secondary = allMatches(javaSecondary, names)
	stack.Runtime = domain.RuntimeJVM

	if s.Has(manifest.PomXML) {
		stack.PackageManager = "maven"
		stack.BuildTool = "maven"
	} else {
		stack.PackageManager = "gradle"
		stack.BuildTool = "gradle"
	}
	if s.Has(manifest.BuildGradleKts) {
		stack.Variant = "kotlin"
	}
	return stack
}

func classifyRust(s *manifest.Set) domain.TechStack {
	var names []string
	if s.Cargo != nil {
		names = append(manifest.SortedKeys(s.Cargo.Dependencies), manifest.SortedKeys(s.Cargo.DevDependencies)...)
	}

	stack := newStack(domain.LanguageRust)
	stack.Framework = firstMatch(rustFrameworks, names)
	stack.TestFrameworks = []string{"cargo-test"}
	stack.Secondary = allMatches(rustSecondary, names)
	stack.PackageManager = "cargo"
	stack.BuildTool = "cargo"
	stack.Runtime = domain.RuntimeRust
	if s.Cargo != nil {
		stack.Version = s.Cargo.Package.Edition
	}
	return stack
}

func classifyPHP(s *manifest.Set) domain.TechStack {
	var names []string
	if s.Composer != nil {
		names = append(manifest.SortedKeys(s.Composer.Require), manifest.SortedKeys(s.Composer.RequireDev)...)
	}

	stack := newStack(domain.LanguagePHP)
	stack.Framework = firstMatch(phpFrameworks, names)
	stack.TestFrameworks = allMatches(phpTestFrameworks, names)
	stack.PackageManager = "composer"
	stack.Runtime = domain.RuntimePHP
	if s.Composer != nil {
		stack.Version = s.Composer.Require["php"]
	}
	return stack
}

func classifyStatic(_ *manifest.Set) domain.TechStack {
	return newStack(domain.LanguageStatic)
}

func appendUnique(tags []string, tag string) []string {
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}
