package manifest

import (
	"path/filepath"
	"strings"
)

// Candidate file names looked up at the repository root.
const (
	PackageJSON     = "package.json"
	PackageLock     = "package-lock.json"
	YarnLock        = "yarn.lock"
	PnpmLock        = "pnpm-lock.yaml"
	BunLock         = "bun.lockb"
	TSConfig        = "tsconfig.json"
	Requirements    = "requirements.txt"
	Pipfile         = "Pipfile"
	Pyproject       = "pyproject.toml"
	PoetryLock      = "poetry.lock"
	SetupPy         = "setup.py"
	AppPy           = "app.py"
	MainPy          = "main.py"
	ManagePy        = "manage.py"
	Gemfile         = "Gemfile"
	GoMod           = "go.mod"
	PomXML          = "pom.xml"
	BuildGradle     = "build.gradle"
	BuildGradleKts  = "build.gradle.kts"
	CargoToml       = "Cargo.toml"
	ComposerJSON    = "composer.json"
	Dockerfile      = "Dockerfile"
	DockerCompose   = "docker-compose.yml"
	DockerComposeYA = "docker-compose.yaml"
	Procfile        = "Procfile"
	EnvExample      = ".env.example"
	EnvSample       = ".env.sample"
	EnvTemplate     = ".env.template"
)

// CandidateFiles is the fixed set of files the reader knows about.
var CandidateFiles = []string{ //nolint:gochecknoglobals // lookup table
	PackageJSON, PackageLock, YarnLock, PnpmLock, BunLock, TSConfig,
	Requirements, Pipfile, Pyproject, PoetryLock, SetupPy, AppPy, MainPy, ManagePy,
	Gemfile,
	GoMod,
	PomXML, BuildGradle, BuildGradleKts,
	CargoToml,
	ComposerJSON,
	Dockerfile, DockerCompose, DockerComposeYA,
	Procfile,
	EnvExample, EnvSample, EnvTemplate,
}

// EnvExampleFiles lists example-env names in lookup order.
var EnvExampleFiles = []string{EnvExample, EnvSample, EnvTemplate} //nolint:gochecknoglobals // lookup table

// IsHTML reports whether a file name has an HTML extension.
func IsHTML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}

// ScansDir reports whether HTML files in a direct child directory of the
// root are part of the analysis.
func ScansDir(name string) bool {
	return !skippedDirs[name]
}

// IsCandidate reports whether a root-level file name belongs to the candidate set.
func IsCandidate(name string) bool {
	for _, candidate := range CandidateFiles {
		if candidate == name {
			return true
		}
	}
	return false
}
