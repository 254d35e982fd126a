package tools

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/gitclient"
)

// Execution kinds.
const (
	KindBuild   = "build"
	KindTest    = "test"
	KindPackage = "package"
)

// toolchain holds the default build and test command lines of one package manager.
type toolchain struct {
	build string
	test  string
}

//nolint:gochecknoglobals // lookup table
var toolchains = map[string]toolchain{
	"npm":        {build: "npm install && npm run build --if-present", test: "npm test"},
	"yarn":       {build: "yarn install && yarn build", test: "yarn test"},
	"pnpm":       {build: "pnpm install && pnpm build", test: "pnpm test"},
	"bun":        {build: "bun install && bun run build", test: "bun test"},
	"pip":        {build: "pip install -r requirements.txt", test: "python -m pytest"},
	"pipenv":     {build: "pipenv install --deploy", test: "pipenv run pytest"},
	"poetry":     {build: "poetry install --no-interaction", test: "poetry run pytest"},
	"bundler":    {build: "bundle install", test: "bundle exec rake test"},
	"go-modules": {build: "go build ./...", test: "go test ./..."},
	"maven":      {build: "mvn -B package -DskipTests", test: "mvn -B test"},
	"gradle":     {build: "./gradlew build -x test", test: "./gradlew test"},
	"cargo":      {build: "cargo build --release", test: "cargo test"},
	"composer":   {build: "composer install --no-dev --optimize-autoloader", test: "vendor/bin/phpunit"},
}

// DefaultCommand returns the command line an execute operation runs when the
// caller does not provide one.
func DefaultCommand(kind string, analysis *domain.RepositoryAnalysis, tag string) (string, error) {
	if kind == KindPackage {
		return packageCommand(analysis, tag), nil
	}

	stack := analysis.TechStack
	chain, ok := toolchains[stack.PackageManager]
	if !ok {
		return "", fmt.Errorf("%w: no default %s command for %s stack",
			domain.ErrUnsupported, kind, stack.Primary)
	}

	switch kind {
	case KindBuild:
		if stack.Runtime == domain.RuntimeNode && analysis.BuildConfig.BuildScript == "" {
			return strings.SplitN(chain.build, " && ", 2)[0], nil
		}
		return chain.build, nil
	case KindTest:
		if stack.PackageManager == "bundler" && slices.Contains(stack.TestFrameworks, "rspec") {
			return "bundle exec rspec", nil
		}
		return chain.test, nil
	default:
		return "", domain.InvalidInputf("unknown execution kind %q", kind)
	}
}

// packageCommand builds a container image when a Dockerfile exists and a
// source archive otherwise.
func packageCommand(analysis *domain.RepositoryAnalysis, tag string) string {
	name := artifactName(analysis.Repository)
	if tag == "" {
		tag = "latest"
	}
	if analysis.BuildConfig.HasDockerfile {
		return fmt.Sprintf("docker build -t %s .", gitclient.Quote(name+":"+tag))
	}
	return fmt.Sprintf("tar --exclude=.git -czf %s .", gitclient.Quote(filepath.Join("..", name+"-"+tag+".tar.gz")))
}

// artifactName derives a lowercase image or archive name from the repository URL.
func artifactName(handle domain.RepositoryHandle) string {
	base := strings.TrimSuffix(filepath.Base(strings.TrimRight(handle.URL, "/")), ".git")
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-.")
	if name == "" {
		return "app"
	}
	return name
}
