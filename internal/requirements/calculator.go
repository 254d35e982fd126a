package requirements

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"deploy-planner/internal/domain"

	"go.uber.org/zap"
)

const (
	// heavyDependencyCount is the dependency count above which memory is surcharged
	heavyDependencyCount = 50
	// memorySurcharge multiplies the recommended memory of heavy dependency trees
	memorySurcharge = 1.5
)

// sizing is one row of the resource table.
type sizing struct {
	cpu     domain.CPURequirement
	memory  domain.MemoryRequirement
	storage domain.StorageRequirement
}

//nolint:gochecknoglobals // sizing tables
var (
	baseSizing = sizing{
		cpu:     domain.CPURequirement{Min: 1, Recommended: 1},
		memory:  domain.MemoryRequirement{Min: "512MB", Recommended: "1GB"},
		storage: domain.StorageRequirement{Min: "1GB", Type: "ssd"},
	}
	heavySizing = sizing{
		cpu:     domain.CPURequirement{Min: 2, Recommended: 4},
		memory:  domain.MemoryRequirement{Min: "2GB", Recommended: "4GB"},
		storage: domain.StorageRequirement{Min: "1GB", Type: "ssd"},
	}

	// heavyFrameworks are JS meta-frameworks that render on the server and build large bundles.
	heavyFrameworks = map[string]bool{
		"nextjs": true, "nuxt": true, "gatsby": true, "remix": true,
	}
	heavyLanguages = map[domain.Language]bool{
		domain.LanguageJava: true,
	}
)

// service maps a dependency-name keyword to an external service.
// The first matching row wins.
type service struct {
	keyword string
	exact   bool
	name    string
	kind    domain.ServiceType
}

//nolint:gochecknoglobals // service lookup table
var serviceTable = []service{
	{keyword: "redis", name: "redis", kind: domain.ServiceCache},
	{keyword: "mongo", name: "mongodb", kind: domain.ServiceDatabase},
	{keyword: "postgres", name: "postgresql", kind: domain.ServiceDatabase},
	{keyword: "psycopg", name: "postgresql", kind: domain.ServiceDatabase},
	{keyword: "pg", exact: true, name: "postgresql", kind: domain.ServiceDatabase},
	{keyword: "mysql", name: "mysql", kind: domain.ServiceDatabase},
	{keyword: "mariadb", name: "mysql", kind: domain.ServiceDatabase},
	{keyword: "sqlite", name: "sqlite", kind: domain.ServiceDatabase},
}

// Calculator maps stack, dependencies and build config to resource requirements
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new requirements calculator
func NewCalculator(logger *zap.Logger) *Calculator {
	return &Calculator{
		logger: logger,
	}
}

// Calculate is a deterministic table lookup; identical inputs yield identical output.
func (c *Calculator) Calculate(
	ctx context.Context,
	stack domain.TechStack,
	dependencies []domain.Dependency,
	build domain.BuildConfig,
) domain.Requirements {
	row := baseSizing
	if heavyLanguages[stack.Primary] || heavyFrameworks[stack.Framework] {
		row = heavySizing
	}

	memory := row.memory
	if len(dependencies) > heavyDependencyCount {
		scaled, err := ScaleSize(memory.Recommended, memorySurcharge)
		if err != nil {
			c.logger.Warn("Failed to scale recommended memory",
				zap.String("memory", memory.Recommended),
				zap.Error(err))
		} else {
			memory.Recommended = scaled
		}
	}

	reqs := domain.Requirements{
		CPU:     row.cpu,
		Memory:  memory,
		Storage: row.storage,
		Network: domain.NetworkRequirement{
			Ports:     Ports(build),
			Protocols: []string{"http", "https"},
		},
		Services:    DetectServices(dependencies),
		Constraints: constraints(stack),
	}

	c.logger.Debug("Calculated requirements",
		zap.Int("cpu_recommended", reqs.CPU.Recommended),
		zap.String("memory_recommended", reqs.Memory.Recommended),
		zap.Ints("ports", reqs.Network.Ports),
		zap.Int("services_count", len(reqs.Services)))

	return reqs
}

// Ports returns 80 and 443 followed by the Dockerfile's exposed ports, without duplicates.
func Ports(build domain.BuildConfig) []int {
	ports := []int{80, 443}
	seen := map[int]bool{80: true, 443: true}
	if build.Dockerfile != nil {
		for _, port := range build.Dockerfile.ExposedPorts {
			if !seen[port] {
				seen[port] = true
				ports = append(ports, port)
			}
		}
	}
	return ports
}

// DetectServices matches every dependency name against the service table.
// Services are listed once, in first-seen order; a service is required when any
// matching dependency is a production dependency.
func DetectServices(dependencies []domain.Dependency) []domain.ExternalService {
	services := []domain.ExternalService{}
	index := make(map[string]int)
	for _, dep := range dependencies {
		svc, ok := lookupService(dep.Name)
		if !ok {
			continue
		}
		required := dep.Type == domain.DependencyProduction
		if i, seen := index[svc.name]; seen {
			services[i].Required = services[i].Required || required
			continue
		}
		index[svc.name] = len(services)
		services = append(services, domain.ExternalService{
			Name:     svc.name,
			Type:     svc.kind,
			Required: required,
		})
	}
	return services
}

func lookupService(name string) (service, bool) {
	lower := strings.ToLower(name)
	for _, svc := range serviceTable {
		if (svc.exact && lower == svc.keyword) || (!svc.exact && strings.Contains(lower, svc.keyword)) {
			return svc, true
		}
	}
	return service{}, false
}

func constraints(stack domain.TechStack) []string {
	out := []string{}
	if stack.Runtime != "" && stack.Version != "" {
		out = append(out, fmt.Sprintf("%s %s", stack.Runtime, stack.Version))
	}
	return out
}

//nolint:gochecknoglobals // unit table, largest first
var sizeUnits = []struct {
	suffix string
	mb     float64
}{
	{"TB", 1024 * 1024},
	{"GB", 1024},
	{"MB", 1},
}

// ScaleSize multiplies a size string such as "1GB" and re-attaches its suffix.
func ScaleSize(size string, factor float64) (string, error) {
	value, suffix, _, err := parseSize(size)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(value*factor, 'f', -1, 64) + suffix, nil
}

// SizeMB converts a size string to megabytes.
func SizeMB(size string) (float64, error) {
	value, _, mb, err := parseSize(size)
	if err != nil {
		return 0, err
	}
	return value * mb, nil
}

func parseSize(size string) (float64, string, float64, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(size))
	for _, unit := range sizeUnits {
		if !strings.HasSuffix(trimmed, unit.suffix) {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSuffix(trimmed, unit.suffix), 64)
		if err != nil {
			return 0, "", 0, fmt.Errorf("invalid size %q: %w", size, err)
		}
		return value, unit.suffix, unit.mb, nil
	}
	return 0, "", 0, fmt.Errorf("invalid size %q: unknown unit", size)
}
