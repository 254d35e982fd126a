package domain

import "time"

// Language is the primary technology tag of a repository.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguagePython     Language = "python"
	LanguageRuby       Language = "ruby"
	LanguageGo         Language = "go"
	LanguageJava       Language = "java"
	LanguageRust       Language = "rust"
	LanguagePHP        Language = "php"
	LanguageStatic     Language = "static"
	LanguageUnknown    Language = "unknown"
)

// Runtime tags used by the strategy tables.
const (
	RuntimeNode   = "nodejs"
	RuntimePython = "python"
	RuntimeRuby   = "ruby"
	RuntimeGo     = "go"
	RuntimeJVM    = "jvm"
	RuntimeRust   = "rust"
	RuntimePHP    = "php"
)

type DependencyType string

const (
	DependencyProduction  DependencyType = "production"
	DependencyDevelopment DependencyType = "development"
	DependencyPeer        DependencyType = "peer"
	DependencyOptional    DependencyType = "optional"
)

// LatestVersion is recorded when a manifest declares no version.
const LatestVersion = "latest"

// MaxCommandTimeoutSeconds caps how long a single repository command may run.
const MaxCommandTimeoutSeconds = 3600

type ServiceType string

const (
	ServiceDatabase ServiceType = "database"
	ServiceCache    ServiceType = "cache"
	ServiceQueue    ServiceType = "queue"
	ServiceStorage  ServiceType = "storage"
	ServiceAPI      ServiceType = "api"
	ServiceOther    ServiceType = "other"
)

type StrategyType string

const (
	StrategyStatic       StrategyType = "static"
	StrategyServer       StrategyType = "server"
	StrategyServerless   StrategyType = "serverless"
	StrategyContainer    StrategyType = "container"
	StrategyMicroservice StrategyType = "microservice"
)

type Approach string

const (
	ApproachDocker     Approach = "docker"
	ApproachNative     Approach = "native"
	ApproachPM2        Approach = "pm2"
	ApproachSystemd    Approach = "systemd"
	ApproachKubernetes Approach = "kubernetes"
)

type RepositoryHandle struct {
	ID           string    `json:"id"`            // sha256(url)[:16]
	URL          string    `json:"url"`           // remote URL or local path
	Branch       string    `json:"branch"`        // "main"
	LocalPath    string    `json:"local_path"`    // snapshot directory
	SnapshotTime time.Time `json:"snapshot_time"` // when the snapshot was taken
	ExpiryTime   time.Time `json:"expiry_time"`   // zero for local directories
}

// IsStale reports whether the snapshot expired. Local snapshots never expire.
func (h *RepositoryHandle) IsStale(now time.Time) bool {
	if h.ExpiryTime.IsZero() {
		return false
	}
	return now.After(h.ExpiryTime)
}

type TechStack struct {
	Primary        Language `json:"primary"`
	Secondary      []string `json:"secondary"`
	Framework      string   `json:"framework,omitempty"`
	Variant        string   `json:"variant"`           // "typescript", "python3"
	Version        string   `json:"version,omitempty"` // "18", "1.22"
	PackageManager string   `json:"package_manager,omitempty"`
	BuildTool      string   `json:"build_tool,omitempty"`
	TestFrameworks []string `json:"test_frameworks"`
	Runtime        string   `json:"runtime,omitempty"`
}

type Dependency struct {
	Name            string         `json:"name"`    // "express"
	Version         string         `json:"version"` // "^4.18.2" or "latest"
	Type            DependencyType `json:"type"`
	Constraint      string         `json:"constraint,omitempty"` // ">=4.2" when Version lost its operator
	Source          string         `json:"source"`               // manifest it came from
	Vulnerabilities []string       `json:"vulnerabilities,omitempty"`
}

type DockerfileAnalysis struct {
	BaseImage    string `json:"base_image"`
	ExposedPorts []int  `json:"exposed_ports"`
	Workdir      string `json:"workdir,omitempty"`
	User         string `json:"user,omitempty"`
	MultiStage   bool   `json:"multi_stage"`
	Healthcheck  bool   `json:"healthcheck"`
}

type EnvironmentVariable struct {
	Name         string  `json:"name"`
	Required     bool    `json:"required"`
	DefaultValue *string `json:"default_value,omitempty"`
	Sensitive    bool    `json:"sensitive"`
}

type BuildConfig struct {
	HasDockerfile bool                  `json:"has_dockerfile"`
	Dockerfile    *DockerfileAnalysis   `json:"dockerfile,omitempty"`
	BuildScript   string                `json:"build_script,omitempty"`
	StartScript   string                `json:"start_script,omitempty"`
	TestScript    string                `json:"test_script,omitempty"`
	Environment   []EnvironmentVariable `json:"environment"`
}

type CPURequirement struct {
	Min         int `json:"min"`
	Recommended int `json:"recommended"`
}

type MemoryRequirement struct {
	Min         string `json:"min"`         // "512MB"
	Recommended string `json:"recommended"` // "1GB"
}

type StorageRequirement struct {
	Min  string `json:"min"`
	Type string `json:"type"` // ssd, hdd, any
}

type NetworkRequirement struct {
	Ports     []int    `json:"ports"`
	Protocols []string `json:"protocols"`
}

type ExternalService struct {
	Name     string      `json:"name"` // "postgresql"
	Type     ServiceType `json:"type"`
	Required bool        `json:"required"`
}

type Requirements struct {
	CPU         CPURequirement     `json:"cpu"`
	Memory      MemoryRequirement  `json:"memory"`
	Storage     StorageRequirement `json:"storage"`
	Network     NetworkRequirement `json:"network"`
	Services    []ExternalService  `json:"services"`
	Constraints []string           `json:"constraints"`
}

type DeploymentStep struct {
	Order       int    `json:"order"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
	Timeout     int    `json:"timeout,omitempty"` // seconds
	Retries     int    `json:"retries,omitempty"`
}

type InstanceSpec struct {
	Type    string `json:"type"` // "t3.medium"
	CPU     int    `json:"cpu"`
	Memory  string `json:"memory"`
	Storage string `json:"storage"`
}

type CostEstimate struct {
	Monthly   float64            `json:"monthly"`
	Currency  string             `json:"currency"`
	Breakdown map[string]float64 `json:"breakdown"`
}

type InfrastructureRecommendation struct {
	Provider string       `json:"provider"`
	Tier     string       `json:"tier"`
	Instance InstanceSpec `json:"instance"`
	Cost     CostEstimate `json:"cost"`
}

type FirewallRule struct {
	Port        int    `json:"port"`
	Protocol    string `json:"protocol"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type BackupPolicy struct {
	Enabled       bool   `json:"enabled"`
	Frequency     string `json:"frequency"`
	RetentionDays int    `json:"retention_days"`
	Type          string `json:"type"`
}

type SecurityConfiguration struct {
	HTTPS         bool           `json:"https"`
	FirewallRules []FirewallRule `json:"firewall_rules"`
	Secrets       []string       `json:"secrets"`
	Backups       BackupPolicy   `json:"backups"`
}

type HealthCheck struct {
	Endpoint string `json:"endpoint"`
	Interval int    `json:"interval"` // seconds
	Timeout  int    `json:"timeout"`  // seconds
}

type LoggingPolicy struct {
	Level         string `json:"level"`
	RetentionDays int    `json:"retention_days"`
}

type MonitoringConfiguration struct {
	HealthCheck HealthCheck   `json:"health_check"`
	Metrics     []string      `json:"metrics"`
	Logging     LoggingPolicy `json:"logging"`
}

type RollbackStrategy struct {
	Type     string   `json:"type"`
	Triggers []string `json:"triggers"`
	Steps    []string `json:"steps"`
	Timeout  int      `json:"timeout"` // seconds
}

type DeploymentStrategy struct {
	Type           StrategyType                 `json:"type"`
	Approach       Approach                     `json:"approach"`
	Steps          []DeploymentStep             `json:"steps"`
	Infrastructure InfrastructureRecommendation `json:"infrastructure"`
	Security       SecurityConfiguration        `json:"security"`
	Monitoring     MonitoringConfiguration      `json:"monitoring"`
	Rollback       RollbackStrategy             `json:"rollback"`
}

// TotalTimeout sums the per-step timeouts in seconds.
func (s *DeploymentStrategy) TotalTimeout() int {
	total := 0
	for _, step := range s.Steps {
		total += step.Timeout
	}
	return total
}

// RepositoryAnalysis is built once per invocation and must not be mutated afterwards.
type RepositoryAnalysis struct {
	Repository      RepositoryHandle   `json:"repository"`
	TechStack       TechStack          `json:"tech_stack"`
	Dependencies    []Dependency       `json:"dependencies"`
	BuildConfig     BuildConfig        `json:"build_config"`
	Requirements    Requirements       `json:"requirements"`
	Strategy        DeploymentStrategy `json:"deployment_strategy"`
	Confidence      int                `json:"confidence"`
	Warnings        []string           `json:"warnings"`
	Recommendations []string           `json:"recommendations"`
	AnalyzedAt      time.Time          `json:"analyzed_at"`
}
