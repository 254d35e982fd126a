package strategy

import "deploy-planner/internal/domain"

// Step timeouts in seconds.
const (
	cloneTimeout   = 300
	installTimeout = 600
	buildTimeout   = 600
	configTimeout  = 60
	startTimeout   = 120
	healthTimeout  = 60
	healthRetries  = 3
)

// plan is a fixed step template; Order is assigned when the template is instantiated.
type plan []domain.DeploymentStep

//nolint:gochecknoglobals // step templates
var (
	containerPlan = plan{
		{Name: "clone", Description: "Clone repository", Command: "git clone --depth 1 $REPOSITORY_URL app", Timeout: cloneTimeout},
		{Name: "build-image", Description: "Build container image", Command: "docker build -t app:latest app", Timeout: buildTimeout},
		{Name: "stop-existing", Description: "Stop existing container", Command: "docker stop app || true && docker rm app || true", Timeout: configTimeout},
		{Name: "start-container", Description: "Start new container", Command: "docker run -d --name app --restart unless-stopped --env-file .env app:latest", Timeout: startTimeout},
		{Name: "health-check", Description: "Verify application health", Command: "curl -fsS http://localhost/health", Timeout: healthTimeout, Retries: healthRetries},
		{Name: "update-proxy", Description: "Update reverse proxy configuration", Command: "nginx -s reload", Timeout: configTimeout},
	}

	nodePlan = plan{
		{Name: "clone", Description: "Clone repository", Command: "git clone --depth 1 $REPOSITORY_URL app", Timeout: cloneTimeout},
		{Name: "install", Description: "Install dependencies", Command: "npm ci", Timeout: installTimeout},
		{Name: "build", Description: "Build application", Command: "npm run build --if-present", Timeout: buildTimeout},
		{Name: "configure-env", Description: "Write environment configuration", Command: "cp .env.example .env", Timeout: configTimeout},
		{Name: "pm2-start", Description: "Start application with PM2", Command: "pm2 start npm --name app -- start", Timeout: startTimeout},
		{Name: "pm2-save", Description: "Persist PM2 process list", Command: "pm2 save", Timeout: configTimeout},
		{Name: "health-check", Description: "Verify application health", Command: "curl -fsS http://localhost/health", Timeout: healthTimeout, Retries: healthRetries},
	}

	pythonPlan = plan{
		{Name: "clone", Description: "Clone repository", Command: "git clone --depth 1 $REPOSITORY_URL app", Timeout: cloneTimeout},
		{Name: "virtualenv", Description: "Create virtual environment", Command: "python3 -m venv .venv", Timeout: startTimeout},
		{Name: "install", Description: "Install dependencies", Command: ".venv/bin/pip install -r requirements.txt", Timeout: installTimeout},
		{Name: "configure-env", Description: "Write environment configuration", Command: "cp .env.example .env", Timeout: configTimeout},
		{Name: "migrations", Description: "Run database migrations", Command: ".venv/bin/python manage.py migrate --noinput", Timeout: cloneTimeout},
		{Name: "systemd-unit", Description: "Install systemd service unit", Command: "systemctl daemon-reload", Timeout: configTimeout},
		{Name: "start-service", Description: "Start application service", Command: "systemctl restart app", Timeout: startTimeout},
		{Name: "health-check", Description: "Verify application health", Command: "curl -fsS http://localhost/health", Timeout: healthTimeout, Retries: healthRetries},
	}

	defaultPlan = plan{
		{Name: "clone", Description: "Clone repository", Command: "git clone --depth 1 $REPOSITORY_URL app", Timeout: cloneTimeout},
		{Name: "build", Description: "Build application", Timeout: buildTimeout},
		{Name: "configure-env", Description: "Write environment configuration", Command: "cp .env.example .env", Timeout: configTimeout},
		{Name: "start-service", Description: "Start application service", Command: "systemctl restart app", Timeout: startTimeout},
		{Name: "health-check", Description: "Verify application health", Command: "curl -fsS http://localhost/health", Timeout: healthTimeout, Retries: healthRetries},
	}

	// serverPlans selects the native template by runtime tag; missing tags use defaultPlan.
	serverPlans = map[string]plan{
		domain.RuntimeNode:   nodePlan,
		domain.RuntimePython: pythonPlan,
	}
)

// steps copies the template and numbers it from 1.
func (p plan) steps() []domain.DeploymentStep {
	steps := make([]domain.DeploymentStep, len(p))
	for i, step := range p {
		step.Order = i + 1
		steps[i] = step
	}
	return steps
}

// tier is one row of the infrastructure table.
type tier struct {
	name     string
	instance domain.InstanceSpec
	monthly  float64
}

//nolint:gochecknoglobals // infrastructure tiers
var (
	baseTier = tier{
		name:     "base",
		instance: domain.InstanceSpec{Type: "t3.small", CPU: 2, Memory: "2GB", Storage: "20GB"},
		monthly:  17,
	}
	midTier = tier{
		name:     "mid",
		instance: domain.InstanceSpec{Type: "t3.large", CPU: 2, Memory: "8GB", Storage: "40GB"},
		monthly:  67,
	}
	topTier = tier{
		name:     "top",
		instance: domain.InstanceSpec{Type: "c5.xlarge", CPU: 4, Memory: "8GB", Storage: "40GB"},
		monthly:  124,
	}
)

const (
	provider       = "aws"
	currency       = "USD"
	largeMemoryMB  = 4096
	largeCPUCount  = 4
	rollbackWindow = 300
)
