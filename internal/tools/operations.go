package tools

// Parameter describes one flat argument of an operation.
type Parameter struct {
	Name        string
	Type        string // string, boolean, number, object
	Description string
	Required    bool
}

// OperationConfig defines an operation and its argument schema
type OperationConfig struct {
	Name        string
	Description string
	Params      []Parameter
	handler     handler
}

//nolint:gochecknoglobals // shared parameter definitions
var (
	repositoryParams = []Parameter{
		{Name: "repository", Type: "string", Required: true,
			Description: "Repository URL or local directory path"},
		{Name: "branch", Type: "string",
			Description: "Branch to analyze (defaults to the configured branch)"},
		{Name: "force_refresh", Type: "boolean",
			Description: "Re-acquire the snapshot even if the cached one is still fresh"},
	}
	environmentParam = Parameter{Name: "environment", Type: "object",
		Description: "Environment variables as a flat name to value object"}
	execParams = []Parameter{
		{Name: "command", Type: "string",
			Description: "Command line to run instead of the stack default"},
		environmentParam,
		{Name: "timeout_seconds", Type: "number",
			Description: "Command timeout in seconds"},
	}
)

func withParams(base []Parameter, extra ...Parameter) []Parameter {
	out := make([]Parameter, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

//nolint:gochecknoglobals // operation table
var operations = []OperationConfig{
	{
		Name:        OpAnalyzeRepository,
		Description: "Analyze a repository to infer its technology stack, dependencies, build configuration, requirements and deployment strategy",
		Params:      repositoryParams,
		handler:     (*Registry).analyzeRepository,
	},
	{
		Name:        OpGeneratePlan,
		Description: "Generate the ordered deployment plan with infrastructure, security, monitoring and rollback settings",
		Params:      repositoryParams,
		handler:     (*Registry).generatePlan,
	},
	{
		Name:        OpValidate,
		Description: "Check whether a repository is ready to deploy with the provided environment",
		Params:      withParams(repositoryParams, environmentParam),
		handler:     (*Registry).validateDeployment,
	},
	{
		Name:        OpEstimateCost,
		Description: "Estimate the monthly and total hosting cost of the recommended infrastructure",
		Params: withParams(repositoryParams, Parameter{Name: "months", Type: "number",
			Description: "Number of months to estimate (1-120, default 1)"}),
		handler: (*Registry).estimateCost,
	},
	{
		Name:        OpSecurityIssues,
		Description: "Report static security findings for the repository's build and dependency configuration",
		Params:      repositoryParams,
		handler:     (*Registry).detectSecurityIssues,
	},
	{
		Name:        OpExecuteClone,
		Description: "Acquire or refresh the local snapshot of a repository",
		Params:      repositoryParams,
		handler:     (*Registry).executeClone,
	},
	{
		Name:        OpExecuteBuild,
		Description: "Run the build command of the repository's stack inside its snapshot",
		Params:      withParams(repositoryParams, execParams...),
		handler:     executeKind(KindBuild),
	},
	{
		Name:        OpExecuteTest,
		Description: "Run the test command of the repository's stack inside its snapshot",
		Params:      withParams(repositoryParams, execParams...),
		handler:     executeKind(KindTest),
	},
	{
		Name:        OpExecutePackage,
		Description: "Package the repository as a container image when it has a Dockerfile, or as a source archive",
		Params: withParams(repositoryParams, withParams(execParams, Parameter{Name: "tag", Type: "string",
			Description: "Image tag or archive suffix (default latest)"})...),
		handler: executeKind(KindPackage),
	},
}

// Operations lists every registered operation in a stable order.
func Operations() []OperationConfig {
	out := make([]OperationConfig, len(operations))
	copy(out, operations)
	return out
}

func lookup(name string) (OperationConfig, bool) {
	for _, op := range operations {
		if op.Name == name {
			return op, true
		}
	}
	return OperationConfig{}, false
}
