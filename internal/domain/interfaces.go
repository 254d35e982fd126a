package domain

import (
	"context"
	"time"
)

type Acquirer interface {
	// materializes url@branch into dir, replacing whatever was there
	Fetch(ctx context.Context, url, branch, dir string) error
}

type SnapshotStore interface {
	// returns a fresh snapshot handle, re-acquiring when missing, stale or forced
	Acquire(ctx context.Context, url, branch string, forceRefresh bool) (*RepositoryHandle, error)
}

type CommandRunner interface {
	// runs a shell command line and captures its output
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}

type RepositoryAnalyzer interface {
	// turns a repository argument into a snapshot handle
	Resolve(ctx context.Context, repository, branch string, forceRefresh bool) (*RepositoryHandle, error)
	// resolves and analyzes in one step
	Execute(ctx context.Context, repository, branch string, forceRefresh bool) (*RepositoryAnalysis, error)
	// analyzes an already-consistent snapshot
	Analyze(ctx context.Context, handle *RepositoryHandle) (*RepositoryAnalysis, error)
}

type Command struct {
	Line    string            `json:"line"`    // "npm run build"
	Dir     string            `json:"dir"`     // working directory
	Env     map[string]string `json:"env"`     // appended to the process environment
	Timeout time.Duration     `json:"timeout"` // zero means no deadline
}

type CommandResult struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}
