package gitclient

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"deploy-planner/internal/domain"

	"go.uber.org/zap"
)

// DefaultCloneTimeout bounds a single shallow clone
const DefaultCloneTimeout = 5 * time.Minute

// Client acquires repositories with the git command-line client
type Client struct {
	runner  domain.CommandRunner
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new git acquirer
func NewClient(runner domain.CommandRunner, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultCloneTimeout
	}
	return &Client{
		runner:  runner,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch shallow-clones url@branch into dir, replacing any previous checkout.
func (c *Client) Fetch(ctx context.Context, url, branch, dir string) error {
	if strings.HasPrefix(url, "-") || strings.HasPrefix(branch, "-") {
		return domain.InvalidInputf("repository url and branch must not start with '-'")
	}
	if err := os.RemoveAll(dir); err != nil {
		return &domain.AcquisitionError{URL: url, Branch: branch, Err: err}
	}

	line := CloneCommand(url, branch, dir)
	c.logger.Debug("Cloning repository",
		zap.String("url", url),
		zap.String("branch", branch),
		zap.String("dir", dir))

	result, err := c.runner.Run(ctx, domain.Command{
		Line:    line,
		Env:     map[string]string{"GIT_TERMINAL_PROMPT": "0"},
		Timeout: c.timeout,
	})
	if err != nil {
		return &domain.AcquisitionError{URL: url, Branch: branch, Err: err}
	}

	c.logger.Info("Cloned repository",
		zap.String("url", url),
		zap.String("branch", branch),
		zap.Duration("duration", result.Duration))
	return nil
}

// CloneCommand builds the shallow clone command line.
func CloneCommand(url, branch, dir string) string {
	return fmt.Sprintf("git clone --depth 1 --branch %s -- %s %s", Quote(branch), Quote(url), Quote(dir))
}

// Quote wraps s in single quotes for sh.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
