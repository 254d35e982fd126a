package gitlab

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/manifest"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	perPage = 100
	// concurrent file downloads per snapshot
	downloadWorkers = 5
)

// Client materializes repository snapshots through the GitLab API.
// Only root-level candidate manifests and HTML files within one directory of
// the root are downloaded, which is everything the analysis reads.
type Client struct {
	baseURL string
	client  *gitlab.Client
	logger  *zap.Logger
}

// NewClient builds an API client authenticated with token.
func NewClient(baseURL, token string, logger *zap.Logger) (*Client, error) {
	client, err := gitlab.NewClient(token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}, nil
}

// CheckPermissions fails fast when the token cannot read the current user.
func (c *Client) CheckPermissions(ctx context.Context) error {
	c.logger.Debug("Checking GitLab token", zap.String("base_url", c.baseURL))

	user, _, err := c.client.Users.CurrentUser(gitlab.WithContext(ctx))
	if err != nil {
		c.logger.Error("GitLab token rejected", zap.Error(err))
		return fmt.Errorf("failed to verify token permissions: %w", err)
	}

	c.logger.Debug("GitLab token accepted",
		zap.String("username", user.Username),
		zap.Int("user_id", user.ID))

	return nil
}

// Fetch downloads the files the analysis reads into dir.
func (c *Client) Fetch(ctx context.Context, repoURL, branch, dir string) error {
	projectPath, err := c.ExtractProjectPath(repoURL)
	if err != nil {
		return &domain.AcquisitionError{URL: repoURL, Branch: branch, Err: err}
	}

	files, err := c.GetFilesList(ctx, projectPath, branch)
	if err != nil {
		return &domain.AcquisitionError{URL: repoURL, Branch: branch, Err: err}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.AcquisitionError{URL: repoURL, Branch: branch, Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)
	for _, filePath := range files {
		g.Go(func() error {
			content, err := c.GetFileContent(gctx, projectPath, branch, filePath)
			if err != nil {
				return err
			}
			target := filepath.Join(dir, filepath.FromSlash(filePath))
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %w", filePath, err)
			}
			if err := os.WriteFile(target, content, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", filePath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &domain.AcquisitionError{URL: repoURL, Branch: branch, Err: err}
	}

	c.logger.Info("Downloaded repository snapshot",
		zap.String("project_path", projectPath),
		zap.String("branch", branch),
		zap.Int("files_count", len(files)))

	return nil
}

// GetFilesList returns the files the analysis reads: root-level candidate
// manifests plus HTML files at the root and in its scanned direct children.
func (c *Client) GetFilesList(ctx context.Context, projectPath, ref string) ([]string, error) {
	root, err := c.listTree(ctx, projectPath, ref, "")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, item := range root {
		switch {
		case item.Type == "blob" && wanted(item.Name):
			files = append(files, item.Path)
		case item.Type == "tree" && manifest.ScansDir(item.Name):
			children, err := c.listTree(ctx, projectPath, ref, item.Path)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if child.Type == "blob" && manifest.IsHTML(child.Name) {
					files = append(files, child.Path)
				}
			}
		}
	}

	c.logger.Debug("Selected snapshot files",
		zap.String("project_path", projectPath),
		zap.Strings("files", files))

	return files, nil
}

// listTree returns one level of the repository tree at dir ("" for the root).
func (c *Client) listTree(ctx context.Context, projectPath, ref, dir string) ([]*gitlab.TreeNode, error) {
	c.logger.Debug("Listing repository tree",
		zap.String("project_path", projectPath),
		zap.String("ref", ref),
		zap.String("dir", dir))

	opts := &gitlab.ListTreeOptions{
		Recursive: gitlab.Ptr(false),
		Ref:       gitlab.Ptr(ref),
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: perPage,
		},
	}
	if dir != "" {
		opts.Path = gitlab.Ptr(dir)
	}

	var nodes []*gitlab.TreeNode
	for {
		tree, _, err := c.client.Repositories.ListTree(projectPath, opts, gitlab.WithContext(ctx))
		if err != nil {
			c.logger.Error("Failed to list repository tree",
				zap.String("project_path", projectPath),
				zap.String("dir", dir),
				zap.Int("page", opts.Page),
				zap.Error(err))
			return nil, fmt.Errorf("failed to get repository tree for %s@%s: %w", projectPath, ref, err)
		}
		nodes = append(nodes, tree...)

		if len(tree) < perPage {
			return nodes, nil
		}
		opts.Page++
	}
}

// GetFileContent downloads one file at ref.
func (c *Client) GetFileContent(ctx context.Context, projectPath, ref, filePath string) ([]byte, error) {
	file, _, err := c.client.RepositoryFiles.GetFile(projectPath, filePath, &gitlab.GetFileOptions{
		Ref: gitlab.Ptr(ref),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s from project %s: %w", filePath, projectPath, err)
	}

	content, err := base64.StdEncoding.DecodeString(file.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content for %s: %w", filePath, err)
	}

	c.logger.Debug("Downloaded file",
		zap.String("file_path", filePath),
		zap.Int("size_bytes", len(content)))

	return content, nil
}

// ExtractProjectPath turns https://host/group/project(.git) into group/project.
func (c *Client) ExtractProjectPath(gitlabURL string) (string, error) {
	parsedURL, err := url.Parse(gitlabURL)
	if err != nil {
		return "", err
	}

	path := strings.TrimPrefix(parsedURL.Path, "/")
	path = strings.TrimSuffix(path, "/")
	path = strings.TrimSuffix(path, ".git")
	if path == "" {
		return "", fmt.Errorf("no path found in URL: %s", gitlabURL)
	}

	// the API client escapes the path itself
	decodedPath, err := url.PathUnescape(path)
	if err != nil {
		decodedPath = path
	}

	return decodedPath, nil
}

func wanted(name string) bool {
	return manifest.IsCandidate(name) || manifest.IsHTML(name)
}
