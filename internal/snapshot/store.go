package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"deploy-planner/internal/domain"

	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a snapshot stays fresh
	DefaultTTL = time.Hour
	keyLength  = 16

	snapshotPrefix = "snapshot-"
)

// Key derives the cache key of a repository URL.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:keyLength]
}

// Store is a keyed on-disk snapshot cache laid out as <root>/<key>.json plus
// versioned checkouts under <root>/<key>/. Acquisitions for the same key are
// serialized; different keys proceed concurrently.
type Store struct {
	root     string
	ttl      time.Duration
	acquirer domain.Acquirer
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, so expiry can be tested without waiting.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewStore creates a snapshot store rooted at root
func NewStore(root string, acquirer domain.Acquirer, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		root:     root,
		ttl:      DefaultTTL,
		acquirer: acquirer,
		now:      time.Now,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Acquire returns the cached snapshot of url@branch, fetching it again when it
// is missing, stale, on another branch, or forceRefresh is set.
func (s *Store) Acquire(ctx context.Context, url, branch string, forceRefresh bool) (*domain.RepositoryHandle, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.InvalidInputf("repository url is required")
	}
	if branch == "" {
		return nil, domain.InvalidInputf("branch is required")
	}

	key := Key(url)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	if !forceRefresh {
		if handle, ok := s.load(key); ok && handle.Branch == branch && !handle.IsStale(now) {
			s.logger.Debug("Using cached snapshot",
				zap.String("url", url),
				zap.String("key", key),
				zap.Time("expires", handle.ExpiryTime))
			return handle, nil
		}
	}

	previous, _ := s.load(key)

	keyDir := filepath.Join(s.root, key)
	if err := os.MkdirAll(keyDir, 0o755); err != nil {
		return nil, &domain.AcquisitionError{URL: url, Branch: branch, Err: err}
	}
	// every acquisition gets its own directory so a failed fetch never
	// touches the current snapshot
	dir, err := os.MkdirTemp(keyDir, snapshotPrefix)
	if err != nil {
		return nil, &domain.AcquisitionError{URL: url, Branch: branch, Err: err}
	}

	s.logger.Info("Acquiring repository snapshot",
		zap.String("url", url),
		zap.String("branch", branch),
		zap.String("key", key),
		zap.Bool("force_refresh", forceRefresh))

	if err := s.acquirer.Fetch(ctx, url, branch, dir); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("Failed to remove incomplete snapshot", zap.String("dir", dir), zap.Error(rmErr))
		}
		var acqErr *domain.AcquisitionError
		if errors.As(err, &acqErr) {
			return nil, err
		}
		return nil, &domain.AcquisitionError{URL: url, Branch: branch, Err: err}
	}

	handle := &domain.RepositoryHandle{
		ID:           key,
		URL:          url,
		Branch:       branch,
		LocalPath:    dir,
		SnapshotTime: now,
		ExpiryTime:   now.Add(s.ttl),
	}
	if err := s.save(key, handle); err != nil {
		s.logger.Warn("Failed to persist snapshot handle", zap.String("key", key), zap.Error(err))
	}

	keep := []string{dir}
	if previous != nil {
		keep = append(keep, previous.LocalPath)
	}
	s.prune(keyDir, keep)
	return handle, nil
}

// prune removes snapshot versions of a key other than keep. The version
// replaced by the latest acquisition stays until the next one, so handles
// already handed out remain readable.
func (s *Store) prune(keyDir string, keep []string) {
	entries, err := os.ReadDir(keyDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		path := filepath.Join(keyDir, entry.Name())
		if slices.Contains(keep, path) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			s.logger.Warn("Failed to remove old snapshot", zap.String("dir", path), zap.Error(err))
		}
	}
}

func (s *Store) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func (s *Store) handlePath(key string) string {
	return filepath.Join(s.root, key+".json")
}

// load reads a persisted handle whose snapshot directory still exists.
func (s *Store) load(key string) (*domain.RepositoryHandle, bool) {
	content, err := os.ReadFile(s.handlePath(key))
	if err != nil {
		return nil, false
	}
	var handle domain.RepositoryHandle
	if err := json.Unmarshal(content, &handle); err != nil {
		s.logger.Warn("Ignoring corrupt snapshot handle", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if info, err := os.Stat(handle.LocalPath); err != nil || !info.IsDir() {
		return nil, false
	}
	return &handle, true
}

func (s *Store) save(key string, handle *domain.RepositoryHandle) error {
	content, err := json.MarshalIndent(handle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot handle: %w", err)
	}
	if err := os.WriteFile(s.handlePath(key), content, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot handle: %w", err)
	}
	return nil
}

// Local wraps an existing directory as a snapshot that never expires.
func Local(path string, now time.Time) (*domain.RepositoryHandle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, domain.InvalidInputf("repository path %s does not exist", path)
	}
	if !info.IsDir() {
		return nil, domain.InvalidInputf("repository path %s is not a directory", path)
	}
	return &domain.RepositoryHandle{
		ID:           Key(abs),
		URL:          abs,
		Branch:       "local",
		LocalPath:    abs,
		SnapshotTime: now,
	}, nil
}

// IsLocalPath reports whether a repository argument names a directory on disk
// rather than a remote URL.
func IsLocalPath(repository string) bool {
	if strings.Contains(repository, "://") || strings.HasPrefix(repository, "git@") {
		return false
	}
	info, err := os.Stat(repository)
	return err == nil && info.IsDir()
}
