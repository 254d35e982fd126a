package manifest

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

const (
	// maxManifestBytes bounds how much of a single file is loaded
	maxManifestBytes = 4 << 20
	// htmlScanDepth limits the extension scan to the root and its direct children
	htmlScanDepth = 1
)

//nolint:gochecknoglobals // lookup table
var skippedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, ".venv": true, "venv": true, "target": true,
}

// Set is the read-only view of a repository's manifests.
// A file is present only when it could be read and, for structured files, parsed.
type Set struct {
	Root      string
	present   map[string]bool
	raw       map[string][]byte
	Node      *NodeManifest
	Composer  *ComposerManifest
	Cargo     *CargoManifest
	Pom       *PomManifest
	HTMLFiles []string
}

// Has reports whether the named candidate file was loaded.
func (s *Set) Has(name string) bool {
	return s != nil && s.present[name]
}

// HasAny reports whether any of the named candidate files was loaded.
func (s *Set) HasAny(names ...string) bool {
	for _, name := range names {
		if s.Has(name) {
			return true
		}
	}
	return false
}

// Raw returns the bytes of a loaded file.
func (s *Set) Raw(name string) ([]byte, bool) {
	if !s.Has(name) {
		return nil, false
	}
	content, ok := s.raw[name]
	return content, ok
}

// Text returns the content of a loaded file, or "" when absent.
func (s *Set) Text(name string) string {
	content, _ := s.Raw(name)
	return string(content)
}

// Present lists loaded candidate files in candidate order.
func (s *Set) Present() []string {
	var names []string
	for _, name := range CandidateFiles {
		if s.Has(name) {
			names = append(names, name)
		}
	}
	return names
}

// EnvExample returns the first example-env file found and its name.
func (s *Set) EnvExample() (string, string, bool) {
	for _, name := range EnvExampleFiles {
		if s.Has(name) {
			return name, s.Text(name), true
		}
	}
	return "", "", false
}

// Reader locates and parses candidate files in a repository root.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a new manifest reader
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{
		logger: logger,
	}
}

// Read loads every candidate file under root. Unreadable or unparsable files
// are logged and treated as absent; only a missing root is an error.
func (r *Reader) Read(ctx context.Context, root string) (*Set, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat repository root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}

	set := &Set{
		Root:    root,
		present: make(map[string]bool),
		raw:     make(map[string][]byte),
	}

	for _, name := range CandidateFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, ok := r.readFile(filepath.Join(root, name))
		if !ok {
			continue
		}
		if err := set.decode(name, content); err != nil {
			r.logger.Warn("Ignoring unparsable manifest",
				zap.String("root", root),
				zap.String("file", name),
				zap.Error(err))
			continue
		}
		set.raw[name] = content
		set.present[name] = true
	}

	set.HTMLFiles = r.findHTMLFiles(root)

	r.logger.Debug("Read manifests",
		zap.String("root", root),
		zap.Strings("present", set.Present()),
		zap.Int("html_files", len(set.HTMLFiles)))

	return set, nil
}

// decode parses structured manifests; text manifests are kept raw.
func (s *Set) decode(name string, content []byte) error {
	switch name {
	case PackageJSON:
		var node NodeManifest
		if err := json.Unmarshal(content, &node); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		s.Node = &node
	case ComposerJSON:
		var composer ComposerManifest
		if err := json.Unmarshal(content, &composer); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		s.Composer = &composer
	case CargoToml:
		var cargo CargoManifest
		if _, err := toml.Decode(string(content), &cargo); err != nil {
			return fmt.Errorf("invalid TOML: %w", err)
		}
		s.Cargo = &cargo
	case PomXML:
		var pom PomManifest
		if err := xml.Unmarshal(content, &pom); err != nil {
			return fmt.Errorf("invalid XML: %w", err)
		}
		s.Pom = &pom
	}
	return nil
}

func (r *Reader) readFile(path string) ([]byte, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, false
	}
	if info.Size() > maxManifestBytes {
		r.logger.Warn("Skipping oversized manifest",
			zap.String("file", path),
			zap.Int64("size_bytes", info.Size()))
		return nil, false
	}
	content, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("Failed to read manifest", zap.String("file", path), zap.Error(err))
		return nil, false
	}
	return content, true
}

// findHTMLFiles returns *.html/*.htm paths relative to root, sorted.
func (r *Reader) findHTMLFiles(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr // cannot happen for paths under root
		}
		depth := strings.Count(filepath.ToSlash(rel), "/")
		if d.IsDir() {
			if path != root && (skippedDirs[d.Name()] || depth >= htmlScanDepth) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsHTML(d.Name()) {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	sort.Strings(files)
	return files
}
