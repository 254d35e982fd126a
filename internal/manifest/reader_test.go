package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"deploy-planner/internal/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return root
}

func TestReader_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		files    map[string]string
		present  []string
		html     []string
		validate func(t *testing.T, set *manifest.Set)
	}{
		{
			name:    "empty directory",
			files:   map[string]string{},
			present: nil,
			html:    nil,
		},
		{
			name: "node manifest is decoded",
			files: map[string]string{
				"package.json": `{"name":"web","scripts":{"start":"node index.js"},"dependencies":{"react":"^18.0.0"}}`,
				"yarn.lock":    "# yarn lockfile v1\n",
			},
			present: []string{"package.json", "yarn.lock"},
			validate: func(t *testing.T, set *manifest.Set) {
				t.Helper()
				require.NotNil(t, set.Node)
				assert.Equal(t, "node index.js", set.Node.Scripts["start"])
				assert.Equal(t, "^18.0.0", set.Node.Dependencies["react"])
			},
		},
		{
			name: "malformed package.json is treated as absent",
			files: map[string]string{
				"package.json":     `{"name": `,
				"requirements.txt": "flask==2.0.1\n",
			},
			present: []string{"requirements.txt"},
			validate: func(t *testing.T, set *manifest.Set) {
				t.Helper()
				assert.Nil(t, set.Node)
				assert.Equal(t, "flask==2.0.1\n", set.Text(manifest.Requirements))
			},
		},
		{
			name: "cargo and pom are decoded",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"svc\"\nedition = \"2021\"\n\n[dependencies]\naxum = \"0.7\"\ntokio = { version = \"1\", features = [\"full\"] }\n",
				"pom.xml": `<project><artifactId>app</artifactId><dependencies>
<dependency><groupId>org.springframework.boot</groupId><artifactId>spring-boot-starter-web</artifactId></dependency>
</dependencies></project>`,
			},
			present: []string{"pom.xml", "Cargo.toml"},
			validate: func(t *testing.T, set *manifest.Set) {
				t.Helper()
				require.NotNil(t, set.Cargo)
				assert.Equal(t, "2021", set.Cargo.Package.Edition)
				assert.Equal(t, "0.7", set.Cargo.Dependencies["axum"])
				require.NotNil(t, set.Pom)
				require.Len(t, set.Pom.Dependencies, 1)
				assert.Equal(t, "org.springframework.boot:spring-boot-starter-web", set.Pom.Dependencies[0].Coordinate())
			},
		},
		{
			name: "html scan stops below direct children and skips vendored dirs",
			files: map[string]string{
				"index.html":                   "<html></html>",
				"docs/about.HTM":               "<html></html>",
				"docs/deep/nested.html":        "<html></html>",
				"node_modules/pkg/readme.html": "<html></html>",
			},
			html: []string{"docs/about.HTM", "index.html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := writeRepo(t, tt.files)

			set, err := manifest.NewReader(zap.NewNop()).Read(context.Background(), root)
			require.NoError(t, err)

			assert.Equal(t, tt.present, set.Present())
			assert.Equal(t, tt.html, set.HTMLFiles)
			if tt.validate != nil {
				tt.validate(t, set)
			}
		})
	}
}

func TestReader_Read_MissingRoot(t *testing.T) {
	t.Parallel()

	_, err := manifest.NewReader(zap.NewNop()).Read(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestSet_EnvExample(t *testing.T) {
	t.Parallel()

	root := writeRepo(t, map[string]string{
		".env.sample":   "PORT=3000\n",
		".env.template": "PORT=4000\n",
	})
	set, err := manifest.NewReader(zap.NewNop()).Read(context.Background(), root)
	require.NoError(t, err)

	name, text, ok := set.EnvExample()
	assert.True(t, ok)
	assert.Equal(t, ".env.sample", name)
	assert.Equal(t, "PORT=3000\n", text)
}
