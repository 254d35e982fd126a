package buildconfig_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"deploy-planner/internal/buildconfig"
	"deploy-planner/internal/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readRepo(t *testing.T, files map[string]string) *manifest.Set {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o600))
	}
	set, err := manifest.NewReader(zap.NewNop()).Read(context.Background(), root)
	require.NoError(t, err)
	return set
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()

	t.Run("no configuration files", func(t *testing.T) {
		t.Parallel()
		config := buildconfig.NewAnalyzer(zap.NewNop()).Analyze(context.Background(), readRepo(t, nil))

		assert.False(t, config.HasDockerfile)
		assert.Nil(t, config.Dockerfile)
		assert.Empty(t, config.StartScript)
		assert.NotNil(t, config.Environment)
		assert.Empty(t, config.Environment)
	})

	t.Run("node scripts, dockerfile and env example", func(t *testing.T) {
		t.Parallel()
		set := readRepo(t, map[string]string{
			"package.json": `{"scripts":{"build":"vite build","start":"node server.js","test":"vitest"}}`,
			"Dockerfile":   "FROM node:18\nEXPOSE 3000\n",
			".env.example": "PORT=3000\nJWT_SECRET=\n",
		})
		config := buildconfig.NewAnalyzer(zap.NewNop()).Analyze(context.Background(), set)

		assert.True(t, config.HasDockerfile)
		require.NotNil(t, config.Dockerfile)
		assert.Equal(t, []int{3000}, config.Dockerfile.ExposedPorts)
		assert.Equal(t, "vite build", config.BuildScript)
		assert.Equal(t, "node server.js", config.StartScript)
		assert.Equal(t, "vitest", config.TestScript)
		require.Len(t, config.Environment, 2)
		assert.True(t, config.Environment[1].Sensitive)
		assert.True(t, config.Environment[1].Required)
	})

	t.Run("procfile supplies the start command", func(t *testing.T) {
		t.Parallel()
		set := readRepo(t, map[string]string{
			"requirements.txt": "django==4.2\n",
			"Procfile":         "release: python manage.py migrate\nweb: gunicorn app.wsgi --log-file -\n",
		})
		config := buildconfig.NewAnalyzer(zap.NewNop()).Analyze(context.Background(), set)

		assert.Equal(t, "gunicorn app.wsgi --log-file -", config.StartScript)
		assert.Empty(t, config.TestScript)
	})
}
