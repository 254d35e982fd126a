package tools_test

import (
	"testing"

	"deploy-planner/internal/domain"
	"deploy-planner/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCommand(t *testing.T) {
	t.Parallel()

	repo := domain.RepositoryHandle{URL: "https://github.com/Acme/Web App.git"}

	tests := []struct {
		name     string
		kind     string
		analysis domain.RepositoryAnalysis
		expected string
		wantErr  error
	}{
		{
			name: "npm build with build script",
			kind: tools.KindBuild,
			analysis: domain.RepositoryAnalysis{
				TechStack:   domain.TechStack{PackageManager: "npm", Runtime: domain.RuntimeNode},
				BuildConfig: domain.BuildConfig{BuildScript: "tsc"},
			},
			expected: "npm install && npm run build --if-present",
		},
		{
			name: "yarn build without build script only installs",
			kind: tools.KindBuild,
			analysis: domain.RepositoryAnalysis{
				TechStack: domain.TechStack{PackageManager: "yarn", Runtime: domain.RuntimeNode},
			},
			expected: "yarn install",
		},
		{
			name: "go test",
			kind: tools.KindTest,
			analysis: domain.RepositoryAnalysis{
				TechStack: domain.TechStack{PackageManager: "go-modules", Runtime: domain.RuntimeGo},
			},
			expected: "go test ./...",
		},
		{
			name: "bundler with rspec",
			kind: tools.KindTest,
			analysis: domain.RepositoryAnalysis{
				TechStack: domain.TechStack{PackageManager: "bundler", TestFrameworks: []string{"rspec"}},
			},
			expected: "bundle exec rspec",
		},
		{
			name: "gradle build",
			kind: tools.KindBuild,
			analysis: domain.RepositoryAnalysis{
				TechStack: domain.TechStack{PackageManager: "gradle", Runtime: domain.RuntimeJVM},
			},
			expected: "./gradlew build -x test",
		},
		{
			name: "package container image",
			kind: tools.KindPackage,
			analysis: domain.RepositoryAnalysis{
				Repository:  repo,
				BuildConfig: domain.BuildConfig{HasDockerfile: true},
			},
			expected: "docker build -t 'web-app:latest' .",
		},
		{
			name: "package source archive",
			kind: tools.KindPackage,
			analysis: domain.RepositoryAnalysis{
				Repository: repo,
			},
			expected: "tar --exclude=.git -czf '../web-app-latest.tar.gz' .",
		},
		{
			name: "unknown stack has no default",
			kind: tools.KindBuild,
			analysis: domain.RepositoryAnalysis{
				TechStack: domain.TechStack{Primary: domain.LanguageUnknown},
			},
			wantErr: domain.ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line, err := tools.DefaultCommand(tt.kind, &tt.analysis, "")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, line)
		})
	}
}

func TestBuildTool(t *testing.T) {
	t.Parallel()

	for _, op := range tools.Operations() {
		tool := tools.BuildTool(op)

		assert.Equal(t, op.Name, tool.Name)
		assert.Equal(t, op.Description, tool.Description)
		assert.Equal(t, []string{"repository"}, tool.InputSchema.Required)
		assert.Len(t, tool.InputSchema.Properties, len(op.Params))
	}
}
