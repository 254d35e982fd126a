package buildconfig_test

import (
	"testing"

	"deploy-planner/internal/buildconfig"
	"deploy-planner/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeDockerfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected *domain.DockerfileAnalysis
	}{
		{
			name:    "single stage node image",
			content: "FROM node:18\nEXPOSE 3000\nWORKDIR /app\n",
			expected: &domain.DockerfileAnalysis{
				BaseImage:    "node:18",
				ExposedPorts: []int{3000},
				Workdir:      "/app",
			},
		},
		{
			name: "multi stage build with alias",
			content: `# build
FROM --platform=linux/amd64 golang:1.22 AS build
WORKDIR /src
RUN go build -o /bin/app

FROM gcr.io/distroless/base
COPY --from=build /bin/app /app
USER nonroot
EXPOSE 8080/tcp 9090 metrics 8080
HEALTHCHECK CMD ["/app", "health"]
`,
			expected: &domain.DockerfileAnalysis{
				BaseImage:    "gcr.io/distroless/base",
				ExposedPorts: []int{8080, 9090},
				Workdir:      "/src",
				User:         "nonroot",
				MultiStage:   true,
				Healthcheck:  true,
			},
		},
		{
			name:    "alias alone marks multi stage",
			content: "from python:3.12-slim as runtime\nhealthcheck NONE\n",
			expected: &domain.DockerfileAnalysis{
				BaseImage:    "python:3.12-slim",
				ExposedPorts: []int{},
				MultiStage:   true,
			},
		},
		{
			name:    "empty file",
			content: "",
			expected: &domain.DockerfileAnalysis{
				ExposedPorts: []int{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, buildconfig.AnalyzeDockerfile(tt.content))
		})
	}
}
