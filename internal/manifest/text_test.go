package manifest_test

import (
	"testing"

	"deploy-planner/internal/manifest"

	"github.com/stretchr/testify/assert"
)

func TestParseRequirementLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		want   manifest.Requirement
		wantOK bool
	}{
		{"flask==2.0.1", manifest.Requirement{Name: "flask", Operator: "==", Version: "2.0.1"}, true},
		{"  requests >= 2.28 ", manifest.Requirement{Name: "requests", Operator: ">=", Version: "2.28"}, true},
		{"django~=4.2", manifest.Requirement{Name: "django", Operator: "~=", Version: "4.2"}, true},
		{"numpy<2", manifest.Requirement{Name: "numpy", Operator: "<", Version: "2"}, true},
		{"gunicorn", manifest.Requirement{Name: "gunicorn"}, true},
		{"uvicorn[standard]>=0.20 # server", manifest.Requirement{Name: "uvicorn", Operator: ">=", Version: "0.20"}, true},
		{"pywin32==306; sys_platform == 'win32'", manifest.Requirement{Name: "pywin32", Operator: "==", Version: "306"}, true},
		{"# comment", manifest.Requirement{}, false},
		{"-r base.txt", manifest.Requirement{}, false},
		{"", manifest.Requirement{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			got, ok := manifest.ParseRequirementLine(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGemfile(t *testing.T) {
	t.Parallel()

	gems := manifest.ParseGemfile(`source "https://rubygems.org"
gem "rails", "~> 7.1"
gem 'puma'

group :development, :test do
  gem "rspec-rails"
end

gem "sidekiq"
`)

	assert.Equal(t, []manifest.Gem{
		{Name: "rails", Version: "~> 7.1"},
		{Name: "puma"},
		{Name: "rspec-rails", Groups: []string{"development", "test"}},
		{Name: "sidekiq"},
	}, gems)
}

func TestGoModHelpers(t *testing.T) {
	t.Parallel()

	text := `module example.com/svc

go 1.22

require github.com/gin-gonic/gin v1.9.1

require (
	github.com/stretchr/testify v1.8.4 // indirect
	gorm.io/gorm v1.25.0
)
`
	assert.Equal(t, "1.22", manifest.GoVersion(text))
	assert.Equal(t, []string{
		"github.com/gin-gonic/gin",
		"github.com/stretchr/testify",
		"gorm.io/gorm",
	}, manifest.GoRequires(text))
}
