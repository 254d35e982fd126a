package classifier

//nolint:gochecknoglobals // heuristic lookup tables
var (
	// Node: meta-frameworks first so "next" wins over "react".
	nodeFrameworks = []signal{
		{"next", "nextjs"},
		{"nuxt", "nuxt"},
		{"gatsby", "gatsby"},
		{"@remix-run/", "remix"},
		{"@sveltejs/kit", "sveltekit"},
		{"@nestjs/core", "nestjs"},
		{"@angular/core", "angular"},
		{"svelte", "svelte"},
		{"vue", "vue"},
		{"react", "react"},
		{"express", "express"},
		{"fastify", "fastify"},
		{"koa", "koa"},
		{"@hapi/hapi", "hapi"},
		{"hapi", "hapi"},
	}
	nodeBuildTools = []signal{
		{"vite", "vite"},
		{"webpack", "webpack"},
		{"rollup", "rollup"},
		{"parcel", "parcel"},
		{"esbuild", "esbuild"},
		{"turbo", "turbo"},
	}
	nodeTestFrameworks = []signal{
		{"jest", "jest"},
		{"vitest", "vitest"},
		{"mocha", "mocha"},
		{"jasmine", "jasmine"},
		{"ava", "ava"},
		{"cypress", "cypress"},
		{"@playwright/test", "playwright"},
	}
	nodeSecondary = []signal{
		{"typescript", "typescript"},
		{"eslint", "eslint"},
		{"prettier", "prettier"},
		{"tailwindcss", "tailwindcss"},
		{"prisma", "prisma"},
		{"graphql", "graphql"},
	}
	typeScriptIndicators = []signal{
		{"typescript", "typescript"},
		{"ts-node", "typescript"},
		{"tsx", "typescript"},
	}

	pythonFrameworks = []signal{
		{"django", "django"},
		{"fastapi", "fastapi"},
		{"flask", "flask"},
		{"starlette", "starlette"},
		{"tornado", "tornado"},
		{"aiohttp", "aiohttp"},
		{"sanic", "sanic"},
		{"pyramid", "pyramid"},
		{"streamlit", "streamlit"},
	}
	pythonTestFrameworks = []signal{
		{"pytest", "pytest"},
		{"nose2", "nose2"},
		{"tox", "tox"},
		{"hypothesis", "hypothesis"},
	}
	pythonSecondary = []signal{
		{"gunicorn", "gunicorn"},
		{"uvicorn", "uvicorn"},
		{"celery", "celery"},
		{"sqlalchemy", "sqlalchemy"},
		{"alembic", "alembic"},
	}

	rubyFrameworks = []signal{
		{"rails", "rails"},
		{"sinatra", "sinatra"},
		{"hanami", "hanami"},
		{"roda", "roda"},
	}
	rubyTestFrameworks = []signal{
		{"rspec", "rspec"},
		{"rspec-rails", "rspec"},
		{"minitest", "minitest"},
		{"cucumber", "cucumber"},
	}
	rubySecondary = []signal{
		{"puma", "puma"},
		{"sidekiq", "sidekiq"},
	}

	goFrameworks = []signal{
		{"github.com/gin-gonic/gin", "gin"},
		{"github.com/labstack/echo/", "echo"},
		{"github.com/gofiber/fiber/", "fiber"},
		{"github.com/go-chi/chi/", "chi"},
		{"github.com/gorilla/mux", "gorilla"},
		{"github.com/beego/beego/", "beego"},
	}
	goTestFrameworks = []signal{
		{"github.com/stretchr/testify", "testify"},
		{"github.com/onsi/ginkgo/", "ginkgo"},
	}
	goSecondary = []signal{
		{"github.com/spf13/cobra", "cobra"},
		{"google.golang.org/grpc", "grpc"},
		{"gorm.io/gorm", "gorm"},
	}

	javaFrameworks = []signal{
		{"*spring-boot*", "spring-boot"},
		{"*springframework.boot*", "spring-boot"},
		{"io.quarkus*", "quarkus"},
		{"io.micronaut*", "micronaut"},
		{"io.dropwizard*", "dropwizard"},
	}
	javaTestFrameworks = []signal{
		{"*junit*", "junit"},
		{"*testng*", "testng"},
	}
	javaSecondary = []signal{
		{"*lombok*", "lombok"},
		{"*kotlin*", "kotlin"},
	}

	rustFrameworks = []signal{
		{"actix-web", "actix-web"},
		{"rocket", "rocket"},
		{"axum", "axum"},
		{"warp", "warp"},
		{"tide", "tide"},
	}
	rustSecondary = []signal{
		{"tokio", "tokio"},
		{"serde", "serde"},
		{"diesel", "diesel"},
		{"sqlx", "sqlx"},
	}

	phpFrameworks = []signal{
		{"laravel/framework", "laravel"},
		{"symfony/framework-bundle", "symfony"},
		{"symfony/", "symfony"},
		{"slim/slim", "slim"},
		{"cakephp/cakephp", "cakephp"},
	}
	phpTestFrameworks = []signal{
		{"phpunit/phpunit", "phpunit"},
		{"pestphp/pest", "pest"},
	}
)
