package usecases

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"deploy-planner/internal/advisor"
	"deploy-planner/internal/buildconfig"
	"deploy-planner/internal/classifier"
	"deploy-planner/internal/domain"
	"deploy-planner/internal/manifest"
	"deploy-planner/internal/parser"
	"deploy-planner/internal/requirements"
	"deploy-planner/internal/snapshot"
	"deploy-planner/internal/strategy"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultCacheEntries bounds the analysis memo when no size is configured.
const DefaultCacheEntries = 128

// AnalyzeUseCase orchestrates the analysis workflow over one repository snapshot
type AnalyzeUseCase struct {
	store       domain.SnapshotStore
	reader      *manifest.Reader
	classifier  *classifier.Classifier
	parser      *parser.Parser
	buildConfig *buildconfig.Analyzer
	calculator  *requirements.Calculator
	synthesizer *strategy.Synthesizer
	advisor     *advisor.Advisor
	cache       *lru.Cache[string, *domain.RepositoryAnalysis]
	now         func() time.Time
	logger      *zap.Logger
}

// Option customizes an AnalyzeUseCase.
type Option func(*AnalyzeUseCase)

// WithClock sets the clock used for analysis and local snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(uc *AnalyzeUseCase) {
		uc.now = now
	}
}

// NewAnalyzeUseCase creates a new analyze use case with dependency injection
func NewAnalyzeUseCase(
	store domain.SnapshotStore,
	cacheEntries int,
	logger *zap.Logger,
	opts ...Option,
) (*AnalyzeUseCase, error) {
	if cacheEntries <= 0 {
		cacheEntries = DefaultCacheEntries
	}
	cache, err := lru.New[string, *domain.RepositoryAnalysis](cacheEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}

	uc := &AnalyzeUseCase{
		store:       store,
		reader:      manifest.NewReader(logger),
		classifier:  classifier.NewClassifier(logger),
		parser:      parser.NewParser(logger),
		buildConfig: buildconfig.NewAnalyzer(logger),
		calculator:  requirements.NewCalculator(logger),
		synthesizer: strategy.NewSynthesizer(logger),
		advisor:     advisor.NewAdvisor(logger),
		cache:       cache,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc, nil
}

var _ domain.RepositoryAnalyzer = (*AnalyzeUseCase)(nil)

// Resolve turns a repository argument into a snapshot handle. Existing local
// directories are used in place; anything else goes through the snapshot store.
func (uc *AnalyzeUseCase) Resolve(
	ctx context.Context,
	repository, branch string,
	forceRefresh bool,
) (*domain.RepositoryHandle, error) {
	if repository == "" {
		return nil, domain.InvalidInputf("repository is required")
	}
	if snapshot.IsLocalPath(repository) {
		return snapshot.Local(repository, uc.now())
	}
	if uc.store == nil {
		return nil, fmt.Errorf("%w: no snapshot store configured for %s", domain.ErrUnsupported, repository)
	}
	return uc.store.Acquire(ctx, repository, branch, forceRefresh)
}

// Execute resolves the repository and analyzes its snapshot
func (uc *AnalyzeUseCase) Execute(
	ctx context.Context,
	repository, branch string,
	forceRefresh bool,
) (*domain.RepositoryAnalysis, error) {
	handle, err := uc.Resolve(ctx, repository, branch, forceRefresh)
	if err != nil {
		return nil, err
	}
	return uc.Analyze(ctx, handle)
}

// Analyze runs the inference pipeline over an already-consistent snapshot.
// The returned analysis is shared through the memo and must not be mutated.
func (uc *AnalyzeUseCase) Analyze(
	ctx context.Context,
	handle *domain.RepositoryHandle,
) (*domain.RepositoryAnalysis, error) {
	if handle == nil || handle.LocalPath == "" {
		return nil, domain.InvalidInputf("repository handle has no local path")
	}

	key := cacheKey(handle)
	if cached, ok := uc.cache.Get(key); ok {
		uc.logger.Debug("Reusing cached analysis",
			zap.String("repository_id", handle.ID),
			zap.String("branch", handle.Branch))
		return cached, nil
	}

	uc.logger.Info("Starting repository analysis",
		zap.String("repository", handle.URL),
		zap.String("branch", handle.Branch),
		zap.String("path", handle.LocalPath))

	set, err := uc.reader.Read(ctx, handle.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifests: %w", err)
	}

	var (
		stack        domain.TechStack
		dependencies []domain.Dependency
		build        domain.BuildConfig
	)

	// The leaf analyses only read the manifest set.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stack = uc.classifier.Classify(gctx, set)
		return gctx.Err()
	})
	g.Go(func() error {
		dependencies = uc.parser.ExtractDependencies(gctx, set)
		return gctx.Err()
	})
	g.Go(func() error {
		build = uc.buildConfig.Analyze(gctx, set)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	reqs := uc.calculator.Calculate(ctx, stack, dependencies, build)
	plan := uc.synthesizer.Synthesize(ctx, stack, build, reqs)
	advice := uc.advisor.Advise(ctx, advisor.Findings{
		Stack:        stack,
		Dependencies: dependencies,
		Build:        build,
	})

	analysis := &domain.RepositoryAnalysis{
		Repository:      *handle,
		TechStack:       stack,
		Dependencies:    dependencies,
		BuildConfig:     build,
		Requirements:    reqs,
		Strategy:        plan,
		Confidence:      advice.Confidence,
		Warnings:        advice.Warnings,
		Recommendations: advice.Recommendations,
		AnalyzedAt:      uc.now(),
	}
	uc.cache.Add(key, analysis)

	uc.logger.Info("Repository analysis completed",
		zap.String("repository", handle.URL),
		zap.String("primary", string(stack.Primary)),
		zap.String("framework", stack.Framework),
		zap.Int("dependencies_count", len(dependencies)),
		zap.String("strategy", string(plan.Type)),
		zap.Int("confidence", advice.Confidence))

	return analysis, nil
}

func cacheKey(handle *domain.RepositoryHandle) string {
	return handle.ID + "@" + handle.Branch + "#" + strconv.FormatInt(handle.SnapshotTime.UnixNano(), 10)
}
