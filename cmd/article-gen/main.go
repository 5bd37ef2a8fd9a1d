// Package main 文章批量生成入口（article-gen）
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"timeline-press/internal/application/compose"
	"timeline-press/internal/application/pipeline"
	"timeline-press/internal/application/selector"
	"timeline-press/internal/application/timeline"
	"timeline-press/internal/application/validate"
	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
	"timeline-press/internal/infrastructure/llm"
	"timeline-press/internal/infrastructure/persistence/mdx"
	"timeline-press/internal/infrastructure/persistence/postgres"
	"timeline-press/internal/infrastructure/persistence/redis"
	"timeline-press/internal/infrastructure/persistence/statefile"
	"timeline-press/pkg/errors"
	"timeline-press/pkg/logger"
	"timeline-press/pkg/tracer"

	"github.com/google/uuid"
)

func main() {
	var (
		dryRun   = flag.Bool("dry-run", false, "plan the batch without calling providers or writing files")
		limit    = flag.Int("limit", 0, "max articles to generate this run (0 = config default)")
		article  = flag.String("article", "", "generate exactly this topic id instead of weighted selection")
		force    = flag.Bool("force", false, "regenerate even if the article already exists")
		category = flag.String("category", "", "restrict topic selection to one category")
		seed     = flag.Uint64("seed", 0, "deterministic batch seed (0 = time-based)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := logger.WithContext(context.Background(), logger.BatchIDKey, uuid.NewString())

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "article-gen",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	// 生成路径上缺少凭据直接终止，dry-run 不需要凭据
	if !*dryRun {
		provider, ok := cfg.LLM.Providers[cfg.LLM.DefaultProvider]
		if !ok || provider.APIKey == "" {
			appErr := errors.ErrCredentialMissing.WithDetail(
				fmt.Sprintf("no api key for llm provider %q", cfg.LLM.DefaultProvider))
			logger.Error(ctx, "credential check failed", appErr, "detail", appErr.Detail)
			os.Exit(appErr.ExitCode())
		}
	}

	catalog, err := selector.LoadCatalog()
	if err != nil {
		logger.Fatal(ctx, "failed to load topic catalog", err)
	}

	deps := pipeline.Deps{
		Catalog:   catalog,
		Composer:  compose.NewComposer(),
		Text:      llm.NewClient(llm.NewEinoFactory(&cfg.LLM)),
		Validator: validate.NewValidator(&cfg.Validation),
		Writer:    mdx.NewWriter(cfg.Content.ArticlesDir),
		Tracker:   timeline.NewTracker(statefile.NewStore(cfg.Timeline.StateFile)),
	}

	if cfg.Database.Postgres.Enabled {
		pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
		if err != nil {
			logger.Fatal(ctx, "failed to init postgres", err)
		}
		defer func() { _ = pgClient.Close() }()
		if err := pgClient.AutoMigrate(&entity.Article{}, &entity.MediaAsset{}); err != nil {
			logger.Fatal(ctx, "failed to migrate schema", err)
		}
		deps.Articles = postgres.NewArticleRepository(pgClient)
		deps.MediaRepo = postgres.NewMediaAssetRepository(pgClient)
		deps.Tx = postgres.NewTxManager(pgClient)
	}

	if cfg.Cache.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Cache.Redis)
		if err != nil {
			logger.Fatal(ctx, "failed to init redis", err)
		}
		defer func() { _ = redisClient.Close() }()
		deps.Cache = redis.NewCache(redisClient)
		deps.Throttle = redis.NewThrottle(redisClient)
	}

	batchSeed := *seed
	if batchSeed == 0 {
		batchSeed = uint64(time.Now().UnixNano())
	}

	runner := pipeline.NewRunner(cfg, deps)
	summary, err := runner.RunArticles(ctx, pipeline.Options{
		DryRun:   *dryRun,
		Limit:    *limit,
		Slug:     *article,
		Force:    *force,
		Category: *category,
		Seed:     batchSeed,
	})
	if err != nil {
		logger.Fatal(ctx, "batch aborted", err)
	}

	summary.Print(os.Stdout)
}
