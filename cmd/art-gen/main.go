// Package main 封面媒体批量生成入口（art-gen）
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
	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
	"timeline-press/internal/infrastructure/imagegen"
	"timeline-press/internal/infrastructure/persistence/mdx"
	"timeline-press/internal/infrastructure/persistence/postgres"
	"timeline-press/internal/infrastructure/persistence/redis"
	"timeline-press/internal/infrastructure/persistence/statefile"
	"timeline-press/internal/infrastructure/storage"
	"timeline-press/pkg/errors"
	"timeline-press/pkg/logger"
	"timeline-press/pkg/tracer"

	"github.com/google/uuid"
)

const defaultModelID = "flux/dev"

func main() {
	var (
		dryRun   = flag.Bool("dry-run", false, "plan the batch without calling providers or uploading")
		limit    = flag.Int("limit", 0, "max covers to generate this run (0 = config default)")
		article  = flag.String("article", "", "generate media for exactly this slug")
		force    = flag.Bool("force", false, "regenerate even if media already exists")
		category = flag.String("category", "", "restrict to articles of one topic category")
		model    = flag.String("model", defaultModelID, "provider model id to generate with")
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
		ServiceName: "art-gen",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	if !*dryRun && cfg.ImageGen.APIKey == "" {
		appErr := errors.ErrCredentialMissing.WithDetail("no api key for media provider")
		logger.Error(ctx, "credential check failed", appErr, "detail", appErr.Detail)
		os.Exit(appErr.ExitCode())
	}

	catalog, err := selector.LoadCatalog()
	if err != nil {
		logger.Fatal(ctx, "failed to load topic catalog", err)
	}

	mediaStore, err := storage.NewMediaStore(ctx, &cfg.Storage.R2, cfg.Content.MediaDir)
	if err != nil {
		logger.Fatal(ctx, "failed to init media store", err)
	}

	deps := pipeline.Deps{
		Catalog:  catalog,
		Composer: compose.NewComposer(),
		Image:    imagegen.NewClient(&cfg.ImageGen),
		Writer:   mdx.NewWriter(cfg.Content.ArticlesDir),
		Media:    mediaStore,
		Tracker:  timeline.NewTracker(statefile.NewStore(cfg.Timeline.StateFile)),
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
	summary, err := runner.RunArt(ctx, *model, pipeline.Options{
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
