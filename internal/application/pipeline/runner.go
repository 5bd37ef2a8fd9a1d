package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"timeline-press/internal/application/compose"
	"timeline-press/internal/application/selector"
	"timeline-press/internal/application/timeline"
	"timeline-press/internal/application/validate"
	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
	"timeline-press/internal/domain/repository"
	"timeline-press/internal/infrastructure/imagegen"
	"timeline-press/internal/infrastructure/llm"
	"timeline-press/internal/infrastructure/persistence/mdx"
	redisinfra "timeline-press/internal/infrastructure/persistence/redis"
	"timeline-press/internal/infrastructure/storage"
	"timeline-press/pkg/logger"
	"timeline-press/pkg/prng"
)

const (
	publishedSetCacheKey = "timeline-press:published_slugs"
	publishedSetCacheTTL = 10 * time.Minute

	throttleKey    = "timeline-press:provider_calls"
	throttleLimit  = 30
	throttleWindow = time.Minute
)

// Options 批处理选项，对应 CLI 标志
type Options struct {
	DryRun   bool
	Limit    int
	Slug     string
	Force    bool
	Category string
	Seed     uint64
}

// Runner 顺序批处理执行器
// 每个条目独立走 选题->合成->生成->校验->持久化->状态更新，
// 单条失败记录后继续，批次从不因单条失败中止。
type Runner struct {
	cfg       *config.Config
	catalog   *selector.Catalog
	composer  *compose.Composer
	text      *llm.Client
	image     *imagegen.Client
	validator *validate.Validator
	writer    *mdx.Writer
	media     *storage.MediaStore
	tracker   *timeline.Tracker

	// 可选依赖：数据库/缓存不可用时降级为纯文件发布
	articles  repository.ArticleRepository
	mediaRepo repository.MediaAssetRepository
	tx        repository.Transactor
	cache     *redisinfra.Cache
	throttle  *redisinfra.Throttle
}

// Deps Runner 的依赖集合
type Deps struct {
	Catalog   *selector.Catalog
	Composer  *compose.Composer
	Text      *llm.Client
	Image     *imagegen.Client
	Validator *validate.Validator
	Writer    *mdx.Writer
	Media     *storage.MediaStore
	Tracker   *timeline.Tracker

	Articles  repository.ArticleRepository
	MediaRepo repository.MediaAssetRepository
	Tx        repository.Transactor
	Cache     *redisinfra.Cache
	Throttle  *redisinfra.Throttle
}

// NewRunner 创建批处理执行器
func NewRunner(cfg *config.Config, deps Deps) *Runner {
	return &Runner{
		cfg:       cfg,
		catalog:   deps.Catalog,
		composer:  deps.Composer,
		text:      deps.Text,
		image:     deps.Image,
		validator: deps.Validator,
		writer:    deps.Writer,
		media:     deps.Media,
		tracker:   deps.Tracker,
		articles:  deps.Articles,
		mediaRepo: deps.MediaRepo,
		tx:        deps.Tx,
		cache:     deps.Cache,
		throttle:  deps.Throttle,
	}
}

// RunArticles 执行一批文章生成
func (r *Runner) RunArticles(ctx context.Context, opts Options) (*Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = r.cfg.Pipeline.DefaultLimit
	}
	if opts.Slug != "" {
		limit = 1
	}

	published, err := r.publishedSet(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for i := 0; i < limit; i++ {
		if i > 0 {
			r.interCallDelay(ctx)
		}
		r.runArticleItem(ctx, opts, uint64(i), published, summary)
	}

	return summary, nil
}

// runArticleItem 处理单个条目；所有失败记录到 summary 后返回
func (r *Runner) runArticleItem(ctx context.Context, opts Options, iteration uint64, published map[string]bool, summary *Summary) {
	// 选题前的随机源由批次种子与迭代序号决定，批内每条可复现
	src := prng.New(opts.Seed + iteration)

	topic, ok := r.selectTopic(opts, published, src)
	if !ok {
		summary.Add("-", StatusSkipped, "no eligible topic left")
		return
	}
	slug := topic.Slug()
	ctx = logger.WithContext(ctx, logger.SlugKey, slug)

	if published[slug] && !opts.Force {
		summary.Add(slug, StatusSkipped, "already published")
		return
	}

	state, err := r.tracker.Load()
	if err != nil {
		summary.Add(slug, StatusFailed, "state load failed: "+err.Error())
		return
	}
	convergence := timeline.CalculateConvergence(state, time.Now())
	branch := selector.PickBranch(state, convergence, src)
	ctx = logger.WithContext(ctx, logger.BranchKey, string(branch))

	prompt, err := r.composer.ComposeArticle(ctx, topic, branch, opts.Seed)
	if err != nil {
		summary.Add(slug, StatusFailed, "compose failed: "+err.Error())
		return
	}

	if opts.DryRun {
		logger.Info(ctx, "dry-run: would generate article",
			"branch", branch,
			"convergence", fmt.Sprintf("%.1f", convergence),
			"tone", prompt.Frame.Tone,
			"theme", prompt.Frame.Theme)
		summary.Add(slug, StatusSkipped, "dry-run")
		return
	}

	logger.Info(ctx, "generating article", "branch", branch, "theme", prompt.Frame.Theme)
	result := r.text.Generate(ctx, "", prompt.System, prompt.User)
	if !result.Success {
		logger.Warn(ctx, "generation failed", "reason", result.Error)
		summary.Add(slug, StatusFailed, result.Error)
		return
	}

	article := r.buildArticle(topic, branch, result.Content)

	if vr := r.validator.Validate(article); !vr.Valid {
		logger.Warn(ctx, "article discarded by validator", "issues", strings.Join(vr.Issues, "; "))
		summary.Add(slug, StatusFailed, "validation: "+strings.Join(vr.Issues, "; "))
		return
	}

	path, err := r.writer.Write(article)
	if err != nil {
		summary.Add(slug, StatusFailed, "write failed: "+err.Error())
		return
	}
	logger.Info(ctx, "article written", "path", path, "elapsed", result.Elapsed.String())

	// 元数据行失败只告警：本地文件已经存在，发布继续生效
	if r.articles != nil {
		if err := r.articles.Upsert(ctx, article); err != nil {
			logger.Warn(ctx, "article metadata upsert failed", "error", err.Error())
		}
	}

	if _, err := r.tracker.RecordPublish(branch, article.Date); err != nil {
		logger.Warn(ctx, "timeline state update failed", "error", err.Error())
	}

	published[slug] = true
	r.invalidatePublishedSet(ctx)
	summary.Add(slug, StatusSuccess, "")
}

// RunArt 为缺少封面的已发布文章执行一批媒体生成
func (r *Runner) RunArt(ctx context.Context, modelID string, opts Options) (*Summary, error) {
	slugs, err := r.writer.Slugs()
	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = r.cfg.Pipeline.DefaultLimit
	}

	summary := &Summary{}
	processed := 0
	generated := 0
	for _, slug := range slugs {
		if processed >= limit {
			break
		}
		if opts.Slug != "" && slug != opts.Slug {
			continue
		}
		consumed, called := r.runArtItem(ctx, slug, modelID, opts, summary, generated > 0)
		if consumed {
			processed++
		}
		if called {
			generated++
		}
	}

	return summary, nil
}

// runArtItem 为单篇文章生成封面
// 返回是否消耗了一个批次名额、是否真正调用了提供商。
func (r *Runner) runArtItem(ctx context.Context, slug, modelID string, opts Options, summary *Summary, delay bool) (consumed, called bool) {
	ctx = logger.WithContext(ctx, logger.SlugKey, slug)
	ctx = logger.WithContext(ctx, logger.ModelKey, modelID)

	article, err := r.writer.Read(slug)
	if err != nil {
		summary.Add(slug, StatusFailed, "read failed: "+err.Error())
		return true, false
	}

	if opts.Category != "" && article.Topic != opts.Category {
		return false, false
	}
	if !opts.Force && r.hasMedia(ctx, slug) {
		summary.Add(slug, StatusSkipped, "media already exists")
		return false, false
	}

	promptText := r.composer.ComposeImage(article, modelID, opts.Seed)

	if opts.DryRun {
		logger.Info(ctx, "dry-run: would generate media", "prompt", promptText)
		summary.Add(slug, StatusSkipped, "dry-run")
		return true, false
	}

	// 固定间隔只隔开真实的提供商调用，被跳过的条目不计
	if delay {
		r.interCallDelay(ctx)
	}

	logger.Info(ctx, "generating media", "tier", imagegen.TierFor(modelID))
	result := r.image.Generate(ctx, entity.GenerationRequest{
		ModelID: modelID,
		Prompt:  promptText,
		Width:   1344,
		Height:  768,
	})
	if !result.Success {
		logger.Warn(ctx, "media generation failed", "reason", result.Error)
		summary.Add(slug, StatusFailed, result.Error)
		return true, true
	}

	stored, err := r.media.Store(ctx, result, slug, entity.MediaKindCover)
	if err != nil {
		// 上传失败非致命：本地镜像可能已存在
		logger.Warn(ctx, "media store failed", "error", err.Error())
		if stored == nil {
			summary.Add(slug, StatusFailed, "store failed: "+err.Error())
			return true, true
		}
	}

	if r.mediaRepo != nil && stored != nil {
		asset := &entity.MediaAsset{
			Slug:       slug,
			Kind:       entity.MediaKindCover,
			StorageKey: stored.StorageKey,
			PublicURL:  stored.PublicURL,
			LocalPath:  stored.LocalPath,
			ByteSize:   stored.ByteSize,
			ModelID:    modelID,
		}
		if err := r.recordMediaAsset(ctx, asset); err != nil {
			logger.Warn(ctx, "media metadata insert failed", "error", err.Error())
		}
	}

	logger.Info(ctx, "media stored", "cost", result.Cost, "elapsed", result.Elapsed.String())
	summary.Add(slug, StatusSuccess, "")
	return true, true
}

// selectTopic 解析 --article/--category 约束并按权重选题
func (r *Runner) selectTopic(opts Options, published map[string]bool, src *prng.Source) (entity.Topic, bool) {
	if opts.Slug != "" {
		topic, ok := r.catalog.Get(opts.Slug)
		return topic, ok
	}

	candidates := r.catalog.Filter(opts.Category)
	if opts.Force {
		// --force 时已发布条目重新进入候选
		return selector.PickTopic(candidates, nil, src)
	}
	return selector.PickTopic(candidates, published, src)
}

// publishedSet 已发布 slug 集合：文件落盘为准，元数据库为辅
// 集合整体放 Redis 读穿缓存，发布后失效。
func (r *Runner) publishedSet(ctx context.Context) (map[string]bool, error) {
	load := func() (map[string]bool, error) {
		set := make(map[string]bool)
		slugs, err := r.writer.Slugs()
		if err != nil {
			return nil, err
		}
		for _, s := range slugs {
			set[s] = true
		}
		if r.articles != nil {
			for page := 1; ; page++ {
				res, err := r.articles.List(ctx, nil, repository.NewPagination(page, 100))
				if err != nil {
					logger.Warn(ctx, "article metadata list failed", "error", err.Error())
					break
				}
				for _, a := range res.Items {
					set[a.Slug] = true
				}
				if len(res.Items) == 0 || int64(page)*100 >= res.Total {
					break
				}
			}
		}
		return set, nil
	}

	if r.cache == nil {
		return load()
	}

	data, err := r.cache.GetOrLoad(ctx, publishedSetCacheKey, publishedSetCacheTTL, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		// 缓存故障降级为直接加载
		logger.Warn(ctx, "published-set cache unavailable", "error", err.Error())
		return load()
	}

	set := make(map[string]bool)
	if err := json.Unmarshal(data, &set); err != nil {
		return load()
	}
	return set, nil
}

// invalidatePublishedSet 发布成功后失效缓存
func (r *Runner) invalidatePublishedSet(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, publishedSetCacheKey); err != nil {
		logger.Warn(ctx, "published-set cache invalidation failed", "error", err.Error())
	}
}

// recordMediaAsset 替换同 slug 同类型的媒体记录
// 删除旧行与插入新行必须成对生效，数据库可用时走事务。
func (r *Runner) recordMediaAsset(ctx context.Context, asset *entity.MediaAsset) error {
	replace := func(ctx context.Context) error {
		if err := r.mediaRepo.DeleteBySlugKind(ctx, asset.Slug, asset.Kind); err != nil {
			return err
		}
		return r.mediaRepo.Create(ctx, asset)
	}
	if r.tx != nil {
		return r.tx.WithTransaction(ctx, replace)
	}
	return replace(ctx)
}

// hasMedia 判断文章是否已有媒体记录
func (r *Runner) hasMedia(ctx context.Context, slug string) bool {
	if r.mediaRepo == nil {
		return false
	}
	assets, err := r.mediaRepo.ListBySlug(ctx, slug)
	if err != nil {
		logger.Warn(ctx, "media asset lookup failed", "error", err.Error())
		return false
	}
	return len(assets) > 0
}

// interCallDelay 相邻生成调用之间的固定间隔
// Redis 可用时叠加滑动窗口节流，窗口满则等待。
func (r *Runner) interCallDelay(ctx context.Context) {
	delay := r.cfg.Pipeline.InterCallDelay
	if delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	if r.throttle != nil {
		interval := delay
		if interval <= 0 {
			interval = time.Second
		}
		if err := r.throttle.Wait(ctx, throttleKey, throttleLimit, throttleWindow, interval); err != nil {
			logger.Warn(ctx, "provider throttle unavailable", "error", err.Error())
		}
	}
}

// buildArticle 由选题与生成正文组装文章实体
func (r *Runner) buildArticle(topic entity.Topic, branch entity.TimelineBranch, body string) *entity.Article {
	return &entity.Article{
		Slug:        topic.Slug(),
		Title:       topic.Title,
		Description: deriveDescription(body),
		Date:        time.Now().UTC().Truncate(24 * time.Hour),
		Authors:     r.cfg.Content.Authors,
		Body:        body,
		Keywords:    topic.Keywords,
		Topic:       topic.Category,
		Horizon:     horizonFor(topic.Difficulty),
		Branch:      branch,
		Model:       r.cfg.LLM.DefaultProvider,
	}
}

// deriveDescription 取正文首个非标题段落作为描述，截断到合理长度
func deriveDescription(body string) string {
	for _, block := range strings.Split(body, "\n\n") {
		line := strings.TrimSpace(block)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.ReplaceAll(line, "\n", " ")
		runes := []rune(line)
		if len(runes) > 240 {
			return string(runes[:240]) + "..."
		}
		return line
	}
	return ""
}

// horizonFor 难度到时间视界的固定映射
func horizonFor(d entity.TopicDifficulty) entity.Horizon {
	switch d {
	case entity.DifficultyBeginner:
		return entity.HorizonNear
	case entity.DifficultyAdvanced:
		return entity.HorizonFar
	default:
		return entity.HorizonMid
	}
}
