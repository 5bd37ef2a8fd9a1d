package repository

import (
	"context"

	"timeline-press/internal/domain/entity"
)

// ArticleFilter 文章过滤条件
type ArticleFilter struct {
	Topic  string
	Branch entity.TimelineBranch
}

// ArticleRepository 文章元数据仓储接口
type ArticleRepository interface {
	// Upsert 按 slug 写入或整体覆盖文章元数据行
	Upsert(ctx context.Context, article *entity.Article) error

	// GetBySlug 根据 slug 获取文章；不存在时返回 (nil, nil)
	GetBySlug(ctx context.Context, slug string) (*entity.Article, error)

	// ExistsBySlug 判断 slug 是否已发布
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// List 按条件分页列出文章
	List(ctx context.Context, filter *ArticleFilter, pagination Pagination) (*PagedResult[*entity.Article], error)

	// Delete 删除文章元数据行
	Delete(ctx context.Context, slug string) error
}

// MediaAssetRepository 媒体资产仓储接口
type MediaAssetRepository interface {
	// Create 记录一条上传完成的媒体资产
	Create(ctx context.Context, asset *entity.MediaAsset) error

	// ListBySlug 列出某篇文章的全部媒体资产
	ListBySlug(ctx context.Context, slug string) ([]*entity.MediaAsset, error)

	// DeleteBySlugKind 删除某篇文章指定类型的媒体记录，重新生成时与 Create 配对使用
	DeleteBySlugKind(ctx context.Context, slug string, kind entity.MediaKind) error
}
