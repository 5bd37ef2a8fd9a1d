// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timeline-press/internal/domain/entity"
	"timeline-press/internal/domain/repository"
)

// ArticleRepository 文章元数据仓储实现
type ArticleRepository struct {
	client *Client
}

// NewArticleRepository 创建文章仓储
func NewArticleRepository(client *Client) *ArticleRepository {
	return &ArticleRepository{client: client}
}

// Upsert 按 slug 写入或整体覆盖文章元数据行
func (r *ArticleRepository) Upsert(ctx context.Context, article *entity.Article) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		UpdateAll: true,
	}).Create(article).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert article: %w", err)
	}
	return nil
}

// GetBySlug 根据 slug 获取文章
func (r *ArticleRepository) GetBySlug(ctx context.Context, slug string) (*entity.Article, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.GetBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var article entity.Article
	if err := db.First(&article, "slug = ?", slug).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

// ExistsBySlug 判断 slug 是否已发布
func (r *ArticleRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.ExistsBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Article{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to count article: %w", err)
	}
	return count > 0, nil
}

// List 按条件分页列出文章
func (r *ArticleRepository) List(ctx context.Context, filter *repository.ArticleFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.Article{})
	if filter != nil {
		if filter.Topic != "" {
			db = db.Where("topic = ?", filter.Topic)
		}
		if filter.Branch != "" {
			db = db.Where("branch = ?", filter.Branch)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	var articles []*entity.Article
	err := db.Order("date DESC").
		Offset(pagination.Offset()).
		Limit(pagination.PageSize).
		Find(&articles).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return &repository.PagedResult[*entity.Article]{
		Items:    articles,
		Total:    total,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// Delete 删除文章元数据行
func (r *ArticleRepository) Delete(ctx context.Context, slug string) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Article{}, "slug = ?", slug).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}
