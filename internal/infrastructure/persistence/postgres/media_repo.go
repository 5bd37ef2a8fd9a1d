package postgres

import (
	"context"
	"fmt"

	"timeline-press/internal/domain/entity"
)

// MediaAssetRepository 媒体资产仓储实现
type MediaAssetRepository struct {
	client *Client
}

// NewMediaAssetRepository 创建媒体资产仓储
func NewMediaAssetRepository(client *Client) *MediaAssetRepository {
	return &MediaAssetRepository{client: client}
}

// Create 记录一条上传完成的媒体资产
func (r *MediaAssetRepository) Create(ctx context.Context, asset *entity.MediaAsset) error {
	ctx, span := tracer.Start(ctx, "postgres.MediaAssetRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(asset).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create media asset: %w", err)
	}
	return nil
}

// DeleteBySlugKind 删除某篇文章指定类型的媒体记录
func (r *MediaAssetRepository) DeleteBySlugKind(ctx context.Context, slug string, kind entity.MediaKind) error {
	ctx, span := tracer.Start(ctx, "postgres.MediaAssetRepository.DeleteBySlugKind")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("slug = ? AND kind = ?", slug, kind).Delete(&entity.MediaAsset{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete media assets: %w", err)
	}
	return nil
}

// ListBySlug 列出某篇文章的全部媒体资产
func (r *MediaAssetRepository) ListBySlug(ctx context.Context, slug string) ([]*entity.MediaAsset, error) {
	ctx, span := tracer.Start(ctx, "postgres.MediaAssetRepository.ListBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var assets []*entity.MediaAsset
	if err := db.Where("slug = ?", slug).Order("created_at ASC").Find(&assets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list media assets: %w", err)
	}
	return assets, nil
}
