// Package storage 提供生成媒体的对象存储与本地镜像
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
)

var tracer = otel.Tracer("storage")

// MediaStore 媒体存储：R2 对象存储 + 本地文件镜像
// 上传失败只记录不致命，本地镜像文件可能仍然存在。
type MediaStore struct {
	s3Client   *s3.Client
	httpClient *http.Client
	bucket     string
	publicURL  string
	mediaDir   string
}

// StoredMedia 一次存储的产物
type StoredMedia struct {
	StorageKey string
	PublicURL  string
	LocalPath  string
	ByteSize   int64
}

// NewMediaStore 创建媒体存储
// R2 走 S3 兼容接口，endpoint 由 account id 推导。
func NewMediaStore(ctx context.Context, cfg *config.R2Config, mediaDir string) (*MediaStore, error) {
	store := &MediaStore{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		bucket:     cfg.Bucket,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		mediaDir:   mediaDir,
	}

	if !cfg.Enabled {
		return store, nil
	}
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("r2 storage enabled but credentials incomplete")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	store.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return store, nil
}

// Store 下载媒体 URL 并写入对象存储与本地镜像
// 返回 nil 表示存储失败；调用方记录日志后继续批次。
func (m *MediaStore) Store(ctx context.Context, result entity.GenerationResult, slug string, kind entity.MediaKind) (*StoredMedia, error) {
	ctx, span := tracer.Start(ctx, "storage.Store",
		trace.WithAttributes(
			attribute.String("storage.slug", slug),
			attribute.String("storage.kind", string(kind)),
		))
	defer span.End()

	if !result.Success || result.MediaURL == "" {
		return nil, fmt.Errorf("no media url to store")
	}

	data, contentType, err := m.download(ctx, result.MediaURL)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("media download failed: %w", err)
	}

	key := mediaKey(slug, kind, result.MediaURL)
	stored := &StoredMedia{
		StorageKey: key,
		ByteSize:   int64(len(data)),
	}

	// 本地镜像先落盘，对象存储失败时仍可用
	localPath := filepath.Join(m.mediaDir, key)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write local mirror: %w", err)
	}
	stored.LocalPath = localPath

	if m.s3Client != nil {
		_, err = m.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(m.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			span.RecordError(err)
			return stored, fmt.Errorf("r2 upload failed: %w", err)
		}
		if m.publicURL != "" {
			stored.PublicURL = m.publicURL + "/" + key
		}
	}

	return stored, nil
}

// download 流式下载媒体内容
func (m *MediaStore) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media url returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

// mediaKey 由 slug、媒体类型与源 URL 扩展名派生存储键
func mediaKey(slug string, kind entity.MediaKind, mediaURL string) string {
	ext := filepath.Ext(strings.SplitN(mediaURL, "?", 2)[0])
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("%s/%s-%s%s", slug, slug, kind, ext)
}
