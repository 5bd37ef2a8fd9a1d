package entity

import (
	"time"
)

// MediaKind 媒体类型
type MediaKind string

const (
	MediaKindCover MediaKind = "cover"
	MediaKindInset MediaKind = "inset"
	MediaKindVideo MediaKind = "video"
)

// MediaAsset 已上传媒体资产的元数据行
type MediaAsset struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug       string    `json:"slug" gorm:"type:varchar(255);index;not null"`
	Kind       MediaKind `json:"kind" gorm:"type:varchar(16);not null"`
	StorageKey string    `json:"storage_key" gorm:"type:varchar(512)"`
	PublicURL  string    `json:"public_url" gorm:"type:varchar(1024)"`
	LocalPath  string    `json:"local_path" gorm:"type:varchar(512)"`
	ByteSize   int64     `json:"byte_size"`
	ModelID    string    `json:"model_id" gorm:"type:varchar(128)"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (MediaAsset) TableName() string {
	return "media_assets"
}
