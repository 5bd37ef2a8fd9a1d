package entity

import (
	"time"
)

// TimelineBranch 时间线分支
type TimelineBranch string

const (
	BranchUtopia   TimelineBranch = "utopia"
	BranchDystopia TimelineBranch = "dystopia"
)

// Horizon 文章的时间视界分类
type Horizon string

const (
	HorizonNear Horizon = "near"
	HorizonMid  Horizon = "mid"
	HorizonFar  Horizon = "far"
)

// Article 文章实体
// slug 全局唯一；重新发布同一 slug 时整体重写，从不做部分更新。
type Article struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Slug        string         `json:"slug" gorm:"type:varchar(255);uniqueIndex;not null"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Date        time.Time      `json:"date" gorm:"not null"`
	Authors     []string       `json:"authors" gorm:"type:jsonb;serializer:json"`
	Body        string         `json:"body" gorm:"type:text"`
	Keywords    []string       `json:"keywords" gorm:"type:jsonb;serializer:json"`
	Topic       string         `json:"topic" gorm:"type:varchar(128);index"`
	Horizon     Horizon        `json:"horizon" gorm:"type:varchar(16)"`
	Branch      TimelineBranch `json:"branch" gorm:"type:varchar(16);index"`
	Model       string         `json:"model,omitempty" gorm:"type:varchar(128)"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Article) TableName() string {
	return "articles"
}

// Filename 文章落盘文件名
func (a *Article) Filename() string {
	return a.Slug + ".mdx"
}

// WordCount 正文字符数（校验阈值以字符计）
func (a *Article) WordCount() int {
	return len([]rune(a.Body))
}
