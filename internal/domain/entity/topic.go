// Package entity 定义领域实体
package entity

// TopicDifficulty 主题难度
type TopicDifficulty string

const (
	DifficultyBeginner     TopicDifficulty = "beginner"
	DifficultyIntermediate TopicDifficulty = "intermediate"
	DifficultyAdvanced     TopicDifficulty = "advanced"
)

// Topic 选题实体，来自静态选题目录，不可变
type Topic struct {
	ID         string          `json:"id" yaml:"id"`
	Title      string          `json:"title" yaml:"title"`
	Category   string          `json:"category" yaml:"category"`
	Difficulty TopicDifficulty `json:"difficulty" yaml:"difficulty"`
	Keywords   []string        `json:"keywords" yaml:"keywords"`
	SEOScore   float64         `json:"seo_score" yaml:"seo_score"`
}

// Slug 由选题 ID 派生出文章 slug
func (t Topic) Slug() string {
	return t.ID
}
