// Package selector 提供选题与时间线分支选择
package selector

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"timeline-press/internal/domain/entity"
)

//go:embed topics.yaml
var topicsYAML []byte

// Catalog 静态选题目录，进程内只读
type Catalog struct {
	topics []entity.Topic
	byID   map[string]entity.Topic
}

// LoadCatalog 解析内嵌选题目录
func LoadCatalog() (*Catalog, error) {
	var doc struct {
		Topics []entity.Topic `yaml:"topics"`
	}
	if err := yaml.Unmarshal(topicsYAML, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse topic catalog: %w", err)
	}
	if len(doc.Topics) == 0 {
		return nil, fmt.Errorf("topic catalog is empty")
	}

	byID := make(map[string]entity.Topic, len(doc.Topics))
	for _, t := range doc.Topics {
		if t.ID == "" {
			return nil, fmt.Errorf("topic catalog contains entry without id")
		}
		if _, ok := byID[t.ID]; ok {
			return nil, fmt.Errorf("duplicated topic id: %s", t.ID)
		}
		byID[t.ID] = t
	}

	return &Catalog{topics: doc.Topics, byID: byID}, nil
}

// Topics 返回全部选题
func (c *Catalog) Topics() []entity.Topic {
	return c.topics
}

// Get 按 ID 查找选题
func (c *Catalog) Get(id string) (entity.Topic, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Filter 按类目过滤；category 为空返回全部
func (c *Catalog) Filter(category string) []entity.Topic {
	if category == "" {
		return c.topics
	}
	var out []entity.Topic
	for _, t := range c.topics {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}
