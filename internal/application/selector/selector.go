package selector

import (
	"timeline-press/internal/domain/entity"
	"timeline-press/pkg/prng"
)

// PickTopic 从候选中按 SEO 权重选取一个选题
// published 中的 slug 被跳过；候选耗尽时返回 (zero, false)。
func PickTopic(topics []entity.Topic, published map[string]bool, src *prng.Source) (entity.Topic, bool) {
	var candidates []entity.Topic
	var totalWeight float64
	for _, t := range topics {
		if published[t.Slug()] {
			continue
		}
		candidates = append(candidates, t)
		totalWeight += weightOf(t)
	}
	if len(candidates) == 0 {
		return entity.Topic{}, false
	}

	// 权重轮盘：SEO 分越高越容易被选中
	target := src.Float64() * totalWeight
	var acc float64
	for _, t := range candidates {
		acc += weightOf(t)
		if target < acc {
			return t, true
		}
	}
	return candidates[len(candidates)-1], true
}

// weightOf 选题权重；无 SEO 分的条目给最低正权重保证可达
func weightOf(t entity.Topic) float64 {
	if t.SEOScore <= 0 {
		return 1
	}
	return t.SEOScore
}
