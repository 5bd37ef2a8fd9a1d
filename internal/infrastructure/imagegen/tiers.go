package imagegen

import (
	"strings"

	"timeline-press/internal/domain/entity"
)

// modelTiers 模型速度档位静态表
// 这是路由提示而非运行时测量：fast 走同步路径，slow 走队列路径。
var modelTiers = map[string]entity.ModelTier{
	"flux/schnell":          entity.TierFast,
	"flux/dev":              entity.TierFast,
	"sdxl-lightning":        entity.TierFast,
	"flux-pro/v1.1-ultra":   entity.TierSlow,
	"recraft-v3":            entity.TierSlow,
	"kling-video/v1.6/pro":  entity.TierSlow,
	"minimax/video-01-live": entity.TierSlow,
	"luma-dream-machine":    entity.TierSlow,
}

// TierFor 查询模型速度档位，未声明的模型按 slow 处理
func TierFor(modelID string) entity.ModelTier {
	if tier, ok := modelTiers[strings.TrimSpace(modelID)]; ok {
		return tier
	}
	return entity.TierSlow
}
