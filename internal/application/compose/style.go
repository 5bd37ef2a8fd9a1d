package compose

import (
	"strings"

	"timeline-press/pkg/prng"
)

// ModelStyle 模型专属的风格修饰
type ModelStyle struct {
	Prefix   string
	Suffix   string
	Boosters []string
}

// modelStyles 按模型 ID 精确匹配的风格表
var modelStyles = map[string]ModelStyle{
	"flux/schnell": {
		Prefix:   "minimalist editorial illustration of",
		Suffix:   "clean lines, flat shading",
		Boosters: []string{"high detail", "sharp focus", "trending digital art"},
	},
	"flux-pro/v1.1-ultra": {
		Prefix:   "cinematic concept art of",
		Suffix:   "volumetric light, 8k render",
		Boosters: []string{"ultra detailed", "dramatic lighting", "depth of field", "photoreal textures"},
	},
	"recraft-v3": {
		Prefix:   "retro-futurist poster of",
		Suffix:   "screen-print texture, limited palette",
		Boosters: []string{"bold composition", "grainy paper", "mid-century type"},
	},
	"kling-video/v1.6/pro": {
		Prefix:   "slow dolly shot of",
		Suffix:   "35mm film, shallow depth of field",
		Boosters: []string{"smooth camera motion", "natural light"},
	},
}

// defaultStyle 未登记模型的兜底风格
var defaultStyle = ModelStyle{
	Prefix:   "digital painting of",
	Suffix:   "atmospheric, detailed",
	Boosters: []string{"high quality", "sharp focus"},
}

// StyleFor 按模型 ID 精确查找风格，未命中回退默认
func StyleFor(modelID string) ModelStyle {
	if s, ok := modelStyles[modelID]; ok {
		return s
	}
	return defaultStyle
}

// buildImagePrompt 组装模型专属图像提示词
// booster 的数量与顺序由确定性随机源决定，同一 (slug, seed) 可复现。
func buildImagePrompt(subject string, theme Theme, style ModelStyle, src *prng.Source) string {
	parts := []string{style.Prefix, subject, string(theme) + " aesthetic"}

	// 取 1~N 个 booster，顺序固定、个数由随机源决定
	if n := len(style.Boosters); n > 0 {
		count := 1 + src.Intn(n)
		parts = append(parts, style.Boosters[:count]...)
	}

	if style.Suffix != "" {
		parts = append(parts, style.Suffix)
	}
	return strings.Join(parts, ", ")
}
