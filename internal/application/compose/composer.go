package compose

import (
	"context"
	"fmt"
	"strings"

	"timeline-press/internal/domain/entity"
	"timeline-press/pkg/prng"
)

// 叙事框架候选表：顺序固定，选择由确定性随机源驱动
var (
	tones = []string{
		"wry and observational",
		"quietly elegiac",
		"deadpan bureaucratic",
		"breathless and urgent",
		"warm and domestic",
	}
	settings = []string{
		"a megacity rooftop garden",
		"a decommissioned orbital ring",
		"a flooded coastal archive",
		"a suburban fabrication co-op",
		"a border checkpoint between jurisdictions",
	}
	protagonists = []string{
		"a night-shift infrastructure auditor",
		"a retired terraforming engineer",
		"a municipal dream archivist",
		"a freelance protocol translator",
		"a second-generation fork of a city planner",
	}
)

// NarrativeFrame 一次合成选定的叙事结构元数据
type NarrativeFrame struct {
	Tone        string
	Setting     string
	Protagonist string
	Theme       Theme
}

// ArticlePrompt 文章生成提示词
type ArticlePrompt struct {
	System string
	User   string
	Frame  NarrativeFrame
}

// Composer 提示词合成器
// 对同一 (slug, seed) 输出逐字节一致，保证生成可重放。
type Composer struct {
	registry *Registry
}

// NewComposer 创建合成器
func NewComposer() *Composer {
	return &Composer{registry: NewRegistry()}
}

// ComposeArticle 为选题合成文章生成提示词
func (c *Composer) ComposeArticle(ctx context.Context, topic entity.Topic, branch entity.TimelineBranch, seed uint64) (*ArticlePrompt, error) {
	src := prng.NewFromSlug(topic.Slug(), seed)

	frame := NarrativeFrame{
		Tone:        prng.Pick(src, tones),
		Setting:     prng.Pick(src, settings),
		Protagonist: prng.Pick(src, protagonists),
		Theme:       DetectTheme(topic, ""),
	}

	tpl, err := c.registry.ChatTemplate(PromptArticleV1)
	if err != nil {
		return nil, err
	}

	msgs, err := tpl.Format(ctx, map[string]any{
		"topic_title": topic.Title,
		"category":    topic.Category,
		"keywords":    strings.Join(topic.Keywords, ", "),
		"branch":      string(branch),
		"theme":       string(frame.Theme),
		"tone":        frame.Tone,
		"setting":     frame.Setting,
		"protagonist": frame.Protagonist,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to format article prompt: %w", err)
	}
	if len(msgs) != 2 {
		return nil, fmt.Errorf("unexpected prompt message count: %d", len(msgs))
	}

	return &ArticlePrompt{
		System: msgs[0].Content,
		User:   msgs[1].Content,
		Frame:  frame,
	}, nil
}

// ComposeImage 为文章合成模型专属图像提示词
// 主体取文章标题与主题；风格由模型 ID 精确查表，未命中回退默认。
func (c *Composer) ComposeImage(article *entity.Article, modelID string, seed uint64) string {
	src := prng.NewFromSlug(article.Slug, seed)

	topic := entity.Topic{
		Title:    article.Title,
		Keywords: article.Keywords,
	}
	theme := DetectTheme(topic, article.Description)
	style := StyleFor(modelID)

	subject := fmt.Sprintf("%s, %s timeline", article.Title, article.Branch)
	return buildImagePrompt(subject, theme, style, src)
}
