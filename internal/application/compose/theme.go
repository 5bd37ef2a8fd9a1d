package compose

import (
	"regexp"
	"strings"

	"timeline-press/internal/domain/entity"
)

// Theme 视觉/叙事主题
type Theme string

const (
	ThemeCyberpunk Theme = "cyberpunk"
	ThemeOrbital   Theme = "orbital"
	ThemeBiopunk   Theme = "biopunk"
	ThemeSolarpunk Theme = "solarpunk"
	ThemeInterface Theme = "interface"
	ThemeDefault   Theme = "retrofuture"
)

// themeRule 主题关键词规则
type themeRule struct {
	theme   Theme
	pattern *regexp.Regexp
}

// themeRules 按固定优先级排列，取首个命中
var themeRules = []themeRule{
	{ThemeCyberpunk, regexp.MustCompile(`(?i)neural|implant|wetware|augment|moderat|agent`)},
	{ThemeOrbital, regexp.MustCompile(`(?i)orbit|station|lagrange|kessler|space`)},
	{ThemeBiopunk, regexp.MustCompile(`(?i)gene|chimera|bio|dna|clone`)},
	{ThemeSolarpunk, regexp.MustCompile(`(?i)carbon|glacier|climate|green|solar`)},
	{ThemeInterface, regexp.MustCompile(`(?i)useframe|webgl|orb|hook|animation|interaction`)},
}

// DetectTheme 关键词正则分类器
// 在 标题+描述+关键词 的拼接文本上按固定优先级匹配，无命中回退默认主题。
func DetectTheme(topic entity.Topic, description string) Theme {
	text := strings.Join(append([]string{topic.Title, description}, topic.Keywords...), " ")
	for _, rule := range themeRules {
		if rule.pattern.MatchString(text) {
			return rule.theme
		}
	}
	return ThemeDefault
}
