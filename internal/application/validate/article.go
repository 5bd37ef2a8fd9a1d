// Package validate 提供发布前的文章结构校验
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
)

// Result 校验结果：不做部分得分，所有失败项一并上报
type Result struct {
	Valid  bool
	Issues []string
}

// ValidationError 校验失败错误
type ValidationError struct {
	Issues []string
}

func (e ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "article validation failed"
	}
	return "article validation failed: " + strings.Join(e.Issues, "; ")
}

// Validator 长文校验器
type Validator struct {
	minTitleLen       int
	minDescriptionLen int
	minBodyLen        int
	minKeywords       int
	minSections       int
}

// NewValidator 按配置阈值创建校验器
func NewValidator(cfg *config.ValidationConfig) *Validator {
	return &Validator{
		minTitleLen:       cfg.MinTitleLen,
		minDescriptionLen: cfg.MinDescriptionLen,
		minBodyLen:        cfg.MinBodyLen,
		minKeywords:       cfg.MinKeywords,
		minSections:       cfg.MinSections,
	}
}

// Validate 纯函数：候选文章 -> 校验结果
// 任何一项失败都会被上报；是否丢弃或重试由批次层决定（当前策略为丢弃并记录）。
func (v *Validator) Validate(article *entity.Article) Result {
	var issues []string
	if article == nil {
		return Result{Valid: false, Issues: []string{"article is nil"}}
	}

	if utf8.RuneCountInString(article.Title) < v.minTitleLen {
		issues = append(issues, fmt.Sprintf(
			"title too short: %d chars, need at least %d",
			utf8.RuneCountInString(article.Title), v.minTitleLen))
	}

	if utf8.RuneCountInString(article.Description) < v.minDescriptionLen {
		issues = append(issues, fmt.Sprintf(
			"description too short: %d chars, need at least %d",
			utf8.RuneCountInString(article.Description), v.minDescriptionLen))
	}

	if article.WordCount() < v.minBodyLen {
		issues = append(issues, fmt.Sprintf(
			"body too short: %d chars, need at least %d",
			article.WordCount(), v.minBodyLen))
	}

	if len(article.Keywords) < v.minKeywords {
		issues = append(issues, fmt.Sprintf(
			"too few keywords: %d, need at least %d",
			len(article.Keywords), v.minKeywords))
	}

	if len(article.Authors) == 0 {
		issues = append(issues, "authors must not be empty")
	}

	sections := CountSections(article.Body)
	if sections < v.minSections {
		issues = append(issues, fmt.Sprintf(
			"too few sections: %d top-level headers, need at least %d",
			sections, v.minSections))
	}

	return Result{Valid: len(issues) == 0, Issues: issues}
}

// CountSections 统计正文顶级章节数（一级/二级标题）
// 走 goldmark AST 而非逐行扫描，代码块内的 "##" 不会被误计。
func CountSections(body string) int {
	md := goldmark.New()
	source := []byte(body)
	doc := md.Parser().Parse(text.NewReader(source))

	count := 0
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if heading, ok := node.(*ast.Heading); ok && heading.Level <= 2 {
			count++
		}
	}
	return count
}
