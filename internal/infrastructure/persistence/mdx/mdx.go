// Package mdx 提供 frontmatter+markdown 文章文件的读写
package mdx

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timeline-press/internal/domain/entity"
)

const (
	frontmatterDelim = "---"
	dateLayout       = "2006-01-02"
)

// frontmatter 文章头部元数据的落盘形态
type frontmatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Authors     []string `yaml:"authors"`
	Keywords    []string `yaml:"keywords"`
	Topic       string   `yaml:"topic,omitempty"`
	Horizon     string   `yaml:"horizon,omitempty"`
	Branch      string   `yaml:"branch,omitempty"`
	Model       string   `yaml:"model,omitempty"`
}

// Writer 文章文件写入器
type Writer struct {
	dir string
}

// NewWriter 创建写入器，dir 为文章输出目录
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write 将文章序列化为 frontmatter+markdown 并整体写入 <slug>.mdx
// 同一 slug 重复写入时文件被完整重写，从不做部分更新。
func (w *Writer) Write(article *entity.Article) (string, error) {
	if article == nil || article.Slug == "" {
		return "", fmt.Errorf("article slug is required")
	}

	data, err := Marshal(article)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create articles dir: %w", err)
	}

	path := filepath.Join(w.dir, article.Filename())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write article file: %w", err)
	}
	return path, nil
}

// Exists 判断 slug 对应的文章文件是否已存在
func (w *Writer) Exists(slug string) bool {
	_, err := os.Stat(filepath.Join(w.dir, slug+".mdx"))
	return err == nil
}

// Slugs 列出目录中全部已落盘文章的 slug
func (w *Writer) Slugs() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read articles dir: %w", err)
	}

	var slugs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".mdx") {
			slugs = append(slugs, strings.TrimSuffix(name, ".mdx"))
		}
	}
	return slugs, nil
}

// Read 读取并解析 <slug>.mdx
func (w *Writer) Read(slug string) (*entity.Article, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, slug+".mdx"))
	if err != nil {
		return nil, fmt.Errorf("failed to read article file: %w", err)
	}
	article, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	article.Slug = slug
	return article, nil
}

// Marshal 序列化文章为 frontmatter+markdown 文本块
func Marshal(article *entity.Article) ([]byte, error) {
	fm := frontmatter{
		Title:       article.Title,
		Description: article.Description,
		Date:        article.Date.Format(dateLayout),
		Authors:     article.Authors,
		Keywords:    article.Keywords,
		Topic:       article.Topic,
		Horizon:     string(article.Horizon),
		Branch:      string(article.Branch),
		Model:       article.Model,
	}

	head, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim)
	buf.WriteByte('\n')
	buf.Write(head)
	buf.WriteString(frontmatterDelim)
	buf.WriteString("\n\n")
	buf.WriteString(strings.TrimRight(article.Body, "\n"))
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal 解析 frontmatter+markdown 文本块
func Unmarshal(data []byte) (*entity.Article, error) {
	text := string(data)
	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return nil, fmt.Errorf("missing frontmatter block")
	}

	rest := text[len(frontmatterDelim)+1:]
	idx := strings.Index(rest, "\n"+frontmatterDelim+"\n")
	if idx < 0 {
		return nil, fmt.Errorf("unterminated frontmatter block")
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(rest[:idx+1]), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	date, err := time.Parse(dateLayout, fm.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid frontmatter date %q: %w", fm.Date, err)
	}

	body := strings.TrimPrefix(rest[idx+len(frontmatterDelim)+2:], "\n")

	return &entity.Article{
		Title:       fm.Title,
		Description: fm.Description,
		Date:        date,
		Authors:     fm.Authors,
		Keywords:    fm.Keywords,
		Topic:       fm.Topic,
		Horizon:     entity.Horizon(fm.Horizon),
		Branch:      entity.TimelineBranch(fm.Branch),
		Model:       fm.Model,
		Body:        strings.TrimRight(body, "\n"),
	}, nil
}
