// Package pipeline 提供顺序批处理流程编排
package pipeline

import (
	"fmt"
	"io"
)

// ItemStatus 单条目处理结局
type ItemStatus string

const (
	StatusSuccess ItemStatus = "success"
	StatusSkipped ItemStatus = "skipped"
	StatusFailed  ItemStatus = "failed"
)

// ItemResult 单条目处理结果
// 失败以数据表达并汇总到批次摘要，单条失败不会中断批次。
type ItemResult struct {
	Slug   string
	Status ItemStatus
	Reason string
}

// Summary 批次摘要
type Summary struct {
	Items []ItemResult
}

// Add 追加一条结果
func (s *Summary) Add(slug string, status ItemStatus, reason string) {
	s.Items = append(s.Items, ItemResult{Slug: slug, Status: status, Reason: reason})
}

// Count 按状态计数
func (s *Summary) Count(status ItemStatus) int {
	n := 0
	for _, item := range s.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

// Print 输出人类可读的批次摘要
// 部分失败只体现在这里，不影响进程退出码。
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n==== batch summary ====\n")
	fmt.Fprintf(w, "total: %d  success: %d  skipped: %d  failed: %d\n",
		len(s.Items), s.Count(StatusSuccess), s.Count(StatusSkipped), s.Count(StatusFailed))
	for _, item := range s.Items {
		if item.Reason != "" {
			fmt.Fprintf(w, "  [%s] %s: %s\n", item.Status, item.Slug, item.Reason)
		} else {
			fmt.Fprintf(w, "  [%s] %s\n", item.Status, item.Slug)
		}
	}
}
