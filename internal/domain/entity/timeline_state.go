package entity

import (
	"time"
)

// BranchState 单个时间线分支的发布状态
type BranchState struct {
	ArticlesPublished int        `json:"articles_published"`
	LastPublishedAt   *time.Time `json:"last_published_at,omitempty"`
}

// TimelineState 时间线收敛状态
// 单条可变记录，落盘为扁平 JSON 文件；读-改-全量覆写，
// 单进程 CLI 假设下不做并发写保护。
// 不变式：TotalArticlesPublished 单调不减。
type TimelineState struct {
	TotalArticlesPublished int                            `json:"total_articles_published"`
	Branches               map[TimelineBranch]BranchState `json:"branches"`
	ConvergencePercent     float64                        `json:"convergence_percent"`
	UpdatedAt              time.Time                      `json:"updated_at"`
}

// NewTimelineState 合成零值初始状态
func NewTimelineState() *TimelineState {
	return &TimelineState{
		Branches: map[TimelineBranch]BranchState{
			BranchUtopia:   {},
			BranchDystopia: {},
		},
	}
}

// RecordPublish 记录一次发布
func (s *TimelineState) RecordPublish(branch TimelineBranch, at time.Time) {
	s.TotalArticlesPublished++
	if s.Branches == nil {
		s.Branches = make(map[TimelineBranch]BranchState)
	}
	bs := s.Branches[branch]
	bs.ArticlesPublished++
	bs.LastPublishedAt = &at
	s.Branches[branch] = bs
	s.UpdatedAt = at
}

// BranchCount 分支已发布数
func (s *TimelineState) BranchCount(branch TimelineBranch) int {
	if s.Branches == nil {
		return 0
	}
	return s.Branches[branch].ArticlesPublished
}
