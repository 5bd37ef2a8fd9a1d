package timeline

import (
	"fmt"
	"time"

	"timeline-press/internal/domain/entity"
	"timeline-press/internal/infrastructure/persistence/statefile"
)

// Tracker 时间线状态追踪器
// 每次发布后更新计数并整体覆写状态文件。
type Tracker struct {
	store *statefile.Store
}

// NewTracker 创建追踪器
func NewTracker(store *statefile.Store) *Tracker {
	return &Tracker{store: store}
}

// Load 加载当前状态；文件缺失时合成零值状态
func (t *Tracker) Load() (*entity.TimelineState, error) {
	return t.store.Load()
}

// RecordPublish 记录一次发布并持久化
// 总发布数只增不减；收敛度随发布重算后写回，供外部展示。
func (t *Tracker) RecordPublish(branch entity.TimelineBranch, at time.Time) (*entity.TimelineState, error) {
	state, err := t.store.Load()
	if err != nil {
		return nil, err
	}

	state.RecordPublish(branch, at)
	state.ConvergencePercent = CalculateConvergence(state, at)

	if err := t.store.Save(state); err != nil {
		return nil, fmt.Errorf("failed to persist timeline state: %w", err)
	}
	return state, nil
}
