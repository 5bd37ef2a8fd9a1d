// Package timeline 提供时间线收敛度计算与状态追踪
package timeline

import (
	"time"

	"timeline-press/internal/domain/entity"
)

// 收敛点日期固定表：每越过一个点，基础收敛度增加一档
// 基础分上限 95，余下 5 分由发布均衡奖励填充。
var convergencePoints = []time.Time{
	time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2028, 9, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2029, 3, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2029, 9, 1, 0, 0, 0, 0, time.UTC),
}

const (
	baseCeiling  = 95.0
	balanceBonus = 5.0
)

// CalculateConvergence 计算当前收敛百分比
// 对固定 state，结果随 now 越过收敛点单调不减；始终落在 [0,100]。
// 奖励项只起叙事作用，调用方不应依赖其精确数值。
func CalculateConvergence(state *entity.TimelineState, now time.Time) float64 {
	passed := 0
	for _, point := range convergencePoints {
		if !now.Before(point) {
			passed++
		}
	}

	base := baseCeiling * float64(passed) / float64(len(convergencePoints))
	bonus := balanceBonusFor(state)

	return clamp(base+bonus, 0, 100)
}

// balanceBonusFor 发布均衡奖励：两分支产量越接近，奖励越高
func balanceBonusFor(state *entity.TimelineState) float64 {
	if state == nil {
		return 0
	}
	u := float64(state.BranchCount(entity.BranchUtopia))
	d := float64(state.BranchCount(entity.BranchDystopia))
	total := u + d
	if total == 0 {
		return 0
	}
	return balanceBonus * (1 - abs(u-d)/total)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
