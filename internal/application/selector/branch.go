package selector

import (
	"timeline-press/internal/domain/entity"
	"timeline-press/pkg/prng"
)

// 收敛度三档概率带：收敛越高，越倾向补齐落后的分支
// 这不是真正的状态机——每次调用只依赖当前收敛度与持久化计数，无额外记忆。
const (
	bandLowMax = 33.0
	bandMidMax = 66.0

	laggingBiasLow  = 0.50
	laggingBiasMid  = 0.65
	laggingBiasHigh = 0.80
)

// PickBranch 按收敛度加权掷硬币选择下一篇文章的时间线分支
func PickBranch(state *entity.TimelineState, convergence float64, src *prng.Source) entity.TimelineBranch {
	lagging, leading := laggingBranch(state)

	var bias float64
	switch {
	case convergence <= bandLowMax:
		bias = laggingBiasLow
	case convergence <= bandMidMax:
		bias = laggingBiasMid
	default:
		bias = laggingBiasHigh
	}

	if src.Float64() < bias {
		return lagging
	}
	return leading
}

// laggingBranch 返回落后分支与领先分支；持平时按固定顺序取乌托邦为"落后"
func laggingBranch(state *entity.TimelineState) (lagging, leading entity.TimelineBranch) {
	u := state.BranchCount(entity.BranchUtopia)
	d := state.BranchCount(entity.BranchDystopia)
	if d < u {
		return entity.BranchDystopia, entity.BranchUtopia
	}
	return entity.BranchUtopia, entity.BranchDystopia
}
