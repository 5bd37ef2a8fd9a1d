package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"timeline-press/internal/domain/entity"
	"timeline-press/pkg/prng"
)

func skewedState(utopia, dystopia int) *entity.TimelineState {
	state := entity.NewTimelineState()
	for i := 0; i < utopia; i++ {
		state.RecordPublish(entity.BranchUtopia, time.Now())
	}
	for i := 0; i < dystopia; i++ {
		state.RecordPublish(entity.BranchDystopia, time.Now())
	}
	return state
}

func TestLaggingBranch(t *testing.T) {
	t.Run("dystopia behind", func(t *testing.T) {
		lagging, leading := laggingBranch(skewedState(5, 1))
		assert.Equal(t, entity.BranchDystopia, lagging)
		assert.Equal(t, entity.BranchUtopia, leading)
	})

	t.Run("utopia behind", func(t *testing.T) {
		lagging, leading := laggingBranch(skewedState(1, 5))
		assert.Equal(t, entity.BranchUtopia, lagging)
		assert.Equal(t, entity.BranchDystopia, leading)
	})

	t.Run("tie treats utopia as lagging", func(t *testing.T) {
		lagging, _ := laggingBranch(skewedState(3, 3))
		assert.Equal(t, entity.BranchUtopia, lagging)
	})
}

func TestPickBranchDeterminism(t *testing.T) {
	state := skewedState(4, 1)
	a := PickBranch(state, 50, prng.New(42))
	b := PickBranch(state, 50, prng.New(42))
	assert.Equal(t, a, b)
}

// countLagging 统计不同种子下落后分支被选中的次数
func countLagging(state *entity.TimelineState, convergence float64, trials int) int {
	lagging, _ := laggingBranch(state)
	hits := 0
	for seed := uint64(0); seed < uint64(trials); seed++ {
		if PickBranch(state, convergence, prng.New(seed)) == lagging {
			hits++
		}
	}
	return hits
}

func TestPickBranchBias(t *testing.T) {
	state := skewedState(6, 2)
	const trials = 2000

	t.Run("low band is a near coin flip", func(t *testing.T) {
		hits := countLagging(state, 20, trials)
		assert.InDelta(t, trials/2, hits, trials/10)
	})

	t.Run("high band favors the lagging branch", func(t *testing.T) {
		low := countLagging(state, 20, trials)
		high := countLagging(state, 90, trials)
		assert.Greater(t, high, low)
		assert.Greater(t, high, trials/2)
	})

	t.Run("bias grows across bands", func(t *testing.T) {
		low := countLagging(state, 33, trials)
		mid := countLagging(state, 66, trials)
		high := countLagging(state, 67, trials)
		assert.Greater(t, mid, low)
		assert.GreaterOrEqual(t, high, mid)
	})

	t.Run("both branches remain reachable at every band", func(t *testing.T) {
		for _, convergence := range []float64{10, 50, 95} {
			hits := countLagging(state, convergence, trials)
			assert.Greater(t, hits, 0, "convergence=%v", convergence)
			assert.Less(t, hits, trials, "convergence=%v", convergence)
		}
	})
}
