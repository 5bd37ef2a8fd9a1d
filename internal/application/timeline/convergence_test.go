package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeline-press/internal/domain/entity"
)

func TestCalculateConvergenceBounds(t *testing.T) {
	state := entity.NewTimelineState()

	dates := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		v := CalculateConvergence(state, d)
		assert.GreaterOrEqual(t, v, 0.0, "at %s", d)
		assert.LessOrEqual(t, v, 100.0, "at %s", d)
	}
}

func TestCalculateConvergenceMonotonic(t *testing.T) {
	state := entity.NewTimelineState()
	state.RecordPublish(entity.BranchUtopia, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	state.RecordPublish(entity.BranchDystopia, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))

	prev := -1.0
	for d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC); d.Year() < 2031; d = d.AddDate(0, 1, 0) {
		v := CalculateConvergence(state, d)
		require.GreaterOrEqual(t, v, prev, "convergence regressed at %s", d)
		prev = v
	}
}

func TestCalculateConvergenceEndpoints(t *testing.T) {
	t.Run("before first point with no publishes", func(t *testing.T) {
		v := CalculateConvergence(entity.NewTimelineState(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 0.0, v)
	})

	t.Run("past all points with balanced branches", func(t *testing.T) {
		state := entity.NewTimelineState()
		state.RecordPublish(entity.BranchUtopia, time.Now())
		state.RecordPublish(entity.BranchDystopia, time.Now())
		v := CalculateConvergence(state, time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 100.0, v)
	})

	t.Run("past all points fully imbalanced stays below cap", func(t *testing.T) {
		state := entity.NewTimelineState()
		for i := 0; i < 10; i++ {
			state.RecordPublish(entity.BranchUtopia, time.Now())
		}
		v := CalculateConvergence(state, time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 95.0, v)
	})

	t.Run("nil state gets no bonus", func(t *testing.T) {
		v := CalculateConvergence(nil, time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, 95.0, v)
	})
}

func TestBalanceBonus(t *testing.T) {
	t.Run("balance increases the bonus", func(t *testing.T) {
		balanced := entity.NewTimelineState()
		balanced.RecordPublish(entity.BranchUtopia, time.Now())
		balanced.RecordPublish(entity.BranchDystopia, time.Now())

		skewed := entity.NewTimelineState()
		skewed.RecordPublish(entity.BranchUtopia, time.Now())
		skewed.RecordPublish(entity.BranchUtopia, time.Now())

		assert.Greater(t, balanceBonusFor(balanced), balanceBonusFor(skewed))
	})

	t.Run("no publishes means no bonus", func(t *testing.T) {
		assert.Equal(t, 0.0, balanceBonusFor(entity.NewTimelineState()))
	})
}
