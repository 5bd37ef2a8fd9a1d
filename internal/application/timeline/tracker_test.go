package timeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeline-press/internal/domain/entity"
	"timeline-press/internal/infrastructure/persistence/statefile"
)

func TestTrackerRecordPublish(t *testing.T) {
	store := statefile.NewStore(filepath.Join(t.TempDir(), "state.json"))
	tracker := NewTracker(store)

	t.Run("fresh state starts empty", func(t *testing.T) {
		state, err := tracker.Load()
		require.NoError(t, err)
		assert.Equal(t, 0, state.TotalArticlesPublished)
	})

	t.Run("publish increments and persists", func(t *testing.T) {
		at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		state, err := tracker.RecordPublish(entity.BranchUtopia, at)
		require.NoError(t, err)
		assert.Equal(t, 1, state.TotalArticlesPublished)
		assert.Equal(t, 1, state.BranchCount(entity.BranchUtopia))
		assert.Equal(t, 0, state.BranchCount(entity.BranchDystopia))

		reloaded, err := tracker.Load()
		require.NoError(t, err)
		assert.Equal(t, 1, reloaded.TotalArticlesPublished)
		require.NotNil(t, reloaded.Branches[entity.BranchUtopia].LastPublishedAt)
		assert.True(t, at.Equal(*reloaded.Branches[entity.BranchUtopia].LastPublishedAt))
	})

	t.Run("total only grows", func(t *testing.T) {
		prev, err := tracker.Load()
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			branch := entity.BranchUtopia
			if i%2 == 0 {
				branch = entity.BranchDystopia
			}
			state, err := tracker.RecordPublish(branch, time.Now())
			require.NoError(t, err)
			require.Greater(t, state.TotalArticlesPublished, prev.TotalArticlesPublished)
			prev = state
		}
	})

	t.Run("convergence stored within bounds", func(t *testing.T) {
		state, err := tracker.Load()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, state.ConvergencePercent, 0.0)
		assert.LessOrEqual(t, state.ConvergencePercent, 100.0)
	})
}
