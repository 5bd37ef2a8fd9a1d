package statefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeline-press/internal/domain/entity"
)

func TestStoreLoad(t *testing.T) {
	t.Run("missing file synthesizes zero state", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "state.json"))
		state, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, 0, state.TotalArticlesPublished)
		assert.Contains(t, state.Branches, entity.BranchUtopia)
		assert.Contains(t, state.Branches, entity.BranchDystopia)
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
		_, err := NewStore(path).Load()
		assert.Error(t, err)
	})

	t.Run("nil branches map is repaired", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"total_articles_published": 3}`), 0o644))
		state, err := NewStore(path).Load()
		require.NoError(t, err)
		assert.Equal(t, 3, state.TotalArticlesPublished)
		assert.NotNil(t, state.Branches)
	})
}

func TestStoreSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewStore(path)

	state := entity.NewTimelineState()
	state.RecordPublish(entity.BranchDystopia, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	state.ConvergencePercent = 42.5

	require.NoError(t, store.Save(state))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, state.TotalArticlesPublished, loaded.TotalArticlesPublished)
	assert.Equal(t, state.ConvergencePercent, loaded.ConvergencePercent)
	assert.Equal(t, 1, loaded.BranchCount(entity.BranchDystopia))
}

func TestStoreOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)

	first := entity.NewTimelineState()
	first.RecordPublish(entity.BranchUtopia, time.Now())
	require.NoError(t, store.Save(first))

	second := entity.NewTimelineState()
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.TotalArticlesPublished)
}

func TestStoreRaw(t *testing.T) {
	t.Run("missing file yields zero state json", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "state.json"))
		data, err := store.Raw()
		require.NoError(t, err)
		assert.Contains(t, string(data), "total_articles_published")
	})

	t.Run("existing file returned verbatim", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"total_articles_published": 9}`), 0o644))
		data, err := NewStore(path).Raw()
		require.NoError(t, err)
		assert.JSONEq(t, `{"total_articles_published": 9}`, string(data))
	})
}
