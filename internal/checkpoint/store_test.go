package checkpoint

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	st := NewState([]string{"cache", "logs"})
	st.SetStatus("/home/u/.cache/app", StatusDone, "")
	st.SetStatus("/home/u/.cache/other", StatusFailed, "permission denied")
	st.SetStatus("/home/u/Library/Logs/x", StatusPending, "")
	st.BytesReclaimed = 4096
	st.ItemsProcessed = 2

	require.NoError(t, store.Save(st))
	assert.True(t, store.Exists())
	assert.False(t, st.LastCheckpointAt.IsZero(), "Save stamps the flush time")

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, st.SessionID, loaded.SessionID)
	assert.Equal(t, []string{"cache", "logs"}, loaded.CategoryFilter)
	assert.Equal(t, int64(4096), loaded.BytesReclaimed)
	assert.Equal(t, 2, loaded.ItemsProcessed)
	assert.Equal(t, ItemStatus{Code: StatusFailed, Reason: "permission denied"},
		loaded.Status("/home/u/.cache/other"))
	assert.Equal(t, 1, loaded.PendingCount())
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCorruptPreservesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, store.Exists(), "corrupt file renamed aside")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.Contains(entries[0].Name(), ".corrupt-"),
		"evidence preserved, not deleted")
}

func TestLoadEmptySessionTreatedAsCorrupt(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"version":1,"items":{}}`), 0o644))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, store.Exists())
}

func TestLoadNewerVersionIncompatible(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	raw := `{"version":99,"session_id":"abc","items":{}}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o644))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.True(t, store.Exists(), "incompatible file is left in place")
}

func TestLoadUnknownCodeDegradesToPending(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	raw := `{"version":1,"session_id":"abc","items":{"/a":{"code":"quarantined"},"/b":{"code":"done"}}}`
	require.NoError(t, os.WriteFile(store.Path(), []byte(raw), 0o644))

	st, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusPending, st.Status("/a").Code, "work replayed rather than lost")
	assert.Equal(t, StatusDone, st.Status("/b").Code)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(NewState(nil)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(store.Path()), entries[0].Name())
}

func TestClearIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Clear(), "clearing nothing is fine")

	require.NoError(t, store.Save(NewState(nil)))
	require.NoError(t, store.Clear())
	assert.False(t, store.Exists())
	require.NoError(t, store.Clear())
}

func TestStatusDefaultsToPending(t *testing.T) {
	t.Parallel()

	st := NewState(nil)
	assert.Equal(t, StatusPending, st.Status("/never/seen").Code)
	assert.Equal(t, 0, st.PendingCount(), "unknown paths are not counted")
}

func TestCountByCode(t *testing.T) {
	t.Parallel()

	st := NewState(nil)
	st.SetStatus("/a", StatusDone, "")
	st.SetStatus("/b", StatusDone, "")
	st.SetStatus("/c", StatusSkipped, "")
	st.SetStatus("/d", StatusPending, "")

	counts := st.CountByCode()
	assert.Equal(t, 2, counts[StatusDone])
	assert.Equal(t, 1, counts[StatusSkipped])
	assert.Equal(t, 1, st.PendingCount())
}

func TestSessionIDsAreUnique(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, NewState(nil).SessionID, NewState(nil).SessionID)
}
