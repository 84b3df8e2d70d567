package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireBlocksSecondLiveHolder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := NewStore(dir)
	require.NoError(t, first.Acquire())
	defer first.Release()

	// The lock holds our own live PID, so a second acquire must refuse.
	second := NewStore(dir)
	err := second.Acquire()
	assert.ErrorIs(t, err, ErrConcurrentRun)
}

func TestAcquireBreaksStaleLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A PID far above any real process: the previous holder is dead.
	lock := filepath.Join(dir, "cleanup.lock")
	require.NoError(t, os.WriteFile(lock, []byte(fmt.Sprintf("%d\n", 1<<22+12345)), 0o644))

	store := NewStore(dir)
	require.NoError(t, store.Acquire())
	store.Release()
}

func TestAcquireBreaksUnreadableLock(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lock := filepath.Join(dir, "cleanup.lock")
	require.NoError(t, os.WriteFile(lock, []byte("garbage\n"), 0o644))

	store := NewStore(dir)
	require.NoError(t, store.Acquire())
	store.Release()
}

func TestReleaseWithoutAcquire(t *testing.T) {
	t.Parallel()

	NewStore(t.TempDir()).Release()
}

func TestAcquireReleaseCycle(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Acquire())
	store.Release()
	require.NoError(t, store.Acquire())
	store.Release()
}
