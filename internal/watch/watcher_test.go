package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"minivc/internal/repo"
)

func setupWatched(t *testing.T) (*repo.Repository, string, func()) {
	root, err := os.MkdirTemp("", "watch-test")
	require.NoError(t, err)

	require.NoError(t, repo.Init(root))

	r, err := repo.Open(root, zap.NewNop())
	require.NoError(t, err)

	return r, root, func() { os.RemoveAll(root) }
}

func stagedSHA(t *testing.T, r *repo.Repository, path string) string {
	entries, err := r.Staged()
	require.NoError(t, err)
	for _, e := range entries {
		if e.Path == path {
			return e.SHA
		}
	}
	return ""
}

func TestWatcherRestagesOnWrite(t *testing.T) {
	r, root, cleanup := setupWatched(t)
	defer cleanup()

	target := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))

	entry, err := r.Stage("a.txt")
	require.NoError(t, err)

	w, err := New(r, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(target, []byte("v2"), 0644))

	require.Eventually(t, func() bool {
		sha := stagedSHA(t, r, "a.txt")
		return sha != "" && sha != entry.SHA
	}, 5*time.Second, 50*time.Millisecond, "staged fingerprint should track the file")
}

func TestWatcherIgnoresUnstagedFiles(t *testing.T) {
	r, root, cleanup := setupWatched(t)
	defer cleanup()

	require.NoError(t, os.WriteFile(filepath.Join(root, "staged.txt"), []byte("s"), 0644))
	_, err := r.Stage("staged.txt")
	require.NoError(t, err)

	w, err := New(r, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	// A new, never-staged file in a watched directory must not appear
	// in the index.
	require.NoError(t, os.WriteFile(filepath.Join(root, "bystander.txt"), []byte("b"), 0644))

	time.Sleep(200 * time.Millisecond)

	entries, err := r.Staged()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "staged.txt", entries[0].Path)
}

// A commit clears the staging index; writes after that must not sneak
// the cleared path back in.
func TestWatcherRespectsCommitClear(t *testing.T) {
	r, root, cleanup := setupWatched(t)
	defer cleanup()

	target := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(target, []byte("v1"), 0644))
	_, err := r.Stage("a.txt")
	require.NoError(t, err)

	w, err := New(r, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	_, err = r.Commit("snapshot")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(target, []byte("v2"), 0644))

	time.Sleep(200 * time.Millisecond)

	entries, err := r.Staged()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWatcherClose(t *testing.T) {
	r, root, cleanup := setupWatched(t)
	defer cleanup()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0644))
	_, err := r.Stage("a.txt")
	require.NoError(t, err)

	w, err := New(r, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}
