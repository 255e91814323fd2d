package clone

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acerrors "github.com/RevREB/auto-claude/internal/errors"
	"github.com/RevREB/auto-claude/testhelpers"
)

func newTestManager(t *testing.T, projectDir string) *Manager {
	t.Helper()
	m := NewManager(projectDir, filepath.Join(t.TempDir(), "clones"))
	return m
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("clones the project and creates the task branch", func(t *testing.T) {
		repo, remoteDir := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		clonePath, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.NoError(t, err)
		require.DirExists(t, clonePath)

		cloneRepo := &testhelpers.GitRepo{Dir: clonePath}
		current, err := cloneRepo.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "feature/task-1", current)

		meta, err := readMetadata(clonePath)
		require.NoError(t, err)
		assert.Equal(t, "task-1", meta.TaskID)
		assert.Equal(t, "feature/task-1", meta.Branch)
		assert.Equal(t, remoteDir, meta.RemoteURL)
		assert.Equal(t, repo.Dir, meta.ProjectDir)
		assert.False(t, meta.CreatedAt.IsZero())
	})

	t.Run("is idempotent per task", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		first, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.NoError(t, err)
		second, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("distinct tasks get distinct clones", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		first, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.NoError(t, err)
		second, err := mgr.Create(ctx, "task-2", "feature/task-2", "main")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
		require.DirExists(t, first)
		require.DirExists(t, second)
	})

	t.Run("checks out the branch from the remote when it exists there", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/shared"))
		require.NoError(t, repo.CreateChangeAndCommit("shared work", "shared"))
		require.NoError(t, repo.Git("push", "origin", "feature/shared"))
		mgr := newTestManager(t, repo.Dir)

		clonePath, err := mgr.Create(ctx, "task-1", "feature/shared", "main")
		require.NoError(t, err)

		cloneRepo := &testhelpers.GitRepo{Dir: clonePath}
		current, err := cloneRepo.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "feature/shared", current)

		wantRev, err := repo.Rev("feature/shared")
		require.NoError(t, err)
		gotRev, err := cloneRepo.Rev("HEAD")
		require.NoError(t, err)
		assert.Equal(t, wantRev, gotRev)
	})

	t.Run("fails without a remote", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		mgr := newTestManager(t, repo.Dir)

		_, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the clone info", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		clonePath, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.NoError(t, err)

		info, err := mgr.Get("task-1")
		require.NoError(t, err)
		assert.Equal(t, clonePath, info.ClonePath)
		assert.Equal(t, "feature/task-1", info.Branch)
		assert.True(t, info.IsActive)
	})

	t.Run("unknown task yields ErrCloneNotFound", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		_, err := mgr.Get("task-ghost")
		require.ErrorIs(t, err, acerrors.ErrCloneNotFound)
	})
}

func TestPushAndCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes the task branch to the remote", func(t *testing.T) {
		repo, remoteDir := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		clonePath, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.NoError(t, err)

		cloneRepo := &testhelpers.GitRepo{Dir: clonePath}
		require.NoError(t, cloneRepo.Git("config", "user.name", "Test User"))
		require.NoError(t, cloneRepo.Git("config", "user.email", "test@example.com"))
		require.NoError(t, cloneRepo.CreateChangeAndCommit("task work", "task"))

		require.True(t, mgr.Push(ctx, "task-1", false))

		remote := &testhelpers.GitRepo{Dir: remoteDir}
		remoteRev, err := remote.GitOutput("rev-parse", "refs/heads/feature/task-1")
		require.NoError(t, err)
		wantRev, err := cloneRepo.Rev("HEAD")
		require.NoError(t, err)
		assert.Equal(t, wantRev, remoteRev)
	})

	t.Run("push for an unknown task returns false", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		assert.False(t, mgr.Push(ctx, "task-ghost", false))
	})

	t.Run("push and cleanup removes the clone after a successful push", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		clonePath, err := mgr.Create(ctx, "task-1", "feature/task-1", "main")
		require.NoError(t, err)

		cloneRepo := &testhelpers.GitRepo{Dir: clonePath}
		require.NoError(t, cloneRepo.Git("config", "user.name", "Test User"))
		require.NoError(t, cloneRepo.Git("config", "user.email", "test@example.com"))
		require.NoError(t, cloneRepo.CreateChangeAndCommit("task work", "task"))

		require.True(t, mgr.PushAndCleanup(ctx, "task-1", false))
		assert.NoDirExists(t, clonePath)
	})

	t.Run("cleanup of a missing clone succeeds", func(t *testing.T) {
		repo, _ := testhelpers.NewTestRepoWithRemote(t)
		mgr := newTestManager(t, repo.Dir)

		gone, err := mgr.Cleanup("task-ghost")
		require.NoError(t, err)
		assert.True(t, gone)
	})
}

func TestSweepOrphans(t *testing.T) {
	writeClone := func(t *testing.T, baseDir, name string, createdAt time.Time) string {
		t.Helper()
		clonePath := filepath.Join(baseDir, name)
		require.NoError(t, os.MkdirAll(clonePath, 0o755))
		require.NoError(t, writeMetadata(clonePath, Metadata{
			TaskID:    name,
			CreatedAt: createdAt,
		}))
		return clonePath
	}

	t.Run("removes only clones strictly older than the cutoff", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		baseDir := t.TempDir()
		mgr := NewManager(t.TempDir(), baseDir)
		mgr.now = func() time.Time { return now }

		old := writeClone(t, baseDir, "task-old-abc", now.Add(-DefaultMaxAge-time.Second))
		atCutoff := writeClone(t, baseDir, "task-edge-abc", now.Add(-DefaultMaxAge))
		fresh := writeClone(t, baseDir, "task-new-abc", now.Add(-time.Hour))

		removed, err := mgr.SweepOrphans(DefaultMaxAge)
		require.NoError(t, err)

		assert.Equal(t, []string{old}, removed)
		assert.NoDirExists(t, old)
		assert.DirExists(t, atCutoff)
		assert.DirExists(t, fresh)
	})

	t.Run("falls back to directory mtime without a marker", func(t *testing.T) {
		now := time.Now()
		baseDir := t.TempDir()
		mgr := NewManager(t.TempDir(), baseDir)
		mgr.now = func() time.Time { return now.Add(48 * time.Hour) }

		unmarked := filepath.Join(baseDir, "task-unmarked-abc")
		require.NoError(t, os.MkdirAll(unmarked, 0o755))

		removed, err := mgr.SweepOrphans(DefaultMaxAge)
		require.NoError(t, err)
		assert.Equal(t, []string{unmarked}, removed)
	})

	t.Run("missing base directory is not an error", func(t *testing.T) {
		mgr := NewManager(t.TempDir(), filepath.Join(t.TempDir(), "does-not-exist"))
		removed, err := mgr.SweepOrphans(0)
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}
