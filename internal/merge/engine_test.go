package merge_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acerrors "github.com/RevREB/auto-claude/internal/errors"
	"github.com/RevREB/auto-claude/internal/merge"
	"github.com/RevREB/auto-claude/testhelpers"
)

func TestPreview(t *testing.T) {
	ctx := context.Background()

	t.Run("reports stats for a clean merge without mutating anything", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/clean"))
		require.NoError(t, repo.CreateChangeAndCommit("one", "a"))
		require.NoError(t, repo.CreateChangeAndCommit("two", "b"))
		require.NoError(t, repo.CheckoutBranch("main"))

		mainBefore, err := repo.Rev("main")
		require.NoError(t, err)

		engine := merge.NewEngine(repo.Dir)
		preview, err := engine.Preview(ctx, "feature/clean", "main")
		require.NoError(t, err)

		assert.True(t, preview.CanMerge)
		assert.Equal(t, 2, preview.CommitsAhead)
		assert.Equal(t, 2, preview.FilesChanged)
		assert.Empty(t, preview.Conflicts)

		mainAfter, err := repo.Rev("main")
		require.NoError(t, err)
		assert.Equal(t, mainBefore, mainAfter)

		current, err := repo.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "main", current)
	})

	t.Run("detects conflicts without touching the working tree", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/conflicting"))
		require.NoError(t, repo.CreateChangeAndCommit("feature version", "shared"))
		require.NoError(t, repo.CheckoutBranch("main"))
		require.NoError(t, repo.CreateChangeAndCommit("main version", "shared"))

		mainBefore, err := repo.Rev("main")
		require.NoError(t, err)

		engine := merge.NewEngine(repo.Dir)
		preview, err := engine.Preview(ctx, "feature/conflicting", "main")
		require.NoError(t, err)

		assert.False(t, preview.CanMerge)
		require.Len(t, preview.Conflicts, 1)
		assert.Equal(t, "shared_test.txt", preview.Conflicts[0].File)

		mainAfter, err := repo.Rev("main")
		require.NoError(t, err)
		assert.Equal(t, mainBefore, mainAfter)
	})

	t.Run("fails on a missing branch", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		engine := merge.NewEngine(repo.Dir)

		_, err := engine.Preview(ctx, "feature/ghost", "main")
		require.ErrorIs(t, err, acerrors.ErrBranchNotFound)
		assert.Contains(t, err.Error(), "feature/ghost")
	})
}

func TestMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("merges cleanly and restores the original branch", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		require.NoError(t, repo.CreateBranch("dev"))
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/work"))
		require.NoError(t, repo.CreateChangeAndCommit("work", "work"))

		engine := merge.NewEngine(repo.Dir)
		result, err := engine.Merge(ctx, merge.Options{Source: "feature/work", Target: "dev"})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.False(t, result.HadConflicts)
		assert.NotEmpty(t, result.CommitSHA)
		assert.Contains(t, result.MergedFiles, "work_test.txt")

		current, err := repo.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "feature/work", current)

		devRev, err := repo.Rev("dev")
		require.NoError(t, err)
		assert.Equal(t, result.CommitSHA, devRev)
	})

	t.Run("aborts on conflict leaving the target untouched", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/conflicting"))
		require.NoError(t, repo.CreateChangeAndCommit("feature version", "shared"))
		require.NoError(t, repo.CheckoutBranch("main"))
		require.NoError(t, repo.CreateChangeAndCommit("main version", "shared"))
		require.NoError(t, repo.CheckoutBranch("feature/conflicting"))

		mainBefore, err := repo.Rev("main")
		require.NoError(t, err)

		engine := merge.NewEngine(repo.Dir)
		result, err := engine.Merge(ctx, merge.Options{Source: "feature/conflicting", Target: "main"})
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.True(t, result.HadConflicts)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, "shared_test.txt", result.Conflicts[0].File)

		mainAfter, err := repo.Rev("main")
		require.NoError(t, err)
		assert.Equal(t, mainBefore, mainAfter)

		current, err := repo.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "feature/conflicting", current)
	})

	t.Run("a refused merge is not reported as a conflict", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/blocked"))
		require.NoError(t, repo.CreateChangeAndCommit("feature change", "init"))
		require.NoError(t, repo.CheckoutBranch("main"))
		// An uncommitted change to the same file makes git refuse the merge
		// before any conflict can arise.
		require.NoError(t, os.WriteFile(filepath.Join(repo.Dir, "init_test.txt"), []byte("local edit"), 0o600))

		engine := merge.NewEngine(repo.Dir)
		result, err := engine.Merge(ctx, merge.Options{Source: "feature/blocked", Target: "main"})
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.False(t, result.HadConflicts)
		assert.Empty(t, result.Conflicts)
		assert.Contains(t, result.Message, "failed")
	})

	t.Run("no-commit leaves the staged merge on the target", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		require.NoError(t, repo.CreateBranch("dev"))
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/staged"))
		require.NoError(t, repo.CreateChangeAndCommit("staged", "staged"))

		engine := merge.NewEngine(repo.Dir)
		result, err := engine.Merge(ctx, merge.Options{Source: "feature/staged", Target: "dev", NoCommit: true})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Contains(t, result.MergedFiles, "staged_test.txt")

		current, err := repo.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "dev", current)
	})

	t.Run("missing source is a structured failure, not an error", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)

		engine := merge.NewEngine(repo.Dir)
		result, err := engine.Merge(ctx, merge.Options{Source: "feature/ghost", Target: "main"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "feature/ghost")
	})

	t.Run("pushes the merged target when a remote exists", func(t *testing.T) {
		repo, remoteDir := testhelpers.NewTestRepoWithRemote(t)
		require.NoError(t, repo.CreateBranch("dev"))
		require.NoError(t, repo.Git("push", "origin", "dev"))
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/pushed"))
		require.NoError(t, repo.CreateChangeAndCommit("pushed", "pushed"))

		engine := merge.NewEngine(repo.Dir)
		result, err := engine.Merge(ctx, merge.Options{Source: "feature/pushed", Target: "dev"})
		require.NoError(t, err)
		require.True(t, result.Success)

		remote := &testhelpers.GitRepo{Dir: remoteDir}
		remoteRev, err := remote.GitOutput("rev-parse", "refs/heads/dev")
		require.NoError(t, err)
		assert.Equal(t, result.CommitSHA, remoteRev)
	})
}

func TestTargetFor(t *testing.T) {
	engine := merge.NewEngine(t.TempDir())

	assert.Equal(t, "feature/auth", engine.TargetFor("feature/auth/subtask-1"))
	assert.Equal(t, "dev", engine.TargetFor("feature/auth"))
	assert.Equal(t, "main", engine.TargetFor("release/1.2.0"))
	assert.Equal(t, "main", engine.TargetFor("hotfix/fix-crash"))
	assert.Equal(t, "", engine.TargetFor("dev"))
}
