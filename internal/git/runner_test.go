package git_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	acerrors "github.com/RevREB/auto-claude/internal/errors"
	"github.com/RevREB/auto-claude/internal/git"
	"github.com/RevREB/auto-claude/testhelpers"
)

func TestCommandRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("captures stdout and exit code", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		runner := git.NewCommandRunner(repo.Dir)

		res, err := runner.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
		require.NoError(t, err)
		assert.True(t, res.Ok())
		assert.Equal(t, "main", strings.TrimSpace(res.Stdout))
	})

	t.Run("nonzero exit is reported through the result", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		runner := git.NewCommandRunner(repo.Dir)

		res, err := runner.Run(ctx, "rev-parse", "--verify", "no-such-ref")
		require.NoError(t, err)
		assert.False(t, res.Ok())
		assert.NotEmpty(t, res.Stderr)
	})

	t.Run("strict mode converts nonzero exit into a typed error", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		runner := git.NewCommandRunner(repo.Dir)

		_, err := runner.RunStrict(ctx, "rev-parse", "--verify", "no-such-ref")
		require.Error(t, err)
		assert.True(t, errors.Is(err, acerrors.ErrGitCommandFailed))

		var cmdErr *acerrors.GitCommandError
		require.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, []string{"rev-parse", "--verify", "no-such-ref"}, cmdErr.Args)
	})

	t.Run("configured timeout bounds each invocation", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		runner := git.NewCommandRunner(repo.Dir)
		runner.Timeout = time.Nanosecond

		_, err := runner.Run(ctx, "status")
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("strict mode trims output", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		runner := git.NewCommandRunner(repo.Dir)

		out, err := runner.RunStrict(ctx, "rev-parse", "--abbrev-ref", "HEAD")
		require.NoError(t, err)
		assert.Equal(t, "main", out)
	})
}

func TestBranchOps(t *testing.T) {
	ctx := context.Background()

	t.Run("create, rename and delete branches", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		runner := git.NewCommandRunner(repo.Dir)

		require.NoError(t, git.CreateBranch(ctx, runner, "feature/one", "main"))
		exists, err := git.BranchExists(ctx, runner, "feature/one")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, git.RenameBranch(ctx, runner, "feature/one", "feature/two"))
		exists, err = git.BranchExists(ctx, runner, "feature/one")
		require.NoError(t, err)
		assert.False(t, exists)

		require.NoError(t, git.DeleteBranch(ctx, runner, "feature/two"))
	})

	t.Run("branch guard restores the original branch", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		runner := git.NewCommandRunner(repo.Dir)

		guard := git.AcquireBranchGuard(ctx, runner)
		assert.Equal(t, "main", guard.Original())

		require.NoError(t, git.CreateAndCheckoutBranch(ctx, runner, "feature/tmp", ""))
		require.NoError(t, guard.Restore(ctx))

		current, err := git.CurrentBranch(ctx, runner)
		require.NoError(t, err)
		assert.Equal(t, "main", current)
	})
}

func TestRepositoryIntrospection(t *testing.T) {
	t.Run("lists branches and resolves ancestry", func(t *testing.T) {
		repo := testhelpers.NewTestRepo(t)
		require.NoError(t, repo.CreateBranch("dev"))
		require.NoError(t, repo.CreateAndCheckoutBranch("feature/x"))
		require.NoError(t, repo.CreateChangeAndCommit("change", "x"))

		r, err := git.OpenRepository(repo.Dir)
		require.NoError(t, err)

		names, err := r.BranchNames()
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"main", "dev", "feature/x"}, names)

		current, err := r.CurrentBranch()
		require.NoError(t, err)
		assert.Equal(t, "feature/x", current)

		isAncestor, err := r.IsAncestor("dev", "feature/x")
		require.NoError(t, err)
		assert.True(t, isAncestor)

		isAncestor, err = r.IsAncestor("feature/x", "dev")
		require.NoError(t, err)
		assert.False(t, isAncestor)

		base, err := r.MergeBase("dev", "feature/x")
		require.NoError(t, err)
		devRev, err := repo.Rev("dev")
		require.NoError(t, err)
		assert.Equal(t, devRev, base)
	})
}
