package git

import (
	"context"
	"fmt"
)

// CurrentBranch returns the branch HEAD points at, via the runner.
func CurrentBranch(ctx context.Context, r Runner) (string, error) {
	name, err := r.RunStrict(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return name, nil
}

// CheckoutBranch checks out an existing branch
func CheckoutBranch(ctx context.Context, r Runner, branchName string) error {
	if _, err := r.RunStrict(ctx, "checkout", branchName); err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}
	return nil
}

// CreateBranch creates a branch pointing at startPoint without checking it out.
func CreateBranch(ctx context.Context, r Runner, branchName, startPoint string) error {
	args := []string{"branch", branchName}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	if _, err := r.RunStrict(ctx, args...); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branchName, err)
	}
	return nil
}

// CreateAndCheckoutBranch creates and checks out a new branch from startPoint.
func CreateAndCheckoutBranch(ctx context.Context, r Runner, branchName, startPoint string) error {
	args := []string{"checkout", "-b", branchName}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	if _, err := r.RunStrict(ctx, args...); err != nil {
		return fmt.Errorf("failed to create and checkout branch %s: %w", branchName, err)
	}
	return nil
}

// DeleteBranch deletes a local branch
func DeleteBranch(ctx context.Context, r Runner, branchName string) error {
	if _, err := r.RunStrict(ctx, "branch", "-D", branchName); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", branchName, err)
	}
	return nil
}

// RenameBranch renames a branch
func RenameBranch(ctx context.Context, r Runner, oldName, newName string) error {
	if _, err := r.RunStrict(ctx, "branch", "-m", oldName, newName); err != nil {
		return fmt.Errorf("failed to rename branch %s to %s: %w", oldName, newName, err)
	}
	return nil
}

// BranchExists reports whether a local branch exists, via the runner.
func BranchExists(ctx context.Context, r Runner, branchName string) (bool, error) {
	res, err := r.Run(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+branchName)
	if err != nil {
		return false, err
	}
	return res.Ok(), nil
}

// Revision resolves a ref to its commit hash, via the runner.
func Revision(ctx context.Context, r Runner, ref string) (string, error) {
	sha, err := r.RunStrict(ctx, "rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", ref, err)
	}
	return sha, nil
}

// MergeAbort aborts an in-progress merge
func MergeAbort(ctx context.Context, r Runner) error {
	if _, err := r.RunStrict(ctx, "merge", "--abort"); err != nil {
		return fmt.Errorf("merge abort failed: %w", err)
	}
	return nil
}

// UnmergedFiles returns paths with unresolved merge conflicts.
func UnmergedFiles(ctx context.Context, r Runner) ([]string, error) {
	return RunLines(ctx, r, "diff", "--name-only", "--diff-filter=U")
}

// CommitFiles returns the paths a commit changed relative to its first
// parent. Plain diff-tree prints nothing for merge commits, so the
// comparison is explicit.
func CommitFiles(ctx context.Context, r Runner, rev string) ([]string, error) {
	return RunLines(ctx, r, "diff", "--name-only", rev+"^1", rev)
}

// CommitPaths stages and commits only the given paths. Unrelated changes
// elsewhere in the working tree or index are left untouched.
func CommitPaths(ctx context.Context, r Runner, message string, paths ...string) error {
	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := r.RunStrict(ctx, addArgs...); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	commitArgs := append([]string{"commit", "-m", message, "--"}, paths...)
	if _, err := r.RunStrict(ctx, commitArgs...); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
