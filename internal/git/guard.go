package git

import (
	"context"
)

// BranchGuard captures the branch checked out at acquisition time and
// restores it later. Merge and release operations temporarily check out
// other branches in the shared project directory; the guard guarantees the
// caller's branch comes back on every exit path.
type BranchGuard struct {
	runner   Runner
	original string
}

// AcquireBranchGuard records the current branch. A detached HEAD records an
// empty original and Restore becomes a no-op.
func AcquireBranchGuard(ctx context.Context, r Runner) *BranchGuard {
	original, err := CurrentBranch(ctx, r)
	if err != nil || original == "HEAD" {
		original = ""
	}
	return &BranchGuard{runner: r, original: original}
}

// Restore checks the original branch back out. Intended for defer; errors
// are returned so callers that care can log them.
func (g *BranchGuard) Restore(ctx context.Context) error {
	if g.original == "" {
		return nil
	}
	current, err := CurrentBranch(ctx, g.runner)
	if err == nil && current == g.original {
		return nil
	}
	return CheckoutBranch(ctx, g.runner, g.original)
}

// Original returns the branch the guard will restore.
func (g *BranchGuard) Original() string {
	return g.original
}
