package git

import (
	"context"
	"fmt"
	"strings"

	acerrors "github.com/RevREB/auto-claude/internal/errors"
)

// DefaultRemote is the remote used when none is configured.
const DefaultRemote = "origin"

// RemoteURL resolves the fetch URL of a remote.
func RemoteURL(ctx context.Context, r Runner, remote string) (string, error) {
	url, err := r.RunStrict(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("%w: %s", acerrors.ErrNoRemote, remote)
	}
	return url, nil
}

// HasRemote reports whether the repository has the named remote configured.
func HasRemote(ctx context.Context, r Runner, remote string) bool {
	res, err := r.Run(ctx, "remote", "get-url", remote)
	return err == nil && res.Ok()
}

// Fetch fetches a branch from the remote. Missing remote branches are not
// an error; the caller decides whether that matters.
func Fetch(ctx context.Context, r Runner, remote, branchName string) error {
	res, err := r.Run(ctx, "fetch", remote, branchName)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return acerrors.NewGitCommandError("git", []string{"fetch", remote, branchName}, res.Stdout, res.Stderr, nil)
	}
	return nil
}

// PullFastForward fetches and fast-forwards the currently checked out
// branch. Returns false when the merge was not fast-forwardable.
func PullFastForward(ctx context.Context, r Runner, remote, branchName string) (bool, error) {
	if err := Fetch(ctx, r, remote, branchName); err != nil {
		// No remote branch yet; nothing to pull.
		return true, nil
	}
	res, err := r.Run(ctx, "merge", "--ff-only", remote+"/"+branchName)
	if err != nil {
		return false, err
	}
	return res.Ok(), nil
}

// PushBranch pushes a branch to the remote, optionally with --force.
func PushBranch(ctx context.Context, r Runner, remote, branchName string, force bool) error {
	args := []string{"push", "-u", remote}
	if force {
		args = append(args, "--force")
	}
	args = append(args, branchName)

	res, err := r.Run(ctx, args...)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("failed to push branch %s: %s", branchName, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// DeleteRemoteBranch deletes a branch on the remote. Absence is not an error.
func DeleteRemoteBranch(ctx context.Context, r Runner, remote, branchName string) error {
	res, err := r.Run(ctx, "push", remote, "--delete", branchName)
	if err != nil {
		return err
	}
	if !res.Ok() && !strings.Contains(res.Stderr, "remote ref does not exist") {
		return fmt.Errorf("failed to delete remote branch %s: %s", branchName, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// BranchExistsOnRemote checks whether the remote has a branch with this name.
func BranchExistsOnRemote(ctx context.Context, r Runner, remote, branchName string) (bool, error) {
	out, err := r.RunStrict(ctx, "ls-remote", "--heads", remote, branchName)
	if err != nil {
		return false, err
	}
	return out != "", nil
}
