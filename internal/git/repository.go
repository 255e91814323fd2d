package git

import (
	"fmt"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Repository wraps a go-git repository for read-only introspection.
// Detection and preview code paths use this instead of the subprocess
// runner so they can never touch the working tree or index.
type Repository struct {
	*gogit.Repository
}

// OpenRepository opens a git repository at the given path
func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", absPath, err)
	}

	return &Repository{Repository: repo}, nil
}

// BranchNames returns all local branch names.
func (r *Repository) BranchNames() ([]string, error) {
	branches, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to get branches: %w", err)
	}

	var names []string
	err = branches.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate branches: %w", err)
	}

	return names, nil
}

// CurrentBranch returns the branch HEAD points at.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}

	return head.Name().Short(), nil
}

// BranchExists reports whether a local branch with the given name exists.
func (r *Repository) BranchExists(name string) (bool, error) {
	names, err := r.BranchNames()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// Revision resolves a branch name to its commit hash.
func (r *Repository) Revision(branchName string) (string, error) {
	ref, err := r.Reference(plumbing.NewBranchReferenceName(branchName), true)
	if err != nil {
		return "", fmt.Errorf("failed to resolve branch %s: %w", branchName, err)
	}
	return ref.Hash().String(), nil
}

// IsAncestor checks if the first branch's tip is an ancestor of the second's.
func (r *Repository) IsAncestor(ancestor, descendant string) (bool, error) {
	ancestorHash, err := r.Revision(ancestor)
	if err != nil {
		return false, fmt.Errorf("failed to resolve ancestor ref: %w", err)
	}

	descendantHash, err := r.Revision(descendant)
	if err != nil {
		return false, fmt.Errorf("failed to resolve descendant ref: %w", err)
	}

	if ancestorHash == descendantHash {
		return true, nil
	}

	ancestorCommit, err := r.CommitObject(plumbing.NewHash(ancestorHash))
	if err != nil {
		return false, fmt.Errorf("failed to get ancestor commit: %w", err)
	}

	descendantCommit, err := r.CommitObject(plumbing.NewHash(descendantHash))
	if err != nil {
		return false, fmt.Errorf("failed to get descendant commit: %w", err)
	}

	return ancestorCommit.IsAncestor(descendantCommit)
}

// MergeBase returns the merge base commit of two branches.
func (r *Repository) MergeBase(branch1, branch2 string) (string, error) {
	hash1, err := r.Revision(branch1)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", branch1, err)
	}
	hash2, err := r.Revision(branch2)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", branch2, err)
	}

	commit1, err := r.CommitObject(plumbing.NewHash(hash1))
	if err != nil {
		return "", fmt.Errorf("failed to get commit for %s: %w", branch1, err)
	}
	commit2, err := r.CommitObject(plumbing.NewHash(hash2))
	if err != nil {
		return "", fmt.Errorf("failed to get commit for %s: %w", branch2, err)
	}

	mergeBases, err := commit1.MergeBase(commit2)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base: %w", err)
	}
	if len(mergeBases) == 0 {
		return "", fmt.Errorf("no merge base between %s and %s", branch1, branch2)
	}

	return mergeBases[0].Hash.String(), nil
}
