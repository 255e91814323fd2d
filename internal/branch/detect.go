package branch

import (
	"fmt"

	"github.com/RevREB/auto-claude/internal/git"
)

// Detect inspects the repository at projectDir and classifies its branch
// topology. The inspection is read-only (go-git, no subprocess) and is
// recomputed from scratch on every call.
//
// Detection failures degrade to ModelUnknown with the failure recorded in
// Issues; an error is returned only when projectDir is not a repository at
// all, since that indicates caller misconfiguration.
func Detect(projectDir string) (*ModelStatus, error) {
	repo, err := git.OpenRepository(projectDir)
	if err != nil {
		return nil, fmt.Errorf("cannot detect branch model: %w", err)
	}

	names, err := repo.BranchNames()
	if err != nil {
		status := Classify(nil)
		status.Issues = append(status.Issues, fmt.Sprintf("failed to list branches: %v", err))
		status.CanMigrate = false
		return status, nil
	}

	status := Classify(names)
	// Best effort; detached HEAD leaves it empty.
	if current, err := repo.CurrentBranch(); err == nil {
		status.CurrentBranch = current
	}
	return status, nil
}

// DetectHierarchy returns the repository's branches arranged into the
// hierarchical tree shape. Read-only.
func DetectHierarchy(projectDir string) (*Hierarchy, error) {
	repo, err := git.OpenRepository(projectDir)
	if err != nil {
		return nil, fmt.Errorf("cannot build branch hierarchy: %w", err)
	}

	names, err := repo.BranchNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}

	return BuildHierarchy(names), nil
}
