package branch

import (
	"context"
	"fmt"
	"strings"

	"github.com/RevREB/auto-claude/internal/git"
)

// RenamedBranch records one legacy branch rename.
type RenamedBranch struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// MigrationResult reports what a migration did (or, in dry-run mode, would
// do). Immutable once returned.
type MigrationResult struct {
	Success         bool            `json:"success"`
	Model           Model           `json:"model"`
	BranchesCreated []string        `json:"branches_created"`
	BranchesRenamed []RenamedBranch `json:"branches_renamed"`
	Errors          []string        `json:"errors"`
	Warnings        []string        `json:"warnings"`
}

// Migrator converts a flat or legacy-worktree repository into the
// hierarchical model. The only transition is into hierarchical; migrating
// an already-hierarchical repository is a warning no-op.
type Migrator struct {
	ProjectDir string
	Runner     git.Runner
}

// NewMigrator creates a Migrator for the project directory.
func NewMigrator(projectDir string) *Migrator {
	return &Migrator{
		ProjectDir: projectDir,
		Runner:     git.NewCommandRunner(projectDir),
	}
}

// Migrate runs the migration. With dryRun set, no mutating git command is
// executed and the reported created/renamed lists are identical to what a
// real run against the same starting state would produce.
//
// Per-branch rename failures are warnings and migration continues; only a
// failure creating main or dev aborts.
func (m *Migrator) Migrate(ctx context.Context, dryRun bool) *MigrationResult {
	result := &MigrationResult{
		BranchesCreated: []string{},
		BranchesRenamed: []RenamedBranch{},
		Errors:          []string{},
		Warnings:        []string{},
	}

	status, err := Detect(m.ProjectDir)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Model = status.Model

	if status.Model == ModelHierarchical {
		result.Success = true
		result.Warnings = append(result.Warnings, "repository already uses the hierarchical model; nothing to migrate")
		return result
	}

	if !status.CanMigrate {
		result.Errors = append(result.Errors, status.Issues...)
		return result
	}

	existing := map[string]bool{}
	names := m.branchNames(status)
	for _, name := range names {
		existing[name] = true
	}

	mainBranch := status.MainBranch
	if mainBranch == "" {
		if !dryRun {
			if err := git.CreateBranch(ctx, m.Runner, "main", "HEAD"); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to create main branch: %v", err))
				return result
			}
		}
		mainBranch = "main"
		result.BranchesCreated = append(result.BranchesCreated, "main")
	}

	if status.DevBranch == "" {
		if !dryRun {
			if err := git.CreateBranch(ctx, m.Runner, DevBranch, mainBranch); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to create dev branch: %v", err))
				return result
			}
		}
		result.BranchesCreated = append(result.BranchesCreated, DevBranch)
	}

	legacyLeft := 0
	for _, legacy := range status.LegacyBranches {
		target := "feature/" + strings.TrimPrefix(legacy, LegacyPrefix)
		if existing[target] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipping rename of %s: %s already exists", legacy, target))
			legacyLeft++
			continue
		}
		if !dryRun {
			if err := git.RenameBranch(ctx, m.Runner, legacy, target); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to rename %s to %s: %v", legacy, target, err))
				legacyLeft++
				continue
			}
		}
		existing[target] = true
		result.BranchesRenamed = append(result.BranchesRenamed, RenamedBranch{Old: legacy, New: target})
	}

	// Migration never rebases feature work onto dev; rewriting history that
	// others may depend on is the caller's call. Only warn.
	if !dryRun {
		m.warnUnrebasedFeatures(result)
	}

	result.Success = true
	// Branches that could not be renamed keep the repository classified as
	// legacy-worktree; re-detection must agree with what we report.
	if legacyLeft > 0 {
		result.Model = ModelLegacyWorktree
	} else {
		result.Model = ModelHierarchical
	}
	return result
}

// branchNames reconstructs the full name list from a classified status.
func (m *Migrator) branchNames(status *ModelStatus) []string {
	names := []string{}
	if status.MainBranch != "" {
		names = append(names, status.MainBranch)
	}
	if status.DevBranch != "" {
		names = append(names, status.DevBranch)
	}
	names = append(names, status.ReleaseBranches...)
	names = append(names, status.FeatureBranches...)
	names = append(names, status.LegacyBranches...)
	return names
}

func (m *Migrator) warnUnrebasedFeatures(result *MigrationResult) {
	repo, err := git.OpenRepository(m.ProjectDir)
	if err != nil {
		return
	}
	names, err := repo.BranchNames()
	if err != nil {
		return
	}
	devExists, err := repo.BranchExists(DevBranch)
	if err != nil || !devExists {
		return
	}
	for _, name := range names {
		if !strings.HasPrefix(name, "feature/") {
			continue
		}
		isDescendant, err := repo.IsAncestor(DevBranch, name)
		if err != nil || isDescendant {
			continue
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("branch %s is not based on dev; rebase it manually when convenient", name))
	}
}
