package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RevREB/auto-claude/internal/branch"
	"github.com/RevREB/auto-claude/internal/git"
	"github.com/RevREB/auto-claude/internal/merge"
	"github.com/RevREB/auto-claude/internal/version"
)

// NotesFileName is the release notes file committed onto release branches.
const NotesFileName = "RELEASE_NOTES.md"

// Manager drives the release lifecycle in the shared project directory.
// Like the merge engine, mutating calls must be serialized per project by
// the caller.
type Manager struct {
	ProjectDir string
	Runner     git.Runner
	Remote     string
}

// NewManager creates a Manager for the project directory.
func NewManager(projectDir string) *Manager {
	return &Manager{
		ProjectDir: projectDir,
		Runner:     git.NewCommandRunner(projectDir),
		Remote:     git.DefaultRemote,
	}
}

// merger builds the merge engine over the manager's current runner, so a
// caller-supplied Runner or Remote applies to merges too.
func (m *Manager) merger() *merge.Engine {
	return &merge.Engine{
		ProjectDir: m.ProjectDir,
		Runner:     m.Runner,
		Remote:     m.Remote,
	}
}

// CreateOptions configures Create.
type CreateOptions struct {
	Version    string
	Tasks      []version.Task
	Notes      string
	FromBranch string
}

// Create cuts a release/{version} branch, by default from dev. Duplicate
// versions are rejected: an existing release branch or v-tag means the
// version was already cut. When no notes are supplied they are generated
// from the task batch and committed as RELEASE_NOTES.md on the new branch.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*Result, error) {
	result := newResult()

	ver, err := version.Parse(opts.Version)
	if err != nil {
		return result.fail(err.Error()), nil
	}

	branchName := BranchName(ver)
	tagName := TagName(ver)

	if exists, err := git.BranchExists(ctx, m.Runner, branchName); err != nil {
		return nil, err
	} else if exists {
		return result.fail(fmt.Sprintf("release branch %s already exists", branchName)), nil
	}
	if exists, err := git.TagExists(ctx, m.Runner, tagName); err != nil {
		return nil, err
	} else if exists {
		return result.fail(fmt.Sprintf("tag %s already exists; version %s was already released", tagName, ver)), nil
	}

	fromBranch := opts.FromBranch
	if fromBranch == "" {
		fromBranch = branch.DevBranch
	}
	if exists, err := git.BranchExists(ctx, m.Runner, fromBranch); err != nil {
		return nil, err
	} else if !exists {
		return result.fail(fmt.Sprintf("source branch %s does not exist", fromBranch)), nil
	}

	guard := git.AcquireBranchGuard(ctx, m.Runner)
	defer func() { _ = guard.Restore(ctx) }()

	if err := git.CreateAndCheckoutBranch(ctx, m.Runner, branchName, fromBranch); err != nil {
		return nil, err
	}

	notes := opts.Notes
	if notes == "" && len(opts.Tasks) > 0 {
		notes = version.Changelog(ver, opts.Tasks, time.Now())
	}
	if notes != "" {
		notesPath := filepath.Join(m.ProjectDir, NotesFileName)
		if err := os.WriteFile(notesPath, []byte(notes), 0o644); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to write release notes: %v", err))
		} else if err := git.CommitPaths(ctx, m.Runner, fmt.Sprintf("Add release notes for %s", ver), NotesFileName); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to commit release notes: %v", err))
		}
	}

	if git.HasRemote(ctx, m.Runner, m.Remote) {
		if err := git.PushBranch(ctx, m.Runner, m.Remote, branchName, false); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to push %s: %v", branchName, err))
		}
	}

	taskIDs := make([]string, 0, len(opts.Tasks))
	for _, t := range opts.Tasks {
		taskIDs = append(taskIDs, t.ID)
	}

	result.Success = true
	result.Message = fmt.Sprintf("created release branch %s from %s", branchName, fromBranch)
	result.Release = &Info{
		Version:      ver.String(),
		Branch:       branchName,
		Status:       StatusCandidate,
		CreatedAt:    time.Now(),
		ReleaseNotes: notes,
		Tasks:        taskIDs,
	}
	return result, nil
}

// PromoteOptions configures Promote.
type PromoteOptions struct {
	Version   string
	CreateTag bool
	BackMerge bool
}

// Promote merges release/{version} into main with --no-ff. A conflict
// aborts the merge and reports it; main is never left half-promoted.
// Re-promoting a version whose tag already exists is rejected. The
// optional back-merge into dev is best-effort: main is already correct by
// then, so a back-merge failure is a warning, not a failure.
func (m *Manager) Promote(ctx context.Context, opts PromoteOptions) (*Result, error) {
	result := newResult()

	ver, err := version.Parse(opts.Version)
	if err != nil {
		return result.fail(err.Error()), nil
	}

	branchName := BranchName(ver)
	tagName := TagName(ver)

	if exists, err := git.BranchExists(ctx, m.Runner, branchName); err != nil {
		return nil, err
	} else if !exists {
		return result.fail(fmt.Sprintf("release branch %s does not exist", branchName)), nil
	}
	if exists, err := git.TagExists(ctx, m.Runner, tagName); err != nil {
		return nil, err
	} else if exists {
		return result.fail(fmt.Sprintf("version %s is already promoted (tag %s exists)", ver, tagName)), nil
	}

	guard := git.AcquireBranchGuard(ctx, m.Runner)
	defer func() { _ = guard.Restore(ctx) }()

	mergeResult, err := m.merger().Merge(ctx, merge.Options{
		Source:  branchName,
		Target:  "main",
		Message: fmt.Sprintf("Release %s", ver),
	})
	if err != nil {
		return nil, err
	}
	if mergeResult.HadConflicts {
		result.Conflicts = mergeResult.Conflicts
		result.Message = fmt.Sprintf("promotion of %s aborted: %s", ver, mergeResult.Message)
		return result, nil
	}
	if !mergeResult.Success {
		return result.fail(mergeResult.Message), nil
	}
	result.CommitSHA = mergeResult.CommitSHA

	promotedAt := time.Now()
	var tag string
	if opts.CreateTag {
		if err := git.CreateAnnotatedTag(ctx, m.Runner, tagName, fmt.Sprintf("Release %s", ver), "main"); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to create tag %s: %v", tagName, err))
		} else {
			tag = tagName
			if git.HasRemote(ctx, m.Runner, m.Remote) {
				if err := git.PushTag(ctx, m.Runner, m.Remote, tagName); err != nil {
					result.Warnings = append(result.Warnings, fmt.Sprintf("failed to push tag %s: %v", tagName, err))
				}
			}
		}
	}

	if opts.BackMerge {
		backResult, err := m.merger().Merge(ctx, merge.Options{
			Source:  branchName,
			Target:  branch.DevBranch,
			Message: fmt.Sprintf("Back-merge release %s into dev", ver),
		})
		switch {
		case err != nil:
			result.Warnings = append(result.Warnings, fmt.Sprintf("back-merge into dev failed: %v", err))
		case backResult.HadConflicts:
			result.Warnings = append(result.Warnings, fmt.Sprintf("back-merge into dev conflicted on %d file(s); merge dev manually", len(backResult.Conflicts)))
		case !backResult.Success:
			result.Warnings = append(result.Warnings, fmt.Sprintf("back-merge into dev failed: %s", backResult.Message))
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("promoted %s to main", ver)
	result.Release = &Info{
		Version:    ver.String(),
		Branch:     branchName,
		Status:     StatusPromoted,
		PromotedAt: promotedAt,
		Tag:        tag,
		Tasks:      []string{},
	}
	return result, nil
}

// Abandon marks a release as abandoned, optionally deleting its branch
// locally and on the remote. Abandoning is idempotent: a branch that is
// already gone, locally or remotely, is not a failure.
func (m *Manager) Abandon(ctx context.Context, versionStr string, deleteBranch bool) (*Result, error) {
	result := newResult()

	ver, err := version.Parse(versionStr)
	if err != nil {
		return result.fail(err.Error()), nil
	}
	branchName := BranchName(ver)

	if deleteBranch {
		exists, err := git.BranchExists(ctx, m.Runner, branchName)
		if err != nil {
			return nil, err
		}
		if exists {
			guard := git.AcquireBranchGuard(ctx, m.Runner)
			if guard.Original() == branchName {
				// Can't delete the checked-out branch; step off it first.
				if err := git.CheckoutBranch(ctx, m.Runner, "main"); err != nil {
					return result.fail(fmt.Sprintf("cannot leave %s to delete it: %v", branchName, err)), nil
				}
			}
			if err := git.DeleteBranch(ctx, m.Runner, branchName); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to delete local branch %s: %v", branchName, err))
			}
		}
		if git.HasRemote(ctx, m.Runner, m.Remote) {
			if err := git.DeleteRemoteBranch(ctx, m.Runner, m.Remote, branchName); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to delete remote branch %s: %v", branchName, err))
			}
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("abandoned release %s", ver)
	result.Release = &Info{
		Version: ver.String(),
		Branch:  branchName,
		Status:  StatusAbandoned,
		Tasks:   []string{},
	}
	return result, nil
}

// NextVersion computes the bump implied by a task batch against the
// latest v-tagged version, or 0.0.0 when the repository has no tags.
func (m *Manager) NextVersion(ctx context.Context, tasks []version.Task) (*version.VersionBump, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}
	bump := version.Calculate(tasks, current)
	return &bump, nil
}

// CurrentVersion returns the highest version among v* tags, or 0.0.0.
func (m *Manager) CurrentVersion(ctx context.Context) (version.Version, error) {
	tags, err := git.VersionTags(ctx, m.Runner)
	if err != nil {
		return version.Zero, err
	}

	current := version.Zero
	for _, tag := range tags {
		v, err := version.Parse(tag)
		if err != nil {
			// Not every v* tag is a release tag; ignore the rest.
			continue
		}
		if current.LessThan(v) {
			current = v
		}
	}
	return current, nil
}
