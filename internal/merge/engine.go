package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/RevREB/auto-claude/internal/branch"
	acerrors "github.com/RevREB/auto-claude/internal/errors"
	"github.com/RevREB/auto-claude/internal/git"
)

// Engine performs merges in the shared project directory. Callers must
// serialize mutating operations per project; Preview is safe to run
// concurrently with an in-progress task.
type Engine struct {
	ProjectDir string
	Runner     git.Runner
	Remote     string
}

// NewEngine creates an Engine rooted at projectDir using the origin remote.
func NewEngine(projectDir string) *Engine {
	return &Engine{
		ProjectDir: projectDir,
		Runner:     git.NewCommandRunner(projectDir),
		Remote:     git.DefaultRemote,
	}
}

// TargetFor returns the hierarchy merge target for a branch, or "" when
// the target is ambiguous (dev needs an explicit release version).
func (e *Engine) TargetFor(branchName string) string {
	return branch.MergeTarget(branchName)
}

// Preview computes what merging source into target would do, without
// touching the working tree, index or any ref. Conflicts are detected with
// a tree-level three-way probe (merge-tree), so a preview can run while a
// task holds the checkout.
func (e *Engine) Preview(ctx context.Context, source, target string) (*Preview, error) {
	preview := &Preview{
		SourceBranch: source,
		TargetBranch: target,
		Conflicts:    []Conflict{},
		ChangedFiles: []ChangedFile{},
	}

	// Best-effort freshen of both branches; a missing remote branch is fine.
	if git.HasRemote(ctx, e.Runner, e.Remote) {
		_ = git.Fetch(ctx, e.Runner, e.Remote, source)
		_ = git.Fetch(ctx, e.Runner, e.Remote, target)
	}

	for _, name := range []string{source, target} {
		exists, err := git.BranchExists(ctx, e.Runner, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, acerrors.NewBranchNotFoundError(name)
		}
	}

	countOut, err := e.Runner.RunStrict(ctx, "rev-list", "--count", target+".."+source)
	if err != nil {
		return nil, fmt.Errorf("failed to count commits ahead: %w", err)
	}
	fmt.Sscanf(countOut, "%d", &preview.CommitsAhead)

	// Three-dot diff: changes on source since the merge base.
	numstat, err := e.Runner.RunStrict(ctx, "diff", "--numstat", target+"..."+source)
	if err != nil {
		return nil, fmt.Errorf("failed to compute diff stats: %w", err)
	}
	preview.ChangedFiles = parseNumstat(numstat)
	for _, cf := range preview.ChangedFiles {
		preview.Additions += cf.Additions
		preview.Deletions += cf.Deletions
	}
	preview.FilesChanged = len(preview.ChangedFiles)

	conflicts, err := e.probeConflicts(ctx, source, target)
	if err != nil {
		return nil, err
	}
	preview.Conflicts = conflicts
	preview.CanMerge = len(conflicts) == 0

	return preview, nil
}

// Options configures an executed merge.
type Options struct {
	Source   string
	Target   string
	NoCommit bool
	Message  string
}

// Merge merges source into target with --no-ff. On conflict the merge is
// aborted immediately, leaving the target branch at its pre-merge tip, and
// the conflicts come back as data. The caller's original branch is restored
// on every exit path except a successful --no-commit merge, which by
// definition leaves the staged merge checked out on the target.
func (e *Engine) Merge(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		MergedFiles: []string{},
		Conflicts:   []Conflict{},
	}

	for _, name := range []string{opts.Source, opts.Target} {
		exists, err := git.BranchExists(ctx, e.Runner, name)
		if err != nil {
			return nil, err
		}
		if !exists {
			result.Message = fmt.Sprintf("branch %s does not exist", name)
			return result, nil
		}
	}

	guard := git.AcquireBranchGuard(ctx, e.Runner)
	restore := true
	defer func() {
		if restore {
			_ = guard.Restore(ctx)
		}
	}()

	if err := git.CheckoutBranch(ctx, e.Runner, opts.Target); err != nil {
		return nil, err
	}

	if git.HasRemote(ctx, e.Runner, e.Remote) {
		// Stale targets produce avoidable conflicts; a failed fast-forward
		// is not fatal, the merge below will surface the real problem.
		_, _ = git.PullFastForward(ctx, e.Runner, e.Remote, opts.Target)
	}

	args := []string{"merge", "--no-ff"}
	if opts.NoCommit {
		args = append(args, "--no-commit")
	}
	if opts.Message != "" {
		args = append(args, "-m", opts.Message)
	}
	args = append(args, opts.Source)

	res, err := e.Runner.Run(ctx, args...)
	if err != nil {
		return nil, err
	}

	if !res.Ok() {
		files, _ := git.UnmergedFiles(ctx, e.Runner)
		if len(files) == 0 {
			// Nonzero exit without unmerged paths is not a conflict; the
			// merge was refused outright (dirty working tree, bad ref).
			result.Message = fmt.Sprintf("merge of %s into %s failed: %s",
				opts.Source, opts.Target, strings.TrimSpace(res.Stderr+" "+res.Stdout))
			return result, nil
		}
		for _, f := range files {
			result.Conflicts = append(result.Conflicts, Conflict{File: f, Type: ConflictContent})
		}
		_ = git.MergeAbort(ctx, e.Runner)
		result.HadConflicts = true
		result.Message = fmt.Sprintf("merge of %s into %s hit %d conflict(s) and was aborted; %s is unchanged",
			opts.Source, opts.Target, len(result.Conflicts), opts.Target)
		return result, nil
	}

	if opts.NoCommit {
		staged, _ := git.RunLines(ctx, e.Runner, "diff", "--name-only", "--cached")
		result.MergedFiles = staged
		result.Success = true
		result.Message = fmt.Sprintf("merge of %s staged on %s; commit or abort it before switching branches", opts.Source, opts.Target)
		restore = false
		return result, nil
	}

	sha, err := git.Revision(ctx, e.Runner, "HEAD")
	if err != nil {
		return nil, err
	}
	result.CommitSHA = sha

	files, err := git.CommitFiles(ctx, e.Runner, "HEAD")
	if err == nil {
		result.MergedFiles = files
	}

	if git.HasRemote(ctx, e.Runner, e.Remote) {
		if err := git.PushBranch(ctx, e.Runner, e.Remote, opts.Target, false); err != nil {
			result.CommitSHA = sha
			result.Message = fmt.Sprintf("merged %s into %s locally but push failed: %v", opts.Source, opts.Target, err)
			return result, nil
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("merged %s into %s (%d file(s))", opts.Source, opts.Target, len(result.MergedFiles))
	return result, nil
}

// probeConflicts runs the tree-level three-way merge probe. Exit 0 means
// clean, exit 1 means conflicted; the probe writes only objects, never the
// working tree or index.
func (e *Engine) probeConflicts(ctx context.Context, source, target string) ([]Conflict, error) {
	res, err := e.Runner.Run(ctx, "merge-tree", "--write-tree", "--name-only", target, source)
	if err != nil {
		return nil, err
	}
	if res.Ok() {
		return []Conflict{}, nil
	}
	if res.ExitCode != 1 {
		return nil, fmt.Errorf("merge-tree probe failed: %s", strings.TrimSpace(res.Stderr))
	}
	return parseMergeTree(res.Stdout), nil
}

// parseMergeTree extracts conflicted files from `merge-tree --write-tree
// --name-only` output: the tree OID, conflicted paths, then a blank line
// and informational CONFLICT messages that carry the conflict kind.
func parseMergeTree(out string) []Conflict {
	lines := strings.Split(out, "\n")
	if len(lines) < 2 {
		return []Conflict{}
	}

	var files []string
	var messages []string
	inMessages := false
	for _, line := range lines[1:] {
		if line == "" {
			inMessages = true
			continue
		}
		if inMessages {
			messages = append(messages, line)
		} else {
			files = append(files, line)
		}
	}

	conflicts := make([]Conflict, 0, len(files))
	for _, f := range files {
		conflicts = append(conflicts, Conflict{File: f, Type: conflictTypeFor(f, messages)})
	}
	return conflicts
}

func conflictTypeFor(file string, messages []string) ConflictType {
	for _, msg := range messages {
		if !strings.Contains(msg, file) {
			continue
		}
		switch {
		case strings.Contains(msg, "rename"):
			return ConflictRename
		case strings.Contains(msg, "delete"):
			return ConflictDelete
		case strings.Contains(msg, "add/add"):
			return ConflictAdd
		}
	}
	return ConflictContent
}

func parseNumstat(numstat string) []ChangedFile {
	files := []ChangedFile{}
	for _, line := range strings.Split(strings.TrimSpace(numstat), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		cf := ChangedFile{Path: fields[2]}
		// Binary files show "-" and count as zero.
		fmt.Sscanf(fields[0], "%d", &cf.Additions)
		fmt.Sscanf(fields[1], "%d", &cf.Deletions)
		files = append(files, cf)
	}
	return files
}
