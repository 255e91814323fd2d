// Package clone manages disposable, fully independent repository clones,
// one per task. Clones are real clones, never worktrees: worktrees share
// object storage and index state and can corrupt each other under
// concurrent task execution, while a clone owns everything under its own
// directory.
package clone

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	acerrors "github.com/RevREB/auto-claude/internal/errors"
	"github.com/RevREB/auto-claude/internal/git"
	"github.com/RevREB/auto-claude/internal/output"
)

// MarkerFileName is the metadata marker written inside each clone. It is
// the only persisted state this module owns; everything else is derivable
// from git.
const MarkerFileName = ".auto-claude-clone"

// DefaultMaxAge is the age past which a clone counts as orphaned.
const DefaultMaxAge = 24 * time.Hour

// Metadata is the marker file contents, used for crash-recovery lookup.
type Metadata struct {
	TaskID     string    `json:"task_id"`
	Branch     string    `json:"branch"`
	RemoteURL  string    `json:"remote_url"`
	CreatedAt  time.Time `json:"created_at"`
	ProjectDir string    `json:"project_dir"`
}

// Info describes a task's clone.
type Info struct {
	TaskID    string    `json:"task_id"`
	ClonePath string    `json:"clone_path"`
	Branch    string    `json:"branch"`
	RemoteURL string    `json:"remote_url"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// Manager creates and disposes of per-task clones under a base directory.
type Manager struct {
	ProjectDir string
	BaseDir    string
	Log        *output.Splog

	// CommandTimeout bounds each git invocation; zero means the runner
	// default. Clones of large repositories may need more headroom.
	CommandTimeout time.Duration

	now func() time.Time
}

// NewManager creates a Manager cloning from projectDir's remote into baseDir.
func NewManager(projectDir, baseDir string) *Manager {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "auto-claude")
	}
	return &Manager{
		ProjectDir: projectDir,
		BaseDir:    baseDir,
		Log:        output.NewSplog(),
		now:        time.Now,
	}
}

// runner builds a command runner for dir with the manager's timeout.
func (m *Manager) runner(dir string) *git.CommandRunner {
	r := git.NewCommandRunner(dir)
	if m.CommandTimeout > 0 {
		r.Timeout = m.CommandTimeout
	}
	return r
}

// Create produces an isolated clone for a task. If a clone for the task
// already exists it is returned as is, so a restarted task picks up where
// it crashed. Otherwise a fresh single-branch clone of baseBranch is made
// and the requested branch is checked out from the remote when it already
// exists there, or created locally when it does not.
//
// A failure partway through removes the half-made directory before the
// error propagates; no orphaned partial clones are left behind.
func (m *Manager) Create(ctx context.Context, taskID, branchName, baseBranch string) (string, error) {
	if baseBranch == "" {
		baseBranch = "main"
	}

	if existing := m.findClone(taskID); existing != "" {
		return existing, nil
	}

	if err := os.MkdirAll(m.BaseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create clone base directory: %w", err)
	}

	// The remote URL comes from the main project directory, never from a
	// clone, so nested clones can't chain off each other.
	projectRunner := m.runner(m.ProjectDir)
	remoteURL, err := git.RemoteURL(ctx, projectRunner, git.DefaultRemote)
	if err != nil {
		return "", err
	}

	clonePath := filepath.Join(m.BaseDir, uniqueCloneName(taskID))

	baseRunner := m.runner(m.BaseDir)
	if _, err := baseRunner.RunStrict(ctx, "clone", "--single-branch", "--branch", baseBranch, remoteURL, clonePath); err != nil {
		_ = os.RemoveAll(clonePath)
		return "", fmt.Errorf("failed to clone %s: %w", remoteURL, err)
	}

	cloneRunner := m.runner(clonePath)
	if branchName != baseBranch {
		onRemote, err := git.BranchExistsOnRemote(ctx, cloneRunner, git.DefaultRemote, branchName)
		if err != nil {
			_ = os.RemoveAll(clonePath)
			return "", err
		}
		if onRemote {
			// Single-branch clones only track the base branch, so fetch the
			// task branch into an explicit remote-tracking ref.
			refspec := fmt.Sprintf("%s:refs/remotes/%s/%s", branchName, git.DefaultRemote, branchName)
			if _, err := cloneRunner.RunStrict(ctx, "fetch", git.DefaultRemote, refspec); err != nil {
				_ = os.RemoveAll(clonePath)
				return "", err
			}
			if _, err := cloneRunner.RunStrict(ctx, "checkout", "-b", branchName, git.DefaultRemote+"/"+branchName); err != nil {
				_ = os.RemoveAll(clonePath)
				return "", fmt.Errorf("failed to checkout %s: %w", branchName, err)
			}
		} else {
			if err := git.CreateAndCheckoutBranch(ctx, cloneRunner, branchName, ""); err != nil {
				_ = os.RemoveAll(clonePath)
				return "", err
			}
		}
	}

	meta := Metadata{
		TaskID:     taskID,
		Branch:     branchName,
		RemoteURL:  remoteURL,
		CreatedAt:  m.now().UTC(),
		ProjectDir: m.ProjectDir,
	}
	if err := writeMetadata(clonePath, meta); err != nil {
		_ = os.RemoveAll(clonePath)
		return "", err
	}

	m.Log.Debug("created clone for task %s at %s", taskID, clonePath)
	return clonePath, nil
}

// Get returns the clone info for a task, or ErrCloneNotFound.
func (m *Manager) Get(taskID string) (*Info, error) {
	clonePath := m.findClone(taskID)
	if clonePath == "" {
		return nil, fmt.Errorf("%w: task %s", acerrors.ErrCloneNotFound, taskID)
	}

	info := &Info{
		TaskID:    taskID,
		ClonePath: clonePath,
		IsActive:  true,
	}
	if meta, err := readMetadata(clonePath); err == nil {
		info.Branch = meta.Branch
		info.RemoteURL = meta.RemoteURL
		info.CreatedAt = meta.CreatedAt
	}
	return info, nil
}

// Push pushes the clone's tracked branch to the remote. Push failures are
// reported as a false return, not an error: the caller decides whether to
// retry, and the stderr lands in the log either way.
func (m *Manager) Push(ctx context.Context, taskID string, force bool) bool {
	info, err := m.Get(taskID)
	if err != nil {
		m.Log.Warn("push for task %s: %v", taskID, err)
		return false
	}

	runner := m.runner(info.ClonePath)
	branchName := info.Branch
	if branchName == "" {
		branchName, err = git.CurrentBranch(ctx, runner)
		if err != nil {
			m.Log.Warn("push for task %s: cannot determine branch: %v", taskID, err)
			return false
		}
	}

	if err := git.PushBranch(ctx, runner, git.DefaultRemote, branchName, force); err != nil {
		m.Log.Warn("push for task %s failed: %v", taskID, err)
		return false
	}
	return true
}

// PushAndCleanup pushes the task branch and deletes the clone only when
// the push succeeded. A failed cleanup after a successful push is logged
// and swallowed; the push is the operation that matters.
func (m *Manager) PushAndCleanup(ctx context.Context, taskID string, force bool) bool {
	if !m.Push(ctx, taskID, force) {
		return false
	}
	if _, err := m.Cleanup(taskID); err != nil {
		m.Log.Warn("cleanup after push for task %s failed: %v", taskID, err)
	}
	return true
}

// Cleanup deletes the task's clone directory. Returns true when the clone
// is gone afterwards, including when it was already absent.
func (m *Manager) Cleanup(taskID string) (bool, error) {
	clonePath := m.findClone(taskID)
	if clonePath == "" {
		return true, nil
	}
	if err := os.RemoveAll(clonePath); err != nil {
		return false, fmt.Errorf("failed to remove clone %s: %w", clonePath, err)
	}
	return true, nil
}

// SweepOrphans removes clones whose metadata is older than maxAge,
// falling back to directory mtime when the marker is missing. The
// comparison is strictly older-than: a clone exactly at the cutoff is
// kept. Returns the removed paths.
func (m *Manager) SweepOrphans(maxAge time.Duration) ([]string, error) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	entries, err := os.ReadDir(m.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to scan clone base directory: %w", err)
	}

	now := m.now().UTC()
	removed := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		clonePath := filepath.Join(m.BaseDir, entry.Name())

		var createdAt time.Time
		if meta, err := readMetadata(clonePath); err == nil {
			createdAt = meta.CreatedAt
		} else if fi, err := entry.Info(); err == nil {
			createdAt = fi.ModTime()
		} else {
			continue
		}

		if now.Sub(createdAt) > maxAge {
			if err := os.RemoveAll(clonePath); err != nil {
				m.Log.Warn("failed to remove orphaned clone %s: %v", clonePath, err)
				continue
			}
			removed = append(removed, clonePath)
		}
	}
	return removed, nil
}

// findClone locates an existing clone directory for a task by its name
// prefix. Paths are generated as {taskID}-{hash}, so the prefix match is
// exact per task.
func (m *Manager) findClone(taskID string) string {
	entries, err := os.ReadDir(m.BaseDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), taskID+"-") {
			return filepath.Join(m.BaseDir, entry.Name())
		}
	}
	return ""
}

// uniqueCloneName combines the task id with a short hash of the id and
// the current time, so two tasks can never share a path and a retried
// task gets a fresh directory if its old one was removed.
func uniqueCloneName(taskID string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", taskID, time.Now().UnixNano())))
	return taskID + "-" + hex.EncodeToString(sum[:])[:8]
}

func writeMetadata(clonePath string, meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode clone metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(clonePath, MarkerFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write clone metadata: %w", err)
	}
	return nil
}

func readMetadata(clonePath string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(clonePath, MarkerFileName))
	if err != nil {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse clone metadata: %w", err)
	}
	return &meta, nil
}
