// Package testhelpers builds real throwaway git repositories for tests.
// Repositories are initialized with a fixed user and no global config so
// runs are hermetic and fast.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

const textFileName = "test.txt"

// GitRepo represents a git repository created for a test.
type GitRepo struct {
	Dir string
}

// NewGitRepo initializes a new repository with `main` as the default
// branch and a configured test user.
func NewGitRepo(dir string) (*GitRepo, error) {
	repo := &GitRepo{Dir: dir}

	cmd := exec.Command("git", "-c", "init.defaultBranch=main", "-c", "core.autocrlf=false", "init", dir, "-b", "main")
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}

	if err := repo.Git("config", "user.name", "Test User"); err != nil {
		return nil, err
	}
	if err := repo.Git("config", "user.email", "test@example.com"); err != nil {
		return nil, err
	}

	return repo, nil
}

// NewTestRepo creates a repository under t.TempDir() with one initial
// commit, failing the test on error.
func NewTestRepo(t *testing.T) *GitRepo {
	t.Helper()
	repo, err := NewGitRepo(filepath.Join(t.TempDir(), "repo"))
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}
	if err := repo.CreateChangeAndCommit("initial", "init"); err != nil {
		t.Fatalf("failed to create initial commit: %v", err)
	}
	return repo
}

// NewTestRepoWithRemote creates a repository plus a bare "origin" remote
// it pushes main to, for exercising fetch/push/clone paths.
func NewTestRepoWithRemote(t *testing.T) (*GitRepo, string) {
	t.Helper()
	repo := NewTestRepo(t)

	remoteDir := filepath.Join(t.TempDir(), "origin.git")
	cmd := exec.Command("git", "init", "--bare", "-b", "main", remoteDir)
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to init bare remote: %v", err)
	}

	if err := repo.Git("remote", "add", "origin", remoteDir); err != nil {
		t.Fatalf("failed to add remote: %v", err)
	}
	if err := repo.Git("push", "-u", "origin", "main"); err != nil {
		t.Fatalf("failed to push main: %v", err)
	}
	return repo, remoteDir
}

// Git executes a git command in the repository directory.
func (r *GitRepo) Git(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	if os.Getenv("DEBUG") == "" {
		cmd.Stdout = nil
		cmd.Stderr = nil
	}
	return cmd.Run()
}

// GitOutput executes a git command and returns its trimmed output.
func (r *GitRepo) GitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_GLOBAL=/dev/null")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// CreateChange writes (and stages) a file change.
func (r *GitRepo) CreateChange(textValue string, prefix string) error {
	fileName := textFileName
	if prefix != "" {
		fileName = prefix + "_" + fileName
	}
	filePath := filepath.Join(r.Dir, fileName)

	if err := os.WriteFile(filePath, []byte(textValue), 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return r.Git("add", filePath)
}

// CreateChangeAndCommit creates a file change and commits it.
func (r *GitRepo) CreateChangeAndCommit(textValue string, prefix string) error {
	if err := r.CreateChange(textValue, prefix); err != nil {
		return err
	}
	return r.Git("commit", "-m", textValue)
}

// CreateBranch creates a branch without checking it out.
func (r *GitRepo) CreateBranch(name string) error {
	return r.Git("branch", name)
}

// CreateAndCheckoutBranch creates and checks out a branch.
func (r *GitRepo) CreateAndCheckoutBranch(name string) error {
	return r.Git("checkout", "-b", name)
}

// CheckoutBranch checks out an existing branch.
func (r *GitRepo) CheckoutBranch(name string) error {
	return r.Git("checkout", name)
}

// DeleteBranch deletes a branch.
func (r *GitRepo) DeleteBranch(name string) error {
	return r.Git("branch", "-D", name)
}

// CurrentBranch returns the checked out branch name.
func (r *GitRepo) CurrentBranch() (string, error) {
	return r.GitOutput("rev-parse", "--abbrev-ref", "HEAD")
}

// Rev resolves a ref to its commit hash.
func (r *GitRepo) Rev(ref string) (string, error) {
	return r.GitOutput("rev-parse", ref)
}

// BranchNames returns all local branch names.
func (r *GitRepo) BranchNames() ([]string, error) {
	out, err := r.GitOutput("branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return []string{}, nil
	}
	return strings.Split(out, "\n"), nil
}
