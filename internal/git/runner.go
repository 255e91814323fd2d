// Package git wraps the git binary behind a narrow command runner and
// provides read-only repository introspection via go-git. Every mutating or
// network-bound git operation in this module goes through CommandRunner;
// nothing else shells out.
package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	acerrors "github.com/RevREB/auto-claude/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// Result captures the outcome of a single git invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Ok reports whether the command exited zero.
func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner is the interface the engines depend on. It allows the branch,
// merge, release and clone engines to be tested against a fake that
// returns canned stdout and exit codes.
type Runner interface {
	// Run executes git with the given arguments and returns the captured
	// output. A nonzero exit code is not an error; the returned error is
	// non-nil only for invocation failures (binary missing, permission
	// denied, context deadline).
	Run(ctx context.Context, args ...string) (Result, error)

	// RunStrict is Run with nonzero exit codes converted into a
	// *errors.GitCommandError. Returns trimmed stdout on success.
	RunStrict(ctx context.Context, args ...string) (string, error)

	// Dir returns the working directory commands execute in.
	Dir() string
}

// CommandRunner executes git commands in a fixed working directory.
type CommandRunner struct {
	workingDir string

	// Timeout bounds each invocation when the caller's context carries no
	// deadline of its own.
	Timeout time.Duration
}

// NewCommandRunner creates a CommandRunner rooted at workingDir.
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir, Timeout: DefaultCommandTimeout}
}

// Dir returns the working directory commands execute in.
func (r *CommandRunner) Dir() string {
	return r.workingDir
}

// Run executes a git command and returns stdout/stderr/exit code. A nonzero
// exit is reported through Result, not the error.
func (r *CommandRunner) Run(ctx context.Context, args ...string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the configured one
	if _, ok := ctx.Deadline(); !ok {
		timeout := r.Timeout
		if timeout <= 0 {
			timeout = DefaultCommandTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return res, acerrors.NewGitCommandError("git", args, res.Stdout, res.Stderr, ctx.Err())
		}
		// Invocation failure: git missing, not executable, etc.
		return res, acerrors.NewGitCommandError("git", args, res.Stdout, res.Stderr, err)
	}
	return res, nil
}

// RunStrict executes a git command and treats any nonzero exit as an error.
func (r *CommandRunner) RunStrict(ctx context.Context, args ...string) (string, error) {
	res, err := r.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !res.Ok() {
		return "", acerrors.NewGitCommandError("git", args, res.Stdout, res.Stderr, nil)
	}
	return strings.TrimSpace(res.Stdout), nil
}

// RunLines executes a git command via the runner and splits trimmed stdout
// into lines. Nonzero exit is an error.
func RunLines(ctx context.Context, r Runner, args ...string) ([]string, error) {
	output, err := r.RunStrict(ctx, args...)
	if err != nil {
		return nil, err
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}
