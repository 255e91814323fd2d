// Package errors provides sentinel errors and custom error types for the
// branch lifecycle engine. Use errors.Is() and errors.As() to check for
// specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrBranchNotFound indicates that a branch does not exist
	ErrBranchNotFound = errors.New("branch not found")

	// ErrNoRemote indicates that the repository has no usable remote configured
	ErrNoRemote = errors.New("no remote configured")

	// ErrGitCommandFailed indicates that a git subprocess exited nonzero in strict mode
	ErrGitCommandFailed = errors.New("git command failed")

	// ErrInvalidVersion indicates a string that does not match strict SemVer
	ErrInvalidVersion = errors.New("invalid version")

	// ErrCloneNotFound indicates that no clone directory exists for a task
	ErrCloneNotFound = errors.New("clone not found")
)

// BranchNotFoundError represents an error when a branch is not found
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch %s does not exist", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %s", strings.Join(e.Args, " "))
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrGitCommandFailed
func (e *GitCommandError) Is(target error) bool {
	return target == ErrGitCommandFailed
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// InvalidVersionError represents a version string that failed strict SemVer parsing
type InvalidVersionError struct {
	Input string
	Err   error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: expected MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]", e.Input)
}

func (e *InvalidVersionError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is ErrInvalidVersion
func (e *InvalidVersionError) Is(target error) bool {
	return target == ErrInvalidVersion
}

// NewInvalidVersionError creates a new InvalidVersionError
func NewInvalidVersionError(input string, err error) *InvalidVersionError {
	return &InvalidVersionError{Input: input, Err: err}
}
