// Package release manages release/{version} branch lifecycle: creation
// from dev, promotion into main, and abandonment. A release moves
// candidate → promoted or candidate → abandoned; both end states are
// terminal, and a version's branch name never changes once created.
package release

import (
	"time"

	"github.com/RevREB/auto-claude/internal/merge"
	"github.com/RevREB/auto-claude/internal/version"
)

// Status is the lifecycle state of a release.
type Status string

// Release lifecycle states.
const (
	StatusCandidate Status = "candidate"
	StatusPromoted  Status = "promoted"
	StatusAbandoned Status = "abandoned"
)

// Info describes a release. Version and Branch are immutable after
// creation; only Status, PromotedAt and Tag change.
type Info struct {
	Version      string    `json:"version"`
	Branch       string    `json:"branch"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	PromotedAt   time.Time `json:"promoted_at,omitempty"`
	Tag          string    `json:"tag,omitempty"`
	ReleaseNotes string    `json:"release_notes,omitempty"`
	Tasks        []string  `json:"tasks"`
}

// Result is the structured outcome of a release operation. Expected
// failures (duplicate version, conflicts, missing branch) land in Errors
// or Conflicts with Success=false; best-effort failures such as a failed
// back-merge land in Warnings so API callers can observe them.
type Result struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Release   *Info            `json:"release,omitempty"`
	CommitSHA string           `json:"commit_sha,omitempty"`
	Conflicts []merge.Conflict `json:"conflicts"`
	Warnings  []string         `json:"warnings"`
	Errors    []string         `json:"errors"`
}

func newResult() *Result {
	return &Result{
		Conflicts: []merge.Conflict{},
		Warnings:  []string{},
		Errors:    []string{},
	}
}

func (r *Result) fail(msg string) *Result {
	r.Message = msg
	r.Errors = append(r.Errors, msg)
	return r
}

// BranchName returns the release branch name for a version.
func BranchName(v version.Version) string {
	return "release/" + v.String()
}

// TagName returns the tag name for a version.
func TagName(v version.Version) string {
	return "v" + v.String()
}
