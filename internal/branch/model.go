// Package branch implements branch topology detection and migration for the
// hierarchical branching model:
//
//	main → release/{version} → dev → feature/{task} → feature/{task}/{subtask}
//
// Classification is pure string matching over branch names so it can be
// tested without a repository; Detect and the Migrator layer git on top.
package branch

import (
	"fmt"
	"regexp"
	"strings"
)

// Model identifies the branch topology a repository uses.
type Model int

// Known topologies.
const (
	ModelUnknown Model = iota
	ModelFlat
	ModelLegacyWorktree
	ModelHierarchical
)

// String returns the wire name of the model.
func (m Model) String() string {
	switch m {
	case ModelFlat:
		return "flat"
	case ModelLegacyWorktree:
		return "legacy-worktree"
	case ModelHierarchical:
		return "hierarchical"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so the model serializes as
// its name in JSON results.
func (m Model) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// LegacyPrefix is the branch prefix of the old worktree-based model.
const LegacyPrefix = "auto-claude/"

// DevBranch is the integration branch of the hierarchical model.
const DevBranch = "dev"

// Compiled name patterns. The classification in Classify depends on legacy
// being checked before hierarchical; do not reorder.
var (
	mainPattern    = regexp.MustCompile(`^(main|master)$`)
	releasePattern = regexp.MustCompile(`^release/\d+\.\d+\.\d+(-[0-9A-Za-z.\-]+)?$`)
	featurePattern = regexp.MustCompile(`^feature/[A-Za-z0-9._\-]+$`)
	subtaskPattern = regexp.MustCompile(`^feature/[A-Za-z0-9._\-]+/[A-Za-z0-9._\-]+$`)
	hotfixPattern  = regexp.MustCompile(`^hotfix/[A-Za-z0-9._\-]+$`)
)

// ModelStatus is the result of classifying a repository's branches. It is
// recomputed from live branch state on every detection call and never
// cached across mutating operations.
type ModelStatus struct {
	Model           Model    `json:"model"`
	CurrentBranch   string   `json:"current_branch,omitempty"`
	MainBranch      string   `json:"main_branch,omitempty"`
	DevBranch       string   `json:"dev_branch,omitempty"`
	ReleaseBranches []string `json:"release_branches"`
	FeatureBranches []string `json:"feature_branches"`
	LegacyBranches  []string `json:"legacy_branches"`
	Issues          []string `json:"issues"`
	CanMigrate      bool     `json:"can_migrate"`
	MigrationSteps  []string `json:"migration_steps"`
}

// Classify categorizes a list of local branch names and computes the
// overall model. Priority order (first match wins):
//
//  1. any auto-claude/* branch        → legacy-worktree
//  2. a dev branch exists             → hierarchical
//  3. main exists, no feature/*       → flat
//  4. feature/* exists but no dev     → flat (needs migration)
//  5. otherwise                       → unknown
//
// Note a repo with just main+dev already classifies as hierarchical even
// with no feature or release history. That is deliberately permissive; a
// dev branch created for unrelated reasons will be misread as migrated.
func Classify(names []string) *ModelStatus {
	status := &ModelStatus{
		ReleaseBranches: []string{},
		FeatureBranches: []string{},
		LegacyBranches:  []string{},
		Issues:          []string{},
		MigrationSteps:  []string{},
	}

	for _, name := range names {
		switch {
		case mainPattern.MatchString(name):
			if status.MainBranch == "" || name == "main" {
				status.MainBranch = name
			}
		case name == DevBranch:
			status.DevBranch = name
		case strings.HasPrefix(name, LegacyPrefix):
			status.LegacyBranches = append(status.LegacyBranches, name)
		case releasePattern.MatchString(name):
			status.ReleaseBranches = append(status.ReleaseBranches, name)
		case featurePattern.MatchString(name) || subtaskPattern.MatchString(name):
			status.FeatureBranches = append(status.FeatureBranches, name)
		}
	}

	switch {
	case len(status.LegacyBranches) > 0:
		status.Model = ModelLegacyWorktree
	case status.DevBranch != "":
		status.Model = ModelHierarchical
	case status.MainBranch != "" || len(status.FeatureBranches) > 0:
		status.Model = ModelFlat
	default:
		status.Model = ModelUnknown
	}

	if len(names) == 0 {
		status.Issues = append(status.Issues, "repository has no local branches")
	} else if status.MainBranch == "" {
		status.Issues = append(status.Issues, "no main or master branch found")
	}

	// Migration needs a main branch to anchor dev on. Missing main is a
	// precondition failure, reported through Issues rather than an error.
	status.CanMigrate = status.MainBranch != ""

	status.MigrationSteps = migrationSteps(status)

	return status
}

// migrationSteps describes what a migration would do, in order.
func migrationSteps(status *ModelStatus) []string {
	steps := []string{}
	if status.Model == ModelHierarchical {
		return steps
	}
	if status.MainBranch == "" {
		steps = append(steps, "create 'main' branch from current HEAD")
	}
	if status.DevBranch == "" {
		main := status.MainBranch
		if main == "" {
			main = "main"
		}
		steps = append(steps, fmt.Sprintf("create 'dev' branch from '%s'", main))
	}
	for _, legacy := range status.LegacyBranches {
		steps = append(steps, fmt.Sprintf("rename '%s' to '%s'", legacy, "feature/"+strings.TrimPrefix(legacy, LegacyPrefix)))
	}
	return steps
}

// ValidateName checks a branch name against the hierarchical grammar.
// Legacy names are rejected with a pointer at the feature/ namespace.
func ValidateName(name string) (bool, string) {
	switch {
	case strings.HasPrefix(name, LegacyPrefix):
		return false, fmt.Sprintf("legacy branch name %q is no longer supported; use feature/%s instead", name, strings.TrimPrefix(name, LegacyPrefix))
	case mainPattern.MatchString(name), name == DevBranch:
		return true, ""
	case releasePattern.MatchString(name):
		return true, ""
	case subtaskPattern.MatchString(name), featurePattern.MatchString(name):
		return true, ""
	case hotfixPattern.MatchString(name):
		return true, ""
	default:
		return false, fmt.Sprintf("branch name %q does not match the hierarchical model (main, dev, release/x.y.z, feature/<task>, feature/<task>/<subtask>, hotfix/<name>)", name)
	}
}

// MergeTarget returns the branch a given branch merges into under the
// hierarchy, or "" when there is no unambiguous target. A dev branch has
// no fixed target because merging dev requires an explicit release version.
func MergeTarget(name string) string {
	switch {
	case subtaskPattern.MatchString(name):
		return name[:strings.LastIndex(name, "/")]
	case featurePattern.MatchString(name):
		return DevBranch
	case releasePattern.MatchString(name):
		return "main"
	case hotfixPattern.MatchString(name):
		return "main"
	default:
		return ""
	}
}

// Hierarchy groups a repository's branches into the nested model shape.
type Hierarchy struct {
	Main     string              `json:"main,omitempty"`
	Dev      string              `json:"dev,omitempty"`
	Releases []string            `json:"releases"`
	Features map[string][]string `json:"features"`
}

// BuildHierarchy arranges branch names into the hierarchy tree, grouping
// subtask branches under their parent feature branch.
func BuildHierarchy(names []string) *Hierarchy {
	h := &Hierarchy{
		Releases: []string{},
		Features: map[string][]string{},
	}
	for _, name := range names {
		switch {
		case mainPattern.MatchString(name):
			if h.Main == "" || name == "main" {
				h.Main = name
			}
		case name == DevBranch:
			h.Dev = name
		case releasePattern.MatchString(name):
			h.Releases = append(h.Releases, name)
		case subtaskPattern.MatchString(name):
			parent := name[:strings.LastIndex(name, "/")]
			h.Features[parent] = append(h.Features[parent], name)
		case featurePattern.MatchString(name):
			if _, ok := h.Features[name]; !ok {
				h.Features[name] = []string{}
			}
		}
	}
	return h
}
