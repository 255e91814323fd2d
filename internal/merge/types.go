// Package merge implements hierarchy-aware merging: subtask into feature,
// feature into dev, dev into a release branch, release into main. Preview
// is strictly read-only; a real merge aborts itself on conflict and always
// hands the caller structured results.
package merge

// ConflictType classifies how two branches collide on a file.
type ConflictType string

// Conflict types surfaced by the probe.
const (
	ConflictContent ConflictType = "content"
	ConflictRename  ConflictType = "rename"
	ConflictDelete  ConflictType = "delete"
	ConflictAdd     ConflictType = "add"
)

// Conflict describes a single conflicted file. Detection never leaves the
// working tree modified, and resolution is never attempted automatically.
type Conflict struct {
	File           string       `json:"file"`
	Type           ConflictType `json:"type"`
	CanAutoResolve bool         `json:"can_auto_resolve"`
}

// ChangedFile is one file's diff stats in a preview.
type ChangedFile struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// Preview is a read-only projection of what a merge would do. Producing it
// must not mutate the repository: it is computed from merge-base, rev-list
// and tree-level diffs only.
type Preview struct {
	CanMerge     bool          `json:"can_merge"`
	SourceBranch string        `json:"source_branch"`
	TargetBranch string        `json:"target_branch"`
	CommitsAhead int           `json:"commits_ahead"`
	FilesChanged int           `json:"files_changed"`
	Additions    int           `json:"additions"`
	Deletions    int           `json:"deletions"`
	Conflicts    []Conflict    `json:"conflicts"`
	ChangedFiles []ChangedFile `json:"changed_files"`
}

// Result reports the outcome of an executed merge.
type Result struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	CommitSHA    string     `json:"commit_sha,omitempty"`
	MergedFiles  []string   `json:"merged_files"`
	Conflicts    []Conflict `json:"conflicts"`
	HadConflicts bool       `json:"had_conflicts"`
}
