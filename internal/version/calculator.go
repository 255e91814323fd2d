package version

// Impact is the declared version impact of a task.
type Impact string

// Valid impact values.
const (
	ImpactMajor Impact = "major"
	ImpactMinor Impact = "minor"
	ImpactPatch Impact = "patch"
)

// Task is the slice of task metadata the calculator cares about. The full
// task record lives in the caller's persistence layer.
type Task struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	VersionImpact Impact `json:"version_impact"`
	IsBreaking    bool   `json:"is_breaking"`
}

// BumpType is the kind of version increment a task batch implies.
type BumpType string

// Bump types, in decreasing severity.
const (
	BumpMajor BumpType = "major"
	BumpMinor BumpType = "minor"
	BumpPatch BumpType = "patch"
)

// VersionBump describes the bump implied by a batch of tasks.
type VersionBump struct {
	Current         Version  `json:"current"`
	Next            Version  `json:"next"`
	BumpType        BumpType `json:"bump_type"`
	BreakingChanges []string `json:"breaking_changes"`
	Features        []string `json:"features"`
	Fixes           []string `json:"fixes"`
}

// Calculate computes the next version from the highest-severity task in the
// batch. A breaking task or major impact forces a major bump, a minor
// impact forces at least a minor bump, everything else contributes a patch.
func Calculate(tasks []Task, current Version) VersionBump {
	bump := VersionBump{
		Current:         current,
		BumpType:        BumpPatch,
		BreakingChanges: []string{},
		Features:        []string{},
		Fixes:           []string{},
	}

	for _, task := range tasks {
		switch {
		case task.IsBreaking || task.VersionImpact == ImpactMajor:
			bump.BumpType = BumpMajor
			bump.BreakingChanges = append(bump.BreakingChanges, task.Title)
		case task.VersionImpact == ImpactMinor:
			if bump.BumpType != BumpMajor {
				bump.BumpType = BumpMinor
			}
			bump.Features = append(bump.Features, task.Title)
		default:
			bump.Fixes = append(bump.Fixes, task.Title)
		}
	}

	switch bump.BumpType {
	case BumpMajor:
		bump.Next = current.BumpMajor()
	case BumpMinor:
		bump.Next = current.BumpMinor()
	default:
		bump.Next = current.BumpPatch()
	}

	return bump
}
