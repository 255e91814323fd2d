package version

import (
	"fmt"
	"strings"
	"time"
)

// Changelog categories, in the order they are emitted (Keep a Changelog).
const (
	categoryAdded      = "Added"
	categoryChanged    = "Changed"
	categoryDeprecated = "Deprecated"
	categoryRemoved    = "Removed"
	categoryFixed      = "Fixed"
	categorySecurity   = "Security"
)

var categoryOrder = []string{
	categoryAdded,
	categoryChanged,
	categoryDeprecated,
	categoryRemoved,
	categoryFixed,
	categorySecurity,
}

// Keyword lists checked in priority order when categorizing a task. The
// first list with a match wins; impact is only consulted when no keyword
// matches.
var (
	securityKeywords    = []string{"security", "vulnerability", "cve", "exploit"}
	removedKeywords     = []string{"remove", "removed", "delete", "drop"}
	deprecatedKeywords  = []string{"deprecate", "deprecated"}
	fixKeywords         = []string{"fix", "fixes", "fixed", "bug", "patch", "repair"}
	featureKeywords     = []string{"add", "added", "new", "feature", "implement", "introduce", "support"}
)

// Changelog renders a markdown changelog section for a version. Tasks are
// categorized by keyword first, declared impact second; breaking tasks get
// a BREAKING prefix. Empty categories are omitted.
func Changelog(ver Version, tasks []Task, date time.Time) string {
	if date.IsZero() {
		date = time.Now()
	}

	categories := make(map[string][]string)
	for _, task := range tasks {
		entry := task.Title
		if task.IsBreaking {
			entry = "**BREAKING:** " + entry
		}
		cat := categorize(task)
		categories[cat] = append(categories[cat], entry)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## [%s] - %s\n", ver.String(), date.Format("2006-01-02"))
	for _, cat := range categoryOrder {
		entries := categories[cat]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", cat)
		for _, entry := range entries {
			fmt.Fprintf(&b, "- %s\n", entry)
		}
	}
	return b.String()
}

func categorize(task Task) string {
	text := strings.ToLower(task.Title + " " + task.Description)

	switch {
	case containsAny(text, securityKeywords):
		return categorySecurity
	case containsAny(text, removedKeywords):
		return categoryRemoved
	case containsAny(text, deprecatedKeywords):
		return categoryDeprecated
	case containsAny(text, fixKeywords):
		return categoryFixed
	case containsAny(text, featureKeywords):
		return categoryAdded
	case task.VersionImpact == ImpactPatch:
		return categoryFixed
	case task.VersionImpact == ImpactMinor:
		return categoryAdded
	default:
		return categoryChanged
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
