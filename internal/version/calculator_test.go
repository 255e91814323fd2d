package version_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevREB/auto-claude/internal/version"
)

func TestCalculate(t *testing.T) {
	t.Run("a breaking task escalates mixed batches to major", func(t *testing.T) {
		tasks := []version.Task{
			{ID: "t1", Title: "small fix", VersionImpact: version.ImpactPatch},
			{ID: "t2", Title: "new widget", VersionImpact: version.ImpactMinor},
			{ID: "t3", Title: "rework API", IsBreaking: true},
		}
		bump := version.Calculate(tasks, version.MustParse("1.2.3"))

		assert.Equal(t, version.BumpMajor, bump.BumpType)
		assert.Equal(t, "2.0.0", bump.Next.String())
		assert.Equal(t, []string{"rework API"}, bump.BreakingChanges)
		assert.Equal(t, []string{"new widget"}, bump.Features)
		assert.Equal(t, []string{"small fix"}, bump.Fixes)
	})

	t.Run("major impact without breaking flag still bumps major", func(t *testing.T) {
		bump := version.Calculate([]version.Task{
			{ID: "t1", Title: "big change", VersionImpact: version.ImpactMajor},
		}, version.MustParse("0.4.0"))
		assert.Equal(t, version.BumpMajor, bump.BumpType)
		assert.Equal(t, "1.0.0", bump.Next.String())
	})

	t.Run("minor dominates patch", func(t *testing.T) {
		bump := version.Calculate([]version.Task{
			{ID: "t1", Title: "fix one", VersionImpact: version.ImpactPatch},
			{ID: "t2", Title: "add two", VersionImpact: version.ImpactMinor},
		}, version.MustParse("1.2.3"))
		assert.Equal(t, version.BumpMinor, bump.BumpType)
		assert.Equal(t, "1.3.0", bump.Next.String())
	})

	t.Run("patch-only batch bumps patch", func(t *testing.T) {
		bump := version.Calculate([]version.Task{
			{ID: "t1", Title: "fix", VersionImpact: version.ImpactPatch},
		}, version.MustParse("1.2.3"))
		assert.Equal(t, version.BumpPatch, bump.BumpType)
		assert.Equal(t, "1.2.4", bump.Next.String())
	})

	t.Run("next is always greater than current", func(t *testing.T) {
		batches := [][]version.Task{
			{{ID: "a", Title: "fix", VersionImpact: version.ImpactPatch}},
			{{ID: "b", Title: "feat", VersionImpact: version.ImpactMinor}},
			{{ID: "c", Title: "break", IsBreaking: true}},
		}
		current := version.MustParse("3.7.9")
		for _, tasks := range batches {
			bump := version.Calculate(tasks, current)
			assert.True(t, current.LessThan(bump.Next), "bump %v", bump.BumpType)
		}
	})
}

func TestChangelog(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("categorizes by keyword before impact", func(t *testing.T) {
		tasks := []version.Task{
			{ID: "t1", Title: "Fix login timeout", VersionImpact: version.ImpactPatch},
			{ID: "t2", Title: "Add export button", VersionImpact: version.ImpactMinor},
			{ID: "t3", Title: "Patch XSS vulnerability", VersionImpact: version.ImpactPatch},
			{ID: "t4", Title: "Remove legacy endpoint", VersionImpact: version.ImpactMinor},
		}
		md := version.Changelog(version.MustParse("1.3.0"), tasks, date)

		require.Contains(t, md, "## [1.3.0] - 2025-06-01")
		assert.Contains(t, md, "### Security\n\n- Patch XSS vulnerability")
		assert.Contains(t, md, "### Removed\n\n- Remove legacy endpoint")
		assert.Contains(t, md, "### Fixed\n\n- Fix login timeout")
		assert.Contains(t, md, "### Added\n\n- Add export button")
	})

	t.Run("impact is the fallback category", func(t *testing.T) {
		md := version.Changelog(version.MustParse("2.0.0"), []version.Task{
			{ID: "t1", Title: "Overhaul scheduler", VersionImpact: version.ImpactMajor},
		}, date)
		assert.Contains(t, md, "### Changed")
		assert.Contains(t, md, "- Overhaul scheduler")
	})

	t.Run("breaking entries are prefixed", func(t *testing.T) {
		md := version.Changelog(version.MustParse("2.0.0"), []version.Task{
			{ID: "t1", Title: "Rework storage layout", IsBreaking: true},
		}, date)
		assert.Contains(t, md, "- **BREAKING:** Rework storage layout")
	})

	t.Run("empty categories are omitted", func(t *testing.T) {
		md := version.Changelog(version.MustParse("1.0.1"), []version.Task{
			{ID: "t1", Title: "Fix typo", VersionImpact: version.ImpactPatch},
		}, date)
		assert.Contains(t, md, "### Fixed")
		assert.NotContains(t, md, "### Added")
		assert.NotContains(t, md, "### Security")
	})
}
