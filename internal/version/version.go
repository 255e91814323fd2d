// Package version implements SemVer parsing, bump calculation from task
// metadata, and changelog generation. It is pure logic: nothing in this
// package touches a repository.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	acerrors "github.com/RevREB/auto-claude/internal/errors"
)

// Version is a parsed semantic version.
type Version struct {
	Major      uint64 `json:"major"`
	Minor      uint64 `json:"minor"`
	Patch      uint64 `json:"patch"`
	Prerelease string `json:"prerelease,omitempty"`
	Build      string `json:"build,omitempty"`
}

// Zero is the version used when a repository has no version tags yet.
var Zero = Version{}

// Parse parses a strict MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] string.
// A single leading "v" is allowed and stripped. Anything else fails with
// an *errors.InvalidVersionError.
func Parse(s string) (Version, error) {
	input := s
	s = strings.TrimPrefix(s, "v")
	sv, err := semver.StrictNewVersion(s)
	if err != nil {
		return Version{}, acerrors.NewInvalidVersionError(input, err)
	}
	return Version{
		Major:      sv.Major(),
		Minor:      sv.Minor(),
		Patch:      sv.Patch(),
		Prerelease: sv.Prerelease(),
		Build:      sv.Metadata(),
	}, nil
}

// MustParse parses a version string and panics on failure. For constants
// and tests only.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version in canonical SemVer form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0 or 1 ordering v against other under SemVer
// precedence rules. Build metadata is ignored, per the SemVer spec.
func (v Version) Compare(other Version) int {
	return v.semver().Compare(other.semver())
}

// LessThan reports whether v orders before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// BumpMajor returns the next major version, dropping prerelease and build.
func (v Version) BumpMajor() Version {
	return Version{Major: v.Major + 1}
}

// BumpMinor returns the next minor version, dropping prerelease and build.
func (v Version) BumpMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// BumpPatch returns the next patch version, dropping prerelease and build.
func (v Version) BumpPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

func (v Version) semver() *semver.Version {
	return semver.New(v.Major, v.Minor, v.Patch, v.Prerelease, v.Build)
}
