// Copyright (c) 2024 santosr2
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package semver parses, bumps, and compares workspace package versions, and
// classifies and rewrites the version specifiers packages use to depend on
// one another.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

// Bump identifies the magnitude of a version increment.
type Bump string

const (
	BumpMajor Bump = "major"
	BumpMinor Bump = "minor"
	BumpPatch Bump = "patch"
	BumpNone  Bump = "none"
)

// Rank orders bumps by severity so callers can pick the strongest of several
// candidates (e.g. when a changeset carries multiple entries for one package).
func (b Bump) Rank() int {
	switch b {
	case BumpMajor:
		return 3
	case BumpMinor:
		return 2
	case BumpPatch:
		return 1
	default:
		return 0
	}
}

// Strongest returns whichever of a, b has the higher rank.
func Strongest(a, b Bump) Bump {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// Version is a parsed, strictly three-component semantic version.
type Version struct {
	major, minor, patch uint64
	pre, build          string
}

// InvalidVersionError reports a string that is not an acceptable package version.
type InvalidVersionError struct {
	Input string
	Err   error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q", e.Input)
}

func (e *InvalidVersionError) Unwrap() error { return e.Err }

// ParseVersion parses a package's own version field. Unlike a constraint, a
// package version must be a complete major.minor.patch triple; "1.2" or "v1"
// are rejected even though the underlying library would zero-fill them.
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	core := trimmed
	if i := strings.IndexAny(trimmed, "-+"); i >= 0 {
		core = trimmed[:i]
	}
	if strings.Count(core, ".") != 2 {
		return Version{}, &InvalidVersionError{Input: s}
	}
	parsed, err := mmsemver.NewVersion(trimmed)
	if err != nil {
		return Version{}, &InvalidVersionError{Input: s, Err: err}
	}
	for _, part := range strings.Split(core, ".") {
		if _, convErr := strconv.ParseUint(part, 10, 64); convErr != nil {
			return Version{}, &InvalidVersionError{Input: s, Err: convErr}
		}
	}
	return Version{
		major: parsed.Major(),
		minor: parsed.Minor(),
		patch: parsed.Patch(),
		pre:   parsed.Prerelease(),
		build: parsed.Metadata(),
	}, nil
}

// MustParseVersion is ParseVersion for callers that already validated the
// input, such as fixtures in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
	if v.pre != "" {
		s += "-" + v.pre
	}
	if v.build != "" {
		s += "+" + v.build
	}
	return s
}

func (v Version) Major() uint64 { return v.major }
func (v Version) Minor() uint64 { return v.minor }
func (v Version) Patch() uint64 { return v.patch }
func (v Version) Prerelease() string { return v.pre }
func (v Version) IsZero() bool { return v.major == 0 && v.minor == 0 && v.patch == 0 && v.pre == "" }

func (v Version) toMM() *mmsemver.Version {
	parsed, _ := mmsemver.NewVersion(v.String())
	return parsed
}

// Compare returns -1, 0, or 1 per the usual comparator convention.
func (v Version) Compare(other Version) int {
	return v.toMM().Compare(other.toMM())
}

func (v Version) LessThan(other Version) bool    { return v.Compare(other) < 0 }
func (v Version) GreaterThan(other Version) bool { return v.Compare(other) > 0 }
func (v Version) Equal(other Version) bool       { return v.Compare(other) == 0 }

// Bump increments v by the given magnitude. The result always drops any
// pre-release/build metadata, so it strictly exceeds a pre-release-tagged
// base at the same major.minor.patch triple. BumpNone returns v unchanged.
func (v Version) Bump(b Bump) Version {
	switch b {
	case BumpMajor:
		return Version{major: v.major + 1}
	case BumpMinor:
		return Version{major: v.major, minor: v.minor + 1}
	case BumpPatch:
		return Version{major: v.major, minor: v.minor, patch: v.patch + 1}
	default:
		return v
	}
}

// Max returns the greater of two versions.
func Max(a, b Version) Version {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
