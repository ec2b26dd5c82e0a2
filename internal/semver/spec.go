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

package semver

import (
	"fmt"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

// SpecKind classifies how a dependency's declared version string should be
// treated when a version bump needs to be propagated into it.
type SpecKind string

const (
	// SpecSemverRange is an ordinary semver range, optionally prefixed with
	// an operator: "^1.2.3", "~1.2.3", ">=1.2.3", "1.2.3".
	SpecSemverRange SpecKind = "semver-range"
	// SpecWorkspace is a workspace-protocol specifier: "workspace:*",
	// "workspace:^", "workspace:~", or "workspace:1.2.3".
	SpecWorkspace SpecKind = "workspace-protocol"
	// SpecLocal is a local-path specifier: "file:", "link:", "portal:".
	// These never carry a version and are never rewritten.
	SpecLocal SpecKind = "local-protocol"
	// SpecOpaque is anything this engine does not understand well enough to
	// rewrite safely: git URLs, tarball URLs, tag aliases, etc.
	SpecOpaque SpecKind = "opaque"
)

// VersionSpec is a dependency's declared version string, decomposed enough to
// decide whether and how it can be rewritten when its target bumps.
type VersionSpec struct {
	Kind     SpecKind
	Operator string // "", "^", "~", ">=", ">", "=", or "*" for workspace:*
	Base     Version
	HasBase  bool
	Raw      string
}

var operatorsByLength = []string{">=", "^", "~", ">", "="}

func splitOperator(s string) (operator, rest string) {
	for _, op := range operatorsByLength {
		if strings.HasPrefix(s, op) {
			return op, strings.TrimSpace(strings.TrimPrefix(s, op))
		}
	}
	return "", s
}

// Classify inspects a raw dependency version string and determines its kind,
// operator, and (when parseable) base version.
func Classify(raw string) VersionSpec {
	trimmed := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(trimmed, "workspace:"):
		return classifyWorkspace(trimmed, raw)
	case strings.HasPrefix(trimmed, "file:"),
		strings.HasPrefix(trimmed, "link:"),
		strings.HasPrefix(trimmed, "portal:"):
		return VersionSpec{Kind: SpecLocal, Raw: raw}
	case trimmed == "*", trimmed == "latest", trimmed == "":
		return VersionSpec{Kind: SpecOpaque, Raw: raw}
	default:
		op, rest := splitOperator(trimmed)
		v, err := ParseVersion(rest)
		if err != nil {
			return VersionSpec{Kind: SpecOpaque, Raw: raw}
		}
		return VersionSpec{Kind: SpecSemverRange, Operator: op, Base: v, HasBase: true, Raw: raw}
	}
}

func classifyWorkspace(trimmed, raw string) VersionSpec {
	rhs := strings.TrimPrefix(trimmed, "workspace:")
	if rhs == "*" {
		return VersionSpec{Kind: SpecWorkspace, Operator: "*", Raw: raw}
	}
	op, rest := splitOperator(rhs)
	if op != "" && rest == "" {
		// "workspace:^" / "workspace:~": the installer substitutes the
		// sibling's version at publish time, so there is no base to rewrite,
		// but the specifier is still workspace protocol, not opaque.
		return VersionSpec{Kind: SpecWorkspace, Operator: op, Raw: raw}
	}
	v, err := ParseVersion(rest)
	if err != nil {
		return VersionSpec{Kind: SpecOpaque, Raw: raw}
	}
	return VersionSpec{Kind: SpecWorkspace, Operator: op, Base: v, HasBase: true, Raw: raw}
}

// IsRewritable reports whether Rewrite can produce a new specifier pinned to
// a given version without losing information the original author encoded.
func (s VersionSpec) IsRewritable() bool {
	switch s.Kind {
	case SpecSemverRange:
		return s.HasBase
	case SpecWorkspace:
		return s.HasBase && s.Operator != "*"
	default:
		return false
	}
}

// NotRewritableError reports an attempt to rewrite a specifier that
// IsRewritable said could not be rewritten.
type NotRewritableError struct {
	Raw  string
	Kind SpecKind
}

func (e *NotRewritableError) Error() string {
	return fmt.Sprintf("version spec %q (%s) cannot be rewritten to a pinned version", e.Raw, e.Kind)
}

// Rewrite produces the new specifier string for s once its target has moved
// to v, preserving the original operator prefix. Callers must check
// IsRewritable first; Rewrite returns NotRewritableError otherwise.
func (s VersionSpec) Rewrite(v Version) (string, error) {
	if !s.IsRewritable() {
		return s.Raw, &NotRewritableError{Raw: s.Raw, Kind: s.Kind}
	}
	switch s.Kind {
	case SpecSemverRange:
		return s.Operator + v.String(), nil
	case SpecWorkspace:
		return "workspace:" + s.Operator + v.String(), nil
	default:
		return s.Raw, &NotRewritableError{Raw: s.Raw, Kind: s.Kind}
	}
}

// Satisfies reports whether v would satisfy this spec as a semver
// constraint. Workspace and local specs always report true: within a
// workspace those protocols always resolve to the local sibling regardless
// of its version.
func (s VersionSpec) Satisfies(v Version) bool {
	switch s.Kind {
	case SpecWorkspace, SpecLocal:
		return true
	case SpecSemverRange:
		c, err := newConstraint(s)
		if err != nil {
			return false
		}
		return c.Check(v.toMM())
	default:
		return false
	}
}

func newConstraint(s VersionSpec) (*mmsemver.Constraints, error) {
	op := s.Operator
	if op == "=" {
		op = ""
	}
	return mmsemver.NewConstraint(op + s.Base.String())
}
