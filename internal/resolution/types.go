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

// Package resolution computes the version bump plan for a workspace: which
// packages move, by how much, and why, given a changeset and the
// dependency graph that links them together.
package resolution

import (
	"fmt"
	"strings"

	"github.com/websublime/workspace-tools/internal/semver"
	"github.com/websublime/workspace-tools/internal/workspace"
)

// Strategy selects how a bump to one package affects the rest of the
// workspace.
type Strategy string

const (
	// StrategyIndependent bumps only directly-changed packages and whatever
	// depends on them; unrelated packages keep their current version.
	StrategyIndependent Strategy = "independent"
	// StrategyUnified bumps the entire workspace together, to one version
	// derived from the maximum current version plus the strongest bump in
	// the changeset.
	StrategyUnified Strategy = "unified"
)

// ReasonKind distinguishes a version bump the changeset named explicitly
// from one a package received only because something it depends on moved.
type ReasonKind string

const (
	ReasonDirect     ReasonKind = "direct"
	ReasonPropagated ReasonKind = "propagated"
)

// UpdateReason explains why a package is part of the plan.
type UpdateReason struct {
	Kind    ReasonKind
	Trigger string // for ReasonPropagated: the dependency whose bump caused this one
	Depth   int    // for ReasonPropagated: hops from the nearest direct bump
}

// PackageUpdate is one package's planned version change.
type PackageUpdate struct {
	Name    string
	From    semver.Version
	To      semver.Version
	Bump    semver.Bump
	Reason  UpdateReason
}

// DependencyRewrite is one manifest edit needed to keep a dependent's
// declared version spec in sync with a bumped dependency.
type DependencyRewrite struct {
	Package    string // manifest being edited
	Dependency string // dependency name inside that manifest
	Kind       workspace.DependencyKind
	OldSpec    string
	NewSpec    string
	Rewritable bool // false when the spec could not be safely rewritten (SpecOpaque/unrewritable)
}

// CircularDependency mirrors depgraph.Cycle without importing it into the
// plan's public surface, so resolution's result type doesn't leak a
// dependency on depgraph's internal representation.
type CircularDependency struct {
	Members []string
}

// Plan is the full result of resolving a changeset against a workspace.
type Plan struct {
	Strategy Strategy
	Updates  []PackageUpdate
	Rewrites []DependencyRewrite
	Circular []CircularDependency
	// Unknown lists changeset entries that named a package not present in
	// the workspace. These are dropped from the direct set before planning
	// rather than failing the call: an unknown name is a warning, never
	// fatal.
	Unknown []UnknownPackageWarning
}

// UnknownPackageWarning reports a changeset entry naming a package that
// isn't in the workspace, along with the closest real name(s) by edit
// distance.
type UnknownPackageWarning struct {
	Name        string
	Suggestions []string
}

func (w UnknownPackageWarning) String() string {
	if len(w.Suggestions) == 0 {
		return fmt.Sprintf("unknown package %q in changeset", w.Name)
	}
	return fmt.Sprintf("unknown package %q in changeset (did you mean %s?)", w.Name, strings.Join(w.Suggestions, ", "))
}

// CircularDependencyError reports that cfg.FailOnCircular is set and the
// dependency graph contains at least one cycle.
type CircularDependencyError struct {
	Cycles []CircularDependency
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(c.Members, " -> ")
	}
	return fmt.Sprintf("circular dependencies detected: %s", strings.Join(parts, "; "))
}
