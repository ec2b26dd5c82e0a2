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

// Package workspace discovers the packages of a monorepo, regardless of
// which package manager's manifest dialect each one is written in, and
// builds the in-memory model the rest of the engine operates on.
package workspace

import (
	"fmt"
	"sort"

	"github.com/websublime/workspace-tools/internal/semver"
)

func sortStrings(s []string) { sort.Strings(s) }

// DependencyKind distinguishes the four dependency fields a manifest can
// declare, mirroring the npm package.json convention that the other
// dialects in this package also follow.
type DependencyKind string

const (
	KindRuntime  DependencyKind = "dependencies"
	KindDev      DependencyKind = "devDependencies"
	KindPeer     DependencyKind = "peerDependencies"
	KindOptional DependencyKind = "optionalDependencies"
)

// Dependency is one edge from a package to another entry in its manifest,
// named but not yet resolved against the workspace's package set.
type Dependency struct {
	Name string
	Kind DependencyKind
	Spec semver.VersionSpec
}

// PackageRecord is a single workspace member as read from its manifest.
type PackageRecord struct {
	Name         string
	Version      semver.Version
	Dir          string
	ManifestPath string
	Dialect      string
	Private      bool
	Dependencies []Dependency
}

// DependenciesOf returns the subset of rec's dependencies of the given kinds.
func (rec *PackageRecord) DependenciesOf(kinds ...DependencyKind) []Dependency {
	if len(kinds) == 0 {
		return rec.Dependencies
	}
	allow := make(map[DependencyKind]bool, len(kinds))
	for _, k := range kinds {
		allow[k] = true
	}
	out := make([]Dependency, 0, len(rec.Dependencies))
	for _, d := range rec.Dependencies {
		if allow[d.Kind] {
			out = append(out, d)
		}
	}
	return out
}

// Workspace is the full set of packages discovered under a root directory.
type Workspace struct {
	Root     string
	Packages map[string]*PackageRecord
	order    []string
}

// New builds a Workspace directly from an already-assembled package set,
// useful when the caller built PackageRecords some way other than Load
// (tests, or a future non-filesystem source).
func New(root string, packages map[string]*PackageRecord) *Workspace {
	names := make([]string, 0, len(packages))
	for name := range packages {
		names = append(names, name)
	}
	sortStrings(names)
	return &Workspace{Root: root, Packages: packages, order: names}
}

// Sorted returns the workspace's packages in deterministic, lexicographic
// name order.
func (w *Workspace) Sorted() []*PackageRecord {
	out := make([]*PackageRecord, 0, len(w.order))
	for _, name := range w.order {
		out = append(out, w.Packages[name])
	}
	return out
}

// Names returns the package names in the same deterministic order as Sorted.
func (w *Workspace) Names() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Get returns the named package and whether it was found.
func (w *Workspace) Get(name string) (*PackageRecord, bool) {
	rec, ok := w.Packages[name]
	return rec, ok
}

// DuplicateNameError reports two manifests declaring the same package name.
type DuplicateNameError struct {
	Name       string
	FirstPath  string
	SecondPath string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate package name %q declared by both %s and %s", e.Name, e.FirstPath, e.SecondPath)
}

// Warning is a non-fatal issue encountered while loading the workspace, such
// as a manifest that could not be parsed.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// InvalidVersionError reports a manifest whose declared version could not be
// parsed as a semantic version. This is fatal rather than a Warning: the
// resolution planner orders every package by its current version, and a
// package that can't be placed in that order can't safely participate.
type InvalidVersionError struct {
	Path  string
	Value string
	Err   error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("parsing %s: invalid version %q: %v", e.Path, e.Value, e.Err)
}

func (e *InvalidVersionError) Unwrap() error { return e.Err }
