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

// Package depgraph builds the directed dependency graph over a workspace's
// packages and answers reachability and cycle questions about it.
package depgraph

import (
	"sort"

	"github.com/websublime/workspace-tools/internal/workspace"
)

// Edge is one dependency link: From depends on To.
type Edge struct {
	From string
	To   string
	Kind workspace.DependencyKind
}

// Graph is the dependency graph over a workspace's own packages. Edges to
// names outside the workspace (external dependencies) are never added.
type Graph struct {
	Nodes    []string            // lexicographically sorted package names
	forward  map[string][]Edge   // From -> edges leaving it
	reverse  map[string][]Edge   // To -> edges arriving at it
}

// Mask selects which dependency kinds participate in graph edges.
// Optional dependencies are never included: they describe best-effort
// integrations, not version-coupled requirements, so a bump never
// propagates across one.
type Mask struct {
	Dependencies    bool
	DevDependencies bool
	PeerDependencies bool
}

// Allows reports whether dependencies of the given kind participate in
// graph edges under this mask. Callers deciding whether to act on a
// dependency entry (rather than walk an edge) use the same gate, so the
// set of entries acted on always matches the edge set.
func (m Mask) Allows(kind workspace.DependencyKind) bool {
	switch kind {
	case workspace.KindRuntime:
		return m.Dependencies
	case workspace.KindDev:
		return m.DevDependencies
	case workspace.KindPeer:
		return m.PeerDependencies
	default:
		return false
	}
}

// Build constructs the dependency graph for ws, including only edges whose
// dependency kind mask allows and whose target is itself a workspace member
// (an edge naming a package outside the workspace is simply omitted, not an
// error: it's an ordinary external dependency).
func Build(ws *workspace.Workspace, mask Mask) *Graph {
	g := &Graph{
		forward: make(map[string][]Edge),
		reverse: make(map[string][]Edge),
	}
	g.Nodes = append(g.Nodes, ws.Names()...)

	for _, name := range g.Nodes {
		rec, _ := ws.Get(name)
		for _, dep := range rec.Dependencies {
			if !mask.Allows(dep.Kind) {
				continue
			}
			if _, ok := ws.Get(dep.Name); !ok {
				continue
			}
			edge := Edge{From: name, To: dep.Name, Kind: dep.Kind}
			g.forward[name] = append(g.forward[name], edge)
			g.reverse[dep.Name] = append(g.reverse[dep.Name], edge)
		}
	}
	for _, edges := range g.forward {
		sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
	}
	for _, edges := range g.reverse {
		sort.Slice(edges, func(i, j int) bool { return edges[i].From < edges[j].From })
	}
	return g
}

// DependenciesOf returns the packages name directly depends on.
func (g *Graph) DependenciesOf(name string) []Edge { return g.forward[name] }

// DependentsOf returns the packages that directly depend on name.
func (g *Graph) DependentsOf(name string) []Edge { return g.reverse[name] }

// Induced returns the subgraph of g containing only the named vertices and
// the edges with both endpoints among them. Names not in g are ignored.
func (g *Graph) Induced(names []string) *Graph {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	sub := &Graph{
		forward: make(map[string][]Edge),
		reverse: make(map[string][]Edge),
	}
	for _, name := range g.Nodes {
		if !keep[name] {
			continue
		}
		sub.Nodes = append(sub.Nodes, name)
		for _, edge := range g.forward[name] {
			if !keep[edge.To] {
				continue
			}
			sub.forward[name] = append(sub.forward[name], edge)
			sub.reverse[edge.To] = append(sub.reverse[edge.To], edge)
		}
	}
	return sub
}
