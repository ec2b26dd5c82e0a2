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

package depgraph

import (
	"testing"

	"github.com/websublime/workspace-tools/internal/semver"
	"github.com/websublime/workspace-tools/internal/workspace"
)

func rec(name string, deps ...workspace.Dependency) *workspace.PackageRecord {
	return &workspace.PackageRecord{Name: name, Version: semver.MustParseVersion("1.0.0"), Dependencies: deps}
}

func dep(name string, kind workspace.DependencyKind, spec string) workspace.Dependency {
	return workspace.Dependency{Name: name, Kind: kind, Spec: semver.Classify(spec)}
}

func buildTestWorkspace(records ...*workspace.PackageRecord) *workspace.Workspace {
	packages := make(map[string]*workspace.PackageRecord, len(records))
	for _, r := range records {
		packages[r.Name] = r
	}
	return workspace.New("", packages)
}

func TestBuildOmitsExternalAndMaskedEdges(t *testing.T) {
	a := rec("a", dep("b", workspace.KindRuntime, "^1.0.0"), dep("leftpad", workspace.KindRuntime, "^1.0.0"), dep("b", workspace.KindDev, "^1.0.0"))
	b := rec("b")
	ws := buildTestWorkspace(a, b)

	g := Build(ws, Mask{Dependencies: true})
	edges := g.DependenciesOf("a")
	if len(edges) != 1 || edges[0].To != "b" || edges[0].Kind != workspace.KindRuntime {
		t.Fatalf("unexpected edges: %+v", edges)
	}
}

func TestCyclesDetectedAndNormalized(t *testing.T) {
	a := rec("a", dep("b", workspace.KindRuntime, "^1.0.0"))
	b := rec("b", dep("c", workspace.KindRuntime, "^1.0.0"))
	c := rec("c", dep("a", workspace.KindRuntime, "^1.0.0"))
	ws := buildTestWorkspace(a, b, c)

	g := Build(ws, Mask{Dependencies: true})
	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1", len(cycles))
	}
	if cycles[0].Members[0] != "a" {
		t.Fatalf("cycle not normalized to start at lexicographically smallest member: %v", cycles[0].Members)
	}
}

// TestCyclesMergesOverlappingBackEdgesIntoOneSCC covers A->B, B->A, B->C,
// C->B: two overlapping back-edges that both belong to the same
// strongly-connected component {A, B, C}, not two separate two-member
// cycles.
func TestCyclesMergesOverlappingBackEdgesIntoOneSCC(t *testing.T) {
	a := rec("a", dep("b", workspace.KindRuntime, "^1.0.0"))
	b := rec("b", dep("a", workspace.KindRuntime, "^1.0.0"), dep("c", workspace.KindRuntime, "^1.0.0"))
	c := rec("c", dep("b", workspace.KindRuntime, "^1.0.0"))
	ws := buildTestWorkspace(a, b, c)

	g := Build(ws, Mask{Dependencies: true})
	cycles := g.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1 merged SCC: %+v", len(cycles), cycles)
	}
	if len(cycles[0].Members) != 3 {
		t.Fatalf("cycle members = %v, want all of a, b, c in one SCC", cycles[0].Members)
	}
}

// TestInducedRestrictsNodesAndEdges checks that restricting a graph to a
// vertex subset keeps exactly the edges with both endpoints inside it, and
// that cycle detection on the restriction sees cycles the full component
// view would hide behind unselected members.
func TestInducedRestrictsNodesAndEdges(t *testing.T) {
	a := rec("a", dep("b", workspace.KindRuntime, "^1.0.0"))
	b := rec("b", dep("a", workspace.KindRuntime, "^1.0.0"), dep("c", workspace.KindRuntime, "^1.0.0"))
	c := rec("c", dep("b", workspace.KindRuntime, "^1.0.0"))
	ws := buildTestWorkspace(a, b, c)

	g := Build(ws, Mask{Dependencies: true})
	sub := g.Induced([]string{"a", "b", "nonexistent"})

	if len(sub.Nodes) != 2 {
		t.Fatalf("sub.Nodes = %v, want [a b]", sub.Nodes)
	}
	if edges := sub.DependenciesOf("b"); len(edges) != 1 || edges[0].To != "a" {
		t.Fatalf("b's edges in subgraph = %+v, want only b->a", edges)
	}
	cycles := sub.Cycles()
	if len(cycles) != 1 || len(cycles[0].Members) != 2 {
		t.Fatalf("sub.Cycles() = %+v, want the two-member a/b cycle", cycles)
	}
}

func TestReverseBFSDepthAndTrigger(t *testing.T) {
	// core <- mid <- leaf (leaf depends on mid depends on core)
	core := rec("core")
	mid := rec("mid", dep("core", workspace.KindRuntime, "^1.0.0"))
	leaf := rec("leaf", dep("mid", workspace.KindRuntime, "^1.0.0"))
	ws := buildTestWorkspace(core, mid, leaf)

	g := Build(ws, Mask{Dependencies: true})
	hits := g.ReverseBFS([]string{"core"}, 0)
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2: %+v", len(hits), hits)
	}
	if hits[0].Package != "mid" || hits[0].Depth != 1 {
		t.Fatalf("unexpected first hit: %+v", hits[0])
	}
	if hits[1].Package != "leaf" || hits[1].Depth != 2 || hits[1].Trigger != "mid" {
		t.Fatalf("unexpected second hit: %+v", hits[1])
	}
}

func TestReverseBFSRespectsMaxDepth(t *testing.T) {
	core := rec("core")
	mid := rec("mid", dep("core", workspace.KindRuntime, "^1.0.0"))
	leaf := rec("leaf", dep("mid", workspace.KindRuntime, "^1.0.0"))
	ws := buildTestWorkspace(core, mid, leaf)

	g := Build(ws, Mask{Dependencies: true})
	hits := g.ReverseBFS([]string{"core"}, 1)
	if len(hits) != 1 || hits[0].Package != "mid" {
		t.Fatalf("expected only mid within depth 1, got %+v", hits)
	}
}
