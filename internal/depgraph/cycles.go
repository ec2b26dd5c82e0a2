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

import "sort"

// Cycle is one strongly-connected component of size greater than one,
// reported with its members rotated so the lexicographically smallest
// package name comes first; this makes the same cycle compare equal across
// runs regardless of which node the traversal happened to start from.
type Cycle struct {
	Members []string
}

// Cycles reports every strongly-connected component of size two or more
// among g's nodes, found with Tarjan's algorithm. A component is the set of
// packages mutually reachable from one another; unlike a simple back-edge
// scan, this merges overlapping cycles sharing a node into the one true SCC
// they belong to (A->B, B->A, B->C, C->B is one three-member component, not
// two overlapping two-member ones).
func (g *Graph) Cycles() []Cycle {
	t := &tarjanState{
		index:   make(map[string]int),
		low:     make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, name := range g.Nodes {
		if _, ok := t.index[name]; !ok {
			t.strongconnect(g, name)
		}
	}

	var cycles []Cycle
	for _, scc := range t.sccs {
		if len(scc) < 2 {
			continue
		}
		cycles = append(cycles, Cycle{Members: normalizeCycle(scc)})
	}
	sort.Slice(cycles, func(i, j int) bool { return cycleKey(cycles[i].Members) < cycleKey(cycles[j].Members) })
	return cycles
}

// tarjanState holds the indices, low-links, and node stack Tarjan's
// algorithm threads through its recursive strongconnect calls.
type tarjanState struct {
	counter int
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	sccs    [][]string
}

func (t *tarjanState) strongconnect(g *Graph, v string) {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, edge := range g.forward[v] {
		w := edge.To
		if _, ok := t.index[w]; !ok {
			t.strongconnect(g, w)
			if t.low[w] < t.low[v] {
				t.low[v] = t.low[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.low[v] {
				t.low[v] = t.index[w]
			}
		}
	}

	if t.low[v] != t.index[v] {
		return
	}

	var scc []string
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == v {
			break
		}
	}
	t.sccs = append(t.sccs, scc)
}

// normalizeCycle rotates members so the smallest name is first, making the
// same cycle report identically no matter which member the DFS found first.
func normalizeCycle(members []string) []string {
	if len(members) == 0 {
		return members
	}
	minIdx := 0
	for i, m := range members {
		if m < members[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, len(members))
	copy(out, members[minIdx:])
	copy(out[len(members)-minIdx:], members[:minIdx])
	return out
}

func cycleKey(members []string) string {
	key := ""
	for _, m := range members {
		key += m + "\x00"
	}
	return key
}
