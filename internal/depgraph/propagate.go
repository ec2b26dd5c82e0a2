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

// PropagationHit records that a package was reached while walking upward
// from a set of seed packages: it's at Depth hops from the nearest seed, and
// was first reached through Trigger (the dependency edge that led to it).
type PropagationHit struct {
	Package string
	Depth   int
	Trigger string
}

// ReverseBFS walks from seeds toward their dependents (reverse edges),
// round by round, recording the first (nearest) depth and triggering
// package at which each non-seed node is reached. maxDepth <= 0 means
// unbounded. Ties between multiple triggers reaching a node at the same
// depth are broken by choosing the lexicographically smallest trigger name,
// so the result is deterministic regardless of map iteration order.
func (g *Graph) ReverseBFS(seeds []string, maxDepth int) []PropagationHit {
	seedSet := make(map[string]bool, len(seeds))
	for _, s := range seeds {
		seedSet[s] = true
	}

	depthOf := make(map[string]int)
	triggerOf := make(map[string]string)

	frontier := make([]string, len(seeds))
	copy(frontier, seeds)
	sort.Strings(frontier)

	depth := 0
	for len(frontier) > 0 {
		if maxDepth > 0 && depth >= maxDepth {
			break
		}
		depth++
		nextSet := make(map[string]bool)
		for _, name := range frontier {
			for _, edge := range g.reverse[name] {
				dependent := edge.From
				if seedSet[dependent] {
					continue
				}
				if existingDepth, seen := depthOf[dependent]; seen {
					if existingDepth < depth {
						continue
					}
					if existingDepth == depth && triggerOf[dependent] <= name {
						continue
					}
				}
				depthOf[dependent] = depth
				triggerOf[dependent] = name
				nextSet[dependent] = true
			}
		}
		frontier = frontier[:0]
		for name := range nextSet {
			frontier = append(frontier, name)
		}
		sort.Strings(frontier)
	}

	hits := make([]PropagationHit, 0, len(depthOf))
	for name, d := range depthOf {
		hits = append(hits, PropagationHit{Package: name, Depth: d, Trigger: triggerOf[name]})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Depth != hits[j].Depth {
			return hits[i].Depth < hits[j].Depth
		}
		return hits[i].Package < hits[j].Package
	})
	return hits
}
