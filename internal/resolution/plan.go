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

package resolution

import (
	"sort"

	"github.com/agext/levenshtein"

	"github.com/websublime/workspace-tools/internal/changeset"
	"github.com/websublime/workspace-tools/internal/depgraph"
	"github.com/websublime/workspace-tools/internal/semver"
	"github.com/websublime/workspace-tools/internal/workspace"
)

// Config controls how a changeset is turned into a Plan.
type Config struct {
	Strategy Strategy
	// PropagationBump is the magnitude applied to packages that move only
	// because something they depend on moved, not because the changeset
	// named them directly.
	PropagationBump semver.Bump
	Mask            depgraph.Mask
	// MaxDepth bounds how many hops propagation travels from a direct bump.
	// Zero means unbounded.
	MaxDepth       int
	FailOnCircular bool
	// SkipWorkspaceRanges treats a ranged workspace: specifier (e.g.
	// "workspace:^1.2.3") as non-rewritable even though it carries a base
	// version. "workspace:*" is always non-rewritable regardless of this
	// flag.
	SkipWorkspaceRanges bool
}

// maxSuggestions bounds how many "did you mean" candidates an
// UnknownPackageWarning carries.
const maxSuggestions = 3

// suggestionThreshold is the maximum edit distance, relative to the input's
// length, that still counts as a plausible typo.
const suggestionThreshold = 0.5

// Resolve computes the version-bump plan for ws given changes, using g as
// the precomputed dependency graph (built with the same Mask as cfg.Mask).
func Resolve(ws *workspace.Workspace, g *depgraph.Graph, changes changeset.Set, cfg Config) (*Plan, error) {
	changes, unknown := dropUnknown(ws, changes)

	var plan *Plan
	var err error
	switch cfg.Strategy {
	case StrategyUnified:
		plan, err = resolveUnified(ws, changes)
	default:
		plan, err = resolveIndependent(ws, g, changes, cfg)
	}
	if err != nil {
		return nil, err
	}

	// Cycles outside the packages this plan actually touches are pre-existing
	// and none of this changeset's concern: report the cycles of the subgraph
	// induced by the selected packages. Restricting the graph first (rather
	// than filtering whole-graph SCCs afterwards) still catches a cycle among
	// the selected members of a larger component that MaxDepth truncated.
	selected := make([]string, 0, len(plan.Updates))
	for _, u := range plan.Updates {
		selected = append(selected, u.Name)
	}
	var circular []CircularDependency
	for _, c := range g.Induced(selected).Cycles() {
		circular = append(circular, CircularDependency{Members: c.Members})
	}
	if cfg.FailOnCircular && len(circular) > 0 {
		return nil, &CircularDependencyError{Cycles: circular}
	}

	plan.Strategy = cfg.Strategy
	plan.Circular = circular
	plan.Rewrites = buildRewrites(ws, plan.Updates, cfg)
	plan.Unknown = unknown
	return plan, nil
}

// dropUnknown removes changeset entries naming a package the workspace
// doesn't contain, returning the filtered set plus a warning per dropped
// name carrying "did you mean" suggestions. An unknown name is never fatal
// to planning.
func dropUnknown(ws *workspace.Workspace, changes changeset.Set) (changeset.Set, []UnknownPackageWarning) {
	names := ws.Names()
	var unknown []UnknownPackageWarning
	filtered := changeset.Set{Bumps: make(map[string]semver.Bump, len(changes.Bumps))}
	for name, bump := range changes.Bumps {
		if _, ok := ws.Get(name); ok {
			filtered.Bumps[name] = bump
			continue
		}
		unknown = append(unknown, UnknownPackageWarning{Name: name, Suggestions: suggest(name, names)})
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i].Name < unknown[j].Name })
	return filtered, unknown
}

func suggest(name string, candidates []string) []string {
	type scored struct {
		name string
		dist float64
	}
	var matches []scored
	for _, c := range candidates {
		dist := levenshtein.Distance(name, c, nil)
		maxLen := len(name)
		if len(c) > maxLen {
			maxLen = len(c)
		}
		if maxLen == 0 {
			continue
		}
		ratio := float64(dist) / float64(maxLen)
		if ratio <= suggestionThreshold {
			matches = append(matches, scored{name: c, dist: ratio})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

func resolveIndependent(ws *workspace.Workspace, g *depgraph.Graph, changes changeset.Set, cfg Config) (*Plan, error) {
	updates := make(map[string]PackageUpdate)

	seeds := changes.Names()
	for _, name := range seeds {
		rec, _ := ws.Get(name)
		bump := changes.Bumps[name]
		updates[name] = PackageUpdate{
			Name:   name,
			From:   rec.Version,
			To:     rec.Version.Bump(bump),
			Bump:   bump,
			Reason: UpdateReason{Kind: ReasonDirect},
		}
	}

	for _, hit := range g.ReverseBFS(seeds, cfg.MaxDepth) {
		if _, already := updates[hit.Package]; already {
			continue
		}
		rec, _ := ws.Get(hit.Package)
		bump := cfg.PropagationBump
		if bump == "" {
			bump = semver.BumpPatch
		}
		updates[hit.Package] = PackageUpdate{
			Name: hit.Package,
			From: rec.Version,
			To:   rec.Version.Bump(bump),
			Bump: bump,
			Reason: UpdateReason{
				Kind:    ReasonPropagated,
				Trigger: hit.Trigger,
				Depth:   hit.Depth,
			},
		}
	}

	return &Plan{Updates: sortedUpdates(updates)}, nil
}

func resolveUnified(ws *workspace.Workspace, changes changeset.Set) (*Plan, error) {
	// An empty changeset plans nothing, even under the everyone-moves-together
	// strategy: there is no bump to move everyone by.
	if len(changes.Bumps) == 0 {
		return &Plan{}, nil
	}

	var strongest semver.Bump = semver.BumpNone
	for _, b := range changes.Bumps {
		strongest = semver.Strongest(strongest, b)
	}

	var base semver.Version
	first := true
	for _, rec := range ws.Sorted() {
		if first {
			base = rec.Version
			first = false
			continue
		}
		base = semver.Max(base, rec.Version)
	}
	target := base.Bump(strongest)

	updates := make(map[string]PackageUpdate, len(ws.Packages))
	for _, rec := range ws.Sorted() {
		reason := UpdateReason{Kind: ReasonPropagated, Trigger: "<unified>"}
		if _, direct := changes.Bumps[rec.Name]; direct {
			reason = UpdateReason{Kind: ReasonDirect}
		}
		updates[rec.Name] = PackageUpdate{
			Name:   rec.Name,
			From:   rec.Version,
			To:     target,
			Bump:   strongest,
			Reason: reason,
		}
	}
	return &Plan{Updates: sortedUpdates(updates)}, nil
}

func sortedUpdates(updates map[string]PackageUpdate) []PackageUpdate {
	out := make([]PackageUpdate, 0, len(updates))
	for _, u := range updates {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		// Direct updates carry Reason.Depth == 0 (its zero value), which
		// already sorts ahead of any propagated depth >= 1.
		if out[i].Reason.Depth != out[j].Reason.Depth {
			return out[i].Reason.Depth < out[j].Reason.Depth
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// buildRewrites finds, for every updated package, the dependents whose
// declared version spec on it would no longer resolve correctly and
// produces the edit each one needs. Only packages that are themselves in
// the update set ever get a rewrite: a dependent left out of the plan
// (e.g. by MaxDepth) keeps its existing, still-valid pinned spec untouched
// even if the package it points at moved.
func buildRewrites(ws *workspace.Workspace, updates []PackageUpdate, cfg Config) []DependencyRewrite {
	toVersion := make(map[string]semver.Version, len(updates))
	for _, u := range updates {
		toVersion[u.Name] = u.To
	}

	var rewrites []DependencyRewrite
	for _, dependent := range ws.Sorted() {
		if _, updated := toVersion[dependent.Name]; !updated {
			continue
		}
		for _, d := range dependent.Dependencies {
			// Rewrites follow graph edges, and edges are mask-gated: a
			// dependency kind excluded from propagation is also excluded
			// from rewriting, so a plan never edits an entry the graph
			// never looked at.
			if !cfg.Mask.Allows(d.Kind) {
				continue
			}
			newVersion, moved := toVersion[d.Name]
			if !moved {
				continue
			}
			if !d.Spec.IsRewritable() {
				continue
			}
			if cfg.SkipWorkspaceRanges && d.Spec.Kind == semver.SpecWorkspace {
				continue
			}
			rewrite := DependencyRewrite{
				Package:    dependent.Name,
				Dependency: d.Name,
				Kind:       d.Kind,
				OldSpec:    d.Spec.Raw,
			}
			if newSpec, err := d.Spec.Rewrite(newVersion); err == nil {
				rewrite.NewSpec = newSpec
				rewrite.Rewritable = true
			} else {
				rewrite.NewSpec = d.Spec.Raw
				rewrite.Rewritable = false
			}
			rewrites = append(rewrites, rewrite)
		}
	}
	sort.Slice(rewrites, func(i, j int) bool {
		if rewrites[i].Package != rewrites[j].Package {
			return rewrites[i].Package < rewrites[j].Package
		}
		if rewrites[i].Kind != rewrites[j].Kind {
			return kindRank(rewrites[i].Kind) < kindRank(rewrites[j].Kind)
		}
		return rewrites[i].Dependency < rewrites[j].Dependency
	})
	return rewrites
}

// kindRank orders dependency kinds regular < dev < peer < optional for
// deterministic rewrite ordering within a single manifest.
func kindRank(k workspace.DependencyKind) int {
	switch k {
	case workspace.KindRuntime:
		return 0
	case workspace.KindDev:
		return 1
	case workspace.KindPeer:
		return 2
	case workspace.KindOptional:
		return 3
	default:
		return 4
	}
}
