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

// Package report renders a resolution.Plan as either a stable JSON structure
// (for scripts and the test suite) or a human-readable table (for the CLI).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/websublime/workspace-tools/internal/apply"
	"github.com/websublime/workspace-tools/internal/resolution"
	"github.com/websublime/workspace-tools/internal/rewrite"
)

// wrapWidth is the column the table view wraps long lines to, matching a
// typical narrow terminal.
const wrapWidth = 80

// RewriteView is one DependencyRewrite in the report's stable JSON shape.
type RewriteView struct {
	Dependency string `json:"dependency"`
	Kind       string `json:"kind"`
	OldSpec    string `json:"old_spec"`
	NewSpec    string `json:"new_spec"`
	Rewritable bool   `json:"rewritable"`
}

// UpdateView is one PackageUpdate, with its rewrites nested inline so a
// consumer can render a plan one package at a time without cross-referencing
// two lists.
type UpdateView struct {
	Name     string        `json:"name"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Bump     string        `json:"bump"`
	Reason   string        `json:"reason"`
	Trigger  string        `json:"trigger,omitempty"`
	Depth    int           `json:"depth,omitempty"`
	Rewrites []RewriteView `json:"rewrites,omitempty"`
	// Diff is a unified diff of the manifest's old and new bytes, set by
	// AttachDiffs once apply.Prepare has re-serialized the manifest. Empty
	// until then.
	Diff string `json:"diff,omitempty"`
}

// CycleView is one CircularDependency in the report's stable JSON shape.
type CycleView struct {
	Members []string `json:"members"`
}

// Counters summarizes a Plan's size along the axes callers most often ask
// about: how many packages moved, how many of those moved only because
// something they depend on did, how many manifest edits that produced, and
// how many cycles the dependency graph contains.
type Counters struct {
	Total      int `json:"total"`
	Direct     int `json:"direct"`
	Propagated int `json:"propagated"`
	Rewrites   int `json:"rewrites"`
	Cycles     int `json:"cycles"`
}

// Report is a resolution.Plan rendered into a form stable enough to
// serialize and compare across runs.
type Report struct {
	Strategy string       `json:"strategy"`
	Counters Counters     `json:"counters"`
	Updates  []UpdateView `json:"updates"`
	Cycles   []CycleView  `json:"cycles,omitempty"`
	// Unknown lists changeset entries dropped because they named a package
	// not in the workspace.
	Unknown []string `json:"unknown,omitempty"`
}

// Build renders plan into a Report. The ordering of Updates and each
// Update's Rewrites is taken as-is from the Plan, which is itself
// deterministic by construction (see resolution.Resolve).
func Build(plan *resolution.Plan) *Report {
	rewritesByPackage := make(map[string][]resolution.DependencyRewrite)
	for _, r := range plan.Rewrites {
		rewritesByPackage[r.Package] = append(rewritesByPackage[r.Package], r)
	}

	updates := make([]UpdateView, 0, len(plan.Updates))
	counters := Counters{Rewrites: len(plan.Rewrites), Cycles: len(plan.Circular)}
	for _, u := range plan.Updates {
		view := UpdateView{
			Name: u.Name,
			From: u.From.String(),
			To:   u.To.String(),
			Bump: string(u.Bump),
		}
		switch u.Reason.Kind {
		case resolution.ReasonDirect:
			view.Reason = "direct"
			counters.Direct++
		case resolution.ReasonPropagated:
			view.Reason = "propagated"
			view.Trigger = u.Reason.Trigger
			view.Depth = u.Reason.Depth
			counters.Propagated++
		}
		for _, r := range rewritesByPackage[u.Name] {
			view.Rewrites = append(view.Rewrites, RewriteView{
				Dependency: r.Dependency,
				Kind:       string(r.Kind),
				OldSpec:    r.OldSpec,
				NewSpec:    r.NewSpec,
				Rewritable: r.Rewritable,
			})
		}
		updates = append(updates, view)
	}
	counters.Total = len(updates)

	cycles := make([]CycleView, 0, len(plan.Circular))
	for _, c := range plan.Circular {
		cycles = append(cycles, CycleView{Members: c.Members})
	}

	unknown := make([]string, 0, len(plan.Unknown))
	for _, u := range plan.Unknown {
		unknown = append(unknown, u.String())
	}

	return &Report{
		Strategy: string(plan.Strategy),
		Counters: counters,
		Updates:  updates,
		Cycles:   cycles,
		Unknown:  unknown,
	}
}

// AttachDiffs renders a unified diff for every manifest apply.Prepare
// touched and attaches it to the matching UpdateView, keyed by package
// name. A pending write for a package with no matching UpdateView (possible
// when only its dependency specs changed, not its own version) is ignored:
// the report only ever describes version bumps, never pure rewrite-only
// packages.
func (r *Report) AttachDiffs(pending []apply.PendingWrite) error {
	byPackage := make(map[string]apply.PendingWrite, len(pending))
	for _, pw := range pending {
		byPackage[pw.Package] = pw
	}
	for i := range r.Updates {
		pw, ok := byPackage[r.Updates[i].Name]
		if !ok {
			continue
		}
		diff, err := rewrite.GenerateUnifiedDiff(pw.Path, string(pw.OldBytes), string(pw.NewBytes))
		if err != nil {
			return fmt.Errorf("diffing %s: %w", pw.Path, err)
		}
		r.Updates[i].Diff = diff
	}
	return nil
}

// ToJSON renders the report as indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return data, nil
}

// ToTable writes a human-readable rendering of the report to w: a summary
// line, then one block per update listing its rewrites, then a cycles
// section if any were detected.
func (r *Report) ToTable(w io.Writer) error {
	summary := fmt.Sprintf("%s strategy: %s, %s, %s",
		r.Strategy,
		pluralPackages(r.Counters.Total),
		pluralRewrites(r.Counters.Rewrites),
		pluralCycles(r.Counters.Cycles),
	)
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	if len(r.Updates) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	for _, u := range r.Updates {
		reason := u.Reason
		if u.Reason == "propagated" {
			reason = fmt.Sprintf("propagated from %s, depth %d", u.Trigger, u.Depth)
		}
		if _, err := fmt.Fprintf(w, "%s  %s -> %s  (%s, %s)\n", u.Name, u.From, u.To, u.Bump, reason); err != nil {
			return err
		}
		for _, rw := range u.Rewrites {
			marker := ""
			if !rw.Rewritable {
				marker = " (not rewritten)"
			}
			if _, err := fmt.Fprintf(w, "  %s: %s %s -> %s%s\n", rw.Dependency, rw.Kind, rw.OldSpec, rw.NewSpec, marker); err != nil {
				return err
			}
		}
		if u.Diff != "" {
			if _, err := fmt.Fprintln(w, u.Diff); err != nil {
				return err
			}
		}
	}

	if len(r.Unknown) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, u := range r.Unknown {
			if _, err := fmt.Fprintln(w, wordwrap.WrapString(u, wrapWidth)); err != nil {
				return err
			}
		}
	}

	if len(r.Cycles) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, c := range r.Cycles {
		line := wordwrap.WrapString(fmt.Sprintf("circular dependency: %s", strings.Join(c.Members, " -> ")), wrapWidth)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
