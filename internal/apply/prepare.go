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

package apply

import (
	"fmt"
	"sort"

	"github.com/websublime/workspace-tools/internal/resolution"
	"github.com/websublime/workspace-tools/internal/secureio"
	"github.com/websublime/workspace-tools/internal/workspace"
)

// Prepare re-serializes every manifest a plan touches: the package's own
// version field for each PackageUpdate, and the dependency specs named by
// each rewritable DependencyRewrite, one package's edits merged into a
// single new_text per manifest. Every candidate is re-parsed before it is
// returned; a mismatch between what was requested and what re-parsing
// observes aborts Prepare before any write, per the manifest rewrite
// protocol's "validate before touching disk" rule.
func Prepare(ws *workspace.Workspace, plan *resolution.Plan) ([]PendingWrite, error) {
	updateByName := make(map[string]resolution.PackageUpdate, len(plan.Updates))
	for _, u := range plan.Updates {
		updateByName[u.Name] = u
	}

	rewritesByPackage := make(map[string][]resolution.DependencyRewrite)
	for _, r := range plan.Rewrites {
		if !r.Rewritable {
			continue
		}
		rewritesByPackage[r.Package] = append(rewritesByPackage[r.Package], r)
	}

	touched := make(map[string]bool, len(updateByName)+len(rewritesByPackage))
	for name := range updateByName {
		touched[name] = true
	}
	for name := range rewritesByPackage {
		touched[name] = true
	}

	names := make([]string, 0, len(touched))
	for name := range touched {
		names = append(names, name)
	}
	sort.Strings(names)

	pending := make([]PendingWrite, 0, len(names))
	for _, name := range names {
		rec, ok := ws.Get(name)
		if !ok {
			return nil, &PrepareFailureError{Path: name, Err: fmt.Errorf("package %q not found in workspace", name)}
		}

		codec, ok := workspace.CodecByDialect(rec.Dialect)
		if !ok {
			return nil, &PrepareFailureError{Path: rec.ManifestPath, Err: fmt.Errorf("no codec registered for dialect %q", rec.Dialect)}
		}

		original, err := secureio.ReadFile(rec.ManifestPath)
		if err != nil {
			return nil, &PrepareFailureError{Path: rec.ManifestPath, Err: err}
		}

		newBytes := original
		update, hasUpdate := updateByName[name]
		if hasUpdate {
			newBytes, err = codec.RewriteVersion(newBytes, update.To.String())
			if err != nil {
				return nil, &PrepareFailureError{Path: rec.ManifestPath, Err: err}
			}
		}

		edits := rewritesByPackage[name]
		if len(edits) > 0 {
			depEdits := make([]workspace.DependencyEdit, len(edits))
			for i, r := range edits {
				depEdits[i] = workspace.DependencyEdit{Kind: r.Kind, Name: r.Dependency, NewSpec: r.NewSpec}
			}
			newBytes, err = codec.RewriteDependencies(newBytes, depEdits)
			if err != nil {
				return nil, &PrepareFailureError{Path: rec.ManifestPath, Err: err}
			}
		}

		reparsed, err := codec.ParseRecord(rec.ManifestPath, newBytes)
		if err != nil {
			return nil, &PrepareFailureError{Path: rec.ManifestPath, Err: fmt.Errorf("re-parsing rewritten manifest: %w", err)}
		}
		if hasUpdate && !reparsed.Version.Equal(update.To) {
			return nil, &PrepareFailureError{
				Path: rec.ManifestPath,
				Err:  fmt.Errorf("version after rewrite is %s, want %s", reparsed.Version, update.To),
			}
		}
		if err := verifyRewrites(reparsed, edits); err != nil {
			return nil, &PrepareFailureError{Path: rec.ManifestPath, Err: err}
		}

		pending = append(pending, PendingWrite{
			Package:  name,
			Path:     rec.ManifestPath,
			OldBytes: original,
			NewBytes: newBytes,
		})
	}

	sort.Slice(pending, func(i, j int) bool { return pending[i].Path < pending[j].Path })
	return pending, nil
}

// verifyRewrites confirms every rewritable DependencyRewrite requested for a
// manifest is present, with its new spec, in the re-parsed result.
func verifyRewrites(reparsed *workspace.PackageRecord, edits []resolution.DependencyRewrite) error {
	for _, edit := range edits {
		found := false
		for _, dep := range reparsed.Dependencies {
			if dep.Name == edit.Dependency && dep.Kind == edit.Kind {
				if dep.Spec.Raw != edit.NewSpec {
					return fmt.Errorf("dependency %q: expected spec %q after rewrite, found %q", edit.Dependency, edit.NewSpec, dep.Spec.Raw)
				}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("dependency %q missing after rewrite", edit.Dependency)
		}
	}
	return nil
}
