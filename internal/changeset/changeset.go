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

// Package changeset reads the pending-release entries that drive a
// resolution plan: which packages changed, and by how much.
package changeset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/websublime/workspace-tools/internal/secureio"
	"github.com/websublime/workspace-tools/internal/semver"
)

// Entry is one recorded change: a package name and the bump it requires.
// Multiple entries for the same package are allowed; the strongest bump
// wins.
type Entry struct {
	Package string      `json:"package"`
	Bump    semver.Bump `json:"bump"`
	Summary string      `json:"summary,omitempty"`
}

// Set is the accumulated, already-deduplicated-by-package view of pending
// changes: one entry per package, carrying its strongest requested bump.
type Set struct {
	Bumps map[string]semver.Bump
}

// Names returns the affected package names in lexicographic order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s.Bumps))
	for name := range s.Bumps {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load reads every ".json" file directly under dir (no recursion: a
// changeset directory is a flat drop-box, never nested) and merges them
// into a single Set, taking the strongest bump whenever a package appears
// more than once.
func Load(dir string) (Set, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return Set{}, fmt.Errorf("resolving changeset directory %s: %w", dir, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Set{}, fmt.Errorf("reading changeset directory %s: %w", dir, err)
	}

	set := Set{Bumps: make(map[string]semver.Bump)}
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, de.Name())
		content, err := secureio.ReadFile(path)
		if err != nil {
			return Set{}, fmt.Errorf("reading changeset file %s: %w", path, err)
		}
		var fileEntries []Entry
		if err := json.Unmarshal(content, &fileEntries); err != nil {
			return Set{}, fmt.Errorf("parsing changeset file %s: %w", path, err)
		}
		for _, e := range fileEntries {
			set.Bumps[e.Package] = semver.Strongest(set.Bumps[e.Package], e.Bump)
		}
	}
	return set, nil
}
