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

package changeset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/websublime/workspace-tools/internal/semver"
)

func writeChangesetFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func TestLoadMergesMultipleFilesTakingStrongestBump(t *testing.T) {
	dir := t.TempDir()
	writeChangesetFile(t, dir, "a.json", `[{"package":"core","bump":"patch"}]`)
	writeChangesetFile(t, dir, "b.json", `[{"package":"core","bump":"minor"},{"package":"auth","bump":"patch"}]`)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.Bumps["core"] != semver.BumpMinor {
		t.Fatalf("core bump = %s, want minor (strongest of patch, minor)", set.Bumps["core"])
	}
	if set.Bumps["auth"] != semver.BumpPatch {
		t.Fatalf("auth bump = %s, want patch", set.Bumps["auth"])
	}
}

func TestLoadIgnoresNonJSONAndNestedFiles(t *testing.T) {
	dir := t.TempDir()
	writeChangesetFile(t, dir, "a.json", `[{"package":"core","bump":"patch"}]`)
	writeChangesetFile(t, dir, "README.md", "not a changeset")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeChangesetFile(t, filepath.Join(dir, "nested"), "ignored.json", `[{"package":"other","bump":"major"}]`)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := set.Bumps["other"]; ok {
		t.Fatalf("nested changeset file should not be read: %+v", set.Bumps)
	}
	if len(set.Names()) != 1 || set.Names()[0] != "core" {
		t.Fatalf("Names() = %v, want [core]", set.Names())
	}
}

func TestLoadEmptyDirectoryYieldsEmptySet(t *testing.T) {
	dir := t.TempDir()
	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Names()) != 0 {
		t.Fatalf("Names() = %v, want empty", set.Names())
	}
}

func TestLoadRejectsUnreadableDirectory(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatal("expected an error for a missing changeset directory")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeChangesetFile(t, dir, "broken.json", `not json`)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error for malformed changeset JSON")
	}
}

func TestNamesIsSortedAndStable(t *testing.T) {
	set := Set{Bumps: map[string]semver.Bump{"zeta": semver.BumpPatch, "alpha": semver.BumpMinor, "mid": semver.BumpMajor}}
	names := set.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("Names()[%d] = %s, want %s (full: %v)", i, names[i], w, names)
		}
	}
}
