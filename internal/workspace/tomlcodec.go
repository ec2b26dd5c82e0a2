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

package workspace

import (
	"fmt"
	"regexp"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/websublime/workspace-tools/internal/semver"
)

// rawCargoManifest mirrors the subset of a Cargo.toml this codec cares
// about. A dependency entry can be a bare version string or an inline table
// with a "version" key; both forms are normalized by cargoDepSpecString.
type rawCargoManifest struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

type tomlCodec struct{}

func (c *tomlCodec) Dialect() string    { return "cargo" }
func (c *tomlCodec) DetectFile() string { return "Cargo.toml" }

func (c *tomlCodec) ParseRecord(path string, content []byte) (*PackageRecord, error) {
	var manifest rawCargoManifest
	if err := toml.Unmarshal(content, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if manifest.Package.Name == "" {
		return nil, fmt.Errorf("parsing %s: missing required [package].name", path)
	}

	rec := &PackageRecord{
		Name:         manifest.Package.Name,
		ManifestPath: path,
		Dialect:      c.Dialect(),
	}
	if manifest.Package.Version != "" {
		v, err := semver.ParseVersion(manifest.Package.Version)
		if err != nil {
			return nil, &InvalidVersionError{Path: path, Value: manifest.Package.Version, Err: err}
		}
		rec.Version = v
	}

	rec.Dependencies = append(rec.Dependencies, cargoDepsFromMap(manifest.Dependencies, KindRuntime)...)
	rec.Dependencies = append(rec.Dependencies, cargoDepsFromMap(manifest.DevDependencies, KindDev)...)
	return rec, nil
}

func cargoDepsFromMap(m map[string]any, kind DependencyKind) []Dependency {
	out := make([]Dependency, 0, len(m))
	for name, raw := range m {
		spec := cargoDepSpecString(raw)
		if spec == "" {
			continue // workspace-inherited or path-only deps without a version we can classify
		}
		out = append(out, Dependency{Name: name, Kind: kind, Spec: semver.Classify(spec)})
	}
	return out
}

func cargoDepSpecString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case map[string]any:
		if version, ok := v["version"]; ok {
			if s, ok := version.(string); ok {
				return s
			}
		}
		if _, ok := v["path"]; ok {
			return "link:path-dependency"
		}
	}
	return ""
}

// RewriteVersion replaces the version key inside the [package] table.
func (c *tomlCodec) RewriteVersion(content []byte, newVersion string) ([]byte, error) {
	sectionPattern := regexp.MustCompile(`(?m)^\[package\]\s*$`)
	loc := sectionPattern.FindIndex(content)
	if loc == nil {
		return nil, fmt.Errorf("cargo: no [package] section found")
	}
	sectionStart := loc[1]
	sectionEnd := len(content)
	if next := regexp.MustCompile(`(?m)^\[`).FindIndex(content[sectionStart:]); next != nil {
		sectionEnd = sectionStart + next[0]
	}

	versionPattern := regexp.MustCompile(`(?m)^version\s*=\s*"([^"]*)"`)
	body := content[sectionStart:sectionEnd]
	if !versionPattern.Match(body) {
		return nil, fmt.Errorf("cargo: no version key found in [package]")
	}
	newBody := versionPattern.ReplaceAllFunc(body, func([]byte) []byte {
		return []byte(`version = "` + newVersion + `"`)
	})

	out := make([]byte, 0, len(content))
	out = append(out, content[:sectionStart]...)
	out = append(out, newBody...)
	out = append(out, content[sectionEnd:]...)
	return out, nil
}

func (c *tomlCodec) RewriteDependencies(content []byte, edits []DependencyEdit) ([]byte, error) {
	out := content
	for _, edit := range edits {
		table, ok := tomlTableName(edit.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown dependency kind %q", edit.Kind)
		}
		newOut, err := rewriteCargoEntry(out, table, edit)
		if err != nil {
			return nil, err
		}
		out = newOut
	}
	return out, nil
}

func tomlTableName(kind DependencyKind) (string, bool) {
	switch kind {
	case KindRuntime:
		return "dependencies", true
	case KindDev:
		return "dev-dependencies", true
	default:
		return "", false
	}
}

// rewriteCargoEntry handles both bare-string ("serde = \"1.0\"") and inline
// table ("serde = { version = \"1.0\", features = [...] }") dependency
// entries, scoped to the named [table] section.
func rewriteCargoEntry(content []byte, table string, edit DependencyEdit) ([]byte, error) {
	sectionPattern := regexp.MustCompile(`(?m)^\[` + regexp.QuoteMeta(table) + `\]\s*$`)
	loc := sectionPattern.FindIndex(content)
	if loc == nil {
		return nil, fmt.Errorf("cargo: no [%s] section found", table)
	}
	sectionStart := loc[1]
	sectionEnd := len(content)
	nextSection := regexp.MustCompile(`(?m)^\[`).FindIndex(content[sectionStart:])
	if nextSection != nil {
		sectionEnd = sectionStart + nextSection[0]
	}

	body := content[sectionStart:sectionEnd]
	inlineTablePattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(edit.Name) + `\s*=\s*\{([^}]*)version\s*=\s*"([^"]*)"`)
	barePattern := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(edit.Name) + `\s*=\s*"([^"]*)"`)

	var newBody []byte
	switch {
	case inlineTablePattern.Match(body):
		newBody = inlineTablePattern.ReplaceAllFunc(body, func(match []byte) []byte {
			groups := inlineTablePattern.FindSubmatch(match)
			return []byte(edit.Name + " = {" + string(groups[1]) + "version = \"" + edit.NewSpec + "\"")
		})
	case barePattern.Match(body):
		newBody = barePattern.ReplaceAllFunc(body, func(match []byte) []byte {
			return []byte(edit.Name + ` = "` + edit.NewSpec + `"`)
		})
	default:
		return nil, fmt.Errorf("cargo: dependency %q not found in [%s]", edit.Name, table)
	}

	out := make([]byte, 0, len(content))
	out = append(out, content[:sectionStart]...)
	out = append(out, newBody...)
	out = append(out, content[sectionEnd:]...)
	return out, nil
}
