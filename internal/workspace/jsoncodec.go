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
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/websublime/workspace-tools/internal/semver"
)

// packageJSON mirrors the subset of npm's package.json this codec cares
// about. Unknown fields are ignored on read and left untouched on write
// because writes never go through this struct; RewriteDependencies edits the
// raw bytes directly to avoid reordering or reformatting the file.
type packageJSON struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Private              bool              `json:"private"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

type jsonCodec struct{}

func (c *jsonCodec) Dialect() string      { return "npm" }
func (c *jsonCodec) DetectFile() string   { return "package.json" }

func (c *jsonCodec) ParseRecord(path string, content []byte) (*PackageRecord, error) {
	var pkg packageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if pkg.Name == "" {
		return nil, fmt.Errorf("parsing %s: missing required \"name\" field", path)
	}

	rec := &PackageRecord{
		Name:         pkg.Name,
		ManifestPath: path,
		Dialect:      c.Dialect(),
		Private:      pkg.Private,
	}
	if pkg.Version != "" {
		v, err := semver.ParseVersion(pkg.Version)
		if err != nil {
			return nil, &InvalidVersionError{Path: path, Value: pkg.Version, Err: err}
		}
		rec.Version = v
	}

	rec.Dependencies = append(rec.Dependencies, depsFromMap(pkg.Dependencies, KindRuntime)...)
	rec.Dependencies = append(rec.Dependencies, depsFromMap(pkg.DevDependencies, KindDev)...)
	rec.Dependencies = append(rec.Dependencies, depsFromMap(pkg.PeerDependencies, KindPeer)...)
	rec.Dependencies = append(rec.Dependencies, depsFromMap(pkg.OptionalDependencies, KindOptional)...)
	return rec, nil
}

func depsFromMap(m map[string]string, kind DependencyKind) []Dependency {
	out := make([]Dependency, 0, len(m))
	for name, spec := range m {
		out = append(out, Dependency{Name: name, Kind: kind, Spec: semver.Classify(spec)})
	}
	return out
}

var jsonFieldName = map[DependencyKind]string{
	KindRuntime:  "dependencies",
	KindDev:      "devDependencies",
	KindPeer:     "peerDependencies",
	KindOptional: "optionalDependencies",
}

func (c *jsonCodec) RewriteDependencies(content []byte, edits []DependencyEdit) ([]byte, error) {
	out := content
	for _, edit := range edits {
		field, ok := jsonFieldName[edit.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown dependency kind %q", edit.Kind)
		}
		span, ok := findJSONObjectSpan(out, field)
		if !ok {
			return nil, fmt.Errorf("%s: no %q object found", c.Dialect(), field)
		}
		pattern := regexp.MustCompile(`("` + regexp.QuoteMeta(edit.Name) + `"\s*:\s*")([^"]*)(")`)
		body := out[span.start:span.end]
		if !pattern.Match(body) {
			return nil, fmt.Errorf("%s: dependency %q not found in %q", c.Dialect(), edit.Name, field)
		}
		replacement := edit.NewSpec
		newBody := pattern.ReplaceAllFunc(body, func(match []byte) []byte {
			groups := pattern.FindSubmatch(match)
			return append(append([]byte{}, groups[1]...), append([]byte(replacement), groups[3]...)...)
		})
		out = append(append(append([]byte{}, out[:span.start]...), newBody...), out[span.end:]...)
	}
	return out, nil
}

// RewriteVersion replaces the top-level "version" field's string value,
// leaving every other byte (including key order and indentation) untouched.
func (c *jsonCodec) RewriteVersion(content []byte, newVersion string) ([]byte, error) {
	pattern := regexp.MustCompile(`("version"\s*:\s*")([^"]*)(")`)
	if !pattern.Match(content) {
		return nil, fmt.Errorf("%s: no top-level \"version\" field found", c.Dialect())
	}
	out := pattern.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := pattern.FindSubmatch(match)
		return append(append([]byte{}, groups[1]...), append([]byte(newVersion), groups[3]...)...)
	})
	return out, nil
}

type byteSpan struct{ start, end int }

// findJSONObjectSpan locates the byte range of the value of a top-level
// "key": { ... } object, quote-aware so braces inside string values don't
// confuse the depth counter.
func findJSONObjectSpan(content []byte, key string) (byteSpan, bool) {
	keyPattern := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*\{`)
	loc := keyPattern.FindIndex(content)
	if loc == nil {
		return byteSpan{}, false
	}
	start := loc[1] // just after the opening brace
	depth := 1
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// inside a string, ignore braces
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return byteSpan{start: start, end: i}, true
			}
		}
	}
	return byteSpan{}, false
}
