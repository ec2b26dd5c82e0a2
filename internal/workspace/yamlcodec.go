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

	"gopkg.in/yaml.v3"

	"github.com/websublime/workspace-tools/internal/rewrite"
	internalsemver "github.com/websublime/workspace-tools/internal/semver"
)

// pnpmManifest mirrors a pnpm-style "package.yaml" member manifest: a name,
// a version, and the four dependency maps, expressed in YAML instead of
// JSON.
type pnpmManifest struct {
	Name                 string            `yaml:"name"`
	Version              string            `yaml:"version"`
	Private              bool              `yaml:"private"`
	Dependencies         map[string]string `yaml:"dependencies"`
	DevDependencies      map[string]string `yaml:"devDependencies"`
	PeerDependencies     map[string]string `yaml:"peerDependencies"`
	OptionalDependencies map[string]string `yaml:"optionalDependencies"`
}

type yamlCodec struct{}

func (c *yamlCodec) Dialect() string    { return "pnpm" }
func (c *yamlCodec) DetectFile() string { return "package.yaml" }

func (c *yamlCodec) ParseRecord(path string, content []byte) (*PackageRecord, error) {
	var manifest pnpmManifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("parsing %s: missing required \"name\" field", path)
	}

	rec := &PackageRecord{
		Name:         manifest.Name,
		ManifestPath: path,
		Dialect:      c.Dialect(),
		Private:      manifest.Private,
	}
	if manifest.Version != "" {
		v, err := internalsemver.ParseVersion(manifest.Version)
		if err != nil {
			return nil, &InvalidVersionError{Path: path, Value: manifest.Version, Err: err}
		}
		rec.Version = v
	}

	rec.Dependencies = append(rec.Dependencies, depsFromMap(manifest.Dependencies, KindRuntime)...)
	rec.Dependencies = append(rec.Dependencies, depsFromMap(manifest.DevDependencies, KindDev)...)
	rec.Dependencies = append(rec.Dependencies, depsFromMap(manifest.PeerDependencies, KindPeer)...)
	rec.Dependencies = append(rec.Dependencies, depsFromMap(manifest.OptionalDependencies, KindOptional)...)
	return rec, nil
}

var yamlFieldName = map[DependencyKind]string{
	KindRuntime:  "dependencies",
	KindDev:      "devDependencies",
	KindPeer:     "peerDependencies",
	KindOptional: "optionalDependencies",
}

// RewriteDependencies uses rewrite.UpdateYAMLField to edit the document's
// node tree in place, so comments and key order in the original file
// survive untouched.
func (c *yamlCodec) RewriteDependencies(content []byte, edits []DependencyEdit) ([]byte, error) {
	out := string(content)
	for _, edit := range edits {
		field, ok := yamlFieldName[edit.Kind]
		if !ok {
			return nil, fmt.Errorf("unknown dependency kind %q", edit.Kind)
		}
		updated, err := rewrite.UpdateYAMLField(out, []string{field, edit.Name}, edit.NewSpec)
		if err != nil {
			return nil, fmt.Errorf("pnpm: dependency %q not found in %q: %w", edit.Name, field, err)
		}
		out = updated
	}
	return []byte(out), nil
}

// RewriteVersion replaces the top-level "version" scalar.
func (c *yamlCodec) RewriteVersion(content []byte, newVersion string) ([]byte, error) {
	out, err := rewrite.UpdateYAMLField(string(content), []string{"version"}, newVersion)
	if err != nil {
		return nil, fmt.Errorf("pnpm: %w", err)
	}
	return []byte(out), nil
}
