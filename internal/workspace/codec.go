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

// DependencyEdit is a single rewrite to apply to a dependency's version spec
// inside a manifest's raw bytes.
type DependencyEdit struct {
	Kind    DependencyKind
	Name    string
	NewSpec string
}

// ManifestCodec understands one manifest dialect well enough to detect it,
// parse it into a PackageRecord, and surgically rewrite dependency version
// specs in its raw bytes without disturbing anything else: comments,
// formatting, field order, trailing newline.
type ManifestCodec interface {
	// Dialect is a short identifier such as "npm", "cargo", "pnpm".
	Dialect() string

	// DetectFile returns the manifest filename this codec owns (e.g.
	// "package.json") so callers can test for its presence in a directory.
	DetectFile() string

	// ParseRecord parses a manifest's raw bytes into a PackageRecord. path is
	// used only for error messages.
	ParseRecord(path string, content []byte) (*PackageRecord, error)

	// RewriteDependencies applies edits to content and returns the new
	// bytes, preserving everything else about the manifest's formatting.
	RewriteDependencies(content []byte, edits []DependencyEdit) ([]byte, error)

	// RewriteVersion rewrites the manifest's own version field to newVersion
	// (already formatted, e.g. "1.3.0"), preserving everything else.
	RewriteVersion(content []byte, newVersion string) ([]byte, error)
}

// Codecs returns the manifest dialects this package knows how to read and
// rewrite, in the order they are tried when scanning a directory.
func Codecs() []ManifestCodec {
	return []ManifestCodec{
		&jsonCodec{},
		&tomlCodec{},
		&yamlCodec{},
	}
}

// CodecByDialect returns the codec registered under the given Dialect()
// name, as stamped onto PackageRecord.Dialect at load time.
func CodecByDialect(dialect string) (ManifestCodec, bool) {
	for _, c := range Codecs() {
		if c.Dialect() == dialect {
			return c, true
		}
	}
	return nil, false
}
