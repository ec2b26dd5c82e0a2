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

package semver

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantKind     SpecKind
		wantOperator string
		wantHasBase  bool
	}{
		{name: "caret range", raw: "^1.2.3", wantKind: SpecSemverRange, wantOperator: "^", wantHasBase: true},
		{name: "tilde range", raw: "~1.2.3", wantKind: SpecSemverRange, wantOperator: "~", wantHasBase: true},
		{name: "exact", raw: "1.2.3", wantKind: SpecSemverRange, wantOperator: "", wantHasBase: true},
		{name: "gte", raw: ">=1.2.3", wantKind: SpecSemverRange, wantOperator: ">=", wantHasBase: true},
		{name: "workspace star", raw: "workspace:*", wantKind: SpecWorkspace, wantOperator: "*"},
		{name: "workspace caret", raw: "workspace:^1.0.0", wantKind: SpecWorkspace, wantOperator: "^", wantHasBase: true},
		{name: "workspace exact", raw: "workspace:1.0.0", wantKind: SpecWorkspace, wantOperator: "", wantHasBase: true},
		{name: "workspace bare caret", raw: "workspace:^", wantKind: SpecWorkspace, wantOperator: "^"},
		{name: "workspace bare tilde", raw: "workspace:~", wantKind: SpecWorkspace, wantOperator: "~"},
		{name: "workspace garbage opaque", raw: "workspace:banana", wantKind: SpecOpaque},
		{name: "file protocol", raw: "file:../pkg", wantKind: SpecLocal},
		{name: "link protocol", raw: "link:../pkg", wantKind: SpecLocal},
		{name: "portal protocol", raw: "portal:../pkg", wantKind: SpecLocal},
		{name: "git url opaque", raw: "git+https://example.com/pkg.git", wantKind: SpecOpaque},
		{name: "tag alias opaque", raw: "latest", wantKind: SpecOpaque},
		{name: "wildcard opaque", raw: "*", wantKind: SpecOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw)
			if got.Kind != tt.wantKind {
				t.Fatalf("Classify(%q).Kind = %s, want %s", tt.raw, got.Kind, tt.wantKind)
			}
			if got.Operator != tt.wantOperator {
				t.Fatalf("Classify(%q).Operator = %q, want %q", tt.raw, got.Operator, tt.wantOperator)
			}
			if got.HasBase != tt.wantHasBase {
				t.Fatalf("Classify(%q).HasBase = %v, want %v", tt.raw, got.HasBase, tt.wantHasBase)
			}
		})
	}
}

func TestIsRewritable(t *testing.T) {
	if !Classify("^1.2.3").IsRewritable() {
		t.Fatal("caret range should be rewritable")
	}
	if Classify("workspace:*").IsRewritable() {
		t.Fatal("workspace:* should not be rewritable")
	}
	if !Classify("workspace:^1.0.0").IsRewritable() {
		t.Fatal("workspace:^1.0.0 should be rewritable")
	}
	if Classify("workspace:^").IsRewritable() {
		t.Fatal("workspace:^ has no base version and should not be rewritable")
	}
	if Classify("file:../pkg").IsRewritable() {
		t.Fatal("file: spec should not be rewritable")
	}
	if Classify("git+https://example.com/pkg.git").IsRewritable() {
		t.Fatal("opaque spec should not be rewritable")
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		to   string
		want string
	}{
		{name: "caret preserved", raw: "^1.2.3", to: "1.3.0", want: "^1.3.0"},
		{name: "tilde preserved", raw: "~1.2.3", to: "1.2.4", want: "~1.2.4"},
		{name: "exact preserved", raw: "1.2.3", to: "1.3.0", want: "1.3.0"},
		{name: "workspace caret preserved", raw: "workspace:^1.0.0", to: "2.0.0", want: "workspace:^2.0.0"},
		{name: "workspace exact preserved", raw: "workspace:1.0.0", to: "1.1.0", want: "workspace:1.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := Classify(tt.raw)
			got, err := spec.Rewrite(MustParseVersion(tt.to))
			if err != nil {
				t.Fatalf("Rewrite() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Rewrite(%q, %s) = %q, want %q", tt.raw, tt.to, got, tt.want)
			}
		})
	}
}

func TestRewriteNotRewritable(t *testing.T) {
	spec := Classify("workspace:*")
	if _, err := spec.Rewrite(MustParseVersion("1.0.0")); err == nil {
		t.Fatal("expected error rewriting workspace:*")
	}
}

func TestSatisfies(t *testing.T) {
	if !Classify("^1.2.0").Satisfies(MustParseVersion("1.5.0")) {
		t.Fatal("^1.2.0 should allow 1.5.0")
	}
	if Classify("^1.2.0").Satisfies(MustParseVersion("2.0.0")) {
		t.Fatal("^1.2.0 should not allow 2.0.0")
	}
	if !Classify("workspace:*").Satisfies(MustParseVersion("5.0.0")) {
		t.Fatal("workspace:* should always be satisfied")
	}
}
