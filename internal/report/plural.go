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

package report

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer renders the counter lines in the table view, pluralizing "package",
// "rewrite", and "cycle" correctly for singular counts.
var printer = message.NewPrinter(language.English)

func init() {
	mustSet("workspace-tools/package-count", "%d package", "%d packages")
	mustSet("workspace-tools/rewrite-count", "%d rewrite", "%d rewrites")
	mustSet("workspace-tools/cycle-count", "%d cycle", "%d cycles")
}

func mustSet(key, one, other string) {
	if err := message.Set(language.English, key, plural.Selectf(1, "%d",
		plural.One, one,
		plural.Other, other,
	)); err != nil {
		panic(err)
	}
}

func pluralPackages(n int) string { return printer.Sprintf("workspace-tools/package-count", n) }
func pluralRewrites(n int) string { return printer.Sprintf("workspace-tools/rewrite-count", n) }
func pluralCycles(n int) string   { return printer.Sprintf("workspace-tools/cycle-count", n) }
