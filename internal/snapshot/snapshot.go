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

// Package snapshot derives pre-release version strings for unreleased
// builds (CI runs off a branch, local builds off a dirty tree) without ever
// touching a manifest: the value is computed on demand and handed back to
// the caller, never persisted.
package snapshot

import (
	"fmt"
	"regexp"

	"github.com/websublime/workspace-tools/internal/semver"
)

// shortCommitLen is how many leading hex characters of a commit identifier
// make it into a snapshot version.
const shortCommitLen = 7

// nonSlugChar matches any rune that can't appear in a snapshot pre-release
// identifier.
var nonSlugChar = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// Derive renders base as a snapshot pre-release version tagged with branch
// and commit: "{major}.{minor}.{patch}-{sanitized_branch}.{short_commit}".
// branch is sanitized by replacing every run of characters outside
// [A-Za-z0-9-] with a single "-"; commit is truncated to its first 7 hex
// characters (taken verbatim, not re-hashed, so a short input is used as-is).
func Derive(base semver.Version, branch, commit string) string {
	return fmt.Sprintf("%d.%d.%d-%s.%s", base.Major(), base.Minor(), base.Patch(), sanitizeBranch(branch), shortCommit(commit))
}

func sanitizeBranch(branch string) string {
	return nonSlugChar.ReplaceAllString(branch, "-")
}

func shortCommit(commit string) string {
	if len(commit) <= shortCommitLen {
		return commit
	}
	return commit[:shortCommitLen]
}
