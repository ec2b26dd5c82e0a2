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

// Package apply executes a resolved plan against the manifests on disk: it
// re-serializes the version and dependency-rewrite edits a plan describes,
// snapshots every file it is about to touch, writes the new bytes with
// per-file atomicity, and rolls every write back if any one of them fails.
package apply

import (
	"fmt"
	"time"
)

// Clock produces the timestamps used to name backup tokens. Production code
// uses SystemClock; tests inject a fixed clock so backup directory names are
// deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// PendingWrite is one manifest's prepared mutation: the original bytes (kept
// for validation and for producing diffs) and the new bytes to write.
type PendingWrite struct {
	// Package is the workspace package name this manifest belongs to.
	Package string
	// Path is the manifest's absolute path.
	Path string
	// OldBytes is the manifest's content exactly as loaded.
	OldBytes []byte
	// NewBytes is the manifest's content after applying the version and
	// dependency rewrites the plan describes for Package.
	NewBytes []byte
}

// Result describes the outcome of Apply.
type Result struct {
	// Written lists the manifest paths successfully committed, in the order
	// they were written.
	Written []string
	// RolledBack is true when a write failed and every prior write in this
	// call was restored from backup.
	RolledBack bool
	// BackupDir is the control-directory location the snapshot was written
	// to, retained after a rollback so the caller can inspect or clear it.
	BackupDir string
}

// ConcurrentModificationError reports that a manifest changed on disk between
// when the workspace was loaded and when apply re-read it to prepare a write.
type ConcurrentModificationError struct {
	Path string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("manifest %s changed since it was loaded", e.Path)
}

// PrepareFailureError reports that re-parsing a candidate rewrite failed
// validation: the re-serialized bytes don't parse, or don't carry the
// version/rewrites the plan intended.
type PrepareFailureError struct {
	Path string
	Err  error
}

func (e *PrepareFailureError) Error() string {
	return fmt.Sprintf("preparing %s: %v", e.Path, e.Err)
}

func (e *PrepareFailureError) Unwrap() error { return e.Err }

// PartialWriteFailureError reports that a write failed mid-apply. Restored
// lists the paths that were already written and have since been rolled back
// from their backups.
type PartialWriteFailureError struct {
	Path      string
	Err       error
	Restored  []string
	BackupDir string
}

func (e *PartialWriteFailureError) Error() string {
	return fmt.Sprintf("writing %s: %v (restored %d file(s) from %s)", e.Path, e.Err, len(e.Restored), e.BackupDir)
}

func (e *PartialWriteFailureError) Unwrap() error { return e.Err }

// RollbackIncompleteError reports that restoring from backup itself failed
// partway through. The write-ahead list under BackupDir's control directory
// is left in place so a subsequent RollbackLast call can finish the job.
type RollbackIncompleteError struct {
	BackupDir string
	Remaining []string
	Err       error
}

func (e *RollbackIncompleteError) Error() string {
	return fmt.Sprintf("rollback incomplete: %v (%d file(s) still pending in %s)", e.Err, len(e.Remaining), e.BackupDir)
}

func (e *RollbackIncompleteError) Unwrap() error { return e.Err }
