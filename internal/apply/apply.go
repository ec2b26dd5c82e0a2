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

package apply

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/websublime/workspace-tools/internal/resolution"
	"github.com/websublime/workspace-tools/internal/secureio"
	"github.com/websublime/workspace-tools/internal/workspace"
)

// timeToken is the layout used to name a single apply call's backup
// directory; sub-microsecond precision keeps repeated calls within the same
// process from colliding.
const timeToken = "20060102T150405.000000000"

// snapshotConcurrency bounds how many manifests are backed up at once
// during the snapshot phase; the same fixed worker-pool size the loader
// uses for its own bounded-concurrency reads.
const snapshotConcurrency = 4

// Apply executes plan against ws's manifests, following the prepare,
// snapshot, write, commit protocol: every mutation becomes visible or none
// does. An empty plan (no updates, no rewrites) is a no-op that performs no
// I/O beyond Prepare's reads. ctx cancellation is observed between files:
// a cancellation seen mid-write triggers the same rollback as a failed
// write, leaving the workspace untouched.
func Apply(ctx context.Context, ws *workspace.Workspace, plan *resolution.Plan, clock Clock, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = SystemClock{}
	}

	pending, err := Prepare(ws, plan)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return &Result{}, nil
	}

	release, err := acquireLock(ws.Root)
	if err != nil {
		return nil, err
	}
	defer release()

	// Concurrent modification check: re-read every path and compare against
	// what Prepare saw. A mismatch aborts before any write.
	for _, pw := range pending {
		current, err := secureio.ReadFile(pw.Path)
		if err != nil {
			return nil, &ConcurrentModificationError{Path: pw.Path}
		}
		if !bytes.Equal(current, pw.OldBytes) {
			return nil, &ConcurrentModificationError{Path: pw.Path}
		}
	}

	token := clock.Now().UTC().Format(timeToken)
	backupDir := filepath.Join(backupsRoot(ws.Root), token)
	logger.Info("applying plan", "manifests", len(pending), "backup_dir", backupDir)

	// Snapshotting has no ordering requirement between files, so the
	// backup copies run with bounded concurrency; the write phase below
	// does not and stays strictly sequential.
	entries := make([]walEntry, len(pending))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)
	for i, pw := range pending {
		i, pw := i, pw
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			relPath, err := filepath.Rel(ws.Root, pw.Path)
			if err != nil {
				relPath = filepath.Base(pw.Path)
			}
			backupPath := filepath.Join(backupDir, relPath)
			mu.Lock()
			mkErr := os.MkdirAll(filepath.Dir(backupPath), 0o755)
			mu.Unlock()
			if mkErr != nil {
				return fmt.Errorf("snapshotting %s: %w", pw.Path, mkErr)
			}
			if err := secureio.WriteFile(backupPath, pw.OldBytes, 0o644); err != nil {
				return fmt.Errorf("snapshotting %s: %w", pw.Path, err)
			}
			entries[i] = walEntry{Path: pw.Path, BackupPath: backupPath, NewText: string(pw.NewBytes)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	wal := walFile{Token: token, Entries: entries}
	paths := make([]string, 0, len(pending))
	for _, pw := range pending {
		paths = append(paths, pw.Path)
	}
	sort.Strings(paths)

	if err := writeWAL(ws.Root, wal); err != nil {
		return nil, fmt.Errorf("persisting write-ahead list: %w", err)
	}

	var written []string
	for _, pw := range pending {
		if err := ctx.Err(); err != nil {
			return rollback(ws.Root, wal, written, backupDir, logger, &PartialWriteFailureError{Path: pw.Path, Err: err})
		}
		perm := os.FileMode(0o644)
		if info, err := os.Stat(pw.Path); err == nil {
			perm = info.Mode().Perm()
		}
		tmp := pw.Path + ".wst-tmp-" + token
		if err := secureio.WriteFile(tmp, pw.NewBytes, perm); err != nil {
			return rollback(ws.Root, wal, written, backupDir, logger, &PartialWriteFailureError{Path: pw.Path, Err: err})
		}
		if err := os.Rename(tmp, pw.Path); err != nil {
			_ = os.Remove(tmp)
			return rollback(ws.Root, wal, written, backupDir, logger, &PartialWriteFailureError{Path: pw.Path, Err: err})
		}
		written = append(written, pw.Path)
	}

	if err := deleteWAL(ws.Root); err != nil {
		logger.Warn("commit: failed to remove write-ahead list", "error", err)
	}
	if err := writeBackupMetadata(backupDir, paths, true); err != nil {
		logger.Warn("commit: failed to write backup metadata", "error", err)
	}
	logger.Info("plan applied", "manifests", len(written))

	return &Result{Written: written, BackupDir: backupDir}, nil
}

// rollback restores every path in written from its WAL backup entry, then
// surfaces origErr wrapped with the restored-paths list. If a restore itself
// fails, the write-ahead list is left in place and a RollbackIncompleteError
// is returned instead so a later RollbackLast call can finish the job.
func rollback(root string, wal walFile, written []string, backupDir string, logger *slog.Logger, origErr *PartialWriteFailureError) (*Result, error) {
	logger.Error("write failed, rolling back", "path", origErr.Path, "error", origErr.Err)

	byPath := make(map[string]walEntry, len(wal.Entries))
	for _, e := range wal.Entries {
		byPath[e.Path] = e
	}

	var restored []string
	var remaining []string
	for _, path := range written {
		entry, ok := byPath[path]
		if !ok {
			remaining = append(remaining, path)
			continue
		}
		data, err := secureio.ReadFile(entry.BackupPath)
		if err != nil {
			remaining = append(remaining, path)
			continue
		}
		if err := secureio.WriteFile(path, data, 0o644); err != nil {
			remaining = append(remaining, path)
			continue
		}
		restored = append(restored, path)
	}

	if len(remaining) > 0 {
		return nil, &RollbackIncompleteError{BackupDir: backupDir, Remaining: remaining, Err: origErr}
	}

	if err := deleteWAL(root); err != nil {
		logger.Warn("rollback: failed to remove write-ahead list", "error", err)
	}
	if err := writeBackupMetadata(backupDir, written, false); err != nil {
		logger.Warn("rollback: failed to write backup metadata", "error", err)
	}

	origErr.Restored = restored
	origErr.BackupDir = backupDir
	return &Result{Written: nil, RolledBack: true, BackupDir: backupDir}, origErr
}

// RollbackLast resumes an interrupted rollback: it reads the write-ahead
// list left under root's control directory and restores every entry from its
// backup, then deletes the list. It is a no-op, reporting no error, if no
// write-ahead list is present.
func RollbackLast(root string) error {
	wal, err := readWAL(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var remaining []string
	for _, entry := range wal.Entries {
		data, err := secureio.ReadFile(entry.BackupPath)
		if err != nil {
			remaining = append(remaining, entry.Path)
			continue
		}
		if err := secureio.WriteFile(entry.Path, data, 0o644); err != nil {
			remaining = append(remaining, entry.Path)
			continue
		}
	}

	if len(remaining) > 0 {
		return &RollbackIncompleteError{BackupDir: controlDir(root), Remaining: remaining, Err: fmt.Errorf("some manifests could not be restored")}
	}
	return deleteWAL(root)
}
