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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/websublime/workspace-tools/internal/secureio"
)

// controlDirName is the directory, relative to a workspace root, where
// backups and the write-ahead list live.
const controlDirName = ".wst"

// walEntry is one manifest's in-flight mutation as recorded before any write
// begins: where its pre-write bytes were copied, and what it is about to
// become, so a crash mid-apply can be recovered from.
type walEntry struct {
	Path       string `json:"path"`
	BackupPath string `json:"backup_path"`
	NewText    string `json:"new_text"`
}

// walFile is the write-ahead list persisted under the control directory for
// the duration of a single apply call.
type walFile struct {
	Token   string     `json:"token"`
	Entries []walEntry `json:"entries"`
}

// backupMetadata is the sidecar file written alongside each backup set,
// recording which manifests it covers and whether the apply that produced it
// ultimately committed.
type backupMetadata struct {
	Paths   []string `json:"paths"`
	Success bool     `json:"success"`
}

func controlDir(root string) string { return filepath.Join(root, controlDirName) }
func walPath(root string) string    { return filepath.Join(controlDir(root), "wal.json") }
func backupsRoot(root string) string { return filepath.Join(controlDir(root), "backups") }
func lockPath(root string) string    { return filepath.Join(controlDir(root), "lock") }

// acquireLock takes the workspace's advisory apply lock, held for the
// prepare-through-commit span so two applies can't interleave writes to the
// same manifests. The create-exclusive open doubles as the atomicity
// primitive: whoever creates the file owns the lock.
func acquireLock(root string) (release func(), err error) {
	if err := os.MkdirAll(controlDir(root), 0o755); err != nil {
		return nil, fmt.Errorf("creating control directory: %w", err)
	}
	f, err := os.OpenFile(lockPath(root), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("workspace %s is locked by another apply (remove %s if it is stale)", root, lockPath(root))
		}
		return nil, fmt.Errorf("acquiring workspace lock: %w", err)
	}
	_ = f.Close()
	return func() { _ = os.Remove(lockPath(root)) }, nil
}

func writeWAL(root string, wal walFile) error {
	data, err := json.MarshalIndent(wal, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding write-ahead list: %w", err)
	}
	if err := os.MkdirAll(controlDir(root), 0o755); err != nil {
		return fmt.Errorf("creating control directory: %w", err)
	}
	return secureio.WriteFile(walPath(root), data, 0o644)
}

func readWAL(root string) (walFile, error) {
	data, err := secureio.ReadFile(walPath(root))
	if err != nil {
		return walFile{}, err
	}
	var wal walFile
	if err := json.Unmarshal(data, &wal); err != nil {
		return walFile{}, fmt.Errorf("decoding write-ahead list: %w", err)
	}
	return wal, nil
}

func deleteWAL(root string) error {
	err := os.Remove(walPath(root))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func writeBackupMetadata(backupDir string, paths []string, success bool) error {
	data, err := json.MarshalIndent(backupMetadata{Paths: paths, Success: success}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding backup metadata: %w", err)
	}
	return secureio.WriteFile(filepath.Join(backupDir, "metadata.json"), data, 0o644)
}
