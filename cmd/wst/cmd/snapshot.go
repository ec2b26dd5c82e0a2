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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools/internal/snapshot"
)

var (
	snapshotRoot    string
	snapshotPackage string
	snapshotBranch  string
	snapshotCommit  string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <package>",
	Short: "Derive a branch-scoped pre-release version",
	Long: `Computes a pre-release version string for an unreleased build, tying a
package's current version to a branch name and commit, without writing
anything to disk or touching the manifest. Run this as many times as you
like against the same inputs: it always derives the same string.`,
	Example: `  # Snapshot the "api" package off the current branch/commit
  wst snapshot api --branch feat/oauth-integration --commit abc123def456789`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVar(&snapshotRoot, "root", "", "workspace root (default: current directory)")
	snapshotCmd.Flags().StringVar(&snapshotBranch, "branch", "", "branch name to derive the pre-release identifier from")
	snapshotCmd.Flags().StringVar(&snapshotCommit, "commit", "", "commit identifier to derive the short hash from")
	if err := snapshotCmd.MarkFlagRequired("branch"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to mark --branch required: %v\n", err)
	}
	if err := snapshotCmd.MarkFlagRequired("commit"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to mark --commit required: %v\n", err)
	}
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	snapshotPackage = args[0]
	logger := newLogger()

	root := snapshotRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		root = wd
	}

	ws, err := loadWorkspace(cmd.Context(), root, logger)
	if err != nil {
		return err
	}

	rec, ok := ws.Get(snapshotPackage)
	if !ok {
		return fmt.Errorf("package %q not found in workspace", snapshotPackage)
	}

	fmt.Println(snapshot.Derive(rec.Version, snapshotBranch, snapshotCommit))
	return nil
}
