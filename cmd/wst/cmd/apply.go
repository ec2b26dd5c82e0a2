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

	"github.com/websublime/workspace-tools/internal/apply"
	"github.com/websublime/workspace-tools/internal/report"
)

var (
	applyRoot      string
	applyConfig    string
	applyChangeset string
	applyDryRun    bool
	applyDiff      bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a plan's manifest edits",
	Long: `Resolves the workspace's changeset into a plan, exactly as "wst plan" does,
then writes every version bump and dependency rewrite the plan implies to
its manifest, atomically: either every file is updated or none is.

The planner always runs; --dry-run only gates whether the write phase
is invoked afterward, so the plan shown is identical with or without it.`,
	Example: `  # Show what would change without touching any file
  wst apply --dry-run --diff

  # Apply for real
  wst apply`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&applyRoot, "root", "", "workspace root (default: current directory)")
	applyCmd.Flags().StringVar(&applyConfig, "config", "", "path to workspace.yaml or workspace.hcl (default: probed under root)")
	applyCmd.Flags().StringVar(&applyChangeset, "changeset", ".changeset", "directory of changeset JSON files")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "compute and show the plan without writing any file")
	applyCmd.Flags().BoolVar(&applyDiff, "diff", false, "show a unified diff for every rewritten manifest")
}

func runApply(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	ws, plan, err := buildPlan(cmd.Context(), applyRoot, applyConfig, applyChangeset, logger)
	if err != nil {
		return err
	}

	if len(plan.Updates) == 0 {
		fmt.Println("No updates to apply.")
		return nil
	}

	rep := report.Build(plan)
	if applyDiff {
		pending, err := apply.Prepare(ws, plan)
		if err != nil {
			return fmt.Errorf("preparing manifest rewrites: %w", err)
		}
		if err := rep.AttachDiffs(pending); err != nil {
			return err
		}
	}
	if err := rep.ToTable(os.Stdout); err != nil {
		return err
	}

	if applyDryRun {
		fmt.Println("\nDry-run: no files were written.")
		return nil
	}

	result, err := apply.Apply(cmd.Context(), ws, plan, apply.SystemClock{}, logger)
	if err != nil {
		return fmt.Errorf("apply failed: %w", err)
	}

	fmt.Printf("\nApplied %d manifest(s). Backup: %s\n", len(result.Written), result.BackupDir)
	return nil
}
