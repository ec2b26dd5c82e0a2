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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools/internal/report"
)

var (
	planFormat    string
	planOut       string
	planRoot      string
	planConfig    string
	planChangeset string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a resolution plan from a changeset",
	Long: `Loads the workspace, its config, and a changeset directory, then resolves
the full set of version bumps and manifest edits they imply.

The plan is never written to disk by this command; use "wst apply" for that.
Pass --out to also save the plan's JSON report to a file for later
"wst report" re-rendering.`,
	Example: `  # Show a plan as a table
  wst plan

  # Show a plan as JSON
  wst plan --format json

  # Save the plan report for later re-rendering
  wst plan --out plan.json`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planFormat, "format", "f", "table", "output format: table, json")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "write the plan report to file")
	planCmd.Flags().StringVar(&planRoot, "root", "", "workspace root (default: current directory)")
	planCmd.Flags().StringVar(&planConfig, "config", "", "path to workspace.yaml or workspace.hcl (default: probed under root)")
	planCmd.Flags().StringVar(&planChangeset, "changeset", ".changeset", "directory of changeset JSON files")

	if err := planCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to register shell completion: %v\n", err)
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	_, plan, err := buildPlan(cmd.Context(), planRoot, planConfig, planChangeset, logger)
	if err != nil {
		return err
	}

	rep := report.Build(plan)

	if planOut != "" {
		data, err := rep.ToJSON()
		if err != nil {
			return fmt.Errorf("marshal plan report: %w", err)
		}
		if err := os.WriteFile(planOut, data, 0o600); err != nil {
			return fmt.Errorf("write plan report: %w", err)
		}
		fmt.Printf("Plan report written to %s\n", planOut)
	}

	switch planFormat {
	case "json":
		data, err := rep.ToJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "table":
		return rep.ToTable(os.Stdout)
	default:
		return fmt.Errorf("unsupported format: %s", planFormat)
	}
}

// outputJSON is shared by every subcommand that falls back to a plain JSON
// dump for a type report doesn't already know how to render.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
