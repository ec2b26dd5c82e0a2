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

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report <plan.json>",
	Short: "Re-render a previously saved plan report",
	Long: `Loads the JSON report a prior "wst plan --out" wrote and renders it again,
without re-resolving the workspace. Useful for posting the same plan to
more than one place (terminal, PR comment, CI log) without recomputing it
and risking it drift between renders.`,
	Example: `  # Save a plan, then re-render it later as a table
  wst plan --out plan.json
  wst report plan.json

  # Re-render as JSON (round-trips byte-for-byte)
  wst report plan.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "output format: table, json")
	if err := reportCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to register shell completion: %v\n", err)
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading plan report %s: %w", args[0], err)
	}

	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return fmt.Errorf("parsing plan report %s: %w", args[0], err)
	}

	switch reportFormat {
	case "json":
		fmt.Println(string(data))
		return nil
	case "table":
		return rep.ToTable(os.Stdout)
	default:
		return fmt.Errorf("unsupported format: %s", reportFormat)
	}
}
