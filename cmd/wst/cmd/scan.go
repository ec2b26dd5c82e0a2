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
	"strings"

	"github.com/spf13/cobra"

	"github.com/websublime/workspace-tools/internal/config"
	"github.com/websublime/workspace-tools/internal/depgraph"
)

var (
	scanFormat string
	scanRoot   string
	scanConfig string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover workspace packages and their dependency graph",
	Long: `Walks the workspace root, parses every recognized manifest dialect, and
prints the package set along with how many dependency-graph edges each
member carries once propagation masking from the workspace config is
applied.`,
	Example: `  # List every package found under the current directory
  wst scan

  # As JSON, for scripting
  wst scan --format json`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "output format: table, json")
	scanCmd.Flags().StringVar(&scanRoot, "root", "", "workspace root (default: current directory)")
	scanCmd.Flags().StringVar(&scanConfig, "config", "", "path to workspace.yaml or workspace.hcl (default: probed under root)")

	if err := scanCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to register shell completion: %v\n", err)
	}
}

// scanRow is one package's summary line, shared by the table and JSON
// renderings.
type scanRow struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Dialect      string `json:"dialect"`
	Dependencies int    `json:"dependencies"`
	Dependents   int    `json:"dependents"`
}

func runScan(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	root := scanRoot
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

	cfg, err := loadConfigFile(root, scanConfig, logger)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	g := depgraph.Build(ws, cfg.Mask())

	rows := make([]scanRow, 0, len(ws.Packages))
	for _, rec := range ws.Sorted() {
		rows = append(rows, scanRow{
			Name:         rec.Name,
			Version:      rec.Version.String(),
			Dialect:      rec.Dialect,
			Dependencies: len(g.DependenciesOf(rec.Name)),
			Dependents:   len(g.DependentsOf(rec.Name)),
		})
	}

	switch scanFormat {
	case "json":
		return outputJSON(rows)
	case "table":
		return outputScanTable(rows, cfg)
	default:
		return fmt.Errorf("unsupported format: %s", scanFormat)
	}
}

func outputScanTable(rows []scanRow, cfg *config.Config) error {
	if len(rows) == 0 {
		fmt.Println("No packages found.")
		return nil
	}

	fmt.Printf("%-30s %-12s %-12s %-8s %-8s\n", "Package", "Version", "Dialect", "Deps", "Dependents")
	fmt.Println(strings.Repeat("-", 76))
	for _, r := range rows {
		fmt.Printf("%-30s %-12s %-12s %-8d %-8d\n", r.Name, r.Version, r.Dialect, r.Dependencies, r.Dependents)
	}
	fmt.Printf("\nTotal: %d packages (strategy: %s)\n", len(rows), cfg.Strategy)
	return nil
}
