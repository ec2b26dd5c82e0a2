// wst resolves and propagates version bumps across a multi-package
// workspace: given a set of directly changed packages, it computes which
// of their dependents also need a bump, builds a plan of manifest edits,
// and applies them atomically.
//
// Usage:
//
//	wst scan      Discover workspace packages and their dependency graph
//	wst plan      Compute a resolution plan from a changeset
//	wst apply     Apply a plan's manifest edits
//	wst snapshot  Derive a pre-release version for an unreleased build
//	wst report    Re-render a previously computed plan
package main

import (
	"fmt"
	"os"

	"github.com/websublime/workspace-tools/cmd/wst/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
