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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/websublime/workspace-tools/internal/changeset"
	"github.com/websublime/workspace-tools/internal/config"
	"github.com/websublime/workspace-tools/internal/depgraph"
	"github.com/websublime/workspace-tools/internal/resolution"
	"github.com/websublime/workspace-tools/internal/workspace"
)

// configCandidates is the order in which loadConfigFile looks for a
// workspace config file when one isn't given explicitly.
var configCandidates = []string{"workspace.yaml", "workspace.yml", "workspace.hcl"}

// newLogger builds the text-handler slog.Logger the rest of the CLI uses,
// wired to the current --quiet/--verbose flags.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: GetLogLevel(),
	}))
}

// loadWorkspace walks root (the current directory if root is empty) and
// parses every manifest it finds, logging any non-fatal Warning at Warn
// level rather than failing the command outright.
func loadWorkspace(ctx context.Context, root string, logger *slog.Logger) (*workspace.Workspace, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		root = wd
	}

	ws, warnings, err := workspace.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("loading workspace: %w", err)
	}
	for _, w := range warnings {
		logger.Warn("skipped manifest", "path", w.Path, "reason", w.Message)
	}
	return ws, nil
}

// loadConfigFile reads path if given, otherwise probes configCandidates
// under root in order. Neither existing is not an error: DefaultConfig is
// used instead.
func loadConfigFile(root, path string, logger *slog.Logger) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	for _, name := range configCandidates {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			logger.Debug("loaded configuration", "path", candidate)
			return config.Load(candidate)
		}
	}
	logger.Debug("no workspace config found, using defaults")
	return config.DefaultConfig(), nil
}

// buildPlan loads the workspace, config, and changeset under root and
// resolves them into a Plan, following exactly the steps cmd/wst plan,
// apply, and report all need before they diverge.
func buildPlan(ctx context.Context, root, configPath, changesetDir string, logger *slog.Logger) (*workspace.Workspace, *resolution.Plan, error) {
	ws, err := loadWorkspace(ctx, root, logger)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfigFile(root, configPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	changes, err := changeset.Load(changesetDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading changeset: %w", err)
	}

	g := depgraph.Build(ws, cfg.Mask())
	plan, err := resolution.Resolve(ws, g, changes, cfg.ResolutionConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("resolving plan: %w", err)
	}
	return ws, plan, nil
}
