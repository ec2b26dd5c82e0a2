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

// Package config handles configuration file parsing for the resolution
// engine.
//
// # Overview
//
// This package defines the structure for a workspace's config file, which
// controls how a changeset is turned into a Plan:
//   - which versioning strategy to use (independent vs unified)
//   - which dependency kinds propagate a bump to their dependents
//   - how deep propagation travels, and whether circular dependencies are
//     fatal
//   - which protocol-prefixed specifiers are treated as non-rewritable
//
// Two on-disk formats decode into the same Config struct: a YAML file
// (workspace.yaml), and an HCL sibling (workspace.hcl) for teams that
// prefer Terraform-style configuration. Exactly one of the two is read per
// call to Load.
//
// # Example Configuration
//
//	version: 1
//	strategy: independent
//	propagation_bump: patch
//	propagate_dependencies: true
//	propagate_dev_dependencies: true
//	propagate_peer_dependencies: true
//	max_depth: 0
//	fail_on_circular: false
//	skip_workspace_protocol: true
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"github.com/websublime/workspace-tools/internal/depgraph"
	"github.com/websublime/workspace-tools/internal/resolution"
	"github.com/websublime/workspace-tools/internal/secureio"
	"github.com/websublime/workspace-tools/internal/semver"
)

// Config is a workspace's persisted resolution configuration, decoded from
// either workspace.yaml or workspace.hcl into the same shape.
type Config struct {
	// Version is the configuration format version. Currently only 1 is
	// supported.
	Version int `yaml:"version" hcl:"version,optional"`

	// Strategy selects the resolution algorithm: "independent" or "unified".
	Strategy string `yaml:"strategy" hcl:"strategy,optional"`

	// PropagationBump is the magnitude applied to packages that move only
	// because a dependency moved: "major", "minor", "patch", or "none".
	PropagationBump string `yaml:"propagation_bump" hcl:"propagation_bump,optional"`

	// PropagateDependencies includes regular-kind edges in the dependency
	// graph used for propagation. Default true.
	PropagateDependencies *bool `yaml:"propagate_dependencies" hcl:"propagate_dependencies,optional"`

	// PropagateDevDependencies includes dev-kind edges. Default true.
	PropagateDevDependencies *bool `yaml:"propagate_dev_dependencies" hcl:"propagate_dev_dependencies,optional"`

	// PropagatePeerDependencies includes peer-kind edges. Default true.
	PropagatePeerDependencies *bool `yaml:"propagate_peer_dependencies" hcl:"propagate_peer_dependencies,optional"`

	// MaxDepth caps how many hops propagation travels from a direct bump.
	// Zero means unbounded.
	MaxDepth int `yaml:"max_depth" hcl:"max_depth,optional"`

	// FailOnCircular upgrades a cycle report to a fatal error. Default
	// false.
	FailOnCircular bool `yaml:"fail_on_circular" hcl:"fail_on_circular,optional"`

	// SkipWorkspaceProtocol additionally treats a ranged workspace:
	// specifier (e.g. "workspace:^1.2.3") as non-rewritable.
	// "workspace:*" is always non-rewritable regardless of this flag.
	// Default true.
	SkipWorkspaceProtocol *bool `yaml:"skip_workspace_protocol" hcl:"skip_workspace_protocol,optional"`

	// SkipFileProtocol, SkipLinkProtocol, SkipPortalProtocol exist for
	// future relaxation; file:/link:/portal: specifiers are always
	// non-rewritable today regardless of their value (they never carry a
	// version to rewrite from in the first place).
	SkipFileProtocol   bool `yaml:"skip_file_protocol" hcl:"skip_file_protocol,optional"`
	SkipLinkProtocol   bool `yaml:"skip_link_protocol" hcl:"skip_link_protocol,optional"`
	SkipPortalProtocol bool `yaml:"skip_portal_protocol" hcl:"skip_portal_protocol,optional"`
}

// DefaultConfig returns the configuration used when no config file is
// present: independent strategy, patch-level propagation across every
// dependency kind, unbounded depth, non-fatal cycles.
func DefaultConfig() *Config {
	t := true
	return &Config{
		Version:                    1,
		Strategy:                   string(resolution.StrategyIndependent),
		PropagationBump:            string(semver.BumpPatch),
		PropagateDependencies:      &t,
		PropagateDevDependencies:   &t,
		PropagatePeerDependencies:  &t,
		MaxDepth:                   0,
		FailOnCircular:             false,
		SkipWorkspaceProtocol:      &t,
	}
}

// Load reads and parses a config file, dispatching on its extension:
// ".yaml"/".yml" decodes with gopkg.in/yaml.v3, ".hcl" decodes with
// hashicorp/hcl's hclsimple. Any field left unset by the file falls back to
// DefaultConfig's value.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}
	content, err := secureio.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".hcl":
		if err := hclsimple.Decode(abs, content, nil, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q (want .yaml, .yml, or .hcl)", filepath.Ext(abs))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills in any field the file left at its zero value with
// DefaultConfig's value. Version, MaxDepth, FailOnCircular, and the
// protocol-skip booleans are meaningful at zero, so only the fields whose
// zero value is ambiguous (empty string, nil pointer) are defaulted.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Version == 0 {
		c.Version = d.Version
	}
	if c.Strategy == "" {
		c.Strategy = d.Strategy
	}
	if c.PropagationBump == "" {
		c.PropagationBump = d.PropagationBump
	}
	if c.PropagateDependencies == nil {
		c.PropagateDependencies = d.PropagateDependencies
	}
	if c.PropagateDevDependencies == nil {
		c.PropagateDevDependencies = d.PropagateDevDependencies
	}
	if c.PropagatePeerDependencies == nil {
		c.PropagatePeerDependencies = d.PropagatePeerDependencies
	}
	if c.SkipWorkspaceProtocol == nil {
		c.SkipWorkspaceProtocol = d.SkipWorkspaceProtocol
	}
}

// Validate checks that the configuration holds acceptable values.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported version: %d (expected 1)", c.Version)
	}

	switch resolution.Strategy(c.Strategy) {
	case resolution.StrategyIndependent, resolution.StrategyUnified:
	default:
		return fmt.Errorf("invalid strategy %q (must be: independent, unified)", c.Strategy)
	}

	switch semver.Bump(c.PropagationBump) {
	case semver.BumpMajor, semver.BumpMinor, semver.BumpPatch, semver.BumpNone:
	default:
		return fmt.Errorf("invalid propagation_bump %q (must be: major, minor, patch, none)", c.PropagationBump)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth cannot be negative")
	}

	return nil
}

// Mask converts the config's propagation toggles into the depgraph.Mask
// used to build the dependency graph. Optional dependencies never
// propagate (see depgraph.Mask's own doc comment) so there is no
// corresponding config key.
func (c *Config) Mask() depgraph.Mask {
	return depgraph.Mask{
		Dependencies:     boolOr(c.PropagateDependencies, true),
		DevDependencies:  boolOr(c.PropagateDevDependencies, true),
		PeerDependencies: boolOr(c.PropagatePeerDependencies, true),
	}
}

// ResolutionConfig converts the config into the resolution.Config the
// planner consumes.
func (c *Config) ResolutionConfig() resolution.Config {
	return resolution.Config{
		Strategy:            resolution.Strategy(c.Strategy),
		PropagationBump:     semver.Bump(c.PropagationBump),
		Mask:                c.Mask(),
		MaxDepth:            c.MaxDepth,
		FailOnCircular:      c.FailOnCircular,
		SkipWorkspaceRanges: boolOr(c.SkipWorkspaceProtocol, true),
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
