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

package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/websublime/workspace-tools/internal/secureio"
)

// skippedDirs are never descended into while scanning for manifests.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
}

// LoadConcurrency bounds how many manifests are parsed concurrently. It
// mirrors the fixed worker-pool size the rest of this engine's I/O-bound
// phases use.
const LoadConcurrency = 4

// candidate is a manifest file found during the directory walk, paired with
// the codec that claims to own its dialect.
type candidate struct {
	path  string
	codec ManifestCodec
}

// Load walks root, finds every manifest recognized by a registered
// ManifestCodec, and parses them concurrently into a Workspace. It returns
// non-fatal Warnings for manifests that failed to parse; structural problems
// (duplicate names, no readable root, i/o failures reading a file that
// exists) and a manifest whose version field can't be parsed as a semantic
// version (*InvalidVersionError) are returned as an error instead.
func Load(ctx context.Context, root string) (*Workspace, []Warning, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, err
	}
	candidates, err := findCandidates(root)
	if err != nil {
		return nil, nil, err
	}

	records := make([]*PackageRecord, len(candidates))
	warnings := make([]Warning, len(candidates))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(LoadConcurrency)

	for i, cand := range candidates {
		i, cand := i, cand
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			content, err := secureio.ReadFile(cand.path)
			if err != nil {
				mu.Lock()
				warnings[i] = Warning{Path: cand.path, Message: err.Error()}
				mu.Unlock()
				return nil
			}
			rec, err := cand.codec.ParseRecord(cand.path, content)
			if err != nil {
				var invErr *InvalidVersionError
				if errors.As(err, &invErr) {
					return invErr
				}
				mu.Lock()
				warnings[i] = Warning{Path: cand.path, Message: err.Error()}
				mu.Unlock()
				return nil
			}
			rec.Dir = filepath.Dir(cand.path)
			mu.Lock()
			records[i] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	ws := &Workspace{Root: root, Packages: make(map[string]*PackageRecord)}
	var realWarnings []Warning
	for i, rec := range records {
		if rec == nil {
			if warnings[i].Path != "" {
				realWarnings = append(realWarnings, warnings[i])
			}
			continue
		}
		if existing, dup := ws.Packages[rec.Name]; dup {
			return nil, nil, &DuplicateNameError{Name: rec.Name, FirstPath: existing.ManifestPath, SecondPath: rec.ManifestPath}
		}
		ws.Packages[rec.Name] = rec
	}

	names := make([]string, 0, len(ws.Packages))
	for name := range ws.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	ws.order = names

	return ws, realWarnings, nil
}

func findCandidates(root string) ([]candidate, error) {
	codecs := Codecs()
	var out []candidate

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if name != "." && (skippedDirs[name] || (len(name) > 1 && name[0] == '.')) {
				return filepath.SkipDir
			}
			return nil
		}
		for _, codec := range codecs {
			if filepath.Base(path) == codec.DetectFile() {
				out = append(out, candidate{path: path, codec: codec})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, nil
}
