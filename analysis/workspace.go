// Copyright © 2024 The ELPS authors

package analysis

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/position"
)

// ExternalSymbol is a top-level declaration found in another file.
type ExternalSymbol struct {
	Name    string
	Kind    SymbolKind
	Package string
	File    string
	Range   position.Range
	Type    string
}

// ScanWorkspace walks a directory tree, parsing all .drl files and
// extracting their top-level declarations.  The result can be used as
// Config.ExtraGlobals for cross-file duplicate detection.
//
// It skips hidden directories (names starting with '.') and node_modules.
// Unreadable files are skipped.  Files with syntax errors still contribute
// the declarations the parser recovered.
func ScanWorkspace(ctx context.Context, root string) ([]ExternalSymbol, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".drl" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	perFile := make([][]ExternalSymbol, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				return nil
			}
			perFile[i] = scanFile(source, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []ExternalSymbol
	for _, syms := range perFile {
		out = append(out, syms...)
	}
	return out, nil
}

// shouldSkipDir returns true for directories that should not be walked.
// It skips hidden directories (e.g. .git, .vscode) and node_modules,
// but not "." or ".." which represent the current/parent directory.
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	return name == "node_modules"
}

// scanFile parses a single file and extracts its top-level declarations.
func scanFile(source []byte, filename string) []ExternalSymbol {
	file := parser.Parse(filename, string(source)).File
	pkg := ""
	if file.Package != nil && file.Package.Name != nil {
		pkg = file.Package.Name.Name
	}

	var out []ExternalSymbol
	add := func(kind SymbolKind, name, typ string, rng position.Range) {
		out = append(out, ExternalSymbol{
			Name:    name,
			Kind:    kind,
			Package: pkg,
			File:    filename,
			Range:   rng,
			Type:    typ,
		})
	}
	for _, g := range file.Globals {
		if g.Name != nil {
			add(SymGlobal, g.Name.Name, g.Type, g.Name.Range)
		}
	}
	for _, fn := range file.Functions {
		if fn.Name != nil {
			add(SymFunction, fn.Name.Name, fn.ReturnType, fn.Name.Range)
		}
	}
	for _, d := range file.Declares {
		if d.Name != nil {
			add(SymType, d.Name.Name, d.Form, d.Name.Range)
		}
	}
	for _, q := range file.Queries {
		if q.Name != nil {
			add(SymQuery, q.Name.Name, "", q.Name.Range)
		}
	}
	for _, r := range file.Rules {
		if r.Name != nil {
			add(SymRule, r.Name.Name, "", r.Name.Range)
		}
	}
	return out
}

// AnalyzeFile parses and performs full semantic analysis on a single file.
func AnalyzeFile(source []byte, filename string, cfg *Config) (*parser.Result, *Result) {
	fileCfg := Config{Filename: filename}
	if cfg != nil {
		fileCfg.ExtraGlobals = cfg.ExtraGlobals
		fileCfg.Builtins = cfg.Builtins
	}
	parsed := parser.Parse(filename, string(source))
	return parsed, Analyze(parsed.File, &fileCfg)
}
