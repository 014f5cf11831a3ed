package engine

import (
	"context"
	"fmt"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/diagnostics"
	"github.com/topos-lang/topos/holes"
	"github.com/topos-lang/topos/resolve"
	"github.com/topos-lang/topos/store"
	"github.com/topos-lang/topos/symbols"
	"github.com/topos-lang/topos/syntax"
	"github.com/topos-lang/topos/trace"
)

// parseResult is the memoized output of the parse query: the lowered AST
// plus any syntax-to-AST errors.
type parseResult struct {
	source *ast.SourceFile
	errs   []ast.ParseError
}

// Parse runs the scanner/grammar/lowering pipeline over file's current text,
// memoized per file generation.
func (db *Database) Parse(ctx context.Context, file ast.FileID) (*ast.SourceFile, []ast.ParseError, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, nil, err
	}
	text, _, gen, ok := db.fileText(file)
	if !ok {
		return nil, nil, fmt.Errorf("engine: parse: unknown file %d", file)
	}
	path := db.FilePath(file)
	if db.log != nil {
		db.log.QueryStart(ctx, "parse", path)
	}
	computed := false
	v, err := db.memo.getOrComputeFile(file, "parse", gen, func() (any, error) {
		computed = true
		tree := syntax.Parse([]byte(text), nil)
		sf, errs := ast.Lower(tree, file)
		return parseResult{source: sf, errs: errs}, nil
	})
	if db.log != nil {
		db.log.QueryDone(ctx, "parse", path, !computed)
	}
	if err != nil {
		return nil, nil, err
	}
	res := v.(parseResult)
	return res.source, res.errs, nil
}

// FileSymbols returns the symbol table built from file's parsed AST. For a
// HIGH-durability file with an attached store (WithStore), a cache hit on
// the file's current content hash short-circuits reparsing entirely; a
// cache miss falls through to the normal parse-and-build path and writes
// the fresh result back to the store off the critical path.
func (db *Database) FileSymbols(ctx context.Context, file ast.FileID) (*symbols.Table, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	text, durability, gen, ok := db.fileText(file)
	if !ok {
		return nil, fmt.Errorf("engine: file_symbols: unknown file %d", file)
	}
	path := db.FilePath(file)
	contentHash := ""
	if db.store != nil && durability == High {
		contentHash = store.ContentHash(text)
		if snap, hit, err := db.store.Lookup(path, contentHash); err == nil && hit {
			return tableFromSnapshot(file, snap), nil
		}
	}

	sf, _, err := db.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	v, err := db.memo.getOrComputeFile(file, "file_symbols", gen, func() (any, error) {
		t := symbols.Build(sf)
		db.persistWriteBehind(path, contentHash, durability, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*symbols.Table), nil
}

// FileExports returns the subset of file's symbol table visible to importers.
func (db *Database) FileExports(ctx context.Context, file ast.FileID) (symbols.ExportMap, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	t, err := db.FileSymbols(ctx, file)
	if err != nil {
		return nil, err
	}
	_, _, gen, ok := db.fileText(file)
	if !ok {
		return nil, fmt.Errorf("engine: file_exports: unknown file %d", file)
	}
	v, err := db.memo.getOrComputeFile(file, "file_exports", gen, func() (any, error) {
		return symbols.Exports(t), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(symbols.ExportMap), nil
}

// FileImports returns the resolved import map for file: every name an
// explicit item import or glob import brings into scope.
func (db *Database) FileImports(ctx context.Context, file ast.FileID) (symbols.ImportMap, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	sf, _, err := db.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	wsGen := db.workspaceGeneration()
	v, err := db.memo.getOrComputeWorkspace(fmt.Sprintf("file_imports:%d", file), wsGen, func() (any, error) {
		lookup := func(path string) symbols.ExportMap {
			dep, ok := db.FileByPath(resolveImportPath(db, file, path))
			if !ok {
				return nil
			}
			exp, err := db.FileExports(ctx, dep)
			if err != nil {
				return nil
			}
			return exp
		}
		return symbols.BuildImports(sf.Imports, lookup), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(symbols.ImportMap), nil
}

// resolveImportPath maps a source-level import path to a workspace path.
// Absolute paths (leading "/") are workspace-root-relative; everything else
// is treated as already canonical, matching how the resolver's namespace
// and absolute-path indices are populated in buildWorkspace.
func resolveImportPath(db *Database, _ ast.FileID, path string) string {
	if len(path) > 0 && path[0] == '/' {
		return db.WorkspaceRoot() + path
	}
	return path
}

// buildWorkspace assembles a resolve.Workspace over every currently-tracked
// file: symbol tables, import maps, namespace/path indices, and the import
// dependency graph. This is itself memoized at workspace scope since every
// file's table contributes to it.
func (db *Database) buildWorkspace(ctx context.Context) (*resolve.Workspace, error) {
	wsGen := db.workspaceGeneration()
	v, err := db.memo.getOrComputeWorkspace("workspace", wsGen, func() (any, error) {
		ws := resolve.NewWorkspace()
		files := db.WorkspaceFiles()
		for _, f := range files {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
			t, err := db.FileSymbols(ctx, f)
			if err != nil {
				continue
			}
			ws.Tables[f] = t
			ws.PathIndex[db.FilePath(f)] = f

			sf, _, err := db.Parse(ctx, f)
			if err != nil {
				continue
			}
			imports, err := db.FileImports(ctx, f)
			if err == nil {
				ws.Imports[f] = imports
			}
			for _, imp := range sf.Imports {
				dep, ok := db.FileByPath(resolveImportPath(db, f, imp.SourcePath))
				if !ok {
					continue
				}
				ws.AddEdge(f, dep)
				if imp.Kind == ast.ImportAlias && imp.ModAlias != "" {
					ws.Namespace[imp.ModAlias] = dep
				}
			}
		}
		return ws, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*resolve.Workspace), nil
}

// Resolve looks up ref as seen from file against the full workspace.
func (db *Database) Resolve(ctx context.Context, file ast.FileID, ref *ast.Reference, contextual map[string]*symbols.Symbol) (resolve.Result, error) {
	if err := checkCancel(ctx); err != nil {
		return resolve.Result{}, err
	}
	ws, err := db.buildWorkspace(ctx)
	if err != nil {
		return resolve.Result{}, err
	}
	return ws.Resolve(file, ref, contextual), nil
}

// FileHoles returns every typed hole declared in file's AST, in source order.
func (db *Database) FileHoles(ctx context.Context, file ast.FileID) ([]*ast.TypedHole, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	sf, _, err := db.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	_, _, gen, ok := db.fileText(file)
	if !ok {
		return nil, fmt.Errorf("engine: file_holes: unknown file %d", file)
	}
	v, err := db.memo.getOrComputeFile(file, "file_holes", gen, func() (any, error) {
		return collectHoles(sf), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*ast.TypedHole), nil
}

func collectHoles(sf *ast.SourceFile) []*ast.TypedHole {
	var out []*ast.TypedHole
	for _, sec := range sf.Sections {
		for _, req := range sec.Requirements {
			for _, e := range req.Ears {
				if e.Hole != nil {
					out = append(out, e.Hole)
				}
			}
		}
		for _, b := range sec.Behaviors {
			for _, e := range b.Ears {
				if e.Hole != nil {
					out = append(out, e.Hole)
				}
			}
		}
	}
	return out
}

// HoleContext runs the hole analyzer for one hole in file, with its
// semantic constraints resolved against the full workspace.
func (db *Database) HoleContext(ctx context.Context, file ast.FileID, id ast.HoleID) (*holes.Context, bool, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, false, err
	}
	sf, _, err := db.Parse(ctx, file)
	if err != nil {
		return nil, false, err
	}
	hctx, ok := holes.Locate(sf, id)
	if !ok {
		return nil, false, nil
	}
	ws, err := db.buildWorkspace(ctx)
	if err != nil {
		return nil, false, err
	}
	holes.ResolveSemantics(hctx, ws, file)
	return hctx, true, nil
}

// FileDiagnostics runs every diagnostic rule over file: single-file rules
// plus the cross-file reference and import rules.
func (db *Database) FileDiagnostics(ctx context.Context, file ast.FileID) ([]diagnostics.Diagnostic, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	sf, perrs, err := db.Parse(ctx, file)
	if err != nil {
		return nil, err
	}
	wsGen := db.workspaceGeneration()
	v, err := db.memo.getOrComputeWorkspace(fmt.Sprintf("file_diagnostics:%d", file), wsGen, func() (any, error) {
		ws, err := db.buildWorkspace(ctx)
		if err != nil {
			return nil, err
		}
		fileDiags := diagnostics.FileDiagnostics(file, sf, perrs)
		refDiags := diagnostics.ReferenceDiagnostics(file, sf, ws)
		impDiags := diagnostics.ImportDiagnostics(file, sf, ws, func(path string) (symbols.ExportMap, bool) {
			dep, ok := db.FileByPath(resolveImportPath(db, file, path))
			if !ok {
				return nil, false
			}
			exp, err := db.FileExports(ctx, dep)
			if err != nil {
				return nil, false
			}
			return exp, true
		})
		holeList, err := db.FileHoles(ctx, file)
		if err != nil {
			return nil, err
		}
		holeDiags := diagnostics.HoleDiagnostics(holeList)
		return diagnostics.Merge(fileDiags, refDiags, impDiags, holeDiags), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]diagnostics.Diagnostic), nil
}

// Traceability builds the workspace-wide requirement/behavior/task coverage
// report over every tracked file.
func (db *Database) Traceability(ctx context.Context) (*trace.Report, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	wsGen := db.workspaceGeneration()
	v, err := db.memo.getOrComputeWorkspace("traceability", wsGen, func() (any, error) {
		var inputs []trace.FileInput
		for _, f := range db.WorkspaceFiles() {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
			sf, _, err := db.Parse(ctx, f)
			if err != nil {
				continue
			}
			inputs = append(inputs, trace.FileInput{File: f, Source: sf})
		}
		return trace.Build(inputs), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*trace.Report), nil
}

// WorkspaceDiagnostics merges every file's diagnostics with the workspace's
// traceability-derived warnings into one deterministic sequence.
func (db *Database) WorkspaceDiagnostics(ctx context.Context) ([]diagnostics.Diagnostic, error) {
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	wsGen := db.workspaceGeneration()
	v, err := db.memo.getOrComputeWorkspace("workspace_diagnostics", wsGen, func() (any, error) {
		var groups [][]diagnostics.Diagnostic
		for _, f := range db.WorkspaceFiles() {
			fd, err := db.FileDiagnostics(ctx, f)
			if err != nil {
				return nil, err
			}
			groups = append(groups, fd)
		}
		report, err := db.Traceability(ctx)
		if err != nil {
			return nil, err
		}
		groups = append(groups, diagnostics.TraceabilityDiagnostics(report))
		return diagnostics.Merge(groups...), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]diagnostics.Diagnostic), nil
}
