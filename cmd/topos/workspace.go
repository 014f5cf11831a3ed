package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/topos-lang/topos/ast"
	"github.com/topos-lang/topos/config"
	"github.com/topos-lang/topos/engine"
	"github.com/topos-lang/topos/store"
	"github.com/topos-lang/topos/toposlog"
)

// newDatabase constructs an engine.Database, attaching a stderr query
// logger when --verbose was set and a SQLite snapshot cache when --cache
// names a path.
func newDatabase() (*engine.Database, error) {
	var opts []engine.Option
	if flagVerbose {
		opts = append(opts, engine.WithLogger(toposlog.New(os.Stderr, toposlog.LevelDebug)))
	}
	if flagCache != "" {
		s, err := store.Open(flagCache)
		if err != nil {
			return nil, fmt.Errorf("opening cache %s: %w", flagCache, err)
		}
		opts = append(opts, engine.WithStore(s))
	}
	return engine.New(opts...), nil
}

// discoverFiles finds every .tps/.topos file under root using doublestar
// glob matching, replacing a plain filepath.WalkDir + extension check with
// a richer pattern surface (workspace config can layer its own globs over
// this same matcher for durability overrides).
func discoverFiles(root string) ([]string, error) {
	var out []string
	for _, pattern := range []string{"**/*.tps", "**/*.topos"} {
		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, fmt.Errorf("discovering %s under %s: %w", pattern, root, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}

// loadWorkspace reads every discovered file under root into db, tagging
// durability per cfg's path-glob overrides (default Low).
func loadWorkspace(db *engine.Database, root string, cfg config.Workspace) error {
	db.SetWorkspaceRoot(root)
	rels, err := discoverFiles(root)
	if err != nil {
		return err
	}
	for _, rel := range rels {
		abs := filepath.Join(root, rel)
		text, err := os.ReadFile(abs)
		if err != nil {
			return fmt.Errorf("reading %s: %w", abs, err)
		}
		durability := engine.Low
		if cfg.DurabilityFor(rel) == "high" {
			durability = engine.High
		}
		db.SetFile(rel, string(text), durability)
	}
	return nil
}

// loadSnapshotFiles parses every file in db and returns them keyed by
// workspace-relative path, the shape diff.Snapshot needs.
func loadSnapshotFiles(db *engine.Database) (map[string]*ast.SourceFile, error) {
	out := map[string]*ast.SourceFile{}
	ctx := context.Background()
	for _, f := range db.WorkspaceFiles() {
		sf, _, err := db.Parse(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", db.FilePath(f), err)
		}
		out[db.FilePath(f)] = sf
	}
	return out, nil
}
