package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/topos-lang/topos/config"
	"github.com/topos-lang/topos/engine"
)

func writeFile(t *testing.T, dir, rel, contents string) {
	t.Helper()
	abs := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(contents), 0o644))
}

func TestDiscoverFilesFindsTpsAndToposExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tps", "# Requirements\n")
	writeFile(t, dir, "nested/b.topos", "# Requirements\n")
	writeFile(t, dir, "ignore.txt", "not a spec\n")

	files, err := discoverFiles(dir)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.tps", filepath.Join("nested", "b.topos")}, files)
}

func TestLoadWorkspaceWithDurabilityOverridesTracksEveryFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vendor/shared.tps", "# Requirements\n")
	writeFile(t, dir, "app.tps", "# Requirements\n")

	cfg := config.Default()
	cfg.DurabilityOverrides = []config.DurabilityOverride{
		{Glob: "vendor/**/*.tps", Durability: "high"},
	}

	db := engine.New()
	require.NoError(t, loadWorkspace(db, dir, cfg))

	files := db.WorkspaceFiles()
	require.Len(t, files, 2)

	vendorFile, ok := db.FileByPath(filepath.Join("vendor", "shared.tps"))
	require.True(t, ok)
	appFile, ok := db.FileByPath("app.tps")
	require.True(t, ok)

	_ = vendorFile
	_ = appFile
}

func TestLoadSnapshotFilesParsesEveryTrackedFile(t *testing.T) {
	db := engine.New()
	db.SetWorkspaceRoot(t.TempDir())
	db.SetFile("a.tps", "# Requirements\n\n## REQ-1 title\n  when `x` occurs the system shall respond\n", engine.Low)
	db.SetFile("b.tps", "# Concepts\n\nconcept User:\n  name: `Text`\n", engine.Low)

	snap, err := loadSnapshotFiles(db)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	require.Contains(t, snap, "a.tps")
	require.Contains(t, snap, "b.tps")
}

func TestNewDatabaseWithoutCacheFlag(t *testing.T) {
	flagCache = ""
	flagVerbose = false
	db, err := newDatabase()
	require.NoError(t, err)
	require.NotNil(t, db)
}

func TestNewDatabaseOpensCacheFile(t *testing.T) {
	flagCache = filepath.Join(t.TempDir(), "cache.db")
	defer func() { flagCache = "" }()

	db, err := newDatabase()
	require.NoError(t, err)
	require.NotNil(t, db)
}
