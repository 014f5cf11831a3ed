package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadSnapshotParsesWorkspaceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.tps", "# Requirements\n\n## REQ-1 title\n  when `x` occurs the system shall respond\n")

	flagCache = ""
	snap, err := loadSnapshot(dir)
	require.NoError(t, err)
	require.Contains(t, snap.Files, "a.tps")
}

func TestLoadSnapshotRejectsMissingDirectory(t *testing.T) {
	_, err := loadSnapshot("/nonexistent/path/does-not-exist")
	require.Error(t, err)
}
