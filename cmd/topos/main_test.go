package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormatAcceptsKnownFormats(t *testing.T) {
	for _, f := range []string{"text", "json", "yaml"} {
		assert.NoError(t, validateFormat(f))
	}
}

func TestValidateFormatRejectsUnknown(t *testing.T) {
	assert.Error(t, validateFormat("xml"))
}

func TestResolveTargetDirDefaultsToCurrentDir(t *testing.T) {
	dir, err := resolveTargetDir(nil, 0)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
}

func TestResolveTargetDirUsesArgAtIndex(t *testing.T) {
	want := t.TempDir()
	dir, err := resolveTargetDir([]string{want}, 0)
	require.NoError(t, err)
	assert.Equal(t, want, dir)
}

func TestResolveTargetDirRejectsNonDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir.tps")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := resolveTargetDir([]string{file}, 0)
	assert.Error(t, err)
}

func TestResolveTargetDirRejectsMissingPath(t *testing.T) {
	_, err := resolveTargetDir([]string{filepath.Join(t.TempDir(), "missing")}, 0)
	assert.Error(t, err)
}

func TestOutputErrorTextModeReturnsErr(t *testing.T) {
	flagFormat = "text"
	errorHandled = false
	err := outputError("check", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, errorHandled)
}

func TestOutputErrorJSONModeReturnsErr(t *testing.T) {
	flagFormat = "json"
	errorHandled = false
	err := outputError("check", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, errorHandled)
	flagFormat = "text"
}
