package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing.toml")))
}

func TestSaveTOMLFile(t *testing.T) {
	type section struct {
		Limit int    `toml:"limit"`
		Path  string `toml:"path"`
	}
	data := struct {
		Dict section `toml:"dict"`
	}{Dict: section{Limit: 8, Path: "data"}}

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, SaveTOMLFile(data, target))

	var loaded struct {
		Dict section `toml:"dict"`
	}
	require.NoError(t, LoadTOMLFile(target, &loaded))
	assert.Equal(t, data.Dict, loaded.Dict)

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestSaveTOMLFileWrapsErrors(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, nil, 0o644))

	err := SaveTOMLFile(map[string]int{"a": 1}, filepath.Join(parent, "config.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), parent)
}

func TestAbsolutePath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, "", AbsolutePath(""))
	assert.Equal(t, "/etc/typr/config.toml", AbsolutePath("/etc/typr/config.toml"))
	assert.Equal(t, filepath.Join(wd, "config.toml"), AbsolutePath("config.toml"))
}
