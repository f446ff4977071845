package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_ReadDirAndReadFile(t *testing.T) {
	dir := t.TempDir()
	var fsys FileSystem = OSFileSystem{}

	require.NoError(t, fsys.MkdirAll(filepath.Join(dir, "rec"), 0o755))
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "rec", "b.csv"), []byte("1,2\n"), 0o644))
	require.NoError(t, fsys.WriteFile(filepath.Join(dir, "rec", "a.csv"), []byte("3,4\n"), 0o644))

	entries, err := fsys.ReadDir(filepath.Join(dir, "rec"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.csv", entries[0].Name())
	assert.Equal(t, "b.csv", entries[1].Name())

	data, err := fsys.ReadFile(filepath.Join(dir, "rec", "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "3,4\n", string(data))

	assert.True(t, fsys.Exists(filepath.Join(dir, "rec")))
	assert.False(t, fsys.Exists(filepath.Join(dir, "nope")))
}

func TestOSFileSystem_Create(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	var fsys FileSystem = OSFileSystem{}

	w, err := fsys.Create(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestMemoryFileSystem_WriteAndRead(t *testing.T) {
	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("rec/a.csv", []byte("1,2"), 0o644))

	data, err := m.ReadFile("rec/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "1,2", string(data))

	// Returned data must not alias the stored file.
	data[0] = 'x'
	again, err := m.ReadFile("rec/a.csv")
	require.NoError(t, err)
	assert.Equal(t, "1,2", string(again))

	assert.True(t, m.Exists("rec"))
	assert.True(t, m.Exists("./rec/a.csv"))
}

func TestMemoryFileSystem_ReadDir(t *testing.T) {
	m := NewMemoryFileSystem()
	require.NoError(t, m.WriteFile("data/gesture-1/wrist.csv", nil, 0o644))
	require.NoError(t, m.WriteFile("data/gesture-1/elbow.csv", nil, 0o644))
	require.NoError(t, m.MkdirAll("data/gesture-1/extra", 0o755))
	require.NoError(t, m.WriteFile("data/gesture-2/wrist.csv", nil, 0o644))

	entries, err := m.ReadDir("data/gesture-1")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"elbow.csv", "extra", "wrist.csv"}, names)
	assert.True(t, entries[1].IsDir())
	assert.False(t, entries[0].IsDir())

	top, err := m.ReadDir("data")
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "gesture-1", top[0].Name())
}

func TestMemoryFileSystem_ReadMissing(t *testing.T) {
	m := NewMemoryFileSystem()
	_, err := m.ReadFile("missing.csv")
	assert.Error(t, err)
	_, err = m.ReadDir("missing")
	assert.Error(t, err)
}

func TestMemoryFileSystem_Create(t *testing.T) {
	m := NewMemoryFileSystem()
	w, err := m.Create("out/chart.html")
	require.NoError(t, err)
	_, err = w.Write([]byte("<html>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := m.ReadFile("out/chart.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
	assert.True(t, m.Exists("out"))
}
