package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gesture.report/internal/db"
	"github.com/banshee-data/gesture.report/internal/fsutil"
	"github.com/banshee-data/gesture.report/internal/mocap"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/infojson"
	"github.com/banshee-data/gesture.report/internal/mocap/storage/sqlite"
	"github.com/banshee-data/gesture.report/internal/timeutil"
)

func writeInfo(t *testing.T) *infojson.Table {
	t.Helper()
	fsys := fsutil.NewMemoryFileSystem()
	path := infojson.FileName("emotion")
	require.NoError(t, infojson.WriteInfoFile(fsys, path, infojson.Info{
		Labels: []string{"lhand", "rhand"},
		Weights: map[string][]float64{
			"wave-02": {0.4, 0.6},
			"wave-01": {0.25, 0.75},
		},
	}))
	table, err := infojson.LoadInfoFile(fsys, path, "emotion")
	require.NoError(t, err)
	return table
}

func TestRunImport(t *testing.T) {
	database, err := db.NewDB(filepath.Join(t.TempDir(), "weights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	store := sqlite.NewWeightTableStore(database.DB, timeutil.RealClock{})
	ctx := context.Background()

	n, err := RunImport(ctx, writeInfo(t), store, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := store.ListRecordings(ctx, "emotion")
	require.NoError(t, err)
	assert.Equal(t, []string{"wave-01", "wave-02"}, names)

	entry, ok, err := store.Lookup(ctx, "emotion", "wave-01")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"lhand", "rhand"}, entry.Markers)
	assert.Equal(t, []float64{0.25, 0.75}, entry.Values)
}

type countingSaver struct{ calls int }

func (c *countingSaver) SaveEntry(context.Context, string, string, mocap.WeightEntry, string) error {
	c.calls++
	return nil
}

func TestRunImportDryRun(t *testing.T) {
	saver := &countingSaver{}
	n, err := RunImport(context.Background(), writeInfo(t), saver, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Zero(t, saver.calls, "dry run must not write")
}
