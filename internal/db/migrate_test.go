package db

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMigrations is a two-step schema independent of the embedded one.
func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"000001_create.up.sql":   {Data: []byte(`CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`)},
		"000001_create.down.sql": {Data: []byte(`DROP TABLE t;`)},
		"000002_column.up.sql":   {Data: []byte(`ALTER TABLE t ADD COLUMN note TEXT;`)},
		"000002_column.down.sql": {Data: []byte(`ALTER TABLE t DROP COLUMN note;`)},
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func hasColumn(t *testing.T, db *DB, table, column string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n))
	return n > 0
}

func TestMigrateVersion_NoMigrations(t *testing.T) {
	db := openTestDB(t)
	version, dirty, err := db.MigrateVersion(testMigrations())
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestMigrateUpDown_FullCycle(t *testing.T) {
	db := openTestDB(t)
	fsys := testMigrations()

	require.NoError(t, db.MigrateUp(fsys))
	version, _, err := db.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.True(t, hasColumn(t, db, "t", "note"))

	// Idempotent.
	require.NoError(t, db.MigrateUp(fsys))

	require.NoError(t, db.MigrateDown(fsys))
	version, _, err = db.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, hasColumn(t, db, "t", "note"))
	assert.True(t, hasColumn(t, db, "t", "name"))
}

func TestMigrateTo(t *testing.T) {
	db := openTestDB(t)
	fsys := testMigrations()

	require.NoError(t, db.MigrateTo(fsys, 1))
	version, _, err := db.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, db.MigrateTo(fsys, 2))
	require.NoError(t, db.MigrateTo(fsys, 2), "no change is not an error")
}

func TestMigrateForce(t *testing.T) {
	db := openTestDB(t)
	fsys := testMigrations()

	require.NoError(t, db.MigrateUp(fsys))
	require.NoError(t, db.MigrateForce(fsys, 1))
	version, dirty, err := db.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
}

func TestMigrateBrokenSource(t *testing.T) {
	db := openTestDB(t)
	err := db.MigrateUp(fstest.MapFS{"000001_bad.up.sql": {Data: []byte(`CREATE TABLE oops (`)}})
	assert.Error(t, err)

	_, dirty, err := db.MigrateVersion(fstest.MapFS{"000001_bad.up.sql": {Data: []byte(`CREATE TABLE oops (`)}})
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestEmbeddedMigrationsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateUp(MigrationsFS()))
	require.NoError(t, db.MigrateDown(MigrationsFS()))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'weight_entries'`).Scan(&n))
	assert.Zero(t, n)
}

func TestRunMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	var out bytes.Buffer

	require.NoError(t, RunMigrateCommand([]string{"up"}, path, &out))
	assert.Contains(t, out.String(), "Current version: 1")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"status"}, path, &out))
	assert.Contains(t, out.String(), "Dirty: false")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"down"}, path, &out))
	assert.Contains(t, out.String(), "Current version: 0")

	require.NoError(t, RunMigrateCommand([]string{"version", "1"}, path, &out))
	require.NoError(t, RunMigrateCommand([]string{"force", "1"}, path, &out))
	require.NoError(t, RunMigrateCommand([]string{"help"}, path, &out))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestRunMigrateCommandErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	var out bytes.Buffer

	testCases := [][]string{
		nil,
		{"sideways"},
		{"version"},
		{"force", "abc"},
		{"version", "-1"},
	}
	for _, args := range testCases {
		assert.Error(t, RunMigrateCommand(args, path, &out), "args %v", args)
	}
}
