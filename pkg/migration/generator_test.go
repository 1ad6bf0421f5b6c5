package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/agroexport/pkg/schema"
)

func TestGenerator_Generate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations")
	g := NewGenerator(dir)

	file, err := g.Generate("create_catalog", []*schema.TableMetadata{productsTable(), categoriesTable()})
	require.NoError(t, err)
	assert.Equal(t, "create_catalog", file.Name)
	assert.Len(t, file.Version, 14)

	up, err := os.ReadFile(file.UpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(up), "-- Migration: create_catalog"))
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS categories")

	migrations, err := g.LoadAll()
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, file.Version, migrations[0].Version)
	assert.Contains(t, migrations[0].DownSQL, "DROP TABLE IF EXISTS categories CASCADE;")
}

func TestGenerator_ListMigrations(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20240102000000_second.up.sql":   "SELECT 2;",
		"20240102000000_second.down.sql": "SELECT -2;",
		"20240101000000_first.up.sql":    "SELECT 1;",
		"20240101000000_first.down.sql":  "SELECT -1;",
		"20240103000000_orphan.up.sql":   "SELECT 3;",
		"README.md":                      "notes",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	list, err := NewGenerator(dir).ListMigrations()
	require.NoError(t, err)
	require.Len(t, list, 2, "migrations without a down file are skipped")
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "second", list[1].Name)
	assert.Equal(t, filepath.Join(dir, "20240101000000_first.up.sql"), list[0].UpPath)
}

func TestGenerator_ListMigrations_MissingDir(t *testing.T) {
	list, err := NewGenerator(filepath.Join(t.TempDir(), "absent")).ListMigrations()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerator_GenerateEmpty(t *testing.T) {
	g := NewGenerator(t.TempDir())
	file, err := g.GenerateEmpty("add_index")
	require.NoError(t, err)

	m, err := g.ReadMigration(*file)
	require.NoError(t, err)
	assert.Contains(t, m.UpSQL, "Write your UP migration here")
	assert.Contains(t, m.DownSQL, "Write your DOWN migration here")
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/20240101000000_init.up.sql":   {Data: []byte("CREATE TABLE a (id int);")},
		"sql/20240101000000_init.down.sql": {Data: []byte("DROP TABLE a;")},
		"sql/20230101000000_old.up.sql":    {Data: []byte("SELECT 1;")},
		"sql/20230101000000_old.down.sql":  {Data: []byte("SELECT 1;")},
	}

	migrations, err := Load(fsys, "sql")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "old", migrations[0].Name)
	assert.Equal(t, "init", migrations[1].Name)
	assert.Equal(t, "CREATE TABLE a (id int);", migrations[1].UpSQL)

	_, err = Load(fsys, "missing")
	assert.Error(t, err)
}
