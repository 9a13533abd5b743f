package pg

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitheshb/caco-Marketing-tool-sub001/migrations/postgres"
)

func TestParseOrdersAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_b.sql":  {Data: []byte("SELECT 2;")},
		"sql/0001_a.sql":  {Data: []byte("SELECT 1;")},
		"sql/README.md":   {Data: []byte("docs")},
		"sql/10_late.sql": {Data: []byte("SELECT 10;")},
	}
	migs, err := NewMigrator(fsys, "sql").Parse()
	require.NoError(t, err)
	require.Len(t, migs, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{migs[0].Version, migs[1].Version, migs[2].Version})
	assert.Equal(t, "a", migs[0].Name)
	assert.Equal(t, "SELECT 10;", migs[2].SQL)
}

func TestParseRejectsDuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("x")},
		"1_b.sql":    {Data: []byte("y")},
	}
	_, err := NewMigrator(fsys, ".").Parse()
	require.Error(t, err)
}

func TestPending(t *testing.T) {
	all := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	got := Pending(all, map[int]bool{1: true, 3: true})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Version)
}

func TestEmbeddedSchema(t *testing.T) {
	migs, err := NewMigrator(migrations.FS, migrations.Dir).Parse()
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Contains(t, migs[0].SQL, "CREATE TABLE IF NOT EXISTS principals")
	assert.Contains(t, migs[1].SQL, "PRIMARY KEY (user_id, platform)")
}
