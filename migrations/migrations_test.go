package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/agroexport/pkg/catalog"
	"github.com/marshallshelly/agroexport/pkg/registry"
)

func TestAll(t *testing.T) {
	migs, err := All()
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, "create_catalog", migs[0].Name)

	for i := 1; i < len(migs); i++ {
		assert.Less(t, migs[i-1].Version, migs[i].Version)
	}
}

func TestCreateCatalog_CoversEveryModel(t *testing.T) {
	migs, err := All()
	require.NoError(t, err)
	up, down := migs[0].UpSQL, migs[0].DownSQL

	for _, m := range catalog.Models() {
		table, err := registry.NewRegistry().GetOrRegister(m)
		require.NoError(t, err)

		assert.Contains(t, up, "CREATE TABLE IF NOT EXISTS "+table.Name+" (")
		assert.Contains(t, down, "DROP TABLE IF EXISTS "+table.Name+" CASCADE;")
		for _, col := range table.Columns {
			assert.Contains(t, up, "    "+col.Name+" ", "%s.%s", table.Name, col.Name)
		}
		for _, c := range table.Constraints {
			assert.Contains(t, up, "CONSTRAINT "+c.Name+" ", "%s constraint", table.Name)
		}
		for _, fk := range table.ForeignKeys {
			assert.Contains(t, up, "CONSTRAINT "+fk.Name+" FOREIGN KEY", "%s foreign key", table.Name)
		}
		for _, idx := range table.Indexes {
			assert.Contains(t, up, "CREATE INDEX IF NOT EXISTS "+idx.Name+" ON "+table.Name)
		}
	}
	assert.True(t, strings.HasPrefix(strings.TrimSpace(strings.SplitN(up, "\n\n", 2)[1]), "CREATE EXTENSION"))
}
