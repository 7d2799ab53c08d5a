package migration

import (
	"context"
	"path/filepath"
	"testing"

	"goeda/adapters/store/sqlstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsEachStepOnce(t *testing.T) {
	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer db.Close()

	runner := NewRunner()
	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	versions, err := Applied(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, versions)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM schema_migrations`))
	assert.Equal(t, 2, count)

	var tables int
	require.NoError(t, db.GetContext(ctx, &tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'datasets'`))
	assert.Equal(t, 1, tables)
}
