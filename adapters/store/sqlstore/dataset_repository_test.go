package sqlstore

import (
	"context"
	"testing"
	"time"

	"goeda/domain/core"
	"goeda/domain/dataset"
	apperrors "goeda/internal/errors"
	"goeda/internal/migration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *datasetRepository {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(ctx, db))
	// running twice is a no-op
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	return NewDatasetRepository(db).(*datasetRepository)
}

func TestDatasetRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	rec := dataset.NewRecord("sales.csv", core.NewHash([]byte("a,b\n1,2\n")), dataset.FormatCSV, 8)
	rec.FilePath = "/data/uploads/sales.csv"
	rec.RowCount = 1
	rec.ColumnCount = 2
	rec.SkippedRows = 3
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.OriginalFilename, got.OriginalFilename)
	assert.Equal(t, rec.ContentHash, got.ContentHash)
	assert.Equal(t, dataset.FormatCSV, got.Format)
	assert.Equal(t, rec.FilePath, got.FilePath)
	assert.Equal(t, int64(8), got.FileSize)
	assert.Equal(t, 1, got.RowCount)
	assert.Equal(t, 2, got.ColumnCount)
	assert.Equal(t, 3, got.SkippedRows)
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Second)

	byHash, err := repo.GetByHash(ctx, rec.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byHash.ID)
}

func TestDatasetRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.GetByID(ctx, core.NewID())
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	_, err = repo.GetByHash(ctx, core.NewHash([]byte("nothing")))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestDatasetRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []core.ID
	for i, name := range []string{"a.csv", "b.csv", "c.xlsx"} {
		rec := dataset.NewRecord(name, core.NewHash([]byte(name)), dataset.FormatCSV, 1)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, rec))
		ids = append(ids, rec.ID)
	}

	records, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ids[2], records[0].ID)
	assert.Equal(t, ids[1], records[1].ID)

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}
