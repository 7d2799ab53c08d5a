package container

import (
	"context"
	"path/filepath"
	"testing"

	"goeda/domain/dataset"
	"goeda/internal/cache"
	"goeda/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Database.URL = "file:" + filepath.Join(dir, "goeda.db")
	cfg.Storage.UploadDir = filepath.Join(dir, "uploads")
	return cfg
}

func TestContainerWithSQLite(t *testing.T) {
	ctx := context.Background()
	c, err := New(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, c.Init(ctx))
	defer c.Shutdown(ctx)

	require.NotNil(t, c.DB)
	assert.IsType(t, &cache.MemoryBlob{}, c.Reports)

	sess, err := c.Service.Upload(ctx, dataset.Upload{Filename: "a.csv", Content: []byte("x,y\n1,2\n3,4\n")})
	require.NoError(t, err)

	records, err := c.Datasets.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, sess.ID, records[0].ID)
}

func TestContainerWithMemoryAndRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Database.Driver = DriverMemory
	cfg.Cache.RedisAddr = mr.Addr()

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Init(ctx))
	defer c.Shutdown(ctx)

	assert.Nil(t, c.DB)
	require.NotNil(t, c.Redis)

	sess, err := c.Service.Upload(ctx, dataset.Upload{Filename: "a.csv", Content: []byte("x,y\n1,2\n3,4\n")})
	require.NoError(t, err)
	_, err = c.Service.Report(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("goeda:report:"+sess.ID.String()))
}

func TestContainerFallsBackWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Database.Driver = DriverMemory
	cfg.Cache.RedisAddr = "127.0.0.1:1"

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Init(ctx))
	defer c.Shutdown(ctx)

	assert.Nil(t, c.Redis)
	assert.IsType(t, &cache.MemoryBlob{}, c.Reports)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
