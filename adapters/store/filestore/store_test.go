package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "goeda/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndOpen(t *testing.T) {
	ctx := context.Background()
	store, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	path, err := store.Save(ctx, "../../etc/Quarterly Sales (v2).csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, store.Dir(), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "-Quarterly_Sales_v2_.csv"), path)

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(content))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestSaveUsesUniqueNames(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save(ctx, "data.csv", []byte("x"))
	require.NoError(t, err)
	second, err := store.Save(ctx, "data.csv", []byte("y"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestOpenRejectsOutsidePaths(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(ctx, "/etc/passwd")
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = store.Open(ctx, filepath.Join(store.Dir(), "missing.csv"))
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}
