package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileSystemPutGet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store := NewFileSystem(dir, zap.NewNop())
	ctx := context.Background()

	obj, err := store.Put(ctx, "bill_report-abc123_2024-01.pdf", []byte("%PDF-1.3 first"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bill_report-abc123_2024-01.pdf"), obj.Location)
	assert.EqualValues(t, 14, obj.Size)

	_, err = store.Put(ctx, "bill_report-abc123_2024-01.pdf", []byte("%PDF-1.3 second"), "application/pdf")
	require.NoError(t, err)

	data, err := store.Get(ctx, "bill_report-abc123_2024-01.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileSystemRejectsUnsafeKeys(t *testing.T) {
	store := NewFileSystem(t.TempDir(), zap.NewNop())
	for _, key := range []string{"", "../escape.pdf", "nested/file.pdf", `dir\file.pdf`} {
		_, err := store.Put(context.Background(), key, []byte("x"), "application/pdf")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFileSystemGetMissing(t *testing.T) {
	store := NewFileSystem(t.TempDir(), zap.NewNop())
	_, err := store.Get(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3RequiresBucket(t *testing.T) {
	_, err := NewS3(context.Background(), S3Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestS3ObjectKey(t *testing.T) {
	s := &S3{prefix: "reports"}
	assert.Equal(t, "reports/a.pdf", s.objectKey("a.pdf"))
	s.prefix = ""
	assert.Equal(t, "a.pdf", s.objectKey("a.pdf"))
}
