package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemAttachmentStore_Open(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "products"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products", "front.jpg"), []byte("jpeg-bytes"), 0o644))

	store, err := NewFilesystemAttachmentStore(dir)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("reads an existing attachment", func(t *testing.T) {
		data, name, err := store.Open(ctx, "products/front.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
		assert.Equal(t, "front.jpg", name)
	})

	t.Run("missing attachment returns error", func(t *testing.T) {
		_, _, err := store.Open(ctx, "products/missing.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("empty ref is rejected", func(t *testing.T) {
		_, _, err := store.Open(ctx, "")
		require.Error(t, err)
	})

	t.Run("refs cannot escape the base directory", func(t *testing.T) {
		outside := filepath.Join(filepath.Dir(dir), "secret.txt")
		require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))

		_, _, err := store.Open(ctx, "../secret.txt")
		require.Error(t, err)
	})
}

func TestNewFilesystemAttachmentStore_Validation(t *testing.T) {
	_, err := NewFilesystemAttachmentStore("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory")
}
