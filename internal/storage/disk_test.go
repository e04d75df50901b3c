package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore_StoreTemp(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.StoreTemp(ctx, "lobby-1", strings.NewReader("photo-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, store.IsTemp(ref))
	assert.True(t, strings.HasPrefix(ref, "temp/lobby/lobby-1/"))
	assert.True(t, strings.HasSuffix(ref, ".jpg"))

	data, err := os.ReadFile(filepath.Join(store.root, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "photo-bytes", string(data))
}

func TestDiskStore_CommitPermanent(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.StoreTemp(ctx, "lobby-1", strings.NewReader("photo-bytes"), "image/png")
	require.NoError(t, err)

	finalRef, err := store.CommitPermanent(ctx, ref)
	require.NoError(t, err)
	assert.False(t, store.IsTemp(finalRef))
	assert.True(t, strings.HasPrefix(finalRef, "proofs/"))
	assert.True(t, strings.HasSuffix(finalRef, ".png"), "extension carries over")

	data, err := os.ReadFile(filepath.Join(store.root, filepath.FromSlash(finalRef)))
	require.NoError(t, err)
	assert.Equal(t, "photo-bytes", string(data))

	_, err = os.Stat(filepath.Join(store.root, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err), "temp copy is removed after commit")

	t.Run("committing a non-temp ref fails", func(t *testing.T) {
		_, err := store.CommitPermanent(ctx, finalRef)
		assert.Error(t, err)
	})

	t.Run("committing a missing ref fails", func(t *testing.T) {
		_, err := store.CommitPermanent(ctx, "temp/lobby/lobby-1/gone.png")
		assert.Error(t, err)
	})
}

func TestDiskStore_DeleteTemp(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	ctx := context.Background()

	ref, err := store.StoreTemp(ctx, "lobby-1", strings.NewReader("x"), "image/webp")
	require.NoError(t, err)

	require.NoError(t, store.DeleteTemp(ctx, ref))
	_, statErr := os.Stat(filepath.Join(store.root, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(statErr))

	t.Run("deleting twice is fine", func(t *testing.T) {
		assert.NoError(t, store.DeleteTemp(ctx, ref))
	})

	t.Run("non-temp refs are ignored", func(t *testing.T) {
		assert.NoError(t, store.DeleteTemp(ctx, "proofs/keep.png"))
	})
}

func TestDiskStore_Unconfigured(t *testing.T) {
	store := NewDiskStore("")
	ctx := context.Background()

	assert.False(t, store.Configured())

	_, err := store.StoreTemp(ctx, "lobby-1", strings.NewReader("x"), "image/png")
	assert.Error(t, err)

	_, err = store.CommitPermanent(ctx, "temp/lobby/lobby-1/x.png")
	assert.Error(t, err)

	assert.NoError(t, store.DeleteTemp(ctx, "temp/lobby/lobby-1/x.png"))
}

func TestExtFor(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/webp": ".webp",
		"image/gif":  ".gif",
		"image/png":  ".png",
		"":           ".png",
		"text/plain": ".png",
	}
	for contentType, ext := range cases {
		assert.Equal(t, ext, extFor(contentType), contentType)
	}
}
