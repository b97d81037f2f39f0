package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalTestStorage(t *testing.T) Storage {
	t.Helper()
	s, err := NewStorage(Config{
		Type:     "local",
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/uploads",
	})
	require.NoError(t, err)
	return s
}

func TestLocalStorageRoundTrip(t *testing.T) {
	s := newLocalTestStorage(t)
	ctx := context.Background()

	err := s.Save(ctx, "gallery/test.jpg", strings.NewReader("image-bytes"), "image/jpeg")
	require.NoError(t, err)

	exists, err := s.Exists(ctx, "gallery/test.jpg")
	require.NoError(t, err)
	assert.True(t, exists)

	r, err := s.Get(ctx, "gallery/test.jpg")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))

	require.NoError(t, s.Delete(ctx, "gallery/test.jpg"))
	exists, err = s.Exists(ctx, "gallery/test.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreGeneratesUniqueKeys(t *testing.T) {
	s := newLocalTestStorage(t)
	ctx := context.Background()

	first, err := Store(ctx, s, StoreInput{
		Bytes:       []byte("one"),
		FileName:    "photo.png",
		ContentType: "image/png",
	}, "gallery")
	require.NoError(t, err)

	second, err := Store(ctx, s, StoreInput{
		Bytes:       []byte("two"),
		FileName:    "photo.png",
		ContentType: "image/png",
	}, "gallery")
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.True(t, strings.HasPrefix(first.Key, "gallery/"))
	assert.True(t, strings.HasSuffix(first.Key, ".png"))
	assert.Contains(t, first.URL, first.Key)
}

func TestStoreRejectsEmptyInput(t *testing.T) {
	s := newLocalTestStorage(t)
	_, err := Store(context.Background(), s, StoreInput{}, "gallery")
	assert.Error(t, err)
}

func TestKeyFromURL(t *testing.T) {
	key, ok := KeyFromURL("http://localhost:8080/uploads", "http://localhost:8080/uploads/gallery/a.png")
	assert.True(t, ok)
	assert.Equal(t, "gallery/a.png", key)

	_, ok = KeyFromURL("http://localhost:8080/uploads", "https://elsewhere.example/file.png")
	assert.False(t, ok)
}
