package services

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/floodwatch/apiserver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	keys []string
	err  error
}

func (f *fakeBackend) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeBackend) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.keys = append(f.keys, key)
	return f.err
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeBackend) Bucket() string { return "test-bucket" }

func writeTempImage(t *testing.T) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "photo-*.jpg")
	require.NoError(t, err)
	_, err = tmp.WriteString("not really a jpeg")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	return tmp.Name()
}

func TestUploadImage_EmptyPathIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewMediaService(storage.NewStorage(backend), "http://assets.local", discardLogger())

	url, err := svc.UploadImage(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, url)
	assert.Empty(t, backend.keys)
}

func TestUploadImage_ReturnsPublicURL(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewMediaService(storage.NewStorage(backend), "http://assets.local/", discardLogger())
	path := writeTempImage(t)

	url, err := svc.UploadImage(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, backend.keys, 1)
	key := backend.keys[0]
	assert.True(t, strings.HasPrefix(key, "images/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "http://assets.local/test-bucket/"+key, url)

	// The temp file is gone after a successful upload.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploadImage_CleansUpOnFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("bucket unavailable")}
	svc := NewMediaService(storage.NewStorage(backend), "http://assets.local", discardLogger())
	path := writeTempImage(t)

	_, err := svc.UploadImage(context.Background(), path)
	require.Error(t, err)

	// The temp file is removed even when the upload fails.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
