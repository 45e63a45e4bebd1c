package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/church-service/internal/config"
)

func TestDiskStore_Save(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "events/abc.png", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/events/abc.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "events", "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))
}

func TestDiskStore_Delete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Save(ctx, "events/gone.png", "image/png", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "events/gone.png"))

	_, err = os.Stat(filepath.Join(dir, "events", "gone.png"))
	assert.True(t, os.IsNotExist(err))

	// already gone
	require.NoError(t, s.Delete(ctx, "events/gone.png"))
	assert.Error(t, s.Delete(ctx, "../outside.png"))
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", "../etc/passwd", "events/../../x", "/"} {
		_, err := cleanKey(bad)
		assert.Error(t, err, bad)
	}
	k, err := cleanKey("events/a.webp")
	require.NoError(t, err)
	assert.Equal(t, "events/a.webp", k)
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.org",
		publicBase(config.S3Config{PublicBaseURL: "https://cdn.example.org/", Bucket: "b"}))
	assert.Equal(t, "http://minio:9000/church",
		publicBase(config.S3Config{Endpoint: "http://minio:9000/", Bucket: "church"}))
	assert.Equal(t, "https://church.s3.eu-west-1.amazonaws.com",
		publicBase(config.S3Config{Bucket: "church", Region: "eu-west-1"}))
}
