package service

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"strings"
	"testing"

	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/storage"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageServiceProcessAndStore(t *testing.T) {
	blobs := storage.NewMemBlobStore()
	svc := NewImageService(blobs, &config.Config{ImageMaxUploadSizeMB: 5})
	ctx := context.Background()

	img, err := svc.Process(ctx, UploadImageInput{AuthorID: 7, Content: testutil.TinyPNG(t, 3000, 1500)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.Key, "posts/"))
	assert.True(t, strings.HasSuffix(img.Key, "/master.jpg"))
	assert.True(t, strings.HasSuffix(img.WebPKey, "/master.webp"))
	assert.Equal(t, MasterMaxSize, img.Width)
	assert.Equal(t, MasterMaxSize/2, img.Height)

	created, err := svc.Store(img)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := blobs.Read(img.Key)
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, MasterMaxSize, MasterMaxSize/2), decoded.Bounds())

	ok, err := blobs.Exists(img.WebPKey)
	require.NoError(t, err)
	assert.True(t, ok)

	// Identical content by the same author is stored once.
	again, err := svc.Process(ctx, UploadImageInput{AuthorID: 7, Content: testutil.TinyPNG(t, 3000, 1500)})
	require.NoError(t, err)
	assert.Equal(t, img.Key, again.Key)
	created, err = svc.Store(again)
	require.NoError(t, err)
	assert.False(t, created)

	other, err := svc.Process(ctx, UploadImageInput{AuthorID: 8, Content: testutil.TinyPNG(t, 3000, 1500)})
	require.NoError(t, err)
	assert.NotEqual(t, img.Key, other.Key)

	svc.Remove(img)
	ok, err = blobs.Exists(img.Key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestImageServiceKeepsSmallImages(t *testing.T) {
	svc := NewImageService(storage.NewMemBlobStore(), &config.Config{})

	img, err := svc.Process(context.Background(), UploadImageInput{AuthorID: 1, Content: testutil.TinyGIF(t)})
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 1, img.Height)
}

func TestImageServiceRejectsInvalidUploads(t *testing.T) {
	svc := NewImageService(storage.NewMemBlobStore(), &config.Config{ImageMaxUploadSizeMB: 1})
	ctx := context.Background()

	tests := []struct {
		name    string
		content []byte
		message string
	}{
		{"empty", []byte{}, msgEmptyFile},
		{"text", []byte("hello, this is not an image"), msgInvalidImage},
		{"truncated png", testutil.TinyPNG(t, 20, 20)[:40], msgInvalidImage},
		{"too large", bytes.Repeat([]byte{0xff}, 1024*1024+1), msgInvalidImage},
		{"too many pixels", testutil.OversizedPNG(t, 50000, 50000), msgInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(ctx, UploadImageInput{AuthorID: 1, Content: tt.content})
			appErr := assertCode(t, err, models.CodeValidation)
			assert.Equal(t, tt.message, appErr.FieldError("image"))
		})
	}
}

func TestImageServicePixelBudget(t *testing.T) {
	svc := NewImageService(storage.NewMemBlobStore(), &config.Config{ImageMaxUploadSizeMB: 1})
	upload := testutil.OversizedPNG(t, 50000, 50000)
	assert.Less(t, len(upload), 1024)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(upload))
	require.NoError(t, err)
	assert.Equal(t, 50000, cfg.Width)

	_, err = svc.Process(context.Background(), UploadImageInput{AuthorID: 1, Content: upload})
	assertCode(t, err, models.CodeValidation)
}
