package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"microblog-server/internal/services"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePostImageShrinksToBound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	filename, err := e.media.Store(ctx, jpegImage(t, 1000, 500), "wide.jpg", services.ImagePost)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".jpg"))

	stored, err := imaging.Decode(e.files.Data("post_pics", filename))
	require.NoError(t, err)

	bounds := stored.Bounds()
	assert.Equal(t, 280, bounds.Dx())
	assert.Equal(t, 140, bounds.Dy())
}

func TestStoreProfileImageShrinksToBound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	filename, err := e.media.Store(ctx, jpegImage(t, 500, 500), "me.jpg", services.ImageProfile)
	require.NoError(t, err)

	stored, err := imaging.Decode(e.files.Data("profile_pics", filename))
	require.NoError(t, err)

	bounds := stored.Bounds()
	assert.Equal(t, 125, bounds.Dx())
	assert.Equal(t, 125, bounds.Dy())
}

func TestStoreNeverEnlarges(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	filename, err := e.media.Store(ctx, jpegImage(t, 60, 40), "small.jpg", services.ImagePost)
	require.NoError(t, err)

	stored, err := imaging.Decode(e.files.Data("post_pics", filename))
	require.NoError(t, err)

	bounds := stored.Bounds()
	assert.Equal(t, 60, bounds.Dx())
	assert.Equal(t, 40, bounds.Dy())
}

func TestStoreRandomizesFilename(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first, err := e.media.Store(ctx, jpegImage(t, 50, 50), "pic.jpg", services.ImagePost)
	require.NoError(t, err)
	second, err := e.media.Store(ctx, jpegImage(t, 50, 50), "pic.jpg", services.ImagePost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, "pic.jpg", first)
}

func TestStoreCorruptImage(t *testing.T) {
	e := newEnv(t)

	_, err := e.media.Store(context.Background(), bytes.NewReader([]byte("not an image")), "pic.jpg", services.ImagePost)
	assert.ErrorIs(t, err, services.ErrBadImage)
	assert.Equal(t, 0, e.files.Count())
}

func TestStoreUnknownExtension(t *testing.T) {
	e := newEnv(t)

	_, err := e.media.Store(context.Background(), jpegImage(t, 50, 50), "document.pdf", services.ImagePost)
	assert.ErrorIs(t, err, services.ErrBadImage)
}

func TestRemoveSkipsDefaultAndEmpty(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	assert.NoError(t, e.media.Remove(ctx, services.ImageProfile, services.DefaultProfileImage))
	assert.NoError(t, e.media.Remove(ctx, services.ImageProfile, ""))
}

func TestRemoveStoredImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	filename, err := e.media.Store(ctx, jpegImage(t, 50, 50), "pic.jpg", services.ImagePost)
	require.NoError(t, err)
	require.True(t, e.files.Has("post_pics", filename))

	require.NoError(t, e.media.Remove(ctx, services.ImagePost, filename))
	assert.False(t, e.files.Has("post_pics", filename))
}
