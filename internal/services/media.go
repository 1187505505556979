package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"microblog-server/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ImageKind selects the resize bounds and storage area for an upload.
// The kind doubles as the storage folder name.
type ImageKind string

const (
	ImageProfile ImageKind = "profile_pics"
	ImagePost    ImageKind = "post_pics"
)

const (
	profileBound = 125
	postBound    = 280
)

// DefaultProfileImage is the placeholder profile picture. It is never
// stored per-user and never removed.
const DefaultProfileImage = "default.jpg"

// MediaStore is the part of the media service other services depend on.
type MediaStore interface {
	Store(ctx context.Context, upload io.Reader, name string, kind ImageKind) (string, error)
	Remove(ctx context.Context, kind ImageKind, filename string) error
}

// MediaService decodes, resizes and stores uploaded images
type MediaService struct {
	files storage.FileStore
}

// NewMediaService creates a new media service
func NewMediaService(files storage.FileStore) *MediaService {
	return &MediaService{files: files}
}

// Store decodes an uploaded image, shrinks it to the bounds of the given
// kind (aspect ratio preserved, never enlarged), re-encodes it in its
// original format and writes it under a random filename that keeps the
// original extension. Any decode or encode failure must abort the whole
// submitting operation, so it is returned as ErrBadImage.
func (s *MediaService) Store(ctx context.Context, upload io.Reader, name string, kind ImageKind) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return "", fmt.Errorf("%w: unknown extension %q", ErrBadImage, ext)
	}

	img, err := imaging.Decode(upload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	bound := postBound
	if kind == ImageProfile {
		bound = profileBound
	}
	img = imaging.Fit(img, bound, bound, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	filename := uuid.New().String() + ext
	if err := s.files.Save(ctx, string(kind), filename, &buf); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return filename, nil
}

// Remove deletes a stored image. Empty filenames and the default profile
// placeholder are skipped.
func (s *MediaService) Remove(ctx context.Context, kind ImageKind, filename string) error {
	if filename == "" || filename == DefaultProfileImage {
		return nil
	}
	return s.files.Remove(ctx, string(kind), filename)
}

// URL returns where a stored image is served from
func (s *MediaService) URL(kind ImageKind, filename string) string {
	return s.files.URL(string(kind), filename)
}
