package storage

import (
	"context"
	"io"
)

// FileStore abstracts where media files live. Folder is the usage area
// ("profile_pics" or "post_pics"), filename the randomly generated name.
type FileStore interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) error
	Remove(ctx context.Context, folder, filename string) error
	URL(folder, filename string) string
}
