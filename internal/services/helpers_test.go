package services_test

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"microblog-server/internal/memstore"
	"microblog-server/internal/models"
	"microblog-server/internal/services"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

type env struct {
	db    *memstore.DB
	files *memstore.Files

	media    *services.MediaService
	users    *services.UserService
	posts    *services.PostService
	follows  *services.FollowService
	messages *services.MessageService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := memstore.New()
	files := memstore.NewFiles()
	media := services.NewMediaService(files)
	return &env{
		db:       db,
		files:    files,
		media:    media,
		users:    services.NewUserService(db.Users(), media, "test-secret"),
		posts:    services.NewPostService(db.Posts(), db.Users(), media),
		follows:  services.NewFollowService(db.Follows(), db.Users()),
		messages: services.NewMessageService(db.Messages(), db.Users()),
	}
}

func (e *env) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), username, username+"@example.com", "password1")
	require.NoError(t, err)
	return user
}

// jpegImage encodes a solid-color JPEG of the given size
func jpegImage(t *testing.T, width, height int) *bytes.Reader {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return bytes.NewReader(buf.Bytes())
}
