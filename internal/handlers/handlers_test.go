package handlers_test

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"microblog-server/internal/handlers"
	"microblog-server/internal/memstore"
	"microblog-server/internal/middleware"
	"microblog-server/internal/models"
	"microblog-server/internal/services"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// testApp wires the real handlers and services over in-memory stores,
// with the same routes the server mounts.
type testApp struct {
	db       *memstore.DB
	files    *memstore.Files
	users    *services.UserService
	posts    *services.PostService
	messages *services.MessageService
	router   http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := memstore.New()
	files := memstore.NewFiles()
	media := services.NewMediaService(files)
	users := services.NewUserService(db.Users(), media, "test-secret")
	posts := services.NewPostService(db.Posts(), db.Users(), media)
	follows := services.NewFollowService(db.Follows(), db.Users())
	messages := services.NewMessageService(db.Messages(), db.Users())

	authHandler := handlers.NewAuthHandler(users, media)
	postHandler := handlers.NewPostHandler(posts, follows, media)
	chatHandler := handlers.NewChatHandler(messages, media)
	followHandler := handlers.NewFollowHandler(follows)

	r := chi.NewRouter()
	r.Use(middleware.Session(users))

	r.Get("/", postHandler.Index)
	r.Get("/index", postHandler.Index)
	r.Get("/user/{username}", postHandler.UserPosts)
	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/post/new", postHandler.NewPostForm)
		r.Post("/post/new", postHandler.CreatePost)
		r.Get("/post/{id}/delete", postHandler.DeletePost)
		r.Post("/post/{id}/delete", postHandler.DeletePost)
		r.Get("/account", authHandler.AccountForm)
		r.Post("/account", authHandler.UpdateAccount)
		r.Get("/chat/{username}", chatHandler.ChatPage)
		r.Post("/chat/{username}", chatHandler.SendMessage)
		r.Get("/chat/{username}/messages", chatHandler.Fragment)
		r.Get("/messages", chatHandler.Conversations)
		r.Get("/follow/{username}", followHandler.Follow)
		r.Get("/unfollow/{username}", followHandler.Unfollow)
	})

	r.NotFound(handlers.NotFound)

	return &testApp{
		db:       db,
		files:    files,
		users:    users,
		posts:    posts,
		messages: messages,
		router:   r,
	}
}

// signup registers a user directly and returns a logged-in session cookie
func (a *testApp) signup(t *testing.T, username string) (*models.User, *http.Cookie) {
	t.Helper()
	user, err := a.users.Register(context.Background(), username, username+"@example.com", "password1")
	require.NoError(t, err)
	token, err := a.users.SessionToken(user.ID)
	require.NoError(t, err)
	return user, &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func (a *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// postMultipart submits a multipart form, optionally with one file field
func (a *testApp) postMultipart(t *testing.T, path string, fields map[string]string, fileField, fileName string, file io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		part, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = io.Copy(part, file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

// flashCookie extracts the flash cookie set by a redirect response
func flashCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "flash" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no flash cookie set")
	return nil
}

// jpegUpload encodes a solid-color JPEG of the given size
func jpegUpload(t *testing.T, width, height int) *bytes.Reader {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return bytes.NewReader(buf.Bytes())
}
