package handlers

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"microblog-server/internal/middleware"
	"microblog-server/internal/models"
	"microblog-server/internal/repository"
	"microblog-server/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PostHandler handles the post listing, compose and delete pages
type PostHandler struct {
	posts   *services.PostService
	follows *services.FollowService
	media   *services.MediaService
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *services.PostService, follows *services.FollowService, media *services.MediaService) *PostHandler {
	return &PostHandler{
		posts:   posts,
		follows: follows,
		media:   media,
	}
}

// postView is a post prepared for rendering. Body is sanitized at write
// time, so it is safe to mark as HTML here.
type postView struct {
	ID             string
	Body           template.HTML
	CreatedAt      time.Time
	AuthorUsername string
	AuthorImageURL string
	ImageURL       string
	Mine           bool
}

func (h *PostHandler) postViews(posts []*models.Post, current *models.User) []postView {
	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		v := postView{
			ID:             p.ID,
			Body:           template.HTML(p.Body),
			CreatedAt:      p.CreatedAt,
			AuthorUsername: p.AuthorUsername,
			AuthorImageURL: h.media.URL(services.ImageProfile, p.AuthorImage),
			Mine:           current != nil && current.ID == p.UserID,
		}
		if p.ImageFile != nil && *p.ImageFile != "" {
			v.ImageURL = h.media.URL(services.ImagePost, *p.ImageFile)
		}
		views = append(views, v)
	}
	return views
}

// Index handles GET / and GET /index
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		serverError(w, r, err, "Failed to list posts")
		return
	}

	current := middleware.CurrentUser(r.Context())
	renderPage(w, http.StatusOK, "index", newPage(w, r, "Home", h.postViews(posts, current)))
}

// userPostsData is the user page payload
type userPostsData struct {
	Username        string
	ProfileImageURL string
	Posts           []postView
	IsSelf          bool
	Following       bool
}

// UserPosts handles GET /user/{username}
func (h *PostHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, posts, err := h.posts.ListByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(w, r)
			return
		}
		serverError(w, r, err, "Failed to list user posts")
		return
	}

	current := middleware.CurrentUser(r.Context())
	data := userPostsData{
		Username:        user.Username,
		ProfileImageURL: h.media.URL(services.ImageProfile, user.ImageFile),
		Posts:           h.postViews(posts, current),
		IsSelf:          current != nil && current.ID == user.ID,
	}
	if current != nil && !data.IsSelf {
		following, err := h.follows.IsFollowing(r.Context(), current.ID, user.ID)
		if err != nil {
			serverError(w, r, err, "Failed to check follow state")
			return
		}
		data.Following = following
	}

	renderPage(w, http.StatusOK, "user_posts", newPage(w, r, user.Username, data))
}

// composeForm carries the compose form state back on validation errors
type composeForm struct {
	Body   string
	Errors map[string]string
}

// NewPostForm handles GET /post/new
func (h *PostHandler) NewPostForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "create_post", newPage(w, r, "New Post", composeForm{}))
}

// CreatePost handles POST /post/new
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	body := r.FormValue("body")
	form := composeForm{Body: body, Errors: map[string]string{}}

	var upload io.Reader
	uploadName := ""
	file, header, err := r.FormFile("picture")
	if err == nil {
		defer file.Close()
		upload = file
		uploadName = header.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(body) == "" {
		form.Errors["body"] = "Say something first."
		renderPage(w, http.StatusOK, "create_post", newPage(w, r, "New Post", form))
		return
	}

	post, err := h.posts.Create(r.Context(), current.ID, body, upload, uploadName)
	switch {
	case errors.Is(err, services.ErrEmptyBody):
		form.Errors["body"] = "Say something first."
		renderPage(w, http.StatusOK, "create_post", newPage(w, r, "New Post", form))
		return
	case errors.Is(err, services.ErrBadImage):
		form.Errors["picture"] = "That image could not be read. Use a jpg, png or gif."
		renderPage(w, http.StatusOK, "create_post", newPage(w, r, "New Post", form))
		return
	case err != nil:
		serverError(w, r, err, "Failed to create post")
		return
	}

	log.Info().Str("user_id", current.ID).Str("post_id", post.ID).Msg("Post created")

	setFlash(w, "success", "Your post has been created!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeletePost handles GET and POST /post/{id}/delete. A successful delete
// answers with an empty body so the client removes the post element in
// place.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())
	postID := chi.URLParam(r, "id")

	err := h.posts.Delete(r.Context(), current.ID, postID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(w, r)
		return
	case errors.Is(err, services.ErrForbidden):
		setFlash(w, "danger", "You do not have permission to delete this post.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case err != nil:
		serverError(w, r, err, "Failed to delete post")
		return
	}

	log.Info().Str("user_id", current.ID).Str("post_id", postID).Msg("Post deleted")

	w.WriteHeader(http.StatusOK)
}
