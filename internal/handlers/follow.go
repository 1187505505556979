package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"microblog-server/internal/middleware"
	"microblog-server/internal/repository"
	"microblog-server/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FollowHandler handles follow and unfollow actions
type FollowHandler struct {
	follows *services.FollowService
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// Follow handles GET /follow/{username}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")

	target, err := h.follows.Follow(r.Context(), current.ID, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		setFlash(w, "danger", fmt.Sprintf("User %s not found.", username))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case errors.Is(err, services.ErrSelfAction):
		setFlash(w, "warning", "You cannot follow yourself!")
		http.Redirect(w, r, "/user/"+username, http.StatusSeeOther)
		return
	case err != nil:
		serverError(w, r, err, "Failed to follow user")
		return
	}

	log.Info().Str("user_id", current.ID).Str("target_id", target.ID).Msg("User followed")

	setFlash(w, "success", fmt.Sprintf("You are now following %s!", target.Username))
	http.Redirect(w, r, "/user/"+target.Username, http.StatusSeeOther)
}

// Unfollow handles GET /unfollow/{username}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	current := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")

	target, err := h.follows.Unfollow(r.Context(), current.ID, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		setFlash(w, "danger", fmt.Sprintf("User %s not found.", username))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case errors.Is(err, services.ErrSelfAction):
		setFlash(w, "warning", "You cannot unfollow yourself!")
		http.Redirect(w, r, "/user/"+username, http.StatusSeeOther)
		return
	case err != nil:
		serverError(w, r, err, "Failed to unfollow user")
		return
	}

	log.Info().Str("user_id", current.ID).Str("target_id", target.ID).Msg("User unfollowed")

	setFlash(w, "info", fmt.Sprintf("You have unfollowed %s.", target.Username))
	http.Redirect(w, r, "/user/"+target.Username, http.StatusSeeOther)
}
