package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"microblog-server/internal/middleware"
	"microblog-server/internal/models"

	"github.com/rs/zerolog/log"
)

const flashCookie = "flash"

// Flash is a one-shot user-visible notice carried across a redirect.
// Kind matches the bootstrap-ish alert classes the templates use
// (success, info, warning, danger).
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func setFlash(w http.ResponseWriter, kind, message string) {
	payload, err := json.Marshal(Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

func popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return []Flash{f}
}

// page is the data every full-page template receives
type page struct {
	Title   string
	User    *models.User
	Flashes []Flash
	Data    any
}

func newPage(w http.ResponseWriter, r *http.Request, title string, data any) page {
	return page{
		Title:   title,
		User:    middleware.CurrentUser(r.Context()),
		Flashes: popFlashes(w, r),
		Data:    data,
	}
}

// NotFound renders the 404 page
func NotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusNotFound, "error", page{
		Title: "Page Not Found",
		User:  middleware.CurrentUser(r.Context()),
		Data:  "The page you are looking for does not exist.",
	})
}

func serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	renderPage(w, http.StatusInternalServerError, "error", page{
		Title: "Server Error",
		User:  middleware.CurrentUser(r.Context()),
		Data:  "Something went wrong. Please try again.",
	})
}
