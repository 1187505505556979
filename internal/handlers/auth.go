package handlers

import (
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"microblog-server/internal/middleware"
	"microblog-server/internal/services"

	"github.com/rs/zerolog/log"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const sessionMaxAge = 30 * 24 * 60 * 60

// AuthHandler handles registration, login, logout and the account page
type AuthHandler struct {
	users *services.UserService
	media *services.MediaService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService, media *services.MediaService) *AuthHandler {
	return &AuthHandler{
		users: users,
		media: media,
	}
}

// authForm carries entered values and inline errors back to the form
type authForm struct {
	Username string
	Email    string
	Next     string
	Errors   map[string]string
}

// RegisterForm handles GET /register
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderPage(w, http.StatusOK, "register", newPage(w, r, "Register", authForm{}))
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	form := authForm{Username: username, Email: email, Errors: map[string]string{}}
	if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
		form.Errors["username"] = "Username must be between 3 and 30 characters."
	}
	if !emailPattern.MatchString(email) {
		form.Errors["email"] = "Enter a valid email address."
	}
	if utf8.RuneCountInString(password) < 6 {
		form.Errors["password"] = "Password must be at least 6 characters."
	}
	if password != confirm {
		form.Errors["confirm_password"] = "Passwords do not match."
	}
	if len(form.Errors) > 0 {
		renderPage(w, http.StatusOK, "register", newPage(w, r, "Register", form))
		return
	}

	user, err := h.users.Register(r.Context(), username, email, password)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		form.Errors["username"] = "That username is taken."
	case errors.Is(err, services.ErrEmailTaken):
		form.Errors["email"] = "That email is taken."
	case err != nil:
		serverError(w, r, err, "Failed to register user")
		return
	}
	if len(form.Errors) > 0 {
		renderPage(w, http.StatusOK, "register", newPage(w, r, "Register", form))
		return
	}

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User registered")

	setFlash(w, "success", "Your account has been created! You are now able to log in")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	form := authForm{Next: r.URL.Query().Get("next")}
	renderPage(w, http.StatusOK, "login", newPage(w, r, "Login", form))
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	email := r.FormValue("email")
	next := r.FormValue("next")

	user, err := h.users.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// One generic message for unknown email and wrong password
			// alike, so accounts cannot be enumerated.
			form := authForm{Email: email, Next: next, Errors: map[string]string{
				"login": "Login unsuccessful. Please check email and password",
			}}
			renderPage(w, http.StatusOK, "login", newPage(w, r, "Login", form))
			return
		}
		serverError(w, r, err, "Failed to log in user")
		return
	}

	token, err := h.users.SessionToken(user.ID)
	if err != nil {
		serverError(w, r, err, "Failed to create session token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("User logged in")

	// Only same-site destinations qualify for the post-login redirect.
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// accountData is the account page payload
type accountData struct {
	Form     authForm
	ImageURL string
}

// AccountForm handles GET /account
func (h *AuthHandler) AccountForm(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	data := accountData{
		Form:     authForm{Username: user.Username, Email: user.Email},
		ImageURL: h.media.URL(services.ImageProfile, user.ImageFile),
	}
	renderPage(w, http.StatusOK, "account", newPage(w, r, "Account", data))
}

// UpdateAccount handles POST /account
func (h *AuthHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))

	form := authForm{Username: username, Email: email, Errors: map[string]string{}}
	if n := utf8.RuneCountInString(username); n < 3 || n > 30 {
		form.Errors["username"] = "Username must be between 3 and 30 characters."
	}
	if !emailPattern.MatchString(email) {
		form.Errors["email"] = "Enter a valid email address."
	}

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

	rerender := func() {
		data := accountData{
			Form:     form,
			ImageURL: h.media.URL(services.ImageProfile, user.ImageFile),
		}
		renderPage(w, http.StatusOK, "account", newPage(w, r, "Account", data))
	}

	if len(form.Errors) > 0 {
		rerender()
		return
	}

	_, err = h.users.UpdateAccount(r.Context(), user.ID, username, email, upload, uploadName)
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		form.Errors["username"] = "That username is taken."
		rerender()
		return
	case errors.Is(err, services.ErrEmailTaken):
		form.Errors["email"] = "That email is taken."
		rerender()
		return
	case errors.Is(err, services.ErrBadImage):
		form.Errors["picture"] = "That image could not be read. Use a jpg, png or gif."
		rerender()
		return
	case err != nil:
		serverError(w, r, err, "Failed to update account")
		return
	}

	setFlash(w, "success", "Your account has been updated!")
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}
