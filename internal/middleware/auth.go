package middleware

import (
	"context"
	"net/http"
	"net/url"

	"microblog-server/internal/models"
)

type contextKey string

const userKey contextKey = "current_user"

// SessionCookie is the name of the session cookie
const SessionCookie = "session"

// SessionAuthenticator resolves a session token to a user
type SessionAuthenticator interface {
	ValidateSession(token string) (string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Session resolves the session cookie to a user and stores the user in
// the request context. Requests without a valid session pass through
// anonymously.
func Session(auth SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := auth.ValidateSession(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.GetByID(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth redirects anonymous requests to the login page, preserving
// the originally requested URL, query string included, for the post-login
// redirect.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser extracts the authenticated user from the context, nil when
// the request is anonymous.
func CurrentUser(ctx context.Context) *models.User {
	user, ok := ctx.Value(userKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
