package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"microblog-server/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenLogin(t *testing.T) {
	app := newTestApp(t)

	rr := app.postForm(t, "/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"password1"},
		"confirm_password": {"password1"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))

	login := app.get(t, "/login", flashCookie(t, rr))
	require.Equal(t, http.StatusOK, login.Code)
	assert.Contains(t, login.Body.String(), "Your account has been created! You are now able to log in")

	rr = app.postForm(t, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"password1"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session, "login should set a session cookie")
	assert.True(t, session.HttpOnly)

	account := app.get(t, "/account", session)
	require.Equal(t, http.StatusOK, account.Code)
	assert.Contains(t, account.Body.String(), "alice")
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	rr := app.postForm(t, "/register", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"password1"},
		"confirm_password": {"different"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Passwords do not match.")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	rr := app.postForm(t, "/register", url.Values{
		"username":         {"alice"},
		"email":            {"other@example.com"},
		"password":         {"password1"},
		"confirm_password": {"password1"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "That username is taken.")
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	rr := app.postForm(t, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong-password"},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Login unsuccessful. Please check email and password")
}

func TestLoginHonorsNext(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	rr := app.postForm(t, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"password1"},
		"next":     {"/post/new"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/post/new", rr.Header().Get("Location"))
}

func TestLoginRejectsExternalNext(t *testing.T) {
	app := newTestApp(t)
	app.signup(t, "alice")

	rr := app.postForm(t, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"password1"},
		"next":     {"//evil.example.com/"},
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "alice")

	rr := app.get(t, "/logout", session)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	var cleared *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAccountRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	rr := app.get(t, "/account")
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?next=%2Faccount", rr.Header().Get("Location"))
}

func TestUpdateAccount(t *testing.T) {
	app := newTestApp(t)
	user, session := app.signup(t, "alice")

	rr := app.postMultipart(t, "/account", map[string]string{
		"username": "alicia",
		"email":    "alicia@example.com",
	}, "picture", "avatar.jpg", jpegUpload(t, 300, 300), session)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/account", rr.Header().Get("Location"))

	updated, err := app.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)
	assert.Equal(t, "alicia@example.com", updated.Email)
	assert.True(t, app.files.Has("profile_pics", updated.ImageFile))
}
