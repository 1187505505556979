package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostStripsScripts(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "alice")

	rr := app.postMultipart(t, "/post/new", map[string]string{
		"body": "<script>alert('x')</script>hello feed",
	}, "", "", nil, session)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	feed := app.get(t, "/", session)
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Body.String(), "hello feed")
	assert.NotContains(t, feed.Body.String(), "<script>")
}

func TestCreatePostEmptyBody(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "alice")

	rr := app.postMultipart(t, "/post/new", map[string]string{
		"body": "<script>only markup</script>",
	}, "", "", nil, session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Say something first.")
}

func TestCreatePostWithImage(t *testing.T) {
	app := newTestApp(t)
	user, session := app.signup(t, "alice")

	rr := app.postMultipart(t, "/post/new", map[string]string{
		"body": "look at this",
	}, "picture", "photo.jpg", jpegUpload(t, 600, 400), session)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	posts, err := app.posts.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, user.ID, posts[0].UserID)
	require.NotNil(t, posts[0].ImageFile)
	assert.True(t, app.files.Has("post_pics", *posts[0].ImageFile))
}

func TestCreatePostBadImage(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "alice")

	rr := app.postMultipart(t, "/post/new", map[string]string{
		"body": "broken upload",
	}, "picture", "photo.txt", jpegUpload(t, 60, 40), session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "That image could not be read.")
}

func TestDeleteOwnPost(t *testing.T) {
	app := newTestApp(t)
	user, session := app.signup(t, "alice")

	post, err := app.posts.Create(context.Background(), user.ID, "short lived", nil, "")
	require.NoError(t, err)

	rr := app.postForm(t, "/post/"+post.ID+"/delete", nil, session)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String(), "delete must answer with an empty body so the client removes the card")

	feed := app.get(t, "/", session)
	assert.NotContains(t, feed.Body.String(), "short lived")
}

func TestDeleteForeignPost(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.signup(t, "alice")
	_, bobSession := app.signup(t, "bob")

	post, err := app.posts.Create(context.Background(), alice.ID, "keep out", nil, "")
	require.NoError(t, err)

	rr := app.postForm(t, "/post/"+post.ID+"/delete", nil, bobSession)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	feed := app.get(t, "/", bobSession, flashCookie(t, rr))
	assert.Contains(t, feed.Body.String(), "You do not have permission to delete this post.")
	assert.Contains(t, feed.Body.String(), "keep out")
}

func TestDeleteMissingPost(t *testing.T) {
	app := newTestApp(t)
	_, session := app.signup(t, "alice")

	rr := app.postForm(t, "/post/no-such-id/delete", nil, session)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUserPostsPage(t *testing.T) {
	app := newTestApp(t)
	alice, aliceSession := app.signup(t, "alice")
	_, bobSession := app.signup(t, "bob")

	_, err := app.posts.Create(context.Background(), alice.ID, "from alice", nil, "")
	require.NoError(t, err)

	rr := app.get(t, "/user/alice", bobSession)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "from alice")
	assert.Contains(t, rr.Body.String(), "Follow")

	// own page shows no follow controls
	own := app.get(t, "/user/alice", aliceSession)
	require.Equal(t, http.StatusOK, own.Code)
	assert.NotContains(t, own.Body.String(), "/follow/alice")
}

func TestUserPostsUnknown(t *testing.T) {
	app := newTestApp(t)

	rr := app.get(t, "/user/nobody")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIndexAnonymous(t *testing.T) {
	app := newTestApp(t)

	rr := app.get(t, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Login")
}
