package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *APIClient {
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"access_token": "tok", "token_type": "bearer", "expires_in": 3600}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewAPIClient(AuthConfig{ClientID: "id", ClientSecret: "secret", Username: "bot", Password: "hunter2"})
	c.Host = srv.URL
	c.AuthHost = srv.URL
	c.Client = srv.Client()
	c.Limiter = nil
	return c
}

func TestClientListNewSubmissions(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/r/golang/new", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"kind": "Listing", "data": {"after": null, "children": [
			{"kind": "t3", "data": {"id": "abc", "subreddit": "golang", "author": "alice", "title": "newer", "created_utc": 1700000100, "link_flair_text": null}},
			{"kind": "t3", "data": {"id": "def", "subreddit": "golang", "author": "bob", "title": "older", "created_utc": 1700000000, "link_flair_text": "Discussion"}}
		]}}`))
	})
	c := newTestClient(t, mux)

	subs, err := c.ListNewSubmissions(ctx, "golang")
	assert.NoError(err)
	require.Equal(t, 2, len(subs))
	assert.Equal("abc", subs[0].ID)
	assert.False(subs[0].Flaired())
	assert.Equal(time.Unix(1700000100, 0), subs[0].CreatedAt)
	assert.True(subs[1].Flaired())
	assert.Equal("Discussion", subs[1].LinkFlairText)
}

func TestClientCreateReply(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/comment", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal("t3_abc", r.PostForm.Get("thing_id"))
		w.Write([]byte(`{"json": {"errors": [], "data": {"things": [
			{"kind": "t1", "data": {"id": "xyz"}}
		]}}}`))
	})
	c := newTestClient(t, mux)

	id, err := c.CreateReply(ctx, "abc", "notice text")
	assert.NoError(err)
	assert.Equal("xyz", id)
}

func TestClientNoInviteFound(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/r/newsub/api/accept_moderator_invite", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"json": {"errors": [["NO_INVITE_FOUND", "there is no pending invite for that subreddit", null]]}}`))
	})
	c := newTestClient(t, mux)

	err := c.AcceptModeratorInvite(ctx, "newsub")
	assert.ErrorIs(err, ErrNoInvite)
}

func TestClientFetchReplyTree(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/comments/abc", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal("r1", r.URL.Query().Get("comment"))
		w.Write([]byte(`[
			{"kind": "Listing", "data": {"children": [{"kind": "t3", "data": {"id": "abc"}}]}},
			{"kind": "Listing", "data": {"children": [
				{"kind": "t1", "data": {"id": "r1", "replies": {"kind": "Listing", "data": {"children": [
					{"kind": "t1", "data": {"id": "r2", "replies": ""}},
					{"kind": "more", "data": {"children": ["r4", "r5"]}}
				]}}}}
			]}}
		]`))
	})
	mux.HandleFunc("/api/morechildren", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"json": {"errors": [], "data": {"things": [
			{"kind": "t1", "data": {"id": "r4", "replies": ""}},
			{"kind": "t1", "data": {"id": "r5", "replies": ""}}
		]}}}`))
	})
	c := newTestClient(t, mux)

	ids, err := c.FetchReplyTree(ctx, "abc", "r1")
	assert.NoError(err)
	assert.ElementsMatch([]string{"r2", "r4", "r5"}, ids)
}

func TestClientErrorStatus(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "Forbidden", "error": 403}`))
	})
	c := newTestClient(t, mux)

	_, err := c.Me(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(http.StatusForbidden, apiErr.StatusCode)
}
