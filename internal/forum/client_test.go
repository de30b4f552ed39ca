package forum

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/session", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["api_key"] != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "session-token"})
	})

	mux.HandleFunc("GET /api/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer session-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("page") {
		case "1":
			json.NewEncoder(w).Encode(listPostsResponse{
				Posts: []Post{
					{PostID: "p1", ThreadID: "t1", AuthorID: "userA", PostedAt: 10},
					{PostID: "p2", ThreadID: "t1", AuthorID: "userB", PostedAt: 20},
				},
				HasMore: true,
			})
		default:
			json.NewEncoder(w).Encode(listPostsResponse{
				Posts:   []Post{{PostID: "p3", ThreadID: "t2", AuthorID: "userC", PostedAt: 5}},
				HasMore: false,
			})
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientLoginAndListPosts(t *testing.T) {
	srv := newTestAPI(t)
	client := NewClient(srv.URL)
	ctx := context.Background()

	require.NoError(t, client.Login(ctx, "userA", "good-key"))

	posts, hasMore, err := client.ListPosts(ctx, 1, 100)
	require.NoError(t, err)
	assert.True(t, hasMore)
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].PostID)
	assert.Equal(t, int64(10), posts[0].PostedAt)

	posts, hasMore, err = client.ListPosts(ctx, 2, 100)
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, posts, 1)
	assert.Equal(t, "p3", posts[0].PostID)
}

func TestClientLoginRejected(t *testing.T) {
	srv := newTestAPI(t)
	client := NewClient(srv.URL)

	err := client.Login(context.Background(), "userA", "bad-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClientListPostsRequiresLogin(t *testing.T) {
	client := NewClient("http://example.com")

	_, _, err := client.ListPosts(context.Background(), 1, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}
