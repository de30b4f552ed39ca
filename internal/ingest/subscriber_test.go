package ingest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/blackmichael/forum-feeds/internal/domain"
	"github.com/blackmichael/forum-feeds/internal/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscriber(t *testing.T) (*Subscriber, *domain.OriginService) {
	t.Helper()
	repo, err := sqlite.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := domain.NewOriginService(repo, repo, logger)
	return NewSubscriber("ws://stream.example.com/events", service, logger), service
}

func TestParseEvent(t *testing.T) {
	raw := []byte(`{
		"seq": 1024,
		"kind": "post.created",
		"post": {
			"post_id": "p1",
			"thread_id": "t1",
			"author_id": "userA",
			"posted_at": 1700000000
		}
	}`)

	event, err := parseEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), event.Seq)
	assert.Equal(t, "post.created", event.Kind)
	require.NotNil(t, event.Post)
	assert.Equal(t, "p1", event.Post.PostID)
	assert.Equal(t, "t1", event.Post.ThreadID)
	assert.Equal(t, "userA", event.Post.AuthorID)
	assert.Equal(t, int64(1700000000), event.Post.PostedAt)
}

func TestParseEventInvalidJSON(t *testing.T) {
	_, err := parseEvent([]byte(`{"seq": `))
	assert.Error(t, err)
}

func TestHandleEventStoresPost(t *testing.T) {
	sub, service := newTestSubscriber(t)
	ctx := context.Background()

	stored, err := sub.handleEvent(ctx, &streamEvent{
		Seq:  1,
		Kind: "post.created",
		Post: &postEvent{
			PostID:   "p1",
			ThreadID: "t1",
			AuthorID: "userA",
			PostedAt: 1700000000,
		},
	})
	require.NoError(t, err)
	assert.True(t, stored)

	matches, err := service.FindOriginThreads(ctx, "userA")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "t1", matches[0].ThreadID)
}

func TestHandleEventIgnoresOtherKinds(t *testing.T) {
	sub, _ := newTestSubscriber(t)
	ctx := context.Background()

	stored, err := sub.handleEvent(ctx, &streamEvent{Seq: 1, Kind: "thread.locked"})
	require.NoError(t, err)
	assert.False(t, stored)

	// post.created without a payload is dropped, not an error
	stored, err = sub.handleEvent(ctx, &streamEvent{Seq: 2, Kind: "post.created"})
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestBuildURL(t *testing.T) {
	sub, _ := newTestSubscriber(t)

	assert.Equal(t, "ws://stream.example.com/events", sub.buildURL(0))
	assert.Equal(t, "ws://stream.example.com/events?cursor=1024", sub.buildURL(1024))
}
