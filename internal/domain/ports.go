package domain

import "context"

// PostRepository defines persistence operations for forum posts.
type PostRepository interface {
	// CreatePost inserts a new post into the store. Inserting a post ID
	// that already exists is a no-op.
	CreatePost(ctx context.Context, post *Post) error

	// EarliestPosts returns one post per thread: the post with the minimum
	// PostedAt, ties broken by the lowest post ID in byte order. The order
	// of the returned slice is unspecified.
	EarliestPosts(ctx context.Context) ([]Post, error)
}

// CursorRepository defines persistence operations for event stream cursors.
type CursorRepository interface {
	// GetCursor retrieves the last-processed stream cursor for the given
	// service name. Returns 0 if no cursor has been saved.
	GetCursor(ctx context.Context, service string) (int64, error)

	// UpdateCursor persists the stream cursor so we can resume on restart.
	UpdateCursor(ctx context.Context, service string, cursor int64) error
}
