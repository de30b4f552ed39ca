package ingest

// streamEvent is the raw JSON structure from the forum event stream.
type streamEvent struct {
	Seq  int64      `json:"seq"`
	Kind string     `json:"kind"`
	Post *postEvent `json:"post,omitempty"`
}

// postEvent is the payload of a post.created event.
type postEvent struct {
	PostID   string `json:"post_id"`
	ThreadID string `json:"thread_id"`
	AuthorID string `json:"author_id"`
	// PostedAt is a unix timestamp in seconds.
	PostedAt int64 `json:"posted_at"`
}
