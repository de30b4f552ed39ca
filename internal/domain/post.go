package domain

import "time"

// Post represents a forum post stored in our database.
type Post struct {
	// ID is the forum-assigned post identifier.
	ID string

	// ThreadID identifies the thread this post belongs to. A thread has no
	// stored representation of its own; it is just the set of posts
	// sharing a ThreadID.
	ThreadID string

	// AuthorID is the forum user ID of the post's author.
	AuthorID string

	// PostedAt is when the post was made on the forum. Not guaranteed
	// unique, even within a thread.
	PostedAt time.Time
}
