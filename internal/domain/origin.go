package domain

// MatchSourceThreadOrigin is the discriminator carried by every OriginMatch
// produced by the started-threads query. Consumers that union several feed
// queries use it to tell the result categories apart.
const MatchSourceThreadOrigin = "thread_origin"

// OriginMatch is a single result row: a thread whose origin post was
// authored by the queried user.
type OriginMatch struct {
	// ThreadID is the matched thread.
	ThreadID string

	// PostID is never populated, even though the origin post's ID is known
	// when the match is computed. Consumers only need thread-level
	// matching today; populate this here if that changes.
	PostID *string

	// Source is always MatchSourceThreadOrigin.
	Source string
}

// OriginPost returns the origin post among posts: the one with the earliest
// PostedAt, ties broken by the lowest post ID in byte order. All posts are
// assumed to belong to the same thread. ok is false if posts is empty.
func OriginPost(posts []Post) (origin Post, ok bool) {
	if len(posts) == 0 {
		return Post{}, false
	}
	origin = posts[0]
	for _, p := range posts[1:] {
		if p.PostedAt.Before(origin.PostedAt) ||
			(p.PostedAt.Equal(origin.PostedAt) && p.ID < origin.ID) {
			origin = p
		}
	}
	return origin, true
}
