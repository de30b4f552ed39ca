package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidUserID is returned when a caller-supplied user ID fails
// validation. It is surfaced before any storage access is attempted.
var ErrInvalidUserID = errors.New("invalid user id")

// OriginService is the core domain service. It owns the business logic for
// classifying which threads a user started: a thread matches when its
// origin post, the post with the minimum posted timestamp, was authored by
// that user.
type OriginService struct {
	repo    PostRepository
	cursors CursorRepository
	logger  *slog.Logger
}

// NewOriginService creates an OriginService backed by the given repositories.
func NewOriginService(repo PostRepository, cursors CursorRepository, logger *slog.Logger) *OriginService {
	return &OriginService{
		repo:    repo,
		cursors: cursors,
		logger:  logger,
	}
}

// FindOriginThreads returns one OriginMatch per thread whose origin post
// was authored by userID. An empty result set is a valid outcome, not an
// error. The operation is read-only and idempotent; cancelling ctx
// surfaces the context error rather than a partial result.
//
// Classification happens in two steps: the repository resolves each
// thread's origin post (EarliestPosts), and the authorship filter is
// applied here. Keeping the filter out of the query means the matching
// rule is not tied to any particular execution strategy.
func (s *OriginService) FindOriginThreads(ctx context.Context, userID string) ([]OriginMatch, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id must not be empty", ErrInvalidUserID)
	}

	earliest, err := s.repo.EarliestPosts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("earliest posts: %w", err)
	}

	matches := make([]OriginMatch, 0)
	for _, p := range earliest {
		if p.AuthorID != userID {
			continue
		}
		matches = append(matches, OriginMatch{
			ThreadID: p.ThreadID,
			Source:   MatchSourceThreadOrigin,
		})
	}

	s.logger.Debug("origin threads resolved", "user_id", userID, "matches", len(matches))
	return matches, nil
}

// ProcessNewPost stores a post received from the event stream.
func (s *OriginService) ProcessNewPost(ctx context.Context, post *Post) error {
	if post.ID == "" || post.ThreadID == "" {
		return fmt.Errorf("post is missing an id or thread id")
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// GetCursor retrieves the last-processed stream cursor for the given service.
func (s *OriginService) GetCursor(ctx context.Context, service string) (int64, error) {
	return s.cursors.GetCursor(ctx, service)
}

// UpdateCursor persists the stream cursor for the given service.
func (s *OriginService) UpdateCursor(ctx context.Context, service string, cursor int64) error {
	return s.cursors.UpdateCursor(ctx, service, cursor)
}
