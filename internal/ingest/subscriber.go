package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/blackmichael/forum-feeds/internal/domain"
	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

const (
	cursorServiceName  = "forum-stream"
	cursorSaveInterval = 5 * time.Second
)

// Subscriber connects to the forum's post event stream and stores new posts
// as they arrive.
type Subscriber struct {
	url     string
	service *domain.OriginService
	logger  *slog.Logger
}

// NewSubscriber creates a new event stream subscriber.
func NewSubscriber(
	streamURL string,
	service *domain.OriginService,
	logger *slog.Logger,
) *Subscriber {
	return &Subscriber{
		url:     streamURL,
		service: service,
		logger:  logger,
	}
}

// Start connects to the event stream and processes events until the context
// is cancelled. It automatically reconnects on transient errors with
// exponential backoff.
func (s *Subscriber) Start(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.subscribe(ctx, bo); err != nil {
				wait := bo.NextBackOff()
				s.logger.Error("stream connection error, reconnecting",
					"error", err,
					"backoff", wait,
				)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
		}
	}
}

func (s *Subscriber) buildURL(cursor int64) string {
	u, _ := url.Parse(s.url)
	q := u.Query()
	if cursor > 0 {
		q.Set("cursor", fmt.Sprintf("%d", cursor))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Subscriber) subscribe(ctx context.Context, bo *backoff.ExponentialBackOff) error {
	cursor, err := s.service.GetCursor(ctx, cursorServiceName)
	if err != nil {
		s.logger.Warn("failed to load cursor, starting from live", "error", err)
	}

	wsURL := s.buildURL(cursor)
	s.logger.Info("connecting to event stream", "url", wsURL)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer conn.Close()

	s.logger.Info("connected to event stream")
	bo.Reset()

	lastCursorSave := time.Now()
	var latestCursor int64
	var eventsReceived, postsStored int64
	lastStatsLog := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		event, err := parseEvent(message)
		if err != nil {
			s.logger.Error("failed to parse event", "error", err)
			continue
		}

		eventsReceived++
		latestCursor = event.Seq

		if stored, err := s.handleEvent(ctx, event); err != nil {
			s.logger.Error("failed to handle event", "error", err)
		} else if stored {
			postsStored++
		}

		// Log stats every 30 seconds
		if time.Since(lastStatsLog) >= 30*time.Second {
			s.logger.Info("stream stats",
				"events_received", eventsReceived,
				"posts_stored", postsStored,
			)
			lastStatsLog = time.Now()
		}

		// Periodically save cursor
		if time.Since(lastCursorSave) >= cursorSaveInterval {
			if err := s.service.UpdateCursor(ctx, cursorServiceName, latestCursor); err != nil {
				s.logger.Error("failed to save cursor", "error", err)
			} else {
				lastCursorSave = time.Now()
			}
		}
	}
}

func (s *Subscriber) handleEvent(ctx context.Context, event *streamEvent) (stored bool, err error) {
	if event.Kind != "post.created" || event.Post == nil {
		return false, nil
	}

	post := &domain.Post{
		ID:       event.Post.PostID,
		ThreadID: event.Post.ThreadID,
		AuthorID: event.Post.AuthorID,
		PostedAt: time.Unix(event.Post.PostedAt, 0).UTC(),
	}

	if err := s.service.ProcessNewPost(ctx, post); err != nil {
		return false, err
	}
	return true, nil
}

func parseEvent(data []byte) (*streamEvent, error) {
	var event streamEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &event, nil
}
