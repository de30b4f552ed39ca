package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blackmichael/forum-feeds/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	post_id   TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL,
	author_id TEXT NOT NULL,
	posted_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_thread_posted
	ON posts (thread_id, posted_at, post_id);

CREATE TABLE IF NOT EXISTS cursors (
	service      TEXT PRIMARY KEY,
	cursor_value INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
`

// Repository implements domain.PostRepository and domain.CursorRepository
// using SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository opens the SQLite database at path, creating the schema if
// it does not exist, and returns a new Repository. Use ":memory:" for an
// in-memory database. The caller should call Close when the repository is
// no longer needed.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite permits a single writer; one pooled connection also keeps
	// :memory: databases from being split across connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// CreatePost inserts a new post. Re-inserting an existing post ID is a no-op.
func (r *Repository) CreatePost(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (post_id, thread_id, author_id, posted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (post_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.ThreadID,
		post.AuthorID,
		post.PostedAt.Unix(),
	)
	return err
}

// EarliestPosts returns each thread's origin post: minimum posted_at, ties
// broken by the lowest post_id.
func (r *Repository) EarliestPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.post_id, p.thread_id, p.author_id, p.posted_at
		FROM posts p
		WHERE p.post_id = (
			SELECT p2.post_id
			FROM posts p2
			WHERE p2.thread_id = p.thread_id
			ORDER BY p2.posted_at ASC, p2.post_id ASC
			LIMIT 1
		)`)
	if err != nil {
		return nil, fmt.Errorf("query earliest posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var (
			p      domain.Post
			posted int64
		)
		if err := rows.Scan(&p.ID, &p.ThreadID, &p.AuthorID, &posted); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.PostedAt = time.Unix(posted, 0).UTC()
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// GetCursor retrieves the saved stream cursor for a service.
func (r *Repository) GetCursor(ctx context.Context, service string) (int64, error) {
	var cursor int64
	err := r.db.QueryRowContext(ctx,
		`SELECT cursor_value FROM cursors WHERE service = ?`, service,
	).Scan(&cursor)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return cursor, err
}

// UpdateCursor upserts the stream cursor for a service.
func (r *Repository) UpdateCursor(ctx context.Context, service string, cursor int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cursors (service, cursor_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (service) DO UPDATE SET cursor_value = excluded.cursor_value, updated_at = excluded.updated_at`,
		service, cursor, time.Now().UTC().Unix(),
	)
	return err
}
