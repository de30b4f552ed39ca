package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/blackmichael/forum-feeds/internal/domain"
	"github.com/blackmichael/forum-feeds/internal/forum"
	"github.com/blackmichael/forum-feeds/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		baseURL  string
		username string
		apiKey   string
		dbPath   string
		perPage  int
	)

	flag.StringVar(&baseURL, "base-url", envOrDefault("FORUM_API_URL", ""), "Forum API base URL (e.g. https://forum.example.com)")
	flag.StringVar(&username, "username", envOrDefault("FORUM_USERNAME", ""), "Forum account username")
	flag.StringVar(&apiKey, "api-key", envOrDefault("FORUM_API_KEY", ""), "Forum API key")
	flag.StringVar(&dbPath, "db", envOrDefault("DATABASE_PATH", "forum-feeds.db"), "SQLite database path")
	flag.IntVar(&perPage, "per-page", 100, "Posts fetched per API page")
	flag.Parse()

	if baseURL == "" {
		return fmt.Errorf("--base-url is required (or set FORUM_API_URL)")
	}
	if username == "" || apiKey == "" {
		return fmt.Errorf("--username and --api-key are required (or set FORUM_USERNAME and FORUM_API_KEY)")
	}

	ctx := context.Background()

	repo, err := sqlite.NewRepository(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	client := forum.NewClient(baseURL)

	fmt.Printf("Logging in as %s...\n", username)
	if err := client.Login(ctx, username, apiKey); err != nil {
		return err
	}

	var total int
	for page := 1; ; page++ {
		posts, hasMore, err := client.ListPosts(ctx, page, perPage)
		if err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}

		for _, p := range posts {
			post := &domain.Post{
				ID:       p.PostID,
				ThreadID: p.ThreadID,
				AuthorID: p.AuthorID,
				PostedAt: time.Unix(p.PostedAt, 0).UTC(),
			}
			if err := repo.CreatePost(ctx, post); err != nil {
				return fmt.Errorf("store post %s: %w", p.PostID, err)
			}
		}

		total += len(posts)
		fmt.Printf("Imported page %d (%d posts so far)\n", page, total)

		if !hasMore {
			break
		}
	}

	fmt.Printf("Backfill complete: %d posts\n", total)
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
