package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// DatabasePath is the SQLite database file path.
	DatabasePath string

	// StreamURL is the forum post event stream WebSocket endpoint. If
	// empty, the server runs query-only with ingest disabled.
	StreamURL string
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first if one
// exists.
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	port := 3000
	if p := os.Getenv("PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "forum-feeds.db"
	}

	streamURL := os.Getenv("FORUM_STREAM_URL")

	return &Config{
		Port:         port,
		DatabasePath: dbPath,
		StreamURL:    streamURL,
	}, nil
}
