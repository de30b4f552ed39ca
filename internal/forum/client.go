package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Client is a minimal client for the forum's JSON API, used to backfill
// historical posts into the local store.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// populated after Login
	token string
}

// NewClient creates a new forum API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login authenticates with the forum API and stores the session token. Use
// an API key, not an account password.
func (c *Client) Login(ctx context.Context, username, apiKey string) error {
	body := map[string]string{
		"username": username,
		"api_key":  apiKey,
	}

	var resp createSessionResponse
	if err := c.post(ctx, "/api/session", body, &resp); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	c.token = resp.Token
	return nil
}

// Post is a single post as returned by the forum API.
type Post struct {
	PostID   string `json:"post_id"`
	ThreadID string `json:"thread_id"`
	AuthorID string `json:"author_id"`
	// PostedAt is a unix timestamp in seconds.
	PostedAt int64 `json:"posted_at"`
}

// ListPosts retrieves one page of posts, oldest first. Pages are numbered
// from 1. It returns the posts and whether more pages remain.
func (c *Client) ListPosts(ctx context.Context, page, perPage int) ([]Post, bool, error) {
	if c.token == "" {
		return nil, false, fmt.Errorf("not authenticated: call Login first")
	}

	path := "/api/posts?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)

	var resp listPostsResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, false, fmt.Errorf("list posts: %w", err)
	}

	return resp.Posts, resp.HasMore, nil
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

type createSessionResponse struct {
	Token string `json:"token"`
}

type listPostsResponse struct {
	Posts   []Post `json:"posts"`
	HasMore bool   `json:"has_more"`
}
