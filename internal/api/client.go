// Package api is the HTTP client for the postdeck backend.
// All endpoints use session-cookie auth; errors carry at most an optional
// string message, and the client never assumes more schema than that.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"postdeck/internal/logging"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds ordinary backend calls.
	DefaultTimeout = 15 * time.Second

	// GenerateTimeout bounds the primary generation call. Backend generation
	// routinely takes over a minute, so this mirrors the product's 130s budget.
	GenerateTimeout = 130 * time.Second

	sessionCookieName = "session"
)

// Config holds connection settings for the backend.
type Config struct {
	BaseURL      string
	SessionToken string
	Timeout      time.Duration
}

// Client talks to the backend REST API. The session token is guarded by a
// mutex: fetches read it from tea.Cmd goroutines while the config watcher
// rotates it from the update loop.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.RWMutex
	sessionToken string
}

// APIError is a backend-reported failure. Message() prefers the server's
// "message" field, then "error", then a generic fallback, so callers can
// surface it to the user verbatim.
type APIError struct {
	StatusCode int
	Msg        string
	ErrField   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend request failed with status %d: %s", e.StatusCode, e.Message())
}

// Message returns the best human-readable description of the failure.
func (e *APIError) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.ErrField != "" {
		return e.ErrField
	}
	return fmt.Sprintf("request failed (status %d)", e.StatusCode)
}

// ErrorMessage extracts a user-facing message from any error returned by
// this package, falling back to the provided default for transport errors.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return fallback
}

// errorBody is the loose error schema the backend may or may not send.
type errorBody struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

// NewClient creates a backend client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		sessionToken: cfg.SessionToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetSession replaces the session token, e.g. after a config hot reload.
func (c *Client) SetSession(token string) {
	c.mu.Lock()
	c.sessionToken = token
	c.mu.Unlock()
}

// session returns the current token.
func (c *Client) session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionToken
}

// ListPosts fetches one page of the generated-posts feed.
func (c *Client) ListPosts(ctx context.Context, params ListPostsParams) (*ListPostsResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.Limit))
	q.Set("orderBy", params.OrderBy)
	if params.Search != "" {
		q.Set("search", params.Search)
	}

	var out ListPostsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/generated-posts?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPost fetches the full detail of a single generated post.
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	if id == "" {
		return nil, fmt.Errorf("post id required")
	}
	var out Post
	if err := c.doJSON(ctx, http.MethodGet, "/users/generated-posts/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate requests a new piece of content. The request body is empty; the
// backend derives everything from the authenticated user's brand profile.
// The call carries an extended deadline because generation is slow.
func (c *Client) Generate(ctx context.Context) (*GenerateResponse, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, GenerateTimeout)
		defer cancel()
	}

	var out GenerateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/content-generation/generate", map[string]any{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VideoScript fetches the video-script sub-resource for a generated post.
func (c *Client) VideoScript(ctx context.Context, postID string) (*VideoScript, error) {
	if postID == "" {
		return nil, fmt.Errorf("post id required")
	}
	var out VideoScript
	path := "/content-generation/" + url.PathEscape(postID) + "/video-script"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostingSchedule fetches the posting-schedule sub-resource for a generated post.
func (c *Client) PostingSchedule(ctx context.Context, postID string) (*PostingSchedule, error) {
	if postID == "" {
		return nil, fmt.Errorf("post id required")
	}
	var out PostingSchedule
	path := "/content-generation/" + url.PathEscape(postID) + "/posting-schedule"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchImage downloads the bytes at an absolute image URL (the backend hosts
// generated images on a separate origin, so this bypasses baseURL).
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image url required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return data, nil
}

// doJSON issues a request against baseURL and decodes the JSON response.
// A nil body sends no payload; a non-2xx status is decoded through the loose
// error schema and returned as *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	reqID := shortRequestID()
	start := time.Now()
	logging.APIDebug("[%s] %s %s", reqID, method, path)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session(); token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIError("[%s] %s %s transport error after %v: %v", reqID, method, path, time.Since(start), err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		// Best effort; the body may not be JSON at all.
		_ = json.Unmarshal(data, &eb)
		logging.APIError("[%s] %s %s status=%d msg=%q", reqID, method, path, resp.StatusCode, eb.Message)
		return &APIError{StatusCode: resp.StatusCode, Msg: eb.Message, ErrField: eb.Err}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	logging.APIDebug("[%s] %s %s completed in %v (%d bytes)", reqID, method, path, time.Since(start), len(data))
	return nil
}

// shortRequestID returns an 8-char correlation id for debug logs.
func shortRequestID() string {
	return uuid.NewString()[:8]
}
