package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bryanchriswhite/WebDesk/internal/shell"
	"github.com/bryanchriswhite/WebDesk/internal/window"
)

// DefaultTimeout bounds every request made by a Client
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Health is the answer of /api/health
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Session string `json:"session"`
}

// Client talks to a running webdesk server
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL (e.g. http://localhost:8080)
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/health", nil, &h)
	return h, err
}

// State returns the full shell snapshot
func (c *Client) State(ctx context.Context) (shell.State, error) {
	var st shell.State
	err := c.do(ctx, http.MethodGet, "/state", nil, &st)
	return st, err
}

// Windows lists every window the server knows
func (c *Client) Windows(ctx context.Context) ([]shell.WindowView, error) {
	var views []shell.WindowView
	err := c.do(ctx, http.MethodGet, "/windows", nil, &views)
	return views, err
}

// Toggle opens or closes a window and returns its new view
func (c *Client) Toggle(ctx context.Context, id window.ID) (shell.WindowView, error) {
	return c.windowAction(ctx, id, "toggle")
}

// Focus raises an open window
func (c *Client) Focus(ctx context.Context, id window.ID) (shell.WindowView, error) {
	return c.windowAction(ctx, id, "focus")
}

func (c *Client) windowAction(ctx context.Context, id window.ID, action string) (shell.WindowView, error) {
	var v shell.WindowView
	path := fmt.Sprintf("/windows/%s/%s", url.PathEscape(string(id)), action)
	err := c.do(ctx, http.MethodPost, path, nil, &v)
	return v, err
}

// CloseAll closes every open window and reports how many were open
func (c *Client) CloseAll(ctx context.Context) (int, error) {
	var res struct {
		Closed int `json:"closed"`
	}
	err := c.do(ctx, http.MethodPost, "/windows/close-all", nil, &res)
	return res.Closed, err
}
