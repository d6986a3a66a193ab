// Package gitbook publishes generated documentation to GitBook over
// its REST API.
package gitbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.gitbook.com/v1"

// Client is a GitBook REST API client.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a Client. An empty token falls back to the
// GITBOOK_TOKEN environment variable; an empty baseURL uses the public
// API endpoint.
func NewClient(baseURL, token string) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITBOOK_TOKEN")
	}
	if token == "" {
		return nil, errors.New("gitbook api token not found, set GITBOOK_TOKEN")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Page is the subset of the GitBook page payload walter uses.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreatePage creates a new page in the given space.
func (c *Client) CreatePage(ctx context.Context, spaceID, title, content string) (*Page, error) {
	body := map[string]string{"title": title, "content": content}
	var page Page
	path := fmt.Sprintf("/spaces/%s/content", url.PathEscape(spaceID))
	if err := c.sendJSON(ctx, http.MethodPost, path, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage replaces the content of an existing page.
func (c *Client) UpdatePage(ctx context.Context, spaceID, pageID, content string) (*Page, error) {
	body := map[string]string{"content": content}
	var page Page
	path := fmt.Sprintf("/spaces/%s/content/%s", url.PathEscape(spaceID), url.PathEscape(pageID))
	if err := c.sendJSON(ctx, http.MethodPatch, path, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// sendJSON performs a request with a JSON body and decodes the JSON
// response into dst.
func (c *Client) sendJSON(ctx context.Context, method, path string, body any, dst any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gitbook request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}
	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// apiError reads an error response from the API and returns it as an error.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return fmt.Errorf("gitbook api (%d): %s", resp.StatusCode, errResp.Error.Message)
	}
	return fmt.Errorf("gitbook api (%d): %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
