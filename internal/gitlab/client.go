package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	headerToken    = "PRIVATE-TOKEN"
	headerNextPage = "X-Next-Page"
	perPage        = 100
)

// Config carries the tracker endpoint and credentials, injected explicitly.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to a GitLab-compatible issue API, read-only.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a tracker client from the provided configuration.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gitlab base url is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// BaseURL returns the configured endpoint, used by the connection monitor.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the tracker endpoint answers at all. Any HTTP response,
// including an auth rejection, counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v4/version", nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set(headerToken, c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ListOpenIssues pages through the project's open issues until the tracker
// stops signalling a next page.
func (c *Client) ListOpenIssues(ctx context.Context, projectID int) ([]Issue, error) {
	var issues []Issue
	page := 1
	for page > 0 {
		url := fmt.Sprintf("%s/api/v4/projects/%d/issues?state=opened&per_page=%d&page=%d",
			c.baseURL, projectID, perPage, page)

		var pageIssues []Issue
		nextPage, err := c.getJSON(ctx, url, &pageIssues)
		if err != nil {
			return nil, fmt.Errorf("listing issues page %d: %w", page, err)
		}
		for i := range pageIssues {
			if err := pageIssues[i].Validate(); err != nil {
				return nil, fmt.Errorf("issue payload on page %d: %w", page, err)
			}
		}
		issues = append(issues, pageIssues...)
		page = nextPage
	}
	return issues, nil
}

// GetIssue fetches a single issue by project and issue number.
func (c *Client) GetIssue(ctx context.Context, projectID, iid int) (*Issue, error) {
	url := fmt.Sprintf("%s/api/v4/projects/%d/issues/%d", c.baseURL, projectID, iid)
	var issue Issue
	if _, err := c.getJSON(ctx, url, &issue); err != nil {
		return nil, fmt.Errorf("fetching issue %d/%d: %w", projectID, iid, err)
	}
	if err := issue.Validate(); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListLinks fetches the minimal link stubs for an issue's linked issues.
func (c *Client) ListLinks(ctx context.Context, projectID, iid int) ([]IssueLink, error) {
	url := fmt.Sprintf("%s/api/v4/projects/%d/issues/%d/links", c.baseURL, projectID, iid)
	var links []IssueLink
	if _, err := c.getJSON(ctx, url, &links); err != nil {
		return nil, fmt.Errorf("fetching links for issue %d/%d: %w", projectID, iid, err)
	}
	return links, nil
}

// getJSON performs an authenticated GET, decodes the body into out, and
// returns the next page number (0 when there is none).
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	if c.token != "" {
		req.Header.Set(headerToken, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("tracker responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, fmt.Errorf("decoding tracker response: %w", err)
	}

	nextPage := 0
	if header := resp.Header.Get(headerNextPage); header != "" {
		if parsed, err := strconv.Atoi(header); err == nil {
			nextPage = parsed
		}
	}
	return nextPage, nil
}
