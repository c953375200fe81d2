// Package github fetches the owner's public repositories for the GitHub
// section of the page. Failures stay inside this package: callers always
// get a snapshot, possibly carrying an error message instead of data.
package github

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/terra-clan/portfolio/internal/models"
)

// DefaultBaseURL is the public GitHub REST API
const DefaultBaseURL = "https://api.github.com"

// DefaultPerPage is how many repositories are requested
const DefaultPerPage = 6

// Client is a minimal GitHub REST client
type Client struct {
	baseURL    string
	token      string
	perPage    int
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithToken authenticates requests with a personal access token
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithPerPage sets the page size
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// NewClient creates a GitHub client
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		perPage: DefaultPerPage,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListRepos returns the user's repositories, most recently updated first
func (c *Client) ListRepos(ctx context.Context, username string) (repos []models.Repository, err error) {
	if username == "" {
		err = errors.New("username is required")
		return repos, err
	}

	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", strconv.Itoa(c.perPage))
	endpoint := c.baseURL + "/users/" + url.PathEscape(username) + "/repos?" + q.Encode()

	var body []byte
	body, err = c.get(ctx, endpoint)
	if err != nil {
		err = errors.Wrapf(err, "failed to list repositories for %s", username)
		return repos, err
	}

	err = json.Unmarshal(body, &repos)
	if err != nil {
		err = errors.Wrap(err, "failed to decode repositories")
		return repos, err
	}

	return repos, err
}

// Ping checks that the API root answers
func (c *Client) Ping(ctx context.Context) (err error) {
	_, err = c.get(ctx, c.baseURL+"/")
	return err
}

func (c *Client) get(ctx context.Context, endpoint string) (body []byte, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return body, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "portfolio/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	var resp *http.Response
	resp, err = c.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return body, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = errors.Errorf("GitHub API error: %d", resp.StatusCode)
		return body, err
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return body, err
	}

	return body, err
}

// ComputeStats totals stars and forks. The latest update is taken from the
// first repository, which is the most recently updated one.
func ComputeStats(repos []models.Repository) models.RepoStats {
	stats := models.RepoStats{Repositories: len(repos)}
	for _, r := range repos {
		stats.Stars += r.StargazersCount
		stats.Forks += r.ForksCount
	}
	if len(repos) > 0 {
		latest := repos[0].UpdatedAt
		stats.LatestUpdate = &latest
	}
	return stats
}
