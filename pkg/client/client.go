package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/terra-clan/portfolio/internal/models"
)

// Client is a Go SDK for the portfolio API. It keeps the visitor cookie,
// so consecutive calls share one visitor session.
type Client struct {
	baseURL    string
	apiKey     string
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

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithAdminKey sets the bearer token sent to admin endpoints
func WithAdminKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// NewClient creates a new portfolio client
func NewClient(baseURL string, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-2xx answer from the API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// State is the visitor's selection
type State struct {
	Filters models.FilterSelection `json:"filters"`
	Sort    models.SortKey         `json:"sort"`
}

// View is a computed project list
type View struct {
	Projects []models.Project       `json:"projects"`
	Filters  models.FilterSelection `json:"filters"`
	Sort     models.SortKey         `json:"sort"`
	Total    int                    `json:"total"`
	Empty    bool                   `json:"empty"`
}

// ProjectsResponse is returned by project listing and selection calls
type ProjectsResponse struct {
	State State `json:"state"`
	View  View  `json:"view"`
}

// FiltersResponse lists the available filter options
type FiltersResponse struct {
	Options  models.FilterOptions `json:"options"`
	SortKeys []models.SortKey     `json:"sort_keys"`
	State    State                `json:"state"`
}

// ViewResponse is returned after tracking a view
type ViewResponse struct {
	Added     bool             `json:"added"`
	Analytics models.Analytics `json:"analytics"`
}

// ProjectQuery overrides the stored selection for one listing call
type ProjectQuery struct {
	Category   string
	Complexity string
	Technology string
	Sort       string
}

func (q ProjectQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Complexity != "" {
		v.Set("complexity", q.Complexity)
	}
	if q.Technology != "" {
		v.Set("technology", q.Technology)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

// Ready reports whether the server's critical dependencies are up
func (c *Client) Ready(ctx context.Context) (bool, error) {
	err := c.call(ctx, http.MethodGet, "/ready", nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusServiceUnavailable {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListProjects returns the visitor's view, optionally overridden by q
func (c *Client) ListProjects(ctx context.Context, q ProjectQuery) (*ProjectsResponse, error) {
	path := "/api/v1/projects"
	if enc := q.values().Encode(); enc != "" {
		path += "?" + enc
	}

	var out ProjectsResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject retrieves one project
func (c *Client) GetProject(ctx context.Context, id int) (*models.Project, error) {
	var out models.Project
	if err := c.call(ctx, http.MethodGet, "/api/v1/projects/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Filters returns the filter options
func (c *Client) Filters(ctx context.Context) (*FiltersResponse, error) {
	var out FiltersResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/filters", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectFilter stores one filter value for the session
func (c *Client) SelectFilter(ctx context.Context, dim models.Dimension, value string) (*ProjectsResponse, error) {
	body := map[string]string{"dimension": string(dim), "value": value}

	var out ProjectsResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/selection", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectSort stores the sort key for the session
func (c *Client) SelectSort(ctx context.Context, key models.SortKey) (*ProjectsResponse, error) {
	body := map[string]string{"sort": string(key)}

	var out ProjectsResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/selection", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackView records that the visitor opened a project or section
func (c *Client) TrackView(ctx context.Context, viewID string) (*ViewResponse, error) {
	var out ViewResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/views", map[string]string{"id": viewID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics returns the visitor counter block
func (c *Client) Analytics(ctx context.Context) (*models.Analytics, error) {
	var out models.Analytics
	if err := c.call(ctx, http.MethodGet, "/api/v1/analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetTheme stores the theme preference
func (c *Client) SetTheme(ctx context.Context, theme models.Theme) error {
	return c.call(ctx, http.MethodPut, "/api/v1/theme", map[string]models.Theme{"theme": theme}, nil)
}

// GitHub returns the GitHub showcase snapshot
func (c *Client) GitHub(ctx context.Context) (*models.GitHubSnapshot, error) {
	var out models.GitHubSnapshot
	if err := c.call(ctx, http.MethodGet, "/api/v1/github", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitContact sends the contact form. On validation failure the
// response carries the field errors alongside an *APIError.
func (c *Client) SubmitContact(ctx context.Context, req models.ContactRequest) (*models.ContactResponse, error) {
	var out models.ContactResponse
	err := c.call(ctx, http.MethodPost, "/api/v1/contact", req, &out)
	if err != nil && out.Status == "" {
		return nil, err
	}
	return &out, err
}

// ListMessages returns stored contact messages (admin)
func (c *Client) ListMessages(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	path := "/api/v1/admin/messages"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out struct {
		Messages []*models.ContactMessage `json:"messages"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// CountViews returns how often a view was recorded (admin)
func (c *Client) CountViews(ctx context.Context, viewID string) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/admin/views/"+url.PathEscape(viewID), nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// call sends body as JSON and decodes the envelope's data into out. A
// failed envelope still decodes its data, if any, before returning the error.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	status, respBody, err := c.doRequest(ctx, method, path, rdr)
	if err != nil {
		return err
	}

	var result struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if out != nil && len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, out); err != nil {
			return fmt.Errorf("failed to unmarshal data: %w", err)
		}
	}

	if !result.Success {
		apiErr := &APIError{Status: status, Code: "request_failed", Message: http.StatusText(status)}
		if result.Error != nil {
			apiErr.Code = result.Error.Code
			apiErr.Message = result.Error.Message
		}
		return apiErr
	}

	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}
