package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/portfolio/internal/catalog"
	"github.com/terra-clan/portfolio/internal/config"
	"github.com/terra-clan/portfolio/internal/contact"
	"github.com/terra-clan/portfolio/internal/github"
	"github.com/terra-clan/portfolio/internal/health"
	"github.com/terra-clan/portfolio/internal/models"
	"github.com/terra-clan/portfolio/internal/render"
	"github.com/terra-clan/portfolio/internal/showcase"
	"github.com/terra-clan/portfolio/internal/storage"
	"github.com/terra-clan/portfolio/internal/visitor"
)

const testOwner = "Test Owner"

type staticFetcher struct {
	repos []models.Repository
}

func (f staticFetcher) ListRepos(ctx context.Context, username string) ([]models.Repository, error) {
	return f.repos, nil
}

type stubChecker struct {
	name string
	err  error
}

func (c stubChecker) Name() string                          { return c.name }
func (c stubChecker) HealthCheck(ctx context.Context) error { return c.err }

type testEnv struct {
	server   *httptest.Server
	visitors *visitor.MemoryStore
	repo     *storage.MemoryRepository
	registry *health.Registry
}

func newTestEnv(t *testing.T, adminToken string) *testEnv {
	t.Helper()

	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	visitors := visitor.NewMemoryStore(time.Hour)
	repo := storage.NewMemoryRepository()
	registry := health.NewRegistry()
	registry.Register(health.NewPingChecker("storage", repo))

	gh := github.NewService(staticFetcher{repos: []models.Repository{
		{Name: "portfolio", HTMLURL: "https://github.com/someone/portfolio", StargazersCount: 3, UpdatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}}, nil, "someone", time.Hour)
	_, err = gh.Refresh(context.Background())
	require.NoError(t, err)

	s := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 8080}, Dependencies{
		Site:       config.SiteConfig{Owner: testOwner},
		SessionTTL: time.Hour,
		AdminToken: adminToken,
		Pipeline:   showcase.NewPipeline(catalog.Default()),
		Renderer:   renderer,
		Visitors:   visitors,
		Repository: repo,
		GitHub:     gh,
		Contact:    contact.NewService(repo, visitors),
		Health:     registry,
	})
	s.analyticsInterval = 10 * time.Millisecond

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, visitors: visitors, repo: repo, registry: registry}
}

// browser returns a client that keeps the visitor cookie between requests
func browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func doJSON(t *testing.T, c *http.Client, method, target string, body interface{}) (int, envelope) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, target, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func getHTML(t *testing.T, c *http.Client, target string) (int, string) {
	t.Helper()
	resp, err := c.Get(target)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

type viewPayload struct {
	State showcase.State `json:"state"`
	View  struct {
		Projects []models.Project `json:"projects"`
		Total    int              `json:"total"`
		Empty    bool             `json:"empty"`
	} `json:"view"`
}

func (p viewPayload) ids() []int {
	ids := make([]int, len(p.View.Projects))
	for i, proj := range p.View.Projects {
		ids[i] = proj.ID
	}
	return ids
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	status, body := doJSON(t, c, http.MethodGet, env.server.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	status, body = doJSON(t, c, http.MethodGet, env.server.URL+"/ready", nil)
	assert.Equal(t, http.StatusOK, status)
	var report health.Report
	decodeData(t, body, &report)
	assert.True(t, report.Ready)

	env.registry.Register(stubChecker{name: "redis", err: errors.New("connection refused")})
	status, body = doJSON(t, c, http.MethodGet, env.server.URL+"/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.False(t, body.Success)
}

func TestCORS_DoesNotAllowCredentials(t *testing.T) {
	env := newTestEnv(t, "")

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/filters", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestPage_RendersCatalogAndSetsCookie(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	resp, err := c.Get(env.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(b)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, 4, strings.Count(html, `class="project-card`))
	assert.Contains(t, html, "I&#39;m "+testOwner)
	assert.Contains(t, html, "portfolio")

	u, err := url.Parse(env.server.URL)
	require.NoError(t, err)
	var found bool
	for _, ck := range c.Jar.Cookies(u) {
		if ck.Name == VisitorCookie {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPage_QuerySelectionPersists(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	status, html := getHTML(t, c, env.server.URL+"/?category=academic")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, strings.Count(html, `class="project-card`))

	status, body := doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, status)
	var p viewPayload
	decodeData(t, body, &p)
	assert.Equal(t, "academic", p.State.Filters.Category)
	assert.Equal(t, []int{1, 2, 3}, p.ids())

	// Adding a second dimension that matches nothing shows the placeholder
	status, html = getHTML(t, c, env.server.URL+"/?complexity=advanced&category=web")
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, strings.Count(html, `class="project-card`))
	assert.Contains(t, html, render.EmptyMessage)

	status, _ = getHTML(t, c, env.server.URL+"/?category=unknown")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProjectsPartial(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	status, html := getHTML(t, c, env.server.URL+"/partials/projects?technology=Python")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, strings.Count(html, `class="project-card`))
	assert.NotContains(t, html, "<html")
}

func TestListProjects_QueryDoesNotPersist(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	status, body := doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/projects?sort=date", nil)
	require.Equal(t, http.StatusOK, status)
	var p viewPayload
	decodeData(t, body, &p)
	assert.Equal(t, []int{4, 3, 2, 1}, p.ids())

	status, body = doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &p)
	assert.Equal(t, models.SortDefault, p.State.Sort)
	assert.Equal(t, []int{1, 2, 3, 4}, p.ids())

	status, body = doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/projects?sort=random", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "invalid_selection", body.Error.Code)
}

func TestGetProjectAndFilters(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	status, body := doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/projects/2", nil)
	require.Equal(t, http.StatusOK, status)
	var p models.Project
	decodeData(t, body, &p)
	assert.Equal(t, "Data Science Course Project", p.Title)

	status, _ = doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/projects/42", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/filters", nil)
	require.Equal(t, http.StatusOK, status)
	var f struct {
		Options models.FilterOptions `json:"options"`
	}
	decodeData(t, body, &f)
	assert.Equal(t, []string{"all", "academic", "web"}, f.Options.Categories)
}

func TestSelection(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)
	target := env.server.URL + "/api/v1/selection"

	status, body := doJSON(t, c, http.MethodPost, target, map[string]string{"dimension": "technology", "value": "Python"})
	require.Equal(t, http.StatusOK, status)
	var p viewPayload
	decodeData(t, body, &p)
	assert.Equal(t, []int{2}, p.ids())
	assert.Equal(t, 1, p.View.Total)
	assert.Equal(t, "python", p.State.Filters.Technology)

	status, body = doJSON(t, c, http.MethodPost, target, map[string]string{"dimension": "technology", "value": "all"})
	require.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, c, http.MethodPost, target, map[string]string{"sort": "name"})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &p)
	assert.Equal(t, []int{2, 1, 4, 3}, p.ids())

	// Stored state survives to the next request
	status, body = doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &p)
	assert.Equal(t, models.SortName, p.State.Sort)

	status, body = doJSON(t, c, http.MethodPost, target, map[string]string{"dimension": "colour", "value": "red"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_selection", body.Error.Code)

	status, body = doJSON(t, c, http.MethodPost, target, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body.Error.Code)
}

type analyticsPayload struct {
	Added     bool             `json:"added"`
	Analytics models.Analytics `json:"analytics"`
}

func TestTrackView(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)
	target := env.server.URL + "/api/v1/views"

	status, body := doJSON(t, c, http.MethodPost, target, map[string]interface{}{"id": 1})
	require.Equal(t, http.StatusOK, status)
	var a analyticsPayload
	decodeData(t, body, &a)
	assert.True(t, a.Added)
	assert.Equal(t, 1, a.Analytics.ProjectsViewed)

	status, body = doJSON(t, c, http.MethodPost, target, map[string]interface{}{"id": "1"})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &a)
	assert.False(t, a.Added)
	assert.Equal(t, 1, a.Analytics.ProjectsViewed)

	status, body = doJSON(t, c, http.MethodPost, target, map[string]interface{}{"id": models.ViewProjectsSection})
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &a)
	assert.Equal(t, 2, a.Analytics.ProjectsViewed)

	status, _ = doJSON(t, c, http.MethodPost, target, map[string]interface{}{"id": 99})
	assert.Equal(t, http.StatusNotFound, status)

	count, err := env.repo.CountViews(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestViewForm_Redirects(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := c.Post(env.server.URL+"/views/3", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/#projects", resp.Header.Get("Location"))

	status, body := doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, status)
	var a models.Analytics
	decodeData(t, body, &a)
	assert.Equal(t, 1, a.ProjectsViewed)
}

func TestAnalytics_CountsVisitsPerSession(t *testing.T) {
	env := newTestEnv(t, "")
	first := browser(t)
	second := browser(t)

	var a models.Analytics

	status, body := doJSON(t, first, http.MethodGet, env.server.URL+"/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &a)
	assert.Equal(t, int64(1), a.TotalVisits)

	// Same session does not count again
	status, body = doJSON(t, first, http.MethodGet, env.server.URL+"/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &a)
	assert.Equal(t, int64(1), a.TotalVisits)

	status, body = doJSON(t, second, http.MethodGet, env.server.URL+"/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, body, &a)
	assert.Equal(t, int64(2), a.TotalVisits)
	assert.Equal(t, "0m 0s", a.VisitTime)
}

func TestTheme(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	status, _ := doJSON(t, c, http.MethodPut, env.server.URL+"/api/v1/theme", map[string]string{"theme": "dark"})
	require.Equal(t, http.StatusOK, status)

	_, html := getHTML(t, c, env.server.URL+"/")
	assert.Contains(t, html, `class="dark-mode"`)

	status, body := doJSON(t, c, http.MethodPut, env.server.URL+"/api/v1/theme", map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body.Error.Code)

	// The form fallback toggles back and redirects to the page
	resp, err := c.PostForm(env.server.URL+"/theme", url.Values{"theme": {"light"}})
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, string(b), `class="dark-mode"`)
}

func TestGitHub(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	status, body := doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/github", nil)
	require.Equal(t, http.StatusOK, status)
	var snap models.GitHubSnapshot
	decodeData(t, body, &snap)
	assert.True(t, snap.Loaded())
	assert.Equal(t, 3, snap.Stats.Stars)
	require.Len(t, snap.Repos, 1)
}

func TestContact(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)
	target := env.server.URL + "/api/v1/contact"

	status, body := doJSON(t, c, http.MethodPost, target, models.ContactRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "Let's build something together.",
	})
	require.Equal(t, http.StatusCreated, status)
	var ok models.ContactResponse
	decodeData(t, body, &ok)
	assert.Equal(t, "success", ok.Status)
	assert.Equal(t, contact.MessageSuccess, ok.Message)
	assert.NotEmpty(t, ok.ID)

	status, body = doJSON(t, c, http.MethodPost, target, models.ContactRequest{Email: "bad"})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, body.Success)
	var failed models.ContactResponse
	decodeData(t, body, &failed)
	assert.Equal(t, contact.MessageFailure, failed.Message)
	assert.Len(t, failed.Errors, 3)

	resp, err := c.PostForm(target, url.Values{
		"name":    {"Grace"},
		"email":   {"grace@example.com"},
		"message": {"Form posts work without scripts."},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	messages, err := env.repo.ListContactMessages(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	status, body = doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, status)
	var a models.Analytics
	decodeData(t, body, &a)
	assert.Equal(t, 1, a.ProjectsViewed)
}

func TestAdmin(t *testing.T) {
	t.Run("disabled without token", func(t *testing.T) {
		env := newTestEnv(t, "")
		resp, err := http.Get(env.server.URL + "/api/v1/admin/messages")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("requires token", func(t *testing.T) {
		env := newTestEnv(t, "s3cret-admin-token")
		c := browser(t)

		status, body := doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/admin/messages", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "missing_api_key", body.Error.Code)

		req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/admin/messages", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer wrong")
		resp, err := c.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		doJSON(t, c, http.MethodPost, env.server.URL+"/api/v1/views", map[string]interface{}{"id": 4})

		req, err = http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/admin/views/4", nil)
		require.NoError(t, err)
		req.Header.Set("X-API-Key", "s3cret-admin-token")
		resp, err = c.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var env2 envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env2))
		var counted struct {
			View  string `json:"view"`
			Count int64  `json:"count"`
		}
		decodeData(t, env2, &counted)
		assert.Equal(t, "4", counted.View)
		assert.Equal(t, int64(1), counted.Count)
	})
}

func TestAnalyticsWebSocket(t *testing.T) {
	env := newTestEnv(t, "")
	c := browser(t)

	// Start a session first so the socket reuses the cookie
	status, _ := doJSON(t, c, http.MethodGet, env.server.URL+"/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, status)

	u, err := url.Parse(env.server.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, ck := range c.Jar.Cookies(u) {
		header.Add("Cookie", ck.String())
	}

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws/analytics"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for i := 0; i < 2; i++ {
		var msg AnalyticsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "analytics", msg.Type)
		require.NotNil(t, msg.Data)
		assert.Equal(t, int64(1), msg.Data.TotalVisits)
	}
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, "")

	resp, err := http.Get(env.server.URL + "/static/style.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}
