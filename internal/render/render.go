// Package render draws the portfolio page. It is the render sink of the
// showcase pipeline: every call writes a complete document, so prior output
// is always replaced.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/terra-clan/portfolio/internal/models"
	"github.com/terra-clan/portfolio/internal/showcase"
)

// EmptyMessage is shown instead of the project grid when nothing matches
const EmptyMessage = "No projects match the selected filters."

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page is everything the page template needs
type Page struct {
	Owner     string
	Greeting  string
	Theme     models.Theme
	View      showcase.View
	Options   models.FilterOptions
	Analytics models.Analytics
	GitHub    models.GitHubSnapshot
}

// Sink writes a page
type Sink interface {
	Render(w io.Writer, page Page) error
}

// HTMLRenderer renders pages with html/template
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the embedded templates
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("page.html").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render writes the full page
func (r *HTMLRenderer) Render(w io.Writer, page Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "page.html", page); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// RenderProjects writes only the filter controls and the project grid
func (r *HTMLRenderer) RenderProjects(w io.Writer, page Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "projects", page); err != nil {
		return fmt.Errorf("failed to render projects: %w", err)
	}
	return nil
}

// StaticHandler serves the embedded stylesheet and assets
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// SinkFor adapts the renderer to the showcase pipeline: each view is drawn
// into w as a full page built from base.
func SinkFor(s Sink, w io.Writer, base Page) showcase.Sink {
	return showcase.SinkFunc(func(view showcase.View) error {
		page := base
		page.View = view
		return s.Render(w, page)
	})
}

// Greeting returns the time-of-day greeting for owner
func Greeting(owner string, now time.Time) string {
	var greeting string
	switch hour := now.Hour(); {
	case hour < 12:
		greeting = "Good Morning"
	case hour < 18:
		greeting = "Good Afternoon"
	default:
		greeting = "Good Evening"
	}
	if owner == "" {
		return greeting
	}
	return fmt.Sprintf("%s, I'm %s", greeting, owner)
}

// FilterLabel is the button text for a filter value
func FilterLabel(value string) string {
	if value == models.FilterAll {
		return "All"
	}
	return capitalize(value)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// filterGroup is one row of filter buttons
type filterGroup struct {
	Title     string
	Dimension models.Dimension
	Values    []string
	Active    string
}

func filterGroups(page Page) []filterGroup {
	groups := make([]filterGroup, 0, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		groups = append(groups, filterGroup{
			Title:     capitalize(string(dim)),
			Dimension: dim,
			Values:    page.Options.Values(dim),
			Active:    page.View.Filters.Get(dim),
		})
	}
	return groups
}

func filterHref(dim models.Dimension, value string) string {
	q := url.Values{}
	q.Set(string(dim), value)
	return "/?" + q.Encode() + "#projects"
}

var funcMap = template.FuncMap{
	"filterLabel":  FilterLabel,
	"filterGroups": filterGroups,
	"filterHref":   filterHref,
	"sortKeys":     func() []models.SortKey { return models.SortKeys },
	"join":         strings.Join,
	"dateLabel": func(t *time.Time) string {
		if t == nil {
			return "N/A"
		}
		return t.Format("Jan 2, 2006")
	},
	"emptyMessage": func() string { return EmptyMessage },
}
