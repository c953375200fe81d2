package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/portfolio/internal/models"
)

var (
	ErrDuplicateID = errors.New("duplicate project id")
	ErrEmpty       = errors.New("catalog is empty")
)

// Loader reads project definitions from YAML and keeps them in file order
type Loader struct {
	mu       sync.RWMutex
	projects []models.Project
	byID     map[int]int
}

// NewLoader creates an empty loader
func NewLoader() *Loader {
	return &Loader{
		byID: make(map[int]int),
	}
}

// LoadDefault seeds the loader with the built-in catalog
func (l *Loader) LoadDefault() error {
	for _, p := range Default() {
		if err := l.Add(p); err != nil {
			return err
		}
	}
	slog.Info("catalog seeded from defaults", "count", len(l.projects))
	return nil
}

// LoadFromDir loads every *.yaml / *.yml file in dir, in file name order
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading catalog from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			return fmt.Errorf("failed to load %s: %w", filepath.Base(file), err)
		}
		loaded++
	}

	slog.Info("catalog files loaded", "files", loaded, "projects", l.Len())
	return nil
}

// LoadFromFile loads the projects listed in one YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, pf := range cf.Projects {
		project, err := pf.toProject()
		if err != nil {
			return fmt.Errorf("project #%d: %w", i+1, err)
		}
		if err := l.Add(project); err != nil {
			return err
		}
		slog.Debug("project loaded", "id", project.ID, "title", project.Title)
	}

	return nil
}

// Add appends a project, rejecting duplicate ids
func (l *Loader) Add(p models.Project) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[p.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateID, p.ID)
	}
	l.byID[p.ID] = len(l.projects)
	l.projects = append(l.projects, p)
	return nil
}

// Projects returns a copy of the loaded projects in load order
func (l *Loader) Projects() []models.Project {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]models.Project, len(l.projects))
	copy(result, l.projects)
	return result
}

// Get retrieves a project by id
func (l *Loader) Get(id int) *models.Project {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i, ok := l.byID[id]
	if !ok {
		return nil
	}
	p := l.projects[i]
	return &p
}

// Len returns the number of loaded projects
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.projects)
}

// Load builds the catalog from path (file or directory), or from the
// built-in defaults when path is empty.
func Load(path string) ([]models.Project, error) {
	loader := NewLoader()

	switch {
	case path == "":
		if err := loader.LoadDefault(); err != nil {
			return nil, err
		}
	default:
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat catalog: %w", err)
		}
		if info.IsDir() {
			err = loader.LoadFromDir(path)
		} else {
			err = loader.LoadFromFile(path)
		}
		if err != nil {
			return nil, err
		}
	}

	if loader.Len() == 0 {
		return nil, ErrEmpty
	}
	return loader.Projects(), nil
}

// --- YAML file structs ---

// catalogFile represents the YAML structure of a catalog file
type catalogFile struct {
	Projects []projectFile `yaml:"projects"`
}

// projectFile represents one project entry
type projectFile struct {
	ID           int      `yaml:"id"`
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	Image        string   `yaml:"image"`
	Technologies []string `yaml:"technologies"`
	Category     string   `yaml:"category"`
	Complexity   string   `yaml:"complexity"`
	Date         string   `yaml:"date"`
	Links        struct {
		Demo   string `yaml:"demo"`
		GitHub string `yaml:"github"`
	} `yaml:"links"`
}

func (pf projectFile) toProject() (models.Project, error) {
	if pf.ID <= 0 {
		return models.Project{}, fmt.Errorf("id must be positive")
	}
	if strings.TrimSpace(pf.Title) == "" {
		return models.Project{}, fmt.Errorf("title is required")
	}
	if pf.Category == "" {
		return models.Project{}, fmt.Errorf("category is required")
	}

	complexity := models.Complexity(strings.ToLower(pf.Complexity))
	if !complexity.IsValid() {
		return models.Project{}, fmt.Errorf("invalid complexity %q", pf.Complexity)
	}

	date, err := models.ParseDate(pf.Date)
	if err != nil {
		return models.Project{}, err
	}

	// Placeholder links render as in-page anchors
	links := models.Links{Demo: pf.Links.Demo, GitHub: pf.Links.GitHub}
	if links.Demo == "" {
		links.Demo = "#"
	}
	if links.GitHub == "" {
		links.GitHub = "#"
	}

	return models.Project{
		ID:           pf.ID,
		Title:        pf.Title,
		Description:  pf.Description,
		Image:        pf.Image,
		Technologies: pf.Technologies,
		Category:     pf.Category,
		Complexity:   complexity,
		Date:         date,
		Links:        links,
	}, nil
}
