// Package showcase turns the static project catalog into the ordered view
// shown on the page: it derives the filter options, applies the visitor's
// filter selection and sort key, and reports an explicit empty state.
package showcase

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/terra-clan/portfolio/internal/models"
)

// MaxTechnologyOptions caps the technology buttons, including "all".
// This is a presentation limit: any technology present in the catalog can
// still be selected through the API.
const MaxTechnologyOptions = 8

// View is the result of one pipeline run
type View struct {
	Projects []models.Project       `json:"projects"`
	Filters  models.FilterSelection `json:"filters"`
	Sort     models.SortKey         `json:"sort"`
	Total    int                    `json:"total"` // matching projects
	Empty    bool                   `json:"empty"`
	Computed bool                   `json:"-"`
}

// DeriveOptions collects the distinct categories, complexities and
// lower-cased technologies of the catalog in first-seen order, each list
// prefixed with models.FilterAll. Technologies are capped at MaxTechnologyOptions.
func DeriveOptions(catalog []models.Project) models.FilterOptions {
	categories := newOrderedSet()
	complexities := newOrderedSet()
	technologies := newOrderedSet()

	for i := range catalog {
		p := &catalog[i]
		categories.add(p.Category)
		complexities.add(string(p.Complexity))
		for _, tech := range p.Technologies {
			technologies.add(strings.ToLower(tech))
		}
	}

	techs := technologies.values()
	if len(techs) > MaxTechnologyOptions {
		techs = techs[:MaxTechnologyOptions]
	}

	return models.FilterOptions{
		Categories:   categories.values(),
		Complexities: complexities.values(),
		Technologies: techs,
	}
}

// Matches reports whether p passes every non-"all" dimension of sel
func Matches(p *models.Project, sel models.FilterSelection) bool {
	if c := sel.Get(models.DimensionCategory); c != models.FilterAll && p.Category != c {
		return false
	}
	if c := sel.Get(models.DimensionComplexity); c != models.FilterAll && string(p.Complexity) != c {
		return false
	}
	if t := sel.Get(models.DimensionTechnology); t != models.FilterAll && !p.HasTechnology(t) {
		return false
	}
	return true
}

// Filter returns the projects matching sel in catalog order.
// The returned slice never aliases catalog.
func Filter(catalog []models.Project, sel models.FilterSelection) []models.Project {
	result := make([]models.Project, 0, len(catalog))
	for i := range catalog {
		if Matches(&catalog[i], sel) {
			result = append(result, catalog[i])
		}
	}
	return result
}

// Sort returns a sorted copy of projects. Ties keep their input order.
func Sort(projects []models.Project, key models.SortKey) []models.Project {
	sorted := make([]models.Project, len(projects))
	copy(sorted, projects)

	switch key {
	case models.SortName:
		col := collate.New(language.English)
		sort.SliceStable(sorted, func(i, j int) bool {
			return col.CompareString(sorted[i].Title, sorted[j].Title) < 0
		})
	case models.SortDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Date.After(sorted[j].Date.Time)
		})
	case models.SortComplexity:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Complexity.Rank() < sorted[j].Complexity.Rank()
		})
	}

	return sorted
}

// Apply filters the catalog with sel and orders the result by key
func Apply(catalog []models.Project, sel models.FilterSelection, key models.SortKey) View {
	projects := Sort(Filter(catalog, sel), key)
	return View{
		Projects: projects,
		Filters:  sel.Normalize(),
		Sort:     key,
		Total:    len(projects),
		Empty:    len(projects) == 0,
		Computed: true,
	}
}

// orderedSet keeps distinct strings in insertion order, starting with "all"
type orderedSet struct {
	seen  map[string]struct{}
	order []string
}

func newOrderedSet() *orderedSet {
	s := &orderedSet{seen: make(map[string]struct{})}
	s.add(models.FilterAll)
	return s
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.order = append(s.order, v)
}

func (s *orderedSet) values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
