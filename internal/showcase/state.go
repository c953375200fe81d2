package showcase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terra-clan/portfolio/internal/models"
)

var (
	ErrUnknownDimension = errors.New("unknown filter dimension")
	ErrUnknownOption    = errors.New("unknown filter option")
	ErrUnknownSort      = errors.New("unknown sort key")
)

// State is the visitor's current filter selection and sort key
type State struct {
	Filters models.FilterSelection `json:"filters"`
	Sort    models.SortKey         `json:"sort"`
}

// DefaultState selects "all" on every dimension with catalog order
func DefaultState() State {
	return State{
		Filters: models.AllFilters(),
		Sort:    models.SortDefault,
	}
}

// Pipeline owns the read-only catalog and the filter options derived from it
type Pipeline struct {
	catalog      []models.Project
	options      models.FilterOptions
	technologies map[string]struct{}
	byID         map[int]int
}

// NewPipeline copies catalog and derives its filter options once
func NewPipeline(catalog []models.Project) *Pipeline {
	p := &Pipeline{
		catalog:      make([]models.Project, len(catalog)),
		technologies: make(map[string]struct{}),
		byID:         make(map[int]int, len(catalog)),
	}
	copy(p.catalog, catalog)

	for i := range p.catalog {
		p.byID[p.catalog[i].ID] = i
		for _, tech := range p.catalog[i].Technologies {
			p.technologies[strings.ToLower(tech)] = struct{}{}
		}
	}
	p.options = DeriveOptions(p.catalog)

	return p
}

// Catalog returns a copy of the catalog in its original order
func (p *Pipeline) Catalog() []models.Project {
	out := make([]models.Project, len(p.catalog))
	copy(out, p.catalog)
	return out
}

// Options returns the derived filter options
func (p *Pipeline) Options() models.FilterOptions {
	return p.options
}

// Project looks up a catalog entry by id
func (p *Pipeline) Project(id int) (models.Project, bool) {
	i, ok := p.byID[id]
	if !ok {
		return models.Project{}, false
	}
	return p.catalog[i], true
}

// Select returns st with one dimension replaced. Technology values are
// compared lower-cased and may name any catalog technology, not only the
// capped set shown as buttons.
func (p *Pipeline) Select(st State, dim models.Dimension, value string) (State, error) {
	if !dim.IsValid() {
		return st, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}

	if dim == models.DimensionTechnology {
		value = strings.ToLower(value)
	}
	if value == "" {
		value = models.FilterAll
	}

	if !p.accepts(dim, value) {
		return st, fmt.Errorf("%w: %s=%q", ErrUnknownOption, dim, value)
	}

	st.Filters = st.Filters.With(dim, value)
	return st, nil
}

// WithSort returns st with the sort key parsed from raw
func (p *Pipeline) WithSort(st State, raw string) (State, error) {
	key, ok := models.ParseSortKey(raw)
	if !ok {
		return st, fmt.Errorf("%w: %q", ErrUnknownSort, raw)
	}
	st.Sort = key
	return st, nil
}

// Validate checks that every value in st is one the catalog can produce
func (p *Pipeline) Validate(st State) error {
	for _, dim := range models.Dimensions {
		if _, err := p.Select(st, dim, st.Filters.Get(dim)); err != nil {
			return err
		}
	}
	if _, ok := models.ParseSortKey(string(st.Sort)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSort, st.Sort)
	}
	return nil
}

// Run computes the view for st
func (p *Pipeline) Run(st State) View {
	key := st.Sort
	if key == "" {
		key = models.SortDefault
	}
	return Apply(p.catalog, st.Filters, key)
}

func (p *Pipeline) accepts(dim models.Dimension, value string) bool {
	if value == models.FilterAll {
		return true
	}
	if dim == models.DimensionTechnology {
		_, ok := p.technologies[value]
		return ok
	}
	return p.options.Contains(dim, value)
}
