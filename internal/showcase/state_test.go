package showcase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/portfolio/internal/catalog"
	"github.com/terra-clan/portfolio/internal/models"
)

func TestPipelineSelect(t *testing.T) {
	p := NewPipeline(catalog.Default())
	st := DefaultState()

	st, err := p.Select(st, models.DimensionCategory, "academic")
	require.NoError(t, err)
	assert.Equal(t, "academic", st.Filters.Category)

	// Replaces, never accumulates
	st, err = p.Select(st, models.DimensionCategory, "web")
	require.NoError(t, err)
	assert.Equal(t, "web", st.Filters.Category)

	// Technology is lower-cased
	st, err = p.Select(st, models.DimensionTechnology, "HTML")
	require.NoError(t, err)
	assert.Equal(t, "html", st.Filters.Technology)
	assert.Equal(t, []int{4}, ids(p.Run(st).Projects))

	// Beyond the button cap but present in the catalog
	assert.False(t, p.Options().Contains(models.DimensionTechnology, "javascript"))
	_, err = p.Select(st, models.DimensionTechnology, "JavaScript")
	assert.NoError(t, err)

	// Empty value resets the dimension
	st, err = p.Select(st, models.DimensionTechnology, "")
	require.NoError(t, err)
	assert.Equal(t, models.FilterAll, st.Filters.Technology)
}

func TestPipelineSelectErrors(t *testing.T) {
	p := NewPipeline(catalog.Default())
	st := DefaultState()

	_, err := p.Select(st, models.Dimension("colour"), "red")
	assert.True(t, errors.Is(err, ErrUnknownDimension))

	_, err = p.Select(st, models.DimensionCategory, "mobile")
	assert.True(t, errors.Is(err, ErrUnknownOption))

	_, err = p.Select(st, models.DimensionTechnology, "rust")
	assert.True(t, errors.Is(err, ErrUnknownOption))

	_, err = p.WithSort(st, "popularity")
	assert.True(t, errors.Is(err, ErrUnknownSort))

	st.Filters.Complexity = "expert"
	assert.ErrorIs(t, p.Validate(st), ErrUnknownOption)
}

func TestPipelineRun(t *testing.T) {
	p := NewPipeline(catalog.Default())

	view := p.Run(DefaultState())
	assert.Equal(t, []int{1, 2, 3, 4}, ids(view.Projects))

	st, err := p.WithSort(DefaultState(), "date")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 2, 1}, ids(p.Run(st).Projects))

	// Empty sort key falls back to catalog order
	assert.Equal(t, []int{1, 2, 3, 4}, ids(p.Run(State{}).Projects))
}

func TestPipelineCatalogIsCopied(t *testing.T) {
	projects := catalog.Default()
	p := NewPipeline(projects)
	projects[0].Title = "mutated"

	got, ok := p.Project(1)
	require.True(t, ok)
	assert.Equal(t, "Data Structure Course Project", got.Title)

	c := p.Catalog()
	c[1].Title = "mutated"
	got, _ = p.Project(2)
	assert.Equal(t, "Data Science Course Project", got.Title)

	_, ok = p.Project(42)
	assert.False(t, ok)
}

func TestDispatcher(t *testing.T) {
	p := NewPipeline(catalog.Default())

	var shown []View
	sink := SinkFunc(func(v View) error {
		shown = append(shown, v)
		return nil
	})

	d := NewDispatcher(p, DefaultState(), sink)

	view, err := d.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(view.Projects))

	view, err = d.SelectFilter(models.DimensionCategory, "academic")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(view.Projects))

	view, err = d.SelectSort("date")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, ids(view.Projects))

	view, err = d.SelectFilter(models.DimensionComplexity, "intermediate")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(view.Projects))

	view, err = d.SelectFilter(models.DimensionCategory, "web")
	require.NoError(t, err)
	assert.Equal(t, []int{4}, ids(view.Projects))

	_, err = d.SelectFilter(models.DimensionCategory, "nope")
	assert.ErrorIs(t, err, ErrUnknownOption)

	// Rejected changes neither render nor alter state
	require.Len(t, shown, 5)
	assert.Equal(t, "web", d.State().Filters.Category)
	assert.Equal(t, models.SortDate, d.State().Sort)
}

func TestDispatcherSinkError(t *testing.T) {
	p := NewPipeline(catalog.Default())
	boom := errors.New("boom")
	d := NewDispatcher(p, DefaultState(), SinkFunc(func(View) error { return boom }))

	_, err := d.Load()
	assert.ErrorIs(t, err, boom)
}
