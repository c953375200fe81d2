package showcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/portfolio/internal/catalog"
	"github.com/terra-clan/portfolio/internal/models"
)

func ids(projects []models.Project) []int {
	out := make([]int, len(projects))
	for i, p := range projects {
		out[i] = p.ID
	}
	return out
}

func allSelections(opts models.FilterOptions) []models.FilterSelection {
	var out []models.FilterSelection
	for _, c := range opts.Categories {
		for _, x := range opts.Complexities {
			for _, t := range opts.Technologies {
				out = append(out, models.FilterSelection{Category: c, Complexity: x, Technology: t})
			}
		}
	}
	return out
}

func TestDeriveOptions(t *testing.T) {
	opts := DeriveOptions(catalog.Default())

	assert.Equal(t, []string{"all", "academic", "web"}, opts.Categories)
	assert.Equal(t, []string{"all", "intermediate", "beginner", "advanced"}, opts.Complexities)

	// Lower-cased, first-seen order, duplicates dropped, capped at 8 including "all"
	assert.Equal(t, []string{
		"all",
		"problem-solving",
		"algorithm design",
		"java",
		"python",
		"data cleaning",
		"statistical analysis",
		"requirement gathering",
	}, opts.Technologies)
	assert.Len(t, opts.Technologies, MaxTechnologyOptions)
}

func TestDeriveOptionsEmptyCatalog(t *testing.T) {
	opts := DeriveOptions(nil)
	assert.Equal(t, []string{"all"}, opts.Categories)
	assert.Equal(t, []string{"all"}, opts.Complexities)
	assert.Equal(t, []string{"all"}, opts.Technologies)
}

func TestFilterExamples(t *testing.T) {
	projects := catalog.Default()

	tests := []struct {
		name string
		sel  models.FilterSelection
		want []int
	}{
		{"all dimensions", models.AllFilters(), []int{1, 2, 3, 4}},
		{"zero selection means all", models.FilterSelection{}, []int{1, 2, 3, 4}},
		{"academic", models.AllFilters().With(models.DimensionCategory, "academic"), []int{1, 2, 3}},
		{"python lower", models.AllFilters().With(models.DimensionTechnology, "python"), []int{2}},
		{"python mixed case", models.AllFilters().With(models.DimensionTechnology, "PyThOn"), []int{2}},
		{"intermediate", models.AllFilters().With(models.DimensionComplexity, "intermediate"), []int{1, 4}},
		{"shared technology", models.AllFilters().With(models.DimensionTechnology, "problem-solving"), []int{1, 2}},
		{"web advanced", models.FilterSelection{Category: "web", Complexity: "advanced", Technology: "all"}, []int{}},
		{"category is exact", models.AllFilters().With(models.DimensionCategory, "Academic"), []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(projects, tt.sel)))
		})
	}
}

func TestFilterProperties(t *testing.T) {
	projects := catalog.Default()
	byID := make(map[int]models.Project)
	for _, p := range projects {
		byID[p.ID] = p
	}

	for _, sel := range allSelections(DeriveOptions(projects)) {
		result := Filter(projects, sel)

		for _, p := range result {
			// Subset of the catalog
			orig, ok := byID[p.ID]
			require.True(t, ok, "unknown project %d", p.ID)
			assert.Equal(t, orig.Title, p.Title)

			// Every element satisfies every dimension
			assert.True(t, Matches(&p, sel), "project %d does not match %+v", p.ID, sel)
		}

		// Idempotent
		assert.Equal(t, ids(result), ids(Filter(result, sel)), "selection %+v", sel)
	}
}

func TestFilterDoesNotAliasCatalog(t *testing.T) {
	projects := catalog.Default()
	result := Filter(projects, models.AllFilters())
	result[0].Title = "changed"
	assert.Equal(t, "Data Structure Course Project", projects[0].Title)
}

func TestSort(t *testing.T) {
	projects := catalog.Default()

	t.Run("default keeps order", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3, 4}, ids(Sort(projects, models.SortDefault)))
	})

	t.Run("date descending", func(t *testing.T) {
		assert.Equal(t, []int{4, 3, 2, 1}, ids(Sort(projects, models.SortDate)))
	})

	t.Run("name", func(t *testing.T) {
		// Data Science < Data Structure < Personal < Software
		assert.Equal(t, []int{2, 1, 4, 3}, ids(Sort(projects, models.SortName)))
	})

	t.Run("complexity ascending and stable", func(t *testing.T) {
		// beginner(2), intermediate(1, 4 in catalog order), advanced(3)
		assert.Equal(t, []int{2, 1, 4, 3}, ids(Sort(projects, models.SortComplexity)))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		before := ids(projects)
		for _, key := range models.SortKeys {
			Sort(projects, key)
		}
		assert.Equal(t, before, ids(projects))
	})

	t.Run("sorting twice is stable", func(t *testing.T) {
		for _, key := range models.SortKeys {
			once := Sort(projects, key)
			assert.Equal(t, ids(once), ids(Sort(once, key)), "key %s", key)
		}
	})
}

func TestSortNameIsLocaleAware(t *testing.T) {
	projects := []models.Project{
		{ID: 1, Title: "beta"},
		{ID: 2, Title: "Alpha"},
		{ID: 3, Title: "Émile"},
		{ID: 4, Title: "zulu"},
	}

	// Byte order would put "Alpha" first and "Émile" last
	assert.Equal(t, []int{2, 1, 3, 4}, ids(Sort(projects, models.SortName)))
}

func TestSortComplexityNeverAdvancedBeforeBeginner(t *testing.T) {
	projects := catalog.Default()
	for _, sel := range allSelections(DeriveOptions(projects)) {
		sorted := Sort(Filter(projects, sel), models.SortComplexity)
		seenAdvanced := false
		for _, p := range sorted {
			if p.Complexity == models.ComplexityAdvanced {
				seenAdvanced = true
			}
			if p.Complexity == models.ComplexityBeginner {
				assert.False(t, seenAdvanced, "beginner after advanced for %+v", sel)
			}
		}
	}
}

func TestApply(t *testing.T) {
	projects := catalog.Default()

	view := Apply(projects, models.AllFilters(), models.SortDefault)
	assert.True(t, view.Computed)
	assert.False(t, view.Empty)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, ids(projects), ids(view.Projects))

	empty := Apply(projects, models.FilterSelection{Category: "web", Complexity: "advanced"}, models.SortDate)
	assert.True(t, empty.Computed)
	assert.True(t, empty.Empty)
	assert.Empty(t, empty.Projects)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, "all", empty.Filters.Technology)

	python := Apply(projects, models.FilterSelection{Technology: "python"}, models.SortDefault)
	assert.Equal(t, 1, python.Total)
	assert.Len(t, python.Projects, python.Total)

	var notYet View
	assert.False(t, notYet.Computed)
	assert.False(t, notYet.Empty)
}
