package models

// FilterAll is the sentinel value that disables a filter dimension
const FilterAll = "all"

// Dimension names one axis of the project filters
type Dimension string

const (
	DimensionCategory   Dimension = "category"
	DimensionComplexity Dimension = "complexity"
	DimensionTechnology Dimension = "technology"
)

// Dimensions lists the filter dimensions in display order
var Dimensions = []Dimension{
	DimensionCategory,
	DimensionComplexity,
	DimensionTechnology,
}

// IsValid reports whether d is a known dimension
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionCategory, DimensionComplexity, DimensionTechnology:
		return true
	}
	return false
}

// FilterSelection holds exactly one active value per dimension.
// Empty fields are treated as FilterAll.
type FilterSelection struct {
	Category   string `json:"category"`
	Complexity string `json:"complexity"`
	Technology string `json:"technology"`
}

// AllFilters returns a selection with every dimension set to FilterAll
func AllFilters() FilterSelection {
	return FilterSelection{
		Category:   FilterAll,
		Complexity: FilterAll,
		Technology: FilterAll,
	}
}

// Get returns the selected value for a dimension
func (s FilterSelection) Get(d Dimension) string {
	var v string
	switch d {
	case DimensionCategory:
		v = s.Category
	case DimensionComplexity:
		v = s.Complexity
	case DimensionTechnology:
		v = s.Technology
	}
	if v == "" {
		return FilterAll
	}
	return v
}

// With returns a copy of the selection with the dimension replaced by value
func (s FilterSelection) With(d Dimension, value string) FilterSelection {
	if value == "" {
		value = FilterAll
	}
	switch d {
	case DimensionCategory:
		s.Category = value
	case DimensionComplexity:
		s.Complexity = value
	case DimensionTechnology:
		s.Technology = value
	}
	return s
}

// Normalize fills empty dimensions with FilterAll
func (s FilterSelection) Normalize() FilterSelection {
	return FilterSelection{
		Category:   s.Get(DimensionCategory),
		Complexity: s.Get(DimensionComplexity),
		Technology: s.Get(DimensionTechnology),
	}
}

// SortKey selects the ordering of the showcase
type SortKey string

const (
	SortDefault    SortKey = "default" // catalog order
	SortName       SortKey = "name"
	SortDate       SortKey = "date"
	SortComplexity SortKey = "complexity"
)

// SortKeys lists the accepted sort keys in display order
var SortKeys = []SortKey{
	SortDefault,
	SortName,
	SortDate,
	SortComplexity,
}

// ParseSortKey maps a string to a SortKey. The empty string means SortDefault.
func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return SortDefault, true
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Label returns the text shown in the sort control
func (k SortKey) Label() string {
	switch k {
	case SortName:
		return "Name"
	case SortDate:
		return "Newest First"
	case SortComplexity:
		return "Complexity"
	default:
		return "Default"
	}
}

// FilterOptions are the distinct attribute values offered by the filter controls.
// Every list starts with FilterAll.
type FilterOptions struct {
	Categories   []string `json:"categories"`
	Complexities []string `json:"complexities"`
	Technologies []string `json:"technologies"`
}

// Values returns the options for a dimension
func (o FilterOptions) Values(d Dimension) []string {
	switch d {
	case DimensionCategory:
		return o.Categories
	case DimensionComplexity:
		return o.Complexities
	case DimensionTechnology:
		return o.Technologies
	}
	return nil
}

// Contains reports whether value is offered for the dimension
func (o FilterOptions) Contains(d Dimension, value string) bool {
	for _, v := range o.Values(d) {
		if v == value {
			return true
		}
	}
	return false
}
