package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Complexity represents how demanding a project was
type Complexity string

const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// Rank returns the ordering weight of the complexity: beginner=1, intermediate=2, advanced=3.
// Unknown values sort after advanced.
func (c Complexity) Rank() int {
	switch c {
	case ComplexityBeginner:
		return 1
	case ComplexityIntermediate:
		return 2
	case ComplexityAdvanced:
		return 3
	default:
		return 4
	}
}

// IsValid reports whether c is one of the known complexity tiers
func (c Complexity) IsValid() bool {
	return c == ComplexityBeginner || c == ComplexityIntermediate || c == ComplexityAdvanced
}

// DateLayout is the calendar date format used by the catalog and the API
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Links holds the outbound links of a project card
type Links struct {
	Demo   string `json:"demo"`
	GitHub string `json:"github"`
}

// Project is a single entry of the portfolio showcase
type Project struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Technologies []string   `json:"technologies"` // display order
	Category     string     `json:"category"`
	Complexity   Complexity `json:"complexity"`
	Date         Date       `json:"date"`
	Links        Links      `json:"links"`
}

// HasTechnology reports whether the project lists tech, ignoring case
func (p *Project) HasTechnology(tech string) bool {
	want := strings.ToLower(tech)
	for _, t := range p.Technologies {
		if strings.ToLower(t) == want {
			return true
		}
	}
	return false
}

// ViewID returns the identifier used when tracking views of this project
func (p *Project) ViewID() string {
	return fmt.Sprintf("%d", p.ID)
}
