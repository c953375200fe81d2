package models

import (
	"fmt"
	"time"
)

// Theme is the colour scheme preferred by a visitor
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid reports whether t is a known theme
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the opposite theme
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Icon returns the glyph shown on the theme toggle button
func (t Theme) Icon() string {
	if t == ThemeDark {
		return "☀️"
	}
	return "🌙"
}

// Well-known view identifiers for non-project interactions
const (
	ViewProjectsSection = "projects_section"
	ViewContactSubmit   = "contact_form_submission"
)

// Visitor is the session state of one browser
type Visitor struct {
	ID         string          `json:"id"`
	Theme      Theme           `json:"theme"`
	StartedAt  time.Time       `json:"started_at"`
	LastSeenAt time.Time       `json:"last_seen_at"`
	Viewed     []string        `json:"viewed"` // distinct, insertion order
	Filters    FilterSelection `json:"filters"`
	Sort       SortKey         `json:"sort"`
}

// NewVisitor creates a visitor session starting at now
func NewVisitor(id string, now time.Time) *Visitor {
	return &Visitor{
		ID:         id,
		Theme:      ThemeLight,
		StartedAt:  now,
		LastSeenAt: now,
		Viewed:     []string{},
		Filters:    AllFilters(),
		Sort:       SortDefault,
	}
}

// HasViewed reports whether viewID was already tracked
func (v *Visitor) HasViewed(viewID string) bool {
	for _, id := range v.Viewed {
		if id == viewID {
			return true
		}
	}
	return false
}

// Analytics is the visitor counter block shown on the page
type Analytics struct {
	TotalVisits    int64  `json:"total_visits"`
	ProjectsViewed int    `json:"projects_viewed"`
	VisitSeconds   int64  `json:"visit_seconds"`
	VisitTime      string `json:"visit_time"`
}

// NewAnalytics builds the counter block for a visitor at now
func NewAnalytics(v *Visitor, totalVisits int64, now time.Time) Analytics {
	secs := int64(now.Sub(v.StartedAt) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return Analytics{
		TotalVisits:    totalVisits,
		ProjectsViewed: len(v.Viewed),
		VisitSeconds:   secs,
		VisitTime:      FormatVisitTime(secs),
	}
}

// FormatVisitTime renders seconds as "Xm Ys"
func FormatVisitTime(secs int64) string {
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}
