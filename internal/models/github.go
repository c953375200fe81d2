package models

import "time"

// Repository is the subset of a GitHub repository summary the site shows
type Repository struct {
	Name            string    `json:"name"`
	FullName        string    `json:"full_name,omitempty"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language,omitempty"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	Topics          []string  `json:"topics,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MaxRepoTopics is how many topics a repository card shows
const MaxRepoTopics = 3

// DisplayTopics returns at most MaxRepoTopics topics
func (r Repository) DisplayTopics() []string {
	if len(r.Topics) > MaxRepoTopics {
		return r.Topics[:MaxRepoTopics]
	}
	return r.Topics
}

// DisplayDescription returns the description or a placeholder when it is empty
func (r Repository) DisplayDescription() string {
	if r.Description == "" {
		return "No description available"
	}
	return r.Description
}

// RepoStats aggregates a list of repositories
type RepoStats struct {
	Repositories int        `json:"repositories"`
	Stars        int        `json:"stars"`
	Forks        int        `json:"forks"`
	LatestUpdate *time.Time `json:"latest_update,omitempty"`
}

// GitHubSnapshot is the last known state of the GitHub section
type GitHubSnapshot struct {
	Username  string       `json:"username"`
	Repos     []Repository `json:"repos"`
	Stats     RepoStats    `json:"stats"`
	FetchedAt *time.Time   `json:"fetched_at,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// Loaded reports whether at least one fetch succeeded
func (s GitHubSnapshot) Loaded() bool {
	return s.FetchedAt != nil
}
