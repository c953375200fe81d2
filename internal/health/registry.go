// Package health reports whether the site's backing services are reachable.
package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Checker probes one dependency
type Checker interface {
	// Name identifies the dependency in reports
	Name() string

	// HealthCheck returns nil when the dependency is usable
	HealthCheck(ctx context.Context) error
}

// Status is the outcome of one check
type Status struct {
	Name     string `json:"name"`
	Healthy  bool   `json:"healthy"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

// Report aggregates every registered check. Ready is false only when a
// critical check failed.
type Report struct {
	Ready     bool      `json:"ready"`
	Checks    []Status  `json:"checks"`
	CheckedAt time.Time `json:"checked_at"`
}

type entry struct {
	checker  Checker
	critical bool
}

// Registry manages dependency checkers
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		checkers: make(map[string]entry),
	}
}

// Register adds a checker whose failure makes the site not ready
func (r *Registry) Register(c Checker) {
	r.add(c, true)
}

// RegisterOptional adds a checker that is reported but never blocks readiness
func (r *Registry) RegisterOptional(c Checker) {
	r.add(c, false)
}

func (r *Registry) add(c Checker, critical bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[c.Name()] = entry{checker: c, critical: critical}
}

// Unregister removes a checker
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkers, name)
}

// Get retrieves a checker by name
func (r *Registry) Get(name string) Checker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checkers[name].checker
}

// List returns all registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll runs every checker and returns its error by name
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]error, len(r.checkers))
	for name, e := range r.checkers {
		results[name] = e.checker.HealthCheck(ctx)
	}
	return results
}

// Check runs every checker and builds a report
func (r *Registry) Check(ctx context.Context) Report {
	r.mu.RLock()
	entries := make(map[string]entry, len(r.checkers))
	for name, e := range r.checkers {
		entries[name] = e
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	report := Report{
		Ready:     true,
		Checks:    make([]Status, 0, len(names)),
		CheckedAt: time.Now().UTC(),
	}

	for _, name := range names {
		e := entries[name]
		st := Status{Name: name, Healthy: true, Critical: e.critical}
		if err := e.checker.HealthCheck(ctx); err != nil {
			st.Healthy = false
			st.Error = err.Error()
			if e.critical {
				report.Ready = false
			}
		}
		report.Checks = append(report.Checks, st)
	}

	return report
}
