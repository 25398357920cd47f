// Package source defines the contract every agent data source satisfies.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/inaiurai/leaderboard/internal/models"
)

// Filter narrows a server-side agent listing. MinReputation is in percent
// (0–100), the unit of the UI slider.
type Filter struct {
	MinReputation int
	Specialty     string
	Available     *bool
}

// Source supplies agent records and marketplace statistics.
type Source interface {
	ListAgents(ctx context.Context, f Filter) ([]models.Agent, error)
	GetAgent(ctx context.Context, id string) (models.Agent, error)
	Stats(ctx context.Context) (models.AggregateStats, error)
}

var (
	// ErrFetch matches every failed fetch, whatever the source.
	ErrFetch = errors.New("fetch failed")
	// ErrNotFound is returned by GetAgent for an unknown id.
	ErrNotFound = errors.New("agent not found")
)

// FetchError describes a failed request. StatusCode is zero for network
// failures.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": " + ErrFetch.Error()
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// MatchesFilter reports whether a passes f, for sources that filter
// locally.
func MatchesFilter(a models.Agent, f Filter) bool {
	if f.MinReputation > 0 && a.Reputation < models.ReputationFromPercent(float64(f.MinReputation)) {
		return false
	}
	if f.Specialty != "" && !hasSpecialty(a.Specialties, f.Specialty) {
		return false
	}
	if f.Available != nil && *f.Available && (a.Available == nil || !*a.Available) {
		return false
	}
	return true
}

func hasSpecialty(list []string, want string) bool {
	w := models.ParseSpecialty(want)
	for _, s := range list {
		if s == want || (w != models.SpecialtyOther && models.ParseSpecialty(s) == w) {
			return true
		}
	}
	return false
}
