// Package leaderboard turns a list of agent records and a viewer's query
// into the page, podium and pagination metadata that get rendered.
package leaderboard

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/inaiurai/leaderboard/internal/models"
)

const (
	// PageSize is the number of rows per leaderboard page.
	PageSize = 25
	// PodiumSize is the number of highlighted top records.
	PodiumSize = 3
)

// Result is the output of Apply.
type Result struct {
	Query      Query          `json:"query"`
	Page       []models.Agent `json:"page"`
	TopThree   []models.Agent `json:"top_three"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	HasPrev    bool           `json:"has_prev"`
	HasNext    bool           `json:"has_next"`
}

// Empty reports whether nothing matched the filters.
func (r Result) Empty() bool {
	return r.Total == 0
}

// Rank returns the overall 1-based rank of the i-th row of the page.
func (r Result) Rank(i int) int {
	return (r.Query.Page-1)*PageSize + i + 1
}

// PrevPage is the page Prev leads to. From past the end it lands on the last
// page rather than on another empty one.
func (r Result) PrevPage() int {
	return max(min(r.Query.Page-1, r.TotalPages), 1)
}

// ShowPager reports whether page navigation should be offered: there is more
// than one page, or the viewer is past the end and needs a way back.
func (r Result) ShowPager() bool {
	return r.TotalPages > 1 || r.HasPrev
}

// Apply filters, sorts and paginates records. records is not modified.
//
// An out-of-range page yields an empty Page with the other fields intact;
// it is not an error.
func Apply(records []models.Agent, q Query) Result {
	filtered := filter(records, q)
	sortAgents(filtered, q.SortField, q.SortOrder)

	total := len(filtered)
	totalPages := (total + PageSize - 1) / PageSize
	res := Result{
		Query:      q,
		Page:       []models.Agent{},
		TopThree:   slices.Clone(filtered[:min(PodiumSize, total)]),
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    q.Page > 1,
		HasNext:    q.Page >= 1 && q.Page < totalPages,
	}
	if q.Page >= 1 && q.Page <= totalPages {
		start := (q.Page - 1) * PageSize
		end := min(start+PageSize, total)
		res.Page = filtered[start:end]
	}
	return res
}

func filter(records []models.Agent, q Query) []models.Agent {
	needle := strings.ToLower(q.Search)
	floor := models.ReputationFromPercent(float64(q.MinReputation))
	out := make([]models.Agent, 0, len(records))
	for _, a := range records {
		if needle != "" &&
			!strings.Contains(strings.ToLower(a.Name), needle) &&
			!strings.Contains(strings.ToLower(a.Address), needle) {
			continue
		}
		if q.MinReputation > 0 && a.Reputation < floor {
			continue
		}
		out = append(out, a)
	}
	return out
}

// sortAgents is stable, so records that compare equal keep their order.
func sortAgents(agents []models.Agent, field SortField, order SortOrder) {
	compare := comparator(field)
	if order != Asc {
		ascending := compare
		compare = func(a, b models.Agent) int { return -ascending(a, b) }
	}
	slices.SortStableFunc(agents, compare)
}

func comparator(field SortField) func(a, b models.Agent) int {
	switch field {
	case SortJobsCompleted:
		return func(a, b models.Agent) int { return cmp.Compare(a.JobsCompleted, b.JobsCompleted) }
	case SortTotalEarnings:
		return func(a, b models.Agent) int { return cmp.Compare(a.TotalEarnings, b.TotalEarnings) }
	case SortName:
		col := collate.New(language.English)
		return func(a, b models.Agent) int { return col.CompareString(a.Name, b.Name) }
	default:
		return func(a, b models.Agent) int { return cmp.Compare(a.Reputation, b.Reputation) }
	}
}
