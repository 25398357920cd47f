package leaderboard

import (
	"net/url"
	"strconv"
)

// SortField selects the single key the leaderboard is ordered by.
type SortField string

const (
	SortReputation    SortField = "reputation"
	SortJobsCompleted SortField = "jobsCompleted"
	SortTotalEarnings SortField = "totalEarnings"
	SortName          SortField = "name"
)

// SortFields lists every sortable column in display order.
var SortFields = []SortField{SortName, SortReputation, SortJobsCompleted, SortTotalEarnings}

// ParseSortField returns the field for s, defaulting to reputation.
func ParseSortField(s string) SortField {
	switch f := SortField(s); f {
	case SortJobsCompleted, SortTotalEarnings, SortName:
		return f
	default:
		return SortReputation
	}
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder returns the order for s, defaulting to descending.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == Asc {
		return Asc
	}
	return Desc
}

// Flip returns the opposite order.
func (o SortOrder) Flip() SortOrder {
	if o == Asc {
		return Desc
	}
	return Asc
}

// TimeRange is accepted and carried through the query but does not filter
// records yet.
type TimeRange string

const (
	TimeRangeAll    TimeRange = "all"
	TimeRange30Days TimeRange = "30d"
	TimeRange7Days  TimeRange = "7d"
)

// TimeRanges lists the selectable ranges in display order.
var TimeRanges = []TimeRange{TimeRangeAll, TimeRange30Days, TimeRange7Days}

// ParseTimeRange returns the range for s, defaulting to all time.
func ParseTimeRange(s string) TimeRange {
	switch r := TimeRange(s); r {
	case TimeRange30Days, TimeRange7Days:
		return r
	default:
		return TimeRangeAll
	}
}

// Label is the human-readable name of the range.
func (r TimeRange) Label() string {
	switch r {
	case TimeRange30Days:
		return "Last 30 Days"
	case TimeRange7Days:
		return "Last 7 Days"
	default:
		return "All Time"
	}
}

// Next cycles through TimeRanges.
func (r TimeRange) Next() TimeRange {
	for i, tr := range TimeRanges {
		if tr == r {
			return TimeRanges[(i+1)%len(TimeRanges)]
		}
	}
	return TimeRangeAll
}

// MaxMinReputation is the top of the reputation slider.
const MaxMinReputation = 100

// Query is the session state a viewer controls. MinReputation is in slider
// units (percent); Page is 1-based.
type Query struct {
	Search        string    `json:"search"`
	MinReputation int       `json:"min_reputation"`
	TimeRange     TimeRange `json:"time_range"`
	SortField     SortField `json:"sort_field"`
	SortOrder     SortOrder `json:"sort_order"`
	Page          int       `json:"page"`
}

// DefaultQuery ranks by reputation, best first, on page 1.
func DefaultQuery() Query {
	return Query{
		TimeRange: TimeRangeAll,
		SortField: SortReputation,
		SortOrder: Desc,
		Page:      1,
	}
}

// ToggleSort flips the order when field is already active and otherwise
// switches to field, descending. Either way the page resets to 1.
func (q Query) ToggleSort(field SortField) Query {
	if q.SortField == field {
		q.SortOrder = q.SortOrder.Flip()
	} else {
		q.SortField = field
		q.SortOrder = Desc
	}
	q.Page = 1
	return q
}

// WithMinReputation sets the threshold, clamped to the slider range.
func (q Query) WithMinReputation(v int) Query {
	q.MinReputation = min(max(v, 0), MaxMinReputation)
	return q
}

// WithPage sets the page. Bounds are enforced by navigation, not here.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// ParseQuery reads a Query from URL parameters. Unknown or malformed values
// fall back to the defaults.
func ParseQuery(v url.Values) Query {
	q := DefaultQuery()
	q.Search = v.Get("q")
	if n, err := strconv.Atoi(v.Get("min_reputation")); err == nil {
		q = q.WithMinReputation(n)
	}
	q.TimeRange = ParseTimeRange(v.Get("time_range"))
	q.SortField = ParseSortField(v.Get("sort"))
	q.SortOrder = ParseSortOrder(v.Get("order"))
	if n, err := strconv.Atoi(v.Get("page")); err == nil {
		q.Page = n
	}
	return q
}

// Values encodes the query as URL parameters, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.MinReputation > 0 {
		v.Set("min_reputation", strconv.Itoa(q.MinReputation))
	}
	if q.TimeRange != "" && q.TimeRange != TimeRangeAll {
		v.Set("time_range", string(q.TimeRange))
	}
	if q.SortField != "" && q.SortField != SortReputation {
		v.Set("sort", string(q.SortField))
	}
	if q.SortOrder == Asc {
		v.Set("order", string(Asc))
	}
	if q.Page != 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// Encode returns the query string form of Values.
func (q Query) Encode() string {
	return q.Values().Encode()
}
