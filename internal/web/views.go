package web

import (
	"embed"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/inaiurai/leaderboard/internal/leaderboard"
	"github.com/inaiurai/leaderboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var printer = message.NewPrinter(language.English)

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"reputation": leaderboard.FormatReputation,
	"earnings":   leaderboard.FormatEarnings,
	"truncate":   leaderboard.TruncateAddress,
	"badge":      leaderboard.BadgeFor,
	"medal":      leaderboard.RankMedal,
	"count":      func(n int) string { return printer.Sprintf("%d", n) },
	"join":       strings.Join,
}).ParseFS(templateFS, "templates/*.html"))

const emptyMessage = "No agents found matching your criteria."

type sortHeader struct {
	Label     string
	URL       string
	Indicator string
}

type row struct {
	Rank  int
	Agent models.Agent
	Badge leaderboard.TierBadge
}

type card struct {
	Rank  int
	Medal string
	Agent models.Agent
	Badge leaderboard.TierBadge
}

type timeOption struct {
	Value    leaderboard.TimeRange
	Label    string
	Selected bool
}

type leaderboardView struct {
	Query       leaderboard.Query
	Result      leaderboard.Result
	Stats       models.AggregateStats
	Podium      []card
	Rows        []row
	Headers     []sortHeader
	TimeOptions []timeOption
	ShowPager   bool
	PrevURL     string
	NextURL     string
	Empty       string
}

type errorView struct {
	Title    string
	Message  string
	RetryURL string
}

type agentView struct {
	Agent        models.Agent
	Badge        leaderboard.TierBadge
	HourlyRate   string
	Availability string
}

func newAgentView(a models.Agent) agentView {
	v := agentView{Agent: a, Badge: leaderboard.BadgeFor(a.Tier)}
	if a.HourlyRate != nil {
		v.HourlyRate = printer.Sprintf("$%.2f/hr", *a.HourlyRate)
	}
	if a.Available != nil {
		v.Availability = "Unavailable"
		if *a.Available {
			v.Availability = "Available"
		}
	}
	return v
}

var sortLabels = map[leaderboard.SortField]string{
	leaderboard.SortName:          "Agent",
	leaderboard.SortReputation:    "Reputation",
	leaderboard.SortJobsCompleted: "Jobs",
	leaderboard.SortTotalEarnings: "Earnings",
}

func newLeaderboardView(res leaderboard.Result, stats models.AggregateStats) leaderboardView {
	q := res.Query
	v := leaderboardView{Query: q, Result: res, Stats: stats, ShowPager: res.ShowPager()}

	for i, a := range res.TopThree {
		v.Podium = append(v.Podium, card{Rank: i + 1, Medal: leaderboard.RankMedal(i + 1), Agent: a, Badge: leaderboard.BadgeFor(a.Tier)})
	}
	for i, a := range res.Page {
		v.Rows = append(v.Rows, row{Rank: res.Rank(i), Agent: a, Badge: leaderboard.BadgeFor(a.Tier)})
	}
	for _, f := range leaderboard.SortFields {
		h := sortHeader{Label: sortLabels[f], URL: pageURL(q.ToggleSort(f)), Indicator: "↕"}
		if q.SortField == f {
			h.Indicator = "↓"
			if q.SortOrder == leaderboard.Asc {
				h.Indicator = "↑"
			}
		}
		v.Headers = append(v.Headers, h)
	}
	for _, tr := range leaderboard.TimeRanges {
		v.TimeOptions = append(v.TimeOptions, timeOption{Value: tr, Label: tr.Label(), Selected: tr == q.TimeRange})
	}
	if res.HasPrev {
		v.PrevURL = pageURL(q.WithPage(res.PrevPage()))
	}
	if res.HasNext {
		v.NextURL = pageURL(q.WithPage(q.Page + 1))
	}
	if len(res.Page) == 0 {
		v.Empty = emptyMessage
	}
	return v
}

func pageURL(q leaderboard.Query) string {
	if enc := q.Encode(); enc != "" {
		return "/?" + enc
	}
	return "/"
}
