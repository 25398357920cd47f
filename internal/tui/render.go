package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/inaiurai/leaderboard/internal/leaderboard"
	"github.com/inaiurai/leaderboard/internal/models"
)

const emptyMessage = "No agents found matching your criteria."

func renderTitle(noColor bool) string {
	title := "🏆 Agent Leaderboard"
	if noColor {
		return title
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")).Render(title)
}

// renderStats renders the marketplace totals line.
func renderStats(st models.AggregateStats, noColor bool) string {
	line := "Agents: " + strconv.Itoa(st.TotalAgents) +
		"  Avg reputation: " + leaderboard.FormatReputation(st.AverageReputation) +
		"  Jobs: " + strconv.Itoa(st.TotalJobsCompleted) +
		"  Distributed: " + leaderboard.FormatEarnings(st.TotalEarnings)
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderPodium renders the top three on one line.
func renderPodium(res leaderboard.Result, noColor bool) string {
	if len(res.TopThree) == 0 {
		return ""
	}
	cards := make([]string, 0, len(res.TopThree))
	for i, a := range res.TopThree {
		cards = append(cards, leaderboard.RankMedal(i+1)+" "+a.Avatar+" "+a.Name+
			" ("+leaderboard.FormatReputation(a.Reputation)+", "+leaderboard.BadgeFor(a.Tier).Label()+")")
	}
	return stylize(strings.Join(cards, "   "), noColor, lipgloss.Color("220"))
}

// renderFilters renders the current query state.
func renderFilters(q leaderboard.Query, loading bool, noColor bool) string {
	order := "↓"
	if q.SortOrder == leaderboard.Asc {
		order = "↑"
	}
	line := "⭐ Min reputation: " + strconv.Itoa(q.MinReputation) + "%" +
		"  📅 " + q.TimeRange.Label() +
		"  Sort: " + string(q.SortField) + " " + order
	if loading {
		line += "  (loading...)"
	}
	return stylize(line, noColor, lipgloss.Color("244"))
}

// renderPager is empty when everything fits on one page.
func renderPager(res leaderboard.Result) string {
	if !res.ShowPager() {
		return ""
	}
	return "Page " + strconv.Itoa(res.Query.Page) + " of " + strconv.Itoa(res.TotalPages)
}

func renderError(err error, noColor bool) string {
	line := "Failed to load agents: " + err.Error() + "\nPress r to retry."
	return stylize(line, noColor, lipgloss.Color("196"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor || text == "" {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
