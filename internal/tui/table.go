package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/inaiurai/leaderboard/internal/leaderboard"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	styles := table.DefaultStyles()
	if noColor {
		return styles
	}
	styles.Header = styles.Header.Foreground(lipgloss.Color("252")).Bold(true)
	styles.Selected = lipgloss.NewStyle()
	return styles
}

// columnsForWidth widens the agent column on large terminals.
func columnsForWidth(width int) []table.Column {
	name := 18
	if width > 100 {
		name = 28
	}
	return []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Agent", Width: name},
		{Title: "Address", Width: 14},
		{Title: "Reputation", Width: 11},
		{Title: "Tier", Width: 4},
		{Title: "Jobs", Width: 6},
		{Title: "Earnings", Width: 10},
	}
}

// rowsForResult converts the visible page into table rows.
func rowsForResult(res leaderboard.Result) []table.Row {
	rows := make([]table.Row, 0, len(res.Page))
	for i, a := range res.Page {
		rows = append(rows, table.Row{
			"#" + strconv.Itoa(res.Rank(i)),
			a.Avatar + " " + a.Name,
			leaderboard.TruncateAddress(a.Address),
			leaderboard.FormatReputation(a.Reputation),
			leaderboard.BadgeFor(a.Tier).ShortLabel(),
			strconv.Itoa(a.JobsCompleted),
			leaderboard.FormatEarnings(a.TotalEarnings),
		})
	}
	return rows
}
