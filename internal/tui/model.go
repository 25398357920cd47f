// Package tui renders the leaderboard in the terminal using Bubble Tea.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/inaiurai/leaderboard/internal/leaderboard"
	"github.com/inaiurai/leaderboard/internal/loader"
	"github.com/inaiurai/leaderboard/internal/source"
)

// repStep is how far one key press moves the reputation floor.
const repStep = 5

// Options configures the terminal model.
type Options struct {
	NoColor bool
	Query   leaderboard.Query
}

// Model is the Bubble Tea model for the leaderboard.
type Model struct {
	ctx    context.Context
	loader *loader.Loader

	query   leaderboard.Query
	snap    loader.Snapshot
	result  leaderboard.Result
	loaded  bool
	loading bool
	err     error

	table     table.Model
	search    textinput.Model
	searching bool
	help      help.Model
	showHelp  bool
	noColor   bool
}

// NewModel builds a model that loads through l. A zero Options.Query means
// the default ranking.
func NewModel(ctx context.Context, l *loader.Loader, opts Options) Model {
	q := opts.Query
	if q == (leaderboard.Query{}) {
		q = leaderboard.DefaultQuery()
	}
	t := table.New(
		table.WithColumns(columnsForWidth(0)),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(leaderboard.PageSize),
	)
	t.SetStyles(tableStyles(opts.NoColor))

	in := textinput.New()
	in.Placeholder = "Name or address..."
	in.Prompt = "🔍 "
	in.SetValue(q.Search)

	return Model{
		ctx:     ctx,
		loader:  l,
		query:   q,
		table:   t,
		search:  in,
		help:    help.New(),
		noColor: opts.NoColor,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// loadedMsg carries the outcome of one load.
type loadedMsg struct {
	snap loader.Snapshot
	err  error
}

func (m Model) load() tea.Cmd {
	l, ctx, f := m.loader, m.ctx, source.Filter{MinReputation: m.query.MinReputation}
	return func() tea.Msg {
		snap, err := l.Load(ctx, f)
		return loadedMsg{snap: snap, err: err}
	}
}

// Update handles key presses, resizes and finished loads.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetColumns(columnsForWidth(msg.Width))
		m.table.SetWidth(msg.Width)
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		if errors.Is(msg.err, loader.ErrStale) || (msg.err == nil && !m.loader.Current(msg.snap.Generation)) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snap = msg.snap
		m.loaded = true
		return m.refresh(), nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Accept):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, keys.Cancel):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.query.Search = ""
		return m.refresh(), nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query.Search = m.search.Value()
	return m.refresh(), cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, keys.MoreRep):
		return m.setMinReputation(m.query.MinReputation + repStep)
	case key.Matches(msg, keys.LessRep):
		return m.setMinReputation(m.query.MinReputation - repStep)
	case key.Matches(msg, keys.TimeRange):
		m.query.TimeRange = m.query.TimeRange.Next()
		return m.refresh(), nil
	case key.Matches(msg, keys.SortRep):
		return m.toggleSort(leaderboard.SortReputation), nil
	case key.Matches(msg, keys.SortJobs):
		return m.toggleSort(leaderboard.SortJobsCompleted), nil
	case key.Matches(msg, keys.SortEarning):
		return m.toggleSort(leaderboard.SortTotalEarnings), nil
	case key.Matches(msg, keys.SortName):
		return m.toggleSort(leaderboard.SortName), nil
	case key.Matches(msg, keys.Prev):
		if m.result.HasPrev {
			m.query = m.query.WithPage(m.result.PrevPage())
			return m.refresh(), nil
		}
	case key.Matches(msg, keys.Next):
		if m.result.HasNext {
			m.query = m.query.WithPage(m.query.Page + 1)
			return m.refresh(), nil
		}
	case key.Matches(msg, keys.Retry):
		m.loading = true
		return m, m.load()
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

// setMinReputation changes the floor and reloads, since the floor is also
// sent to the source.
func (m Model) setMinReputation(v int) (tea.Model, tea.Cmd) {
	next := m.query.WithMinReputation(v)
	if next.MinReputation == m.query.MinReputation {
		return m, nil
	}
	m.query = next
	m.loading = true
	return m.refresh(), m.load()
}

func (m Model) toggleSort(f leaderboard.SortField) Model {
	m.query = m.query.ToggleSort(f)
	return m.refresh()
}

// refresh reruns the pipeline over the current snapshot.
func (m Model) refresh() Model {
	m.result = leaderboard.Apply(m.snap.Agents, m.query)
	m.table.SetRows(rowsForResult(m.result))
	return m
}

// View renders the screen.
func (m Model) View() string {
	parts := []string{renderTitle(m.noColor)}
	switch {
	case m.err != nil:
		parts = append(parts, renderError(m.err, m.noColor))
	case !m.loaded:
		parts = append(parts, stylize("Loading agents...", m.noColor, lipgloss.Color("242")))
	default:
		parts = append(parts,
			renderStats(m.snap.Stats, m.noColor),
			renderPodium(m.result, m.noColor),
			renderFilters(m.query, m.loading, m.noColor),
		)
		if m.searching || m.query.Search != "" {
			parts = append(parts, m.search.View())
		}
		if len(m.result.Page) == 0 {
			parts = append(parts, stylize(emptyMessage, m.noColor, lipgloss.Color("244")))
		} else {
			parts = append(parts, m.table.View())
		}
		if pager := renderPager(m.result); pager != "" {
			parts = append(parts, pager)
		}
	}
	parts = append(parts, m.help.View(keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Query returns the current query.
func (m Model) Query() leaderboard.Query {
	return m.query
}

// Result returns the pipeline output for the current query.
func (m Model) Result() leaderboard.Result {
	return m.result
}

// Err returns the last load error, if the last load failed.
func (m Model) Err() error {
	return m.err
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, l *loader.Loader, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, l, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
