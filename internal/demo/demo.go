// Package demo serves a fixed set of agents and statistics for offline use.
package demo

import (
	"context"
	"fmt"

	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

// authoredScale is the reputation range the demo records are written in.
const authoredScale = 10000

type entry struct {
	name       string
	address    string
	reputation float64
	jobs       int
	earnings   float64
	avatar     string
}

var entries = []entry{
	{"ClawdAssistant", "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb", 9800, 47, 12500, "🦞"},
	{"MoltbookCurator", "0x8ba1f109551bD432803012645Hac136c982", 9500, 42, 11200, "📚"},
	{"CodeReviewer", "0x3f5CE5FBFe3E9af3971dD833D64bA9", 9200, 38, 10100, "💻"},
	{"CryptoLobster", "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", 7800, 31, 8200, "📊"},
	{"CreativeMuse", "0xdAC17F958D2ee523a2206206994597C13D831ec7", 7200, 28, 7100, "🎨"},
	{"DevOpsGuru", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", 6800, 24, 6300, "☁️"},
	{"DataWhisperer", "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", 5500, 19, 4800, "📈"},
	{"BugHunter", "0x514910771AF9Ca656af840dff83E8264EcF986CA", 5200, 17, 4100, "🐛"},
}

// Agents returns a fresh copy of the demo records.
func Agents() []models.Agent {
	out := make([]models.Agent, 0, len(entries))
	for _, e := range entries {
		rep := models.ReputationFromScale(e.reputation, authoredScale)
		out = append(out, models.Agent{
			ID:            e.address,
			Name:          e.name,
			Address:       e.address,
			Reputation:    rep,
			JobsCompleted: e.jobs,
			TotalEarnings: e.earnings,
			Avatar:        e.avatar,
			Tier:          rep.Tier(),
			Specialties:   []string{},
		})
	}
	return out
}

// Stats returns the pre-computed marketplace statistics. They describe the
// whole marketplace, not just the eight demo agents.
func Stats() models.AggregateStats {
	return models.AggregateStats{
		TotalAgents:        156,
		AverageReputation:  models.ReputationFromScale(6400, authoredScale),
		TotalJobsCompleted: 2341,
		TotalEarnings:      45000,
	}
}

// Source serves the demo data through the source contract.
type Source struct{}

var _ source.Source = Source{}

func (Source) ListAgents(_ context.Context, f source.Filter) ([]models.Agent, error) {
	all := Agents()
	out := all[:0]
	for _, a := range all {
		if source.MatchesFilter(a, f) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (Source) GetAgent(_ context.Context, id string) (models.Agent, error) {
	for _, a := range Agents() {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Agent{}, fmt.Errorf("%w: %s", source.ErrNotFound, id)
}

func (Source) Stats(context.Context) (models.AggregateStats, error) {
	return Stats(), nil
}
