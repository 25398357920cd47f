package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/inaiurai/leaderboard/internal/models"
	"github.com/inaiurai/leaderboard/internal/source"
)

// Querier is the subset of pgxpool.Pool the repository reads through.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AgentRepo reads leaderboard records straight from the marketplace
// database. reputation_score is stored on the 0–100 scale.
type AgentRepo struct {
	db Querier
}

var _ source.Source = (*AgentRepo)(nil)

func NewAgentRepo(db Querier) *AgentRepo {
	return &AgentRepo{db: db}
}

// Earnings are the agreed prices of completed jobs; cents are converted to
// dollars on scan.
const selectProfiles = `
	SELECT p.id, p.name, p.description, p.capabilities, p.status,
	       COALESCE(p.reputation_score, 0)::float8,
	       COALESCE(p.total_jobs, 0)::bigint,
	       COALESCE((
	           SELECT SUM(j.agreed_price_cents) FROM jobs j
	           WHERE j.assigned_agent_id = p.id AND j.status = 'COMPLETED'
	       ), 0)::bigint
	FROM agent_profiles p`

// ListAgents returns profiles matching the filter, best reputation first.
func (r *AgentRepo) ListAgents(ctx context.Context, f source.Filter) ([]models.Agent, error) {
	onlyActive := f.Available != nil && *f.Available
	rows, err := r.db.Query(ctx, selectProfiles+`
		WHERE COALESCE(p.reputation_score, 0) >= $1
		  AND ($2 = '' OR $2 = ANY(p.capabilities))
		  AND (NOT $3 OR p.status = 'ACTIVE')
		ORDER BY p.reputation_score DESC NULLS LAST, p.name ASC
	`, float64(f.MinReputation), strings.ToLower(strings.TrimSpace(f.Specialty)), onlyActive)
	if err != nil {
		return nil, &source.FetchError{Op: "list agents", Err: err}
	}
	defer rows.Close()
	var list []models.Agent
	for rows.Next() {
		a, err := scanProfile(rows)
		if err != nil {
			return nil, &source.FetchError{Op: "list agents", Err: err}
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &source.FetchError{Op: "list agents", Err: err}
	}
	return list, nil
}

// GetAgent returns one profile by id. Ids that are not UUIDs are reported
// as not found.
func (r *AgentRepo) GetAgent(ctx context.Context, id string) (models.Agent, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return models.Agent{}, fmt.Errorf("%w: %s", source.ErrNotFound, id)
	}
	a, err := scanProfile(r.db.QueryRow(ctx, selectProfiles+` WHERE p.id = $1`, pid))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Agent{}, fmt.Errorf("%w: %s", source.ErrNotFound, id)
	}
	if err != nil {
		return models.Agent{}, &source.FetchError{Op: "get agent", Err: err}
	}
	return a, nil
}

// Stats aggregates over every profile, not only the active ones.
func (r *AgentRepo) Stats(ctx context.Context) (models.AggregateStats, error) {
	var (
		total, jobs, earningsCents int64
		avg                        float64
	)
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)::bigint,
		       COALESCE(AVG(reputation_score), 0)::float8,
		       COALESCE(SUM(total_jobs), 0)::bigint,
		       COALESCE((SELECT SUM(agreed_price_cents) FROM jobs WHERE status = 'COMPLETED'), 0)::bigint
		FROM agent_profiles
	`).Scan(&total, &avg, &jobs, &earningsCents)
	if err != nil {
		return models.AggregateStats{}, &source.FetchError{Op: "dashboard", Err: err}
	}
	return models.AggregateStats{
		TotalAgents:        int(total),
		AverageReputation:  models.ReputationFromPercent(avg),
		TotalJobsCompleted: int(jobs),
		TotalEarnings:      float64(earningsCents) / 100,
	}, nil
}

func scanProfile(row pgx.Row) (models.Agent, error) {
	var (
		id            uuid.UUID
		name          string
		description   *string
		capabilities  []string
		status        string
		reputation    float64
		totalJobs     int64
		earningsCents int64
	)
	if err := row.Scan(&id, &name, &description, &capabilities, &status, &reputation, &totalJobs, &earningsCents); err != nil {
		return models.Agent{}, err
	}
	if capabilities == nil {
		capabilities = []string{}
	}
	rep := models.ReputationFromPercent(reputation)
	available := status == "ACTIVE"
	a := models.Agent{
		ID:            id.String(),
		Name:          name,
		Address:       id.String(),
		Reputation:    rep,
		JobsCompleted: int(totalJobs),
		TotalEarnings: float64(earningsCents) / 100,
		Avatar:        models.AvatarFor(capabilities),
		Tier:          rep.Tier(),
		Specialties:   capabilities,
		Available:     &available,
	}
	if description != nil {
		a.Description = *description
	}
	return a, nil
}
